package trainingrecordsrepo

import (
	"time"

	"github.com/jrazmi/helix/core/scaffolding/fop"
)

type TrainingRecordFilter struct {
	IDs           []string
	UserProfileID *string
	CourseID      *string
	Status        *TrainingStatus
	IsRequired    *bool
	DueBefore     *time.Time
	ExpiresBefore *time.Time
}

func (f TrainingRecordFilter) Empty() bool {
	return len(f.IDs) == 0 && f.UserProfileID == nil && f.CourseID == nil && f.Status == nil &&
		f.IsRequired == nil && f.DueBefore == nil && f.ExpiresBefore == nil
}

const (
	OrderByPK         = "training_record_id"
	OrderByCreatedAt  = "created_at"
	OrderByUpdatedAt  = "updated_at"
	OrderByCourseID   = "course_id"
	OrderByCourseName = "course_name"
)

var DefaultOrderBy = fop.NewBy(OrderByCreatedAt, fop.DESC)

type GroupField string

const (
	GroupByStatus     GroupField = "status"
	GroupByCourseID   GroupField = "course_id"
	GroupByIsRequired GroupField = "is_required"
)

func (g GroupField) Valid() bool {
	switch g {
	case GroupByStatus, GroupByCourseID, GroupByIsRequired:
		return true
	}
	return false
}

func cursorFor(orderBy fop.By) func(TrainingRecord) fop.StringCursor {
	return func(t TrainingRecord) fop.StringCursor {
		c := fop.StringCursor{PK: t.TrainingRecordID}
		switch orderBy.Field {
		case OrderByCreatedAt:
			c.OrderValue = fop.TimeValue(t.CreatedAt)
		case OrderByUpdatedAt:
			c.OrderValue = fop.TimeValue(t.UpdatedAt)
		case OrderByCourseID:
			c.OrderValue = t.CourseID
		case OrderByCourseName:
			c.OrderValue = t.CourseName
		default:
			c.OrderValue = t.TrainingRecordID
		}
		return c
	}
}
