package activitylogsrepo

import (
	"time"

	"github.com/jrazmi/helix/core/scaffolding/fop"
)

type ActivityLogFilter struct {
	UserProfileID  *string
	Action         *string
	Resource       *string
	Outcome        *ActivityOutcome
	MinRiskScore   *int
	OccurredAfter  *time.Time
	OccurredBefore *time.Time
}

const (
	OrderByPK         = "activity_log_id"
	OrderByOccurredAt = "occurred_at"
	OrderByCreatedAt  = "created_at"
)

var DefaultOrderBy = fop.NewBy(OrderByOccurredAt, fop.DESC)

type GroupField string

const (
	GroupByOutcome  GroupField = "outcome"
	GroupByAction   GroupField = "action"
	GroupByResource GroupField = "resource"
)

func (g GroupField) Valid() bool {
	switch g {
	case GroupByOutcome, GroupByAction, GroupByResource:
		return true
	}
	return false
}

func cursorFor(orderBy fop.By) func(ActivityLog) fop.StringCursor {
	return func(l ActivityLog) fop.StringCursor {
		c := fop.StringCursor{PK: l.ActivityLogID}
		switch orderBy.Field {
		case OrderByOccurredAt:
			c.OrderValue = fop.TimeValue(l.OccurredAt)
		case OrderByCreatedAt:
			c.OrderValue = fop.TimeValue(l.CreatedAt)
		default:
			c.OrderValue = l.ActivityLogID
		}
		return c
	}
}
