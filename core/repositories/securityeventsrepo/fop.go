package securityeventsrepo

import (
	"time"

	"github.com/jrazmi/helix/core/scaffolding/fop"
)

type SecurityEventFilter struct {
	IDs           []string
	UserProfileID *string
	EventType     *string
	Severity      *EventSeverity
	Status        *EventStatus
	// OpenOnly selects OPEN and IN_PROGRESS events.
	OpenOnly       *bool
	AssignedTo     *string
	DetectedAfter  *time.Time
	DetectedBefore *time.Time
}

func (f SecurityEventFilter) Empty() bool {
	return len(f.IDs) == 0 && f.UserProfileID == nil && f.EventType == nil && f.Severity == nil &&
		f.Status == nil && f.OpenOnly == nil && f.AssignedTo == nil &&
		f.DetectedAfter == nil && f.DetectedBefore == nil
}

const (
	OrderByPK         = "security_event_id"
	OrderByDetectedAt = "detected_at"
	OrderByCreatedAt  = "created_at"
	OrderByUpdatedAt  = "updated_at"
)

var DefaultOrderBy = fop.NewBy(OrderByDetectedAt, fop.DESC)

type GroupField string

const (
	GroupBySeverity  GroupField = "severity"
	GroupByStatus    GroupField = "status"
	GroupByEventType GroupField = "event_type"
)

func (g GroupField) Valid() bool {
	switch g {
	case GroupBySeverity, GroupByStatus, GroupByEventType:
		return true
	}
	return false
}

func cursorFor(orderBy fop.By) func(SecurityEvent) fop.StringCursor {
	return func(e SecurityEvent) fop.StringCursor {
		c := fop.StringCursor{PK: e.SecurityEventID}
		switch orderBy.Field {
		case OrderByDetectedAt:
			c.OrderValue = fop.TimeValue(e.DetectedAt)
		case OrderByCreatedAt:
			c.OrderValue = fop.TimeValue(e.CreatedAt)
		case OrderByUpdatedAt:
			c.OrderValue = fop.TimeValue(e.UpdatedAt)
		default:
			c.OrderValue = e.SecurityEventID
		}
		return c
	}
}
