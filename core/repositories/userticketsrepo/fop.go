package userticketsrepo

import "github.com/jrazmi/helix/core/scaffolding/fop"

type UserTicketFilter struct {
	IDs           []string
	UserProfileID *string
	TicketID      *string
	TicketSystem  *string
	Relationship  *TicketRelationship
	TicketStatus  *string
}

func (f UserTicketFilter) Empty() bool {
	return len(f.IDs) == 0 && f.UserProfileID == nil && f.TicketID == nil &&
		f.TicketSystem == nil && f.Relationship == nil && f.TicketStatus == nil
}

const (
	OrderByPK        = "user_ticket_id"
	OrderByCreatedAt = "created_at"
	OrderByTicketID  = "ticket_id"
)

var DefaultOrderBy = fop.NewBy(OrderByCreatedAt, fop.DESC)

type GroupField string

const (
	GroupByRelationship GroupField = "relationship"
	GroupByTicketStatus GroupField = "ticket_status"
	GroupByTicketSystem GroupField = "ticket_system"
)

func (g GroupField) Valid() bool {
	switch g {
	case GroupByRelationship, GroupByTicketStatus, GroupByTicketSystem:
		return true
	}
	return false
}

func cursorFor(orderBy fop.By) func(UserTicket) fop.StringCursor {
	return func(t UserTicket) fop.StringCursor {
		c := fop.StringCursor{PK: t.UserTicketID}
		switch orderBy.Field {
		case OrderByCreatedAt:
			c.OrderValue = fop.TimeValue(t.CreatedAt)
		case OrderByTicketID:
			c.OrderValue = t.TicketID
		default:
			c.OrderValue = t.UserTicketID
		}
		return c
	}
}
