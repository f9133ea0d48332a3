package userticketsrepo

import "time"

// TicketRelationship is the role a profile plays on a ticket.
type TicketRelationship string

const (
	RelationshipRequester TicketRelationship = "REQUESTER"
	RelationshipAssignee  TicketRelationship = "ASSIGNEE"
	RelationshipWatcher   TicketRelationship = "WATCHER"
	RelationshipApprover  TicketRelationship = "APPROVER"
	RelationshipResolver  TicketRelationship = "RESOLVER"
)

func (r TicketRelationship) Valid() bool {
	switch r {
	case RelationshipRequester, RelationshipAssignee, RelationshipWatcher, RelationshipApprover, RelationshipResolver:
		return true
	}
	return false
}

// UserTicket links a profile to a ticket in an external ticketing system.
// A profile may hold several relationships to the same ticket.
type UserTicket struct {
	UserTicketID  string             `db:"user_ticket_id" json:"userTicketId"`
	UserProfileID string             `db:"user_profile_id" json:"userProfileId"`
	TicketID      string             `db:"ticket_id" json:"ticketId"`
	TicketSystem  *string            `db:"ticket_system" json:"ticketSystem,omitempty"`
	Relationship  TicketRelationship `db:"relationship" json:"relationship"`
	TicketTitle   *string            `db:"ticket_title" json:"ticketTitle,omitempty"`
	TicketStatus  *string            `db:"ticket_status" json:"ticketStatus,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updatedAt"`
}

type CreateUserTicket struct {
	UserProfileID string             `json:"userProfileId" validate:"required,uuid"`
	TicketID      string             `json:"ticketId" validate:"required,max=128"`
	TicketSystem  *string            `json:"ticketSystem" validate:"omitempty,max=64"`
	Relationship  TicketRelationship `json:"relationship" validate:"required,enum"`
	TicketTitle   *string            `json:"ticketTitle" validate:"omitempty,max=512"`
	TicketStatus  *string            `json:"ticketStatus" validate:"omitempty,max=64"`
}

type UpdateUserTicket struct {
	TicketSystem *string `json:"ticketSystem" validate:"omitempty,max=64"`
	TicketTitle  *string `json:"ticketTitle" validate:"omitempty,max=512"`
	TicketStatus *string `json:"ticketStatus" validate:"omitempty,max=64"`
}

func (u UpdateUserTicket) Empty() bool {
	return u == (UpdateUserTicket{})
}

// TicketKey is the compound unique key of a UserTicket.
type TicketKey struct {
	UserProfileID string             `json:"userProfileId" validate:"required,uuid"`
	TicketID      string             `json:"ticketId" validate:"required"`
	Relationship  TicketRelationship `json:"relationship" validate:"required,enum"`
}
