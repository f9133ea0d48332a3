// Package userticketsrepo relates profiles to tickets in external ticketing
// systems.
package userticketsrepo

import (
	"context"
	"fmt"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/sdk/logger"
)

type Storer interface {
	Create(ctx context.Context, input CreateUserTicket) (UserTicket, error)
	CreateMany(ctx context.Context, inputs []CreateUserTicket) ([]UserTicket, error)
	Upsert(ctx context.Context, input CreateUserTicket) (UserTicket, error)
	Get(ctx context.Context, id string) (UserTicket, error)
	GetByKey(ctx context.Context, key TicketKey) (UserTicket, error)
	List(ctx context.Context, filter UserTicketFilter, orderBy fop.By, page fop.PageStringCursor) ([]UserTicket, error)
	ListByTicketID(ctx context.Context, ticketID string) ([]UserTicket, error)
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]UserTicket, error)
	Count(ctx context.Context, filter UserTicketFilter) (int64, error)
	Update(ctx context.Context, id string, input UpdateUserTicket) (UserTicket, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter UserTicketFilter) (int64, error)
	GroupBy(ctx context.Context, field GroupField, filter UserTicketFilter) ([]repositories.GroupCount, error)
}

type Repository struct {
	log    *logger.Logger
	storer Storer
}

func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

func (r *Repository) Create(ctx context.Context, input CreateUserTicket) (UserTicket, error) {
	if err := repositories.Validate(input); err != nil {
		return UserTicket{}, fmt.Errorf("create user ticket: %w", err)
	}

	record, err := r.storer.Create(ctx, input)
	if err != nil {
		return UserTicket{}, fmt.Errorf("create user ticket: %w", err)
	}

	r.log.InfoContext(ctx, "created user ticket", "user_ticket_id", record.UserTicketID, "ticket_id", record.TicketID, "relationship", record.Relationship)
	return record, nil
}

func (r *Repository) CreateMany(ctx context.Context, inputs []CreateUserTicket) ([]UserTicket, error) {
	if len(inputs) == 0 {
		return []UserTicket{}, nil
	}
	for i, input := range inputs {
		if err := repositories.Validate(input); err != nil {
			return nil, fmt.Errorf("create user tickets: item %d: %w", i, err)
		}
	}

	records, err := r.storer.CreateMany(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("create user tickets: %w", err)
	}

	r.log.InfoContext(ctx, "created user tickets", "count", len(records))
	return records, nil
}

// Upsert creates the relationship or refreshes the ticket details when the
// (user, ticket, relationship) triple already exists.
func (r *Repository) Upsert(ctx context.Context, input CreateUserTicket) (UserTicket, error) {
	if err := repositories.Validate(input); err != nil {
		return UserTicket{}, fmt.Errorf("upsert user ticket: %w", err)
	}

	record, err := r.storer.Upsert(ctx, input)
	if err != nil {
		return UserTicket{}, fmt.Errorf("upsert user ticket: %w", err)
	}
	return record, nil
}

func (r *Repository) Get(ctx context.Context, id string) (UserTicket, error) {
	if err := repositories.CheckID("user_ticket_id", id); err != nil {
		return UserTicket{}, err
	}

	record, err := r.storer.Get(ctx, id)
	if err != nil {
		return UserTicket{}, fmt.Errorf("get user ticket: %w", err)
	}
	return record, nil
}

func (r *Repository) GetByKey(ctx context.Context, key TicketKey) (UserTicket, error) {
	if err := repositories.Validate(key); err != nil {
		return UserTicket{}, fmt.Errorf("get user ticket by key: %w", err)
	}

	record, err := r.storer.GetByKey(ctx, key)
	if err != nil {
		return UserTicket{}, fmt.Errorf("get user ticket by key: %w", err)
	}
	return record, nil
}

func (r *Repository) List(ctx context.Context, filter UserTicketFilter, orderBy fop.By, page fop.PageStringCursor) ([]UserTicket, fop.PageInfoStringCursor, error) {
	records, err := r.storer.List(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fop.PageInfoStringCursor{}, fmt.Errorf("list user tickets: %w", err)
	}
	return fop.NewPageInfo(records, page, cursorFor(orderBy))
}

// ListByTicketID returns every profile relationship held on a ticket.
func (r *Repository) ListByTicketID(ctx context.Context, ticketID string) ([]UserTicket, error) {
	if ticketID == "" {
		return nil, fmt.Errorf("list user tickets by ticket: %w: ticket id is required", repositories.ErrValidation)
	}

	records, err := r.storer.ListByTicketID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list user tickets by ticket: %w", err)
	}
	return records, nil
}

func (r *Repository) ListByUserProfileID(ctx context.Context, userProfileID string) ([]UserTicket, error) {
	if err := repositories.CheckID("user_profile_id", userProfileID); err != nil {
		return nil, err
	}

	records, err := r.storer.ListByUserProfileID(ctx, userProfileID)
	if err != nil {
		return nil, fmt.Errorf("list user tickets by user profile: %w", err)
	}
	return records, nil
}

func (r *Repository) Count(ctx context.Context, filter UserTicketFilter) (int64, error) {
	n, err := r.storer.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count user tickets: %w", err)
	}
	return n, nil
}

func (r *Repository) Update(ctx context.Context, id string, input UpdateUserTicket) (UserTicket, error) {
	if err := repositories.CheckID("user_ticket_id", id); err != nil {
		return UserTicket{}, err
	}
	if input.Empty() {
		return UserTicket{}, fmt.Errorf("update user ticket: %w", repositories.ErrNoChanges)
	}
	if err := repositories.Validate(input); err != nil {
		return UserTicket{}, fmt.Errorf("update user ticket: %w", err)
	}

	record, err := r.storer.Update(ctx, id, input)
	if err != nil {
		return UserTicket{}, fmt.Errorf("update user ticket: %w", err)
	}

	r.log.InfoContext(ctx, "updated user ticket", "user_ticket_id", id)
	return record, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := repositories.CheckID("user_ticket_id", id); err != nil {
		return err
	}

	if err := r.storer.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user ticket: %w", err)
	}

	r.log.InfoContext(ctx, "deleted user ticket", "user_ticket_id", id)
	return nil
}

func (r *Repository) DeleteMany(ctx context.Context, filter UserTicketFilter) (int64, error) {
	if filter.Empty() {
		return 0, fmt.Errorf("delete user tickets: %w", repositories.ErrEmptyFilter)
	}

	n, err := r.storer.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete user tickets: %w", err)
	}

	r.log.InfoContext(ctx, "deleted user tickets", "count", n)
	return n, nil
}

func (r *Repository) GroupBy(ctx context.Context, field GroupField, filter UserTicketFilter) ([]repositories.GroupCount, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("group user tickets: %w: cannot group by %q", repositories.ErrValidation, field)
	}

	groups, err := r.storer.GroupBy(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("group user tickets: %w", err)
	}
	return groups, nil
}
