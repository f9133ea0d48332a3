// Package securityeventsrepo records security findings against profiles and
// moves them through their triage workflow.
package securityeventsrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/sdk/logger"
)

type Storer interface {
	Create(ctx context.Context, input CreateSecurityEvent) (SecurityEvent, error)
	CreateMany(ctx context.Context, inputs []CreateSecurityEvent) ([]SecurityEvent, error)
	Get(ctx context.Context, id string) (SecurityEvent, error)
	List(ctx context.Context, filter SecurityEventFilter, orderBy fop.By, page fop.PageStringCursor) ([]SecurityEvent, error)
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]SecurityEvent, error)
	Count(ctx context.Context, filter SecurityEventFilter) (int64, error)
	Update(ctx context.Context, id string, input UpdateSecurityEvent) (SecurityEvent, error)
	Assign(ctx context.Context, id string, assignee *string) (SecurityEvent, error)
	Transition(ctx context.Context, id string, from EventStatus, change StatusChange, at time.Time) (SecurityEvent, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter SecurityEventFilter) (int64, error)
	GroupBy(ctx context.Context, field GroupField, filter SecurityEventFilter) ([]repositories.GroupCount, error)
}

type Repository struct {
	log    *logger.Logger
	storer Storer
	now    func() time.Time
}

func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
		now:    time.Now,
	}
}

func (r *Repository) Create(ctx context.Context, input CreateSecurityEvent) (SecurityEvent, error) {
	if err := repositories.Validate(input); err != nil {
		return SecurityEvent{}, fmt.Errorf("create security event: %w", err)
	}

	record, err := r.storer.Create(ctx, input)
	if err != nil {
		return SecurityEvent{}, fmt.Errorf("create security event: %w", err)
	}

	r.log.InfoContext(ctx, "raised security event", "security_event_id", record.SecurityEventID, "severity", record.Severity, "user_profile_id", record.UserProfileID)
	return record, nil
}

func (r *Repository) CreateMany(ctx context.Context, inputs []CreateSecurityEvent) ([]SecurityEvent, error) {
	if len(inputs) == 0 {
		return []SecurityEvent{}, nil
	}
	for i, input := range inputs {
		if err := repositories.Validate(input); err != nil {
			return nil, fmt.Errorf("create security events: item %d: %w", i, err)
		}
	}

	records, err := r.storer.CreateMany(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("create security events: %w", err)
	}

	r.log.InfoContext(ctx, "raised security events", "count", len(records))
	return records, nil
}

func (r *Repository) Get(ctx context.Context, id string) (SecurityEvent, error) {
	if err := repositories.CheckID("security_event_id", id); err != nil {
		return SecurityEvent{}, err
	}

	record, err := r.storer.Get(ctx, id)
	if err != nil {
		return SecurityEvent{}, fmt.Errorf("get security event: %w", err)
	}
	return record, nil
}

func (r *Repository) List(ctx context.Context, filter SecurityEventFilter, orderBy fop.By, page fop.PageStringCursor) ([]SecurityEvent, fop.PageInfoStringCursor, error) {
	records, err := r.storer.List(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fop.PageInfoStringCursor{}, fmt.Errorf("list security events: %w", err)
	}
	return fop.NewPageInfo(records, page, cursorFor(orderBy))
}

func (r *Repository) ListByUserProfileID(ctx context.Context, userProfileID string) ([]SecurityEvent, error) {
	if err := repositories.CheckID("user_profile_id", userProfileID); err != nil {
		return nil, err
	}

	records, err := r.storer.ListByUserProfileID(ctx, userProfileID)
	if err != nil {
		return nil, fmt.Errorf("list security events by user profile: %w", err)
	}
	return records, nil
}

func (r *Repository) Count(ctx context.Context, filter SecurityEventFilter) (int64, error) {
	n, err := r.storer.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count security events: %w", err)
	}
	return n, nil
}

func (r *Repository) Update(ctx context.Context, id string, input UpdateSecurityEvent) (SecurityEvent, error) {
	if err := repositories.CheckID("security_event_id", id); err != nil {
		return SecurityEvent{}, err
	}
	if input.Empty() {
		return SecurityEvent{}, fmt.Errorf("update security event: %w", repositories.ErrNoChanges)
	}
	if err := repositories.Validate(input); err != nil {
		return SecurityEvent{}, fmt.Errorf("update security event: %w", err)
	}

	record, err := r.storer.Update(ctx, id, input)
	if err != nil {
		return SecurityEvent{}, fmt.Errorf("update security event: %w", err)
	}

	r.log.InfoContext(ctx, "updated security event", "security_event_id", id)
	return record, nil
}

// Assign hands the event to assignee, or unassigns it when assignee is nil.
// Events in a terminal status cannot be reassigned.
func (r *Repository) Assign(ctx context.Context, id string, assignee *string) (SecurityEvent, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return SecurityEvent{}, fmt.Errorf("assign security event: %w", err)
	}
	if current.Status.Terminal() {
		return SecurityEvent{}, fmt.Errorf("assign security event: %w: event is %s", repositories.ErrInvalidTransition, current.Status)
	}

	record, err := r.storer.Assign(ctx, id, assignee)
	if err != nil {
		return SecurityEvent{}, fmt.Errorf("assign security event: %w", err)
	}

	r.log.InfoContext(ctx, "assigned security event", "security_event_id", id, "assigned_to", record.AssignedTo)
	return record, nil
}

// Transition moves the event to change.Status if the workflow allows it
// from the current status. The write is conditioned on the status read, so
// a concurrent transition surfaces as ErrVersionConflict.
func (r *Repository) Transition(ctx context.Context, id string, change StatusChange) (SecurityEvent, error) {
	if err := repositories.Validate(change); err != nil {
		return SecurityEvent{}, fmt.Errorf("transition security event: %w", err)
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return SecurityEvent{}, fmt.Errorf("transition security event: %w", err)
	}
	if err := CheckTransition(current.Status, change.Status); err != nil {
		return SecurityEvent{}, fmt.Errorf("transition security event: %w", err)
	}

	record, err := r.storer.Transition(ctx, id, current.Status, change, r.now().UTC())
	if err != nil {
		return SecurityEvent{}, fmt.Errorf("transition security event: %w", err)
	}

	r.log.InfoContext(ctx, "transitioned security event", "security_event_id", id, "from", current.Status, "to", record.Status)
	return record, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := repositories.CheckID("security_event_id", id); err != nil {
		return err
	}

	if err := r.storer.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete security event: %w", err)
	}

	r.log.InfoContext(ctx, "deleted security event", "security_event_id", id)
	return nil
}

func (r *Repository) DeleteMany(ctx context.Context, filter SecurityEventFilter) (int64, error) {
	if filter.Empty() {
		return 0, fmt.Errorf("delete security events: %w", repositories.ErrEmptyFilter)
	}

	n, err := r.storer.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete security events: %w", err)
	}

	r.log.InfoContext(ctx, "deleted security events", "count", n)
	return n, nil
}

func (r *Repository) GroupBy(ctx context.Context, field GroupField, filter SecurityEventFilter) ([]repositories.GroupCount, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("group security events: %w: cannot group by %q", repositories.ErrValidation, field)
	}

	groups, err := r.storer.GroupBy(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("group security events: %w", err)
	}
	return groups, nil
}
