// Package linkedaccountsrepo manages the external platform identities linked
// to a profile.
package linkedaccountsrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/sdk/logger"
)

type Storer interface {
	Create(ctx context.Context, input CreateLinkedAccount) (LinkedAccount, error)
	CreateMany(ctx context.Context, inputs []CreateLinkedAccount) ([]LinkedAccount, error)
	Upsert(ctx context.Context, input CreateLinkedAccount) (LinkedAccount, error)
	Get(ctx context.Context, id string) (LinkedAccount, error)
	GetByPlatformIdentity(ctx context.Context, platform, platformUserID string) (LinkedAccount, error)
	List(ctx context.Context, filter LinkedAccountFilter, orderBy fop.By, page fop.PageStringCursor) ([]LinkedAccount, error)
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]LinkedAccount, error)
	Count(ctx context.Context, filter LinkedAccountFilter) (int64, error)
	Update(ctx context.Context, id string, input UpdateLinkedAccount) (LinkedAccount, error)
	MarkSynced(ctx context.Context, id string, at time.Time) (LinkedAccount, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter LinkedAccountFilter) (int64, error)
	GroupBy(ctx context.Context, field GroupField, filter LinkedAccountFilter) ([]repositories.GroupCount, error)
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

func (r *Repository) Create(ctx context.Context, input CreateLinkedAccount) (LinkedAccount, error) {
	if err := repositories.Validate(input); err != nil {
		return LinkedAccount{}, fmt.Errorf("create linked account: %w", err)
	}

	record, err := r.storer.Create(ctx, input)
	if err != nil {
		return LinkedAccount{}, fmt.Errorf("create linked account: %w", err)
	}

	r.log.InfoContext(ctx, "created linked account", "linked_account_id", record.LinkedAccountID, "platform", record.Platform)
	return record, nil
}

func (r *Repository) CreateMany(ctx context.Context, inputs []CreateLinkedAccount) ([]LinkedAccount, error) {
	if len(inputs) == 0 {
		return []LinkedAccount{}, nil
	}
	for i, input := range inputs {
		if err := repositories.Validate(input); err != nil {
			return nil, fmt.Errorf("create linked accounts: item %d: %w", i, err)
		}
	}

	records, err := r.storer.CreateMany(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("create linked accounts: %w", err)
	}

	r.log.InfoContext(ctx, "created linked accounts", "count", len(records))
	return records, nil
}

// Upsert links the platform identity, or refreshes it when the
// (platform, platformUserId) pair is already known.
func (r *Repository) Upsert(ctx context.Context, input CreateLinkedAccount) (LinkedAccount, error) {
	if err := repositories.Validate(input); err != nil {
		return LinkedAccount{}, fmt.Errorf("upsert linked account: %w", err)
	}

	record, err := r.storer.Upsert(ctx, input)
	if err != nil {
		return LinkedAccount{}, fmt.Errorf("upsert linked account: %w", err)
	}

	r.log.InfoContext(ctx, "upserted linked account", "linked_account_id", record.LinkedAccountID, "platform", record.Platform)
	return record, nil
}

func (r *Repository) Get(ctx context.Context, id string) (LinkedAccount, error) {
	if err := repositories.CheckID("linked_account_id", id); err != nil {
		return LinkedAccount{}, err
	}

	record, err := r.storer.Get(ctx, id)
	if err != nil {
		return LinkedAccount{}, fmt.Errorf("get linked account: %w", err)
	}
	return record, nil
}

func (r *Repository) GetByPlatformIdentity(ctx context.Context, platform, platformUserID string) (LinkedAccount, error) {
	if platform == "" || platformUserID == "" {
		return LinkedAccount{}, fmt.Errorf("get linked account: %w: platform and platform user id are required", repositories.ErrValidation)
	}

	record, err := r.storer.GetByPlatformIdentity(ctx, platform, platformUserID)
	if err != nil {
		return LinkedAccount{}, fmt.Errorf("get linked account by platform identity: %w", err)
	}
	return record, nil
}

func (r *Repository) List(ctx context.Context, filter LinkedAccountFilter, orderBy fop.By, page fop.PageStringCursor) ([]LinkedAccount, fop.PageInfoStringCursor, error) {
	records, err := r.storer.List(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fop.PageInfoStringCursor{}, fmt.Errorf("list linked accounts: %w", err)
	}
	return fop.NewPageInfo(records, page, cursorFor(orderBy))
}

func (r *Repository) ListByUserProfileID(ctx context.Context, userProfileID string) ([]LinkedAccount, error) {
	if err := repositories.CheckID("user_profile_id", userProfileID); err != nil {
		return nil, err
	}

	records, err := r.storer.ListByUserProfileID(ctx, userProfileID)
	if err != nil {
		return nil, fmt.Errorf("list linked accounts by user profile: %w", err)
	}
	return records, nil
}

func (r *Repository) Count(ctx context.Context, filter LinkedAccountFilter) (int64, error) {
	n, err := r.storer.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count linked accounts: %w", err)
	}
	return n, nil
}

func (r *Repository) Update(ctx context.Context, id string, input UpdateLinkedAccount) (LinkedAccount, error) {
	if err := repositories.CheckID("linked_account_id", id); err != nil {
		return LinkedAccount{}, err
	}
	if input.Empty() {
		return LinkedAccount{}, fmt.Errorf("update linked account: %w", repositories.ErrNoChanges)
	}
	if err := repositories.Validate(input); err != nil {
		return LinkedAccount{}, fmt.Errorf("update linked account: %w", err)
	}

	record, err := r.storer.Update(ctx, id, input)
	if err != nil {
		return LinkedAccount{}, fmt.Errorf("update linked account: %w", err)
	}

	r.log.InfoContext(ctx, "updated linked account", "linked_account_id", id)
	return record, nil
}

// MarkSynced records a successful sync with the platform at the given time.
func (r *Repository) MarkSynced(ctx context.Context, id string, at time.Time) (LinkedAccount, error) {
	if err := repositories.CheckID("linked_account_id", id); err != nil {
		return LinkedAccount{}, err
	}
	if at.IsZero() {
		at = time.Now()
	}

	record, err := r.storer.MarkSynced(ctx, id, at.UTC())
	if err != nil {
		return LinkedAccount{}, fmt.Errorf("mark linked account synced: %w", err)
	}
	return record, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := repositories.CheckID("linked_account_id", id); err != nil {
		return err
	}

	if err := r.storer.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete linked account: %w", err)
	}

	r.log.InfoContext(ctx, "deleted linked account", "linked_account_id", id)
	return nil
}

func (r *Repository) DeleteMany(ctx context.Context, filter LinkedAccountFilter) (int64, error) {
	if filter.Empty() {
		return 0, fmt.Errorf("delete linked accounts: %w", repositories.ErrEmptyFilter)
	}

	n, err := r.storer.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete linked accounts: %w", err)
	}

	r.log.InfoContext(ctx, "deleted linked accounts", "count", n)
	return n, nil
}

func (r *Repository) GroupBy(ctx context.Context, field GroupField, filter LinkedAccountFilter) ([]repositories.GroupCount, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("group linked accounts: %w: cannot group by %q", repositories.ErrValidation, field)
	}

	groups, err := r.storer.GroupBy(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("group linked accounts: %w", err)
	}
	return groups, nil
}
