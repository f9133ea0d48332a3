// Package userprofilesrepo manages UserProfile records: CRUD, the manager
// hierarchy and optimistic concurrency on dataVersion.
package userprofilesrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/sdk/logger"
)

// Storer defines the data storage interface for UserProfile.
type Storer interface {
	Create(ctx context.Context, input CreateUserProfile) (UserProfile, error)
	CreateMany(ctx context.Context, inputs []CreateUserProfile) ([]UserProfile, error)
	Upsert(ctx context.Context, input CreateUserProfile) (UserProfile, error)
	Get(ctx context.Context, id string) (UserProfile, error)
	GetByHelixUID(ctx context.Context, helixUID string) (UserProfile, error)
	GetByEmailCanonical(ctx context.Context, emailCanonical string) (UserProfile, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (UserProfile, error)
	List(ctx context.Context, filter UserProfileFilter, orderBy fop.By, page fop.PageStringCursor) ([]UserProfile, error)
	Count(ctx context.Context, filter UserProfileFilter) (int64, error)
	Update(ctx context.Context, id string, expectedVersion int, input UpdateUserProfile) (UserProfile, error)
	SetManager(ctx context.Context, id string, change ManagerChange) (UserProfile, error)
	ManagementChain(ctx context.Context, id string, maxDepth int) ([]UserProfile, error)
	ListDirectReports(ctx context.Context, managerID string) ([]UserProfile, error)
	RecordLogin(ctx context.Context, id string, at time.Time) (UserProfile, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter UserProfileFilter) (int64, error)
	GroupBy(ctx context.Context, field GroupField, filter UserProfileFilter) ([]repositories.GroupCount, error)
	AggregateSecurityScore(ctx context.Context, filter UserProfileFilter) (repositories.Aggregate, error)
}

// Options is the env mapped repository configuration.
type Options struct {
	MaxAttempts int `env:"PROFILE_UPDATE_MAX_ATTEMPTS" default:"3"`
}

type Option func(*Repository)

// WithMaxAttempts bounds the read-modify-write retries of Modify.
func WithMaxAttempts(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// Repository provides access to user profile storage.
type Repository struct {
	log         *logger.Logger
	storer      Storer
	maxAttempts int
}

func NewRepository(log *logger.Logger, storer Storer, opts ...Option) *Repository {
	r := &Repository{
		log:         log,
		storer:      storer,
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Create(ctx context.Context, input CreateUserProfile) (UserProfile, error) {
	if err := r.prepareCreate(ctx, &input); err != nil {
		return UserProfile{}, fmt.Errorf("create user profile: %w", err)
	}

	record, err := r.storer.Create(ctx, input)
	if err != nil {
		return UserProfile{}, fmt.Errorf("create user profile: %w", err)
	}

	r.log.InfoContext(ctx, "created user profile", "user_profile_id", record.UserProfileID, "helix_uid", record.HelixUID)
	return record, nil
}

// CreateMany inserts all profiles in one transaction; any failure inserts
// none of them.
func (r *Repository) CreateMany(ctx context.Context, inputs []CreateUserProfile) ([]UserProfile, error) {
	if len(inputs) == 0 {
		return []UserProfile{}, nil
	}
	for i := range inputs {
		if err := r.prepareCreate(ctx, &inputs[i]); err != nil {
			return nil, fmt.Errorf("create user profiles: item %d: %w", i, err)
		}
	}

	records, err := r.storer.CreateMany(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("create user profiles: %w", err)
	}

	r.log.InfoContext(ctx, "created user profiles", "count", len(records))
	return records, nil
}

// Upsert creates the profile or, when the helixUid exists, overwrites its
// fields and bumps dataVersion. The manager of an existing profile is kept.
func (r *Repository) Upsert(ctx context.Context, input CreateUserProfile) (UserProfile, error) {
	if err := r.prepareCreate(ctx, &input); err != nil {
		return UserProfile{}, fmt.Errorf("upsert user profile: %w", err)
	}

	existing, err := r.storer.GetByHelixUID(ctx, input.HelixUID)
	switch {
	case err == nil:
		if err := r.checkTenantMove(ctx, existing, input.TenantID); err != nil {
			return UserProfile{}, fmt.Errorf("upsert user profile: %w", err)
		}
	case !errors.Is(err, repositories.ErrNotFound):
		return UserProfile{}, fmt.Errorf("upsert user profile: %w", err)
	}

	record, err := r.storer.Upsert(ctx, input)
	if err != nil {
		return UserProfile{}, fmt.Errorf("upsert user profile: %w", err)
	}

	r.log.InfoContext(ctx, "upserted user profile", "user_profile_id", record.UserProfileID, "data_version", record.DataVersion)
	return record, nil
}

func (r *Repository) prepareCreate(ctx context.Context, input *CreateUserProfile) error {
	if err := repositories.Validate(input); err != nil {
		return err
	}

	canonical, err := CanonicalEmail(input.Email)
	if err != nil {
		return fmt.Errorf("%w: %w", repositories.ErrValidation, err)
	}
	input.EmailCanonical = canonical

	if input.ManagerID != nil {
		manager, err := r.storer.Get(ctx, *input.ManagerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: manager %s", repositories.ErrForeignKeyViolation, *input.ManagerID)
			}
			return fmt.Errorf("get manager: %w", err)
		}
		if !SameTenant(manager.TenantID, input.TenantID) {
			return fmt.Errorf("%w: manager %s", repositories.ErrTenantMismatch, manager.UserProfileID)
		}
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (UserProfile, error) {
	if err := repositories.CheckID("user_profile_id", id); err != nil {
		return UserProfile{}, err
	}

	record, err := r.storer.Get(ctx, id)
	if err != nil {
		return UserProfile{}, fmt.Errorf("get user profile: %w", err)
	}
	return record, nil
}

func (r *Repository) GetByHelixUID(ctx context.Context, helixUID string) (UserProfile, error) {
	record, err := r.storer.GetByHelixUID(ctx, helixUID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("get user profile by helix uid: %w", err)
	}
	return record, nil
}

// GetByEmail looks a profile up by the canonical form of email, so
// "Jane.Doe+hr@GoogleMail.com" finds janedoe@gmail.com.
func (r *Repository) GetByEmail(ctx context.Context, email string) (UserProfile, error) {
	canonical, err := CanonicalEmail(email)
	if err != nil {
		return UserProfile{}, fmt.Errorf("get user profile by email: %w: %w", repositories.ErrValidation, err)
	}

	record, err := r.storer.GetByEmailCanonical(ctx, canonical)
	if err != nil {
		return UserProfile{}, fmt.Errorf("get user profile by email: %w", err)
	}
	return record, nil
}

func (r *Repository) GetByEmployeeID(ctx context.Context, employeeID string) (UserProfile, error) {
	record, err := r.storer.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("get user profile by employee id: %w", err)
	}
	return record, nil
}

func (r *Repository) List(ctx context.Context, filter UserProfileFilter, orderBy fop.By, page fop.PageStringCursor) ([]UserProfile, fop.PageInfoStringCursor, error) {
	records, err := r.storer.List(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fop.PageInfoStringCursor{}, fmt.Errorf("list user profiles: %w", err)
	}

	records, info, err := fop.NewPageInfo(records, page, cursorFor(orderBy))
	if err != nil {
		return nil, fop.PageInfoStringCursor{}, fmt.Errorf("list user profiles: %w", err)
	}
	return records, info, nil
}

func (r *Repository) Count(ctx context.Context, filter UserProfileFilter) (int64, error) {
	n, err := r.storer.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count user profiles: %w", err)
	}
	return n, nil
}

// Update writes input only if the stored dataVersion still equals
// expectedVersion. The stored version is incremented on success;
// ErrVersionConflict is returned when another writer got there first.
func (r *Repository) Update(ctx context.Context, id string, expectedVersion int, input UpdateUserProfile) (UserProfile, error) {
	if err := repositories.CheckID("user_profile_id", id); err != nil {
		return UserProfile{}, err
	}
	if input.Empty() {
		return UserProfile{}, fmt.Errorf("update user profile: %w", repositories.ErrNoChanges)
	}
	if err := repositories.Validate(input); err != nil {
		return UserProfile{}, fmt.Errorf("update user profile: %w", err)
	}

	if input.Email != nil {
		canonical, err := CanonicalEmail(*input.Email)
		if err != nil {
			return UserProfile{}, fmt.Errorf("update user profile: %w: %w", repositories.ErrValidation, err)
		}
		input.EmailCanonical = &canonical
	}

	if input.TenantID != nil {
		current, err := r.storer.Get(ctx, id)
		if err != nil {
			return UserProfile{}, fmt.Errorf("update user profile: %w", err)
		}
		if err := r.checkTenantMove(ctx, current, input.TenantID); err != nil {
			return UserProfile{}, fmt.Errorf("update user profile: %w", err)
		}
	}

	record, err := r.storer.Update(ctx, id, expectedVersion, input)
	if err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			r.log.WarnContext(ctx, "user profile version conflict", "user_profile_id", id, "expected_version", expectedVersion)
		}
		return UserProfile{}, fmt.Errorf("update user profile: %w", err)
	}

	r.log.InfoContext(ctx, "updated user profile", "user_profile_id", id, "data_version", record.DataVersion)
	return record, nil
}

// checkTenantMove fails fast on a tenant change that would strand a manager
// edge. The store repeats the check under the tenant locks before writing.
func (r *Repository) checkTenantMove(ctx context.Context, current UserProfile, tenant *string) error {
	if SameTenant(current.TenantID, tenant) {
		return nil
	}

	var manager *UserProfile
	if current.ManagerID != nil {
		m, err := r.storer.Get(ctx, *current.ManagerID)
		switch {
		case err == nil:
			manager = &m
		case !errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("get manager: %w", err)
		}
	}

	reports, err := r.storer.ListDirectReports(ctx, current.UserProfileID)
	if err != nil {
		return fmt.Errorf("list direct reports: %w", err)
	}
	return CheckTenantMove(tenant, manager, reports)
}

// MutateFunc derives an update from the current state of a profile.
type MutateFunc func(current UserProfile) (UpdateUserProfile, error)

// Modify runs the optimistic read-modify-write loop: read the profile, let
// fn compute the change, write it conditioned on the version read, and on a
// version conflict start over with a fresh read.
func (r *Repository) Modify(ctx context.Context, id string, fn MutateFunc) (UserProfile, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return UserProfile{}, err
		}

		current, err := r.Get(ctx, id)
		if err != nil {
			return UserProfile{}, fmt.Errorf("modify user profile: %w", err)
		}

		change, err := fn(current)
		if err != nil {
			return UserProfile{}, fmt.Errorf("modify user profile: %w", err)
		}
		if change.Empty() {
			return current, nil
		}

		updated, err := r.Update(ctx, id, current.DataVersion, change)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return UserProfile{}, fmt.Errorf("modify user profile: %w", err)
		}

		lastErr = err
		r.log.DebugContext(ctx, "retrying user profile modify", "user_profile_id", id, "attempt", attempt)
	}

	return UserProfile{}, fmt.Errorf("modify user profile after %d attempts: %w", r.maxAttempts, lastErr)
}

// SetManager moves the profile under change.ManagerID, refusing moves that
// would make the profile its own ancestor or cross tenants.
func (r *Repository) SetManager(ctx context.Context, id string, change ManagerChange) (UserProfile, error) {
	if err := repositories.CheckID("user_profile_id", id); err != nil {
		return UserProfile{}, err
	}
	if err := repositories.Validate(change); err != nil {
		return UserProfile{}, fmt.Errorf("set manager: %w", err)
	}
	if change.ManagerID != nil {
		if err := CheckManagerChain(id, *change.ManagerID, nil); err != nil {
			return UserProfile{}, fmt.Errorf("set manager: %w", err)
		}
	}

	record, err := r.storer.SetManager(ctx, id, change)
	if err != nil {
		return UserProfile{}, fmt.Errorf("set manager: %w", err)
	}

	r.log.InfoContext(ctx, "set user profile manager", "user_profile_id", id, "manager_id", record.ManagerID, "data_version", record.DataVersion)
	return record, nil
}

// ManagementChain returns the managers above the profile, nearest first.
func (r *Repository) ManagementChain(ctx context.Context, id string) ([]UserProfile, error) {
	if err := repositories.CheckID("user_profile_id", id); err != nil {
		return nil, err
	}

	chain, err := r.storer.ManagementChain(ctx, id, MaxHierarchyDepth)
	if err != nil {
		return nil, fmt.Errorf("management chain: %w", err)
	}
	return chain, nil
}

func (r *Repository) ListDirectReports(ctx context.Context, managerID string) ([]UserProfile, error) {
	if err := repositories.CheckID("manager_id", managerID); err != nil {
		return nil, err
	}

	reports, err := r.storer.ListDirectReports(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("list direct reports: %w", err)
	}
	return reports, nil
}

// RecordLogin stamps lastLoginAt. It bumps dataVersion like any other write
// but does not require the caller's version.
func (r *Repository) RecordLogin(ctx context.Context, id string, at time.Time) (UserProfile, error) {
	if err := repositories.CheckID("user_profile_id", id); err != nil {
		return UserProfile{}, err
	}
	if at.IsZero() {
		at = time.Now()
	}

	record, err := r.storer.RecordLogin(ctx, id, at.UTC())
	if err != nil {
		return UserProfile{}, fmt.Errorf("record login: %w", err)
	}
	return record, nil
}

// Delete removes the profile and, through cascading foreign keys, every
// child record it owns. Direct reports lose their manager.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := repositories.CheckID("user_profile_id", id); err != nil {
		return err
	}

	if err := r.storer.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user profile: %w", err)
	}

	r.log.InfoContext(ctx, "deleted user profile", "user_profile_id", id)
	return nil
}

func (r *Repository) DeleteMany(ctx context.Context, filter UserProfileFilter) (int64, error) {
	if filter.Empty() {
		return 0, fmt.Errorf("delete user profiles: %w", repositories.ErrEmptyFilter)
	}

	n, err := r.storer.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete user profiles: %w", err)
	}

	r.log.InfoContext(ctx, "deleted user profiles", "count", n)
	return n, nil
}

func (r *Repository) GroupBy(ctx context.Context, field GroupField, filter UserProfileFilter) ([]repositories.GroupCount, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("group user profiles: %w: cannot group by %q", repositories.ErrValidation, field)
	}

	groups, err := r.storer.GroupBy(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("group user profiles: %w", err)
	}
	return groups, nil
}

func (r *Repository) AggregateSecurityScore(ctx context.Context, filter UserProfileFilter) (repositories.Aggregate, error) {
	agg, err := r.storer.AggregateSecurityScore(ctx, filter)
	if err != nil {
		return repositories.Aggregate{}, fmt.Errorf("aggregate security score: %w", err)
	}
	return agg, nil
}
