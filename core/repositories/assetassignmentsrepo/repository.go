// Package assetassignmentsrepo tracks which assets a profile holds and how
// each assignment ended.
package assetassignmentsrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/sdk/logger"
)

type Storer interface {
	Create(ctx context.Context, input CreateAssetAssignment) (AssetAssignment, error)
	CreateMany(ctx context.Context, inputs []CreateAssetAssignment) ([]AssetAssignment, error)
	Get(ctx context.Context, id string) (AssetAssignment, error)
	List(ctx context.Context, filter AssetAssignmentFilter, orderBy fop.By, page fop.PageStringCursor) ([]AssetAssignment, error)
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]AssetAssignment, error)
	Count(ctx context.Context, filter AssetAssignmentFilter) (int64, error)
	Update(ctx context.Context, id string, input UpdateAssetAssignment) (AssetAssignment, error)
	Unassign(ctx context.Context, id string, input Unassignment) (AssetAssignment, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter AssetAssignmentFilter) (int64, error)
	GroupBy(ctx context.Context, field GroupField, filter AssetAssignmentFilter) ([]repositories.GroupCount, error)
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

func (r *Repository) Create(ctx context.Context, input CreateAssetAssignment) (AssetAssignment, error) {
	if err := repositories.Validate(input); err != nil {
		return AssetAssignment{}, fmt.Errorf("create asset assignment: %w", err)
	}

	record, err := r.storer.Create(ctx, input)
	if err != nil {
		return AssetAssignment{}, fmt.Errorf("create asset assignment: %w", err)
	}

	r.log.InfoContext(ctx, "assigned asset", "asset_assignment_id", record.AssetAssignmentID, "asset_id", record.AssetID, "user_profile_id", record.UserProfileID)
	return record, nil
}

func (r *Repository) CreateMany(ctx context.Context, inputs []CreateAssetAssignment) ([]AssetAssignment, error) {
	if len(inputs) == 0 {
		return []AssetAssignment{}, nil
	}
	for i, input := range inputs {
		if err := repositories.Validate(input); err != nil {
			return nil, fmt.Errorf("create asset assignments: item %d: %w", i, err)
		}
	}

	records, err := r.storer.CreateMany(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("create asset assignments: %w", err)
	}

	r.log.InfoContext(ctx, "assigned assets", "count", len(records))
	return records, nil
}

func (r *Repository) Get(ctx context.Context, id string) (AssetAssignment, error) {
	if err := repositories.CheckID("asset_assignment_id", id); err != nil {
		return AssetAssignment{}, err
	}

	record, err := r.storer.Get(ctx, id)
	if err != nil {
		return AssetAssignment{}, fmt.Errorf("get asset assignment: %w", err)
	}
	return record, nil
}

func (r *Repository) List(ctx context.Context, filter AssetAssignmentFilter, orderBy fop.By, page fop.PageStringCursor) ([]AssetAssignment, fop.PageInfoStringCursor, error) {
	records, err := r.storer.List(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fop.PageInfoStringCursor{}, fmt.Errorf("list asset assignments: %w", err)
	}
	return fop.NewPageInfo(records, page, cursorFor(orderBy))
}

func (r *Repository) ListByUserProfileID(ctx context.Context, userProfileID string) ([]AssetAssignment, error) {
	if err := repositories.CheckID("user_profile_id", userProfileID); err != nil {
		return nil, err
	}

	records, err := r.storer.ListByUserProfileID(ctx, userProfileID)
	if err != nil {
		return nil, fmt.Errorf("list asset assignments by user profile: %w", err)
	}
	return records, nil
}

func (r *Repository) Count(ctx context.Context, filter AssetAssignmentFilter) (int64, error) {
	n, err := r.storer.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count asset assignments: %w", err)
	}
	return n, nil
}

// Update edits an assignment. Releasing statuses go through Unassign so the
// unassignment is stamped.
func (r *Repository) Update(ctx context.Context, id string, input UpdateAssetAssignment) (AssetAssignment, error) {
	if err := repositories.CheckID("asset_assignment_id", id); err != nil {
		return AssetAssignment{}, err
	}
	if input.Empty() {
		return AssetAssignment{}, fmt.Errorf("update asset assignment: %w", repositories.ErrNoChanges)
	}
	if err := repositories.Validate(input); err != nil {
		return AssetAssignment{}, fmt.Errorf("update asset assignment: %w", err)
	}
	if input.Status != nil && input.Status.Released() {
		return AssetAssignment{}, fmt.Errorf("update asset assignment: %w: use unassign to move to %s", repositories.ErrInvalidTransition, *input.Status)
	}

	record, err := r.storer.Update(ctx, id, input)
	if err != nil {
		return AssetAssignment{}, fmt.Errorf("update asset assignment: %w", err)
	}

	r.log.InfoContext(ctx, "updated asset assignment", "asset_assignment_id", id)
	return record, nil
}

// Unassign ends an active assignment. An assignment that has already ended
// cannot be ended again.
func (r *Repository) Unassign(ctx context.Context, id string, input Unassignment) (AssetAssignment, error) {
	if err := repositories.CheckID("asset_assignment_id", id); err != nil {
		return AssetAssignment{}, err
	}
	if err := repositories.Validate(input); err != nil {
		return AssetAssignment{}, fmt.Errorf("unassign asset: %w", err)
	}
	if !input.Status.Released() {
		return AssetAssignment{}, fmt.Errorf("unassign asset: %w: %s does not end an assignment", repositories.ErrInvalidTransition, input.Status)
	}

	at := time.Now().UTC()
	if input.UnassignedAt != nil {
		at = input.UnassignedAt.UTC()
	}
	input.UnassignedAt = &at

	record, err := r.storer.Unassign(ctx, id, input)
	if err != nil {
		return AssetAssignment{}, fmt.Errorf("unassign asset: %w", err)
	}

	r.log.InfoContext(ctx, "unassigned asset", "asset_assignment_id", id, "status", record.Status)
	return record, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := repositories.CheckID("asset_assignment_id", id); err != nil {
		return err
	}

	if err := r.storer.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete asset assignment: %w", err)
	}

	r.log.InfoContext(ctx, "deleted asset assignment", "asset_assignment_id", id)
	return nil
}

func (r *Repository) DeleteMany(ctx context.Context, filter AssetAssignmentFilter) (int64, error) {
	if filter.Empty() {
		return 0, fmt.Errorf("delete asset assignments: %w", repositories.ErrEmptyFilter)
	}

	n, err := r.storer.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete asset assignments: %w", err)
	}

	r.log.InfoContext(ctx, "deleted asset assignments", "count", n)
	return n, nil
}

func (r *Repository) GroupBy(ctx context.Context, field GroupField, filter AssetAssignmentFilter) ([]repositories.GroupCount, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("group asset assignments: %w: cannot group by %q", repositories.ErrValidation, field)
	}

	groups, err := r.storer.GroupBy(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("group asset assignments: %w", err)
	}
	return groups, nil
}
