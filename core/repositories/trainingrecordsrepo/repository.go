// Package trainingrecordsrepo tracks course progress per profile and
// summarises compliance with required training.
package trainingrecordsrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/sdk/logger"
)

type Storer interface {
	Create(ctx context.Context, input CreateTrainingRecord) (TrainingRecord, error)
	CreateMany(ctx context.Context, inputs []CreateTrainingRecord) ([]TrainingRecord, error)
	Upsert(ctx context.Context, input CreateTrainingRecord) (TrainingRecord, error)
	Get(ctx context.Context, id string) (TrainingRecord, error)
	GetByCourse(ctx context.Context, userProfileID, courseID string) (TrainingRecord, error)
	List(ctx context.Context, filter TrainingRecordFilter, orderBy fop.By, page fop.PageStringCursor) ([]TrainingRecord, error)
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]TrainingRecord, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]TrainingRecord, error)
	Count(ctx context.Context, filter TrainingRecordFilter) (int64, error)
	Update(ctx context.Context, id string, input UpdateTrainingRecord) (TrainingRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter TrainingRecordFilter) (int64, error)
	GroupBy(ctx context.Context, field GroupField, filter TrainingRecordFilter) ([]repositories.GroupCount, error)
	AggregateScore(ctx context.Context, filter TrainingRecordFilter) (repositories.Aggregate, error)
	ComplianceSummary(ctx context.Context, scope ComplianceScope, now time.Time) (ComplianceSummary, error)
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

// stampCompletion sets completedAt when a record arrives as COMPLETED
// without one.
func (r *Repository) stampCompletion(status *TrainingStatus, completedAt **time.Time) {
	if status != nil && *status == StatusCompleted && *completedAt == nil {
		now := r.now().UTC()
		*completedAt = &now
	}
}

func (r *Repository) Create(ctx context.Context, input CreateTrainingRecord) (TrainingRecord, error) {
	if err := repositories.Validate(input); err != nil {
		return TrainingRecord{}, fmt.Errorf("create training record: %w", err)
	}
	r.stampCompletion(input.Status, &input.CompletedAt)

	record, err := r.storer.Create(ctx, input)
	if err != nil {
		return TrainingRecord{}, fmt.Errorf("create training record: %w", err)
	}

	r.log.InfoContext(ctx, "created training record", "training_record_id", record.TrainingRecordID, "course_id", record.CourseID)
	return record, nil
}

func (r *Repository) CreateMany(ctx context.Context, inputs []CreateTrainingRecord) ([]TrainingRecord, error) {
	if len(inputs) == 0 {
		return []TrainingRecord{}, nil
	}
	for i := range inputs {
		if err := repositories.Validate(inputs[i]); err != nil {
			return nil, fmt.Errorf("create training records: item %d: %w", i, err)
		}
		r.stampCompletion(inputs[i].Status, &inputs[i].CompletedAt)
	}

	records, err := r.storer.CreateMany(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("create training records: %w", err)
	}

	r.log.InfoContext(ctx, "created training records", "count", len(records))
	return records, nil
}

// Upsert records progress on a course, updating the existing record for
// the (user, course) pair in place.
func (r *Repository) Upsert(ctx context.Context, input CreateTrainingRecord) (TrainingRecord, error) {
	if err := repositories.Validate(input); err != nil {
		return TrainingRecord{}, fmt.Errorf("upsert training record: %w", err)
	}
	r.stampCompletion(input.Status, &input.CompletedAt)

	record, err := r.storer.Upsert(ctx, input)
	if err != nil {
		return TrainingRecord{}, fmt.Errorf("upsert training record: %w", err)
	}

	r.log.InfoContext(ctx, "upserted training record", "training_record_id", record.TrainingRecordID, "status", record.Status)
	return record, nil
}

func (r *Repository) Get(ctx context.Context, id string) (TrainingRecord, error) {
	if err := repositories.CheckID("training_record_id", id); err != nil {
		return TrainingRecord{}, err
	}

	record, err := r.storer.Get(ctx, id)
	if err != nil {
		return TrainingRecord{}, fmt.Errorf("get training record: %w", err)
	}
	return record, nil
}

func (r *Repository) GetByCourse(ctx context.Context, userProfileID, courseID string) (TrainingRecord, error) {
	if err := repositories.CheckID("user_profile_id", userProfileID); err != nil {
		return TrainingRecord{}, err
	}
	if courseID == "" {
		return TrainingRecord{}, fmt.Errorf("get training record by course: %w: course id is required", repositories.ErrValidation)
	}

	record, err := r.storer.GetByCourse(ctx, userProfileID, courseID)
	if err != nil {
		return TrainingRecord{}, fmt.Errorf("get training record by course: %w", err)
	}
	return record, nil
}

func (r *Repository) List(ctx context.Context, filter TrainingRecordFilter, orderBy fop.By, page fop.PageStringCursor) ([]TrainingRecord, fop.PageInfoStringCursor, error) {
	records, err := r.storer.List(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fop.PageInfoStringCursor{}, fmt.Errorf("list training records: %w", err)
	}
	return fop.NewPageInfo(records, page, cursorFor(orderBy))
}

func (r *Repository) ListByUserProfileID(ctx context.Context, userProfileID string) ([]TrainingRecord, error) {
	if err := repositories.CheckID("user_profile_id", userProfileID); err != nil {
		return nil, err
	}

	records, err := r.storer.ListByUserProfileID(ctx, userProfileID)
	if err != nil {
		return nil, fmt.Errorf("list training records by user profile: %w", err)
	}
	return records, nil
}

// ListOverdue returns required records past their due date that are neither
// completed nor waived, most overdue first.
func (r *Repository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]TrainingRecord, error) {
	if now.IsZero() {
		now = r.now()
	}
	if limit <= 0 || limit > fop.MaxPageLimit {
		limit = fop.MaxPageLimit
	}

	records, err := r.storer.ListOverdue(ctx, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list overdue training: %w", err)
	}
	return records, nil
}

func (r *Repository) Count(ctx context.Context, filter TrainingRecordFilter) (int64, error) {
	n, err := r.storer.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count training records: %w", err)
	}
	return n, nil
}

func (r *Repository) Update(ctx context.Context, id string, input UpdateTrainingRecord) (TrainingRecord, error) {
	if err := repositories.CheckID("training_record_id", id); err != nil {
		return TrainingRecord{}, err
	}
	if input.Empty() {
		return TrainingRecord{}, fmt.Errorf("update training record: %w", repositories.ErrNoChanges)
	}
	if err := repositories.Validate(input); err != nil {
		return TrainingRecord{}, fmt.Errorf("update training record: %w", err)
	}
	r.stampCompletion(input.Status, &input.CompletedAt)

	record, err := r.storer.Update(ctx, id, input)
	if err != nil {
		return TrainingRecord{}, fmt.Errorf("update training record: %w", err)
	}

	r.log.InfoContext(ctx, "updated training record", "training_record_id", id, "status", record.Status)
	return record, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := repositories.CheckID("training_record_id", id); err != nil {
		return err
	}

	if err := r.storer.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete training record: %w", err)
	}

	r.log.InfoContext(ctx, "deleted training record", "training_record_id", id)
	return nil
}

func (r *Repository) DeleteMany(ctx context.Context, filter TrainingRecordFilter) (int64, error) {
	if filter.Empty() {
		return 0, fmt.Errorf("delete training records: %w", repositories.ErrEmptyFilter)
	}

	n, err := r.storer.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete training records: %w", err)
	}

	r.log.InfoContext(ctx, "deleted training records", "count", n)
	return n, nil
}

func (r *Repository) GroupBy(ctx context.Context, field GroupField, filter TrainingRecordFilter) ([]repositories.GroupCount, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("group training records: %w: cannot group by %q", repositories.ErrValidation, field)
	}

	groups, err := r.storer.GroupBy(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("group training records: %w", err)
	}
	return groups, nil
}

func (r *Repository) AggregateScore(ctx context.Context, filter TrainingRecordFilter) (repositories.Aggregate, error) {
	agg, err := r.storer.AggregateScore(ctx, filter)
	if err != nil {
		return repositories.Aggregate{}, fmt.Errorf("aggregate training score: %w", err)
	}
	return agg, nil
}

// ComplianceSummary counts the required training of one profile or of a
// whole tenant.
func (r *Repository) ComplianceSummary(ctx context.Context, scope ComplianceScope) (ComplianceSummary, error) {
	switch {
	case scope.UserProfileID != nil && scope.TenantID != nil:
		return ComplianceSummary{}, fmt.Errorf("compliance summary: %w: set either user profile or tenant", repositories.ErrValidation)
	case scope.UserProfileID != nil:
		if err := repositories.CheckID("user_profile_id", *scope.UserProfileID); err != nil {
			return ComplianceSummary{}, err
		}
	case scope.TenantID == nil:
		return ComplianceSummary{}, fmt.Errorf("compliance summary: %w: user profile or tenant is required", repositories.ErrValidation)
	}

	summary, err := r.storer.ComplianceSummary(ctx, scope, r.now().UTC())
	if err != nil {
		return ComplianceSummary{}, fmt.Errorf("compliance summary: %w", err)
	}
	summary.Rate()
	return summary, nil
}
