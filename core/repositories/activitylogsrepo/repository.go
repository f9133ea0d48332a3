// Package activitylogsrepo is the append-only audit trail of profile
// activity. Entries leave the table only through the retention purge or
// with their profile.
package activitylogsrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/sdk/logger"
)

// DefaultRecentLimit caps ListRecent when the caller passes no limit.
const DefaultRecentLimit = 50

type Storer interface {
	Append(ctx context.Context, entry NewActivityLog) (ActivityLog, error)
	AppendMany(ctx context.Context, entries []NewActivityLog) (int64, error)
	Get(ctx context.Context, id string) (ActivityLog, error)
	List(ctx context.Context, filter ActivityLogFilter, orderBy fop.By, page fop.PageStringCursor) ([]ActivityLog, error)
	ListRecent(ctx context.Context, userProfileID string, limit int) ([]ActivityLog, error)
	Count(ctx context.Context, filter ActivityLogFilter) (int64, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error)
	PurgeExpired(ctx context.Context, ids []string, now time.Time) (int64, error)
	GroupBy(ctx context.Context, field GroupField, filter ActivityLogFilter) ([]repositories.GroupCount, error)
	AggregateRiskScore(ctx context.Context, filter ActivityLogFilter) (repositories.Aggregate, error)
}

// Options is the env mapped repository configuration.
type Options struct {
	// DefaultRetention sets retention_date on entries that arrive without
	// one. Zero keeps such entries forever.
	DefaultRetention time.Duration `env:"ACTIVITY_DEFAULT_RETENTION" default:"0s"`
}

type Option func(*Repository)

func WithDefaultRetention(d time.Duration) Option {
	return func(r *Repository) {
		r.defaultRetention = d
	}
}

type Repository struct {
	log              *logger.Logger
	storer           Storer
	defaultRetention time.Duration
	now              func() time.Time
}

func NewRepository(log *logger.Logger, storer Storer, opts ...Option) *Repository {
	r := &Repository{
		log:    log,
		storer: storer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) prepare(entry *NewActivityLog) error {
	if err := repositories.Validate(entry); err != nil {
		return err
	}

	occurred := r.now().UTC()
	if entry.OccurredAt != nil {
		occurred = entry.OccurredAt.UTC()
	}
	entry.OccurredAt = &occurred

	if entry.RetentionDate == nil && r.defaultRetention > 0 {
		retention := occurred.Add(r.defaultRetention)
		entry.RetentionDate = &retention
	}
	return nil
}

// Append records one activity entry.
func (r *Repository) Append(ctx context.Context, entry NewActivityLog) (ActivityLog, error) {
	if err := r.prepare(&entry); err != nil {
		return ActivityLog{}, fmt.Errorf("append activity log: %w", err)
	}

	record, err := r.storer.Append(ctx, entry)
	if err != nil {
		return ActivityLog{}, fmt.Errorf("append activity log: %w", err)
	}

	r.log.DebugContext(ctx, "appended activity log", "activity_log_id", record.ActivityLogID, "action", record.Action, "outcome", record.Outcome)
	return record, nil
}

// AppendMany bulk loads entries with COPY and reports how many were written.
func (r *Repository) AppendMany(ctx context.Context, entries []NewActivityLog) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	for i := range entries {
		if err := r.prepare(&entries[i]); err != nil {
			return 0, fmt.Errorf("append activity logs: item %d: %w", i, err)
		}
	}

	n, err := r.storer.AppendMany(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("append activity logs: %w", err)
	}

	r.log.InfoContext(ctx, "appended activity logs", "count", n)
	return n, nil
}

func (r *Repository) Get(ctx context.Context, id string) (ActivityLog, error) {
	if err := repositories.CheckID("activity_log_id", id); err != nil {
		return ActivityLog{}, err
	}

	record, err := r.storer.Get(ctx, id)
	if err != nil {
		return ActivityLog{}, fmt.Errorf("get activity log: %w", err)
	}
	return record, nil
}

// Delete is refused: entries leave the log only through PurgeExpired.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return fmt.Errorf("delete activity log %s: %w", id, repositories.ErrOperationNotSupported)
}

func (r *Repository) List(ctx context.Context, filter ActivityLogFilter, orderBy fop.By, page fop.PageStringCursor) ([]ActivityLog, fop.PageInfoStringCursor, error) {
	records, err := r.storer.List(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fop.PageInfoStringCursor{}, fmt.Errorf("list activity logs: %w", err)
	}
	return fop.NewPageInfo(records, page, cursorFor(orderBy))
}

// ListRecent returns the newest entries of a profile.
func (r *Repository) ListRecent(ctx context.Context, userProfileID string, limit int) ([]ActivityLog, error) {
	if err := repositories.CheckID("user_profile_id", userProfileID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > fop.MaxPageLimit {
		limit = DefaultRecentLimit
	}

	records, err := r.storer.ListRecent(ctx, userProfileID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent activity: %w", err)
	}
	return records, nil
}

func (r *Repository) Count(ctx context.Context, filter ActivityLogFilter) (int64, error) {
	n, err := r.storer.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count activity logs: %w", err)
	}
	return n, nil
}

// ListExpired returns up to limit ids whose retention date is at or before
// now, oldest first.
func (r *Repository) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("list expired activity logs: %w: limit must be positive", repositories.ErrValidation)
	}

	ids, err := r.storer.ListExpired(ctx, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list expired activity logs: %w", err)
	}
	return ids, nil
}

// PurgeExpired deletes the given entries that are still expired at now.
// Ids already removed by another worker are skipped.
func (r *Repository) PurgeExpired(ctx context.Context, ids []string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := r.storer.PurgeExpired(ctx, ids, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge activity logs: %w", err)
	}

	r.log.InfoContext(ctx, "purged activity logs", "requested", len(ids), "deleted", n)
	return n, nil
}

func (r *Repository) GroupBy(ctx context.Context, field GroupField, filter ActivityLogFilter) ([]repositories.GroupCount, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("group activity logs: %w: cannot group by %q", repositories.ErrValidation, field)
	}

	groups, err := r.storer.GroupBy(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("group activity logs: %w", err)
	}
	return groups, nil
}

func (r *Repository) AggregateRiskScore(ctx context.Context, filter ActivityLogFilter) (repositories.Aggregate, error) {
	agg, err := r.storer.AggregateRiskScore(ctx, filter)
	if err != nil {
		return repositories.Aggregate{}, fmt.Errorf("aggregate activity risk score: %w", err)
	}
	return agg, nil
}
