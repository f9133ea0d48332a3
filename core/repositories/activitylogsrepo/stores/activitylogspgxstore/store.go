// Package activitylogspgxstore implements activitylogsrepo.Storer on
// PostgreSQL through pgx.
package activitylogspgxstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/core/repositories/pgxstore"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/sdk/logger"
)

const (
	table   = "activity_logs"
	pk      = "activity_log_id"
	columns = `activity_log_id, user_profile_id, action, resource, resource_id, ip_address,
		user_agent, outcome, risk_score, details, occurred_at, retention_date, created_at`
)

// copyColumns are the columns AppendMany loads; the rest take their defaults.
var copyColumns = []string{
	"user_profile_id", "action", "resource", "resource_id", "ip_address", "user_agent",
	"outcome", "risk_score", "details", "occurred_at", "retention_date",
}

var orderColumns = map[string]pgxstore.Column{
	activitylogsrepo.OrderByPK:         {Name: pk, Type: "uuid"},
	activitylogsrepo.OrderByOccurredAt: {Name: "occurred_at", Type: "timestamptz"},
	activitylogsrepo.OrderByCreatedAt:  {Name: "created_at", Type: "timestamptz"},
}

type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) Append(ctx context.Context, entry activitylogsrepo.NewActivityLog) (activitylogsrepo.ActivityLog, error) {
	query := `
	INSERT INTO activity_logs (
		user_profile_id, action, resource, resource_id, ip_address, user_agent,
		outcome, risk_score, details, occurred_at, retention_date
	) VALUES (
		@user_profile_id::uuid, @action, @resource, @resource_id, @ip_address, @user_agent,
		@outcome, @risk_score, @details::jsonb, coalesce(@occurred_at::timestamptz, now()), @retention_date
	) RETURNING ` + columns

	return pgxstore.CollectOne[activitylogsrepo.ActivityLog](ctx, s.pool, query, pgx.NamedArgs{
		"user_profile_id": entry.UserProfileID,
		"action":          entry.Action,
		"resource":        entry.Resource,
		"resource_id":     entry.ResourceID,
		"ip_address":      entry.IPAddress,
		"user_agent":      entry.UserAgent,
		"outcome":         string(entry.Outcome),
		"risk_score":      entry.RiskScore,
		"details":         entry.Details,
		"occurred_at":     entry.OccurredAt,
		"retention_date":  entry.RetentionDate,
	})
}

// AppendMany streams entries with the COPY protocol.
func (s *Store) AppendMany(ctx context.Context, entries []activitylogsrepo.NewActivityLog) (int64, error) {
	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{table}, copyColumns, pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
		return copyRow(entries[i])
	}))
	if err != nil {
		if errors.Is(err, repositories.ErrValidation) {
			return 0, err
		}
		return 0, pgxstore.Error(err)
	}
	return n, nil
}

func copyRow(e activitylogsrepo.NewActivityLog) ([]any, error) {
	userProfileID, err := uuid.Parse(e.UserProfileID)
	if err != nil {
		return nil, fmt.Errorf("%w: user_profile_id: %w", repositories.ErrValidation, err)
	}
	var details any
	if e.Details != nil {
		details = []byte(e.Details)
	}
	occurred := time.Now().UTC()
	if e.OccurredAt != nil {
		occurred = *e.OccurredAt
	}
	return []any{
		userProfileID, e.Action, e.Resource, e.ResourceID, e.IPAddress, e.UserAgent,
		string(e.Outcome), e.RiskScore, details, occurred, e.RetentionDate,
	}, nil
}

func (s *Store) Get(ctx context.Context, id string) (activitylogsrepo.ActivityLog, error) {
	return pgxstore.GetOne[activitylogsrepo.ActivityLog](ctx, s.pool, table, columns, pk, id)
}

func (s *Store) List(ctx context.Context, filter activitylogsrepo.ActivityLogFilter, orderBy fop.By, page fop.PageStringCursor) ([]activitylogsrepo.ActivityLog, error) {
	args := pgx.NamedArgs{}
	return pgxstore.List[activitylogsrepo.ActivityLog](ctx, s.pool, pgxstore.ListQuery{
		Select:  "SELECT " + columns + " FROM activity_logs",
		Where:   applyFilter(filter, args),
		Args:    args,
		OrderBy: orderBy,
		Columns: orderColumns,
		PK:      pk,
		Page:    page,
	})
}

func (s *Store) ListRecent(ctx context.Context, userProfileID string, limit int) ([]activitylogsrepo.ActivityLog, error) {
	query := `SELECT ` + columns + ` FROM activity_logs
	WHERE user_profile_id = @user_profile_id::uuid
	ORDER BY occurred_at DESC, activity_log_id DESC
	LIMIT @limit`
	return pgxstore.CollectMany[activitylogsrepo.ActivityLog](ctx, s.pool, query, pgx.NamedArgs{
		"user_profile_id": userProfileID,
		"limit":           limit,
	})
}

func (s *Store) Count(ctx context.Context, filter activitylogsrepo.ActivityLogFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Count(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
	SELECT activity_log_id::text FROM activity_logs
	WHERE retention_date IS NOT NULL AND retention_date <= @now
	ORDER BY retention_date, activity_log_id
	LIMIT @limit`, pgx.NamedArgs{"now": now, "limit": limit})
	if err != nil {
		return nil, pgxstore.Error(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, pgxstore.Error(err)
	}
	return ids, nil
}

// PurgeExpired rechecks the retention date so an id listed earlier whose
// retention was extended in the meantime survives.
func (s *Store) PurgeExpired(ctx context.Context, ids []string, now time.Time) (int64, error) {
	return pgxstore.Exec(ctx, s.pool, `
	DELETE FROM activity_logs
	WHERE activity_log_id = ANY(@ids::uuid[]) AND retention_date <= @now`, pgx.NamedArgs{
		"ids": ids,
		"now": now,
	})
}

func (s *Store) GroupBy(ctx context.Context, field activitylogsrepo.GroupField, filter activitylogsrepo.ActivityLogFilter) ([]repositories.GroupCount, error) {
	args := pgx.NamedArgs{}
	return pgxstore.GroupBy(ctx, s.pool, table, string(field), applyFilter(filter, args), args)
}

func (s *Store) AggregateRiskScore(ctx context.Context, filter activitylogsrepo.ActivityLogFilter) (repositories.Aggregate, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Aggregate(ctx, s.pool, table, "risk_score", applyFilter(filter, args), args)
}

func applyFilter(filter activitylogsrepo.ActivityLogFilter, args pgx.NamedArgs) postgresdb.Conditions {
	var where postgresdb.Conditions

	if filter.UserProfileID != nil {
		where.Add("user_profile_id = @user_profile_id::uuid")
		args["user_profile_id"] = *filter.UserProfileID
	}
	if filter.Action != nil {
		where.Add("action = @action")
		args["action"] = *filter.Action
	}
	if filter.Resource != nil {
		where.Add("resource = @resource")
		args["resource"] = *filter.Resource
	}
	if filter.Outcome != nil {
		where.Add("outcome = @outcome")
		args["outcome"] = string(*filter.Outcome)
	}
	if filter.MinRiskScore != nil {
		where.Add("risk_score >= @min_risk_score")
		args["min_risk_score"] = *filter.MinRiskScore
	}
	if filter.OccurredAfter != nil {
		where.Add("occurred_at >= @occurred_after")
		args["occurred_after"] = *filter.OccurredAfter
	}
	if filter.OccurredBefore != nil {
		where.Add("occurred_at < @occurred_before")
		args["occurred_before"] = *filter.OccurredBefore
	}

	return where
}
