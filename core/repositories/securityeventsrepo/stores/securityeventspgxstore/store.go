// Package securityeventspgxstore implements securityeventsrepo.Storer on
// PostgreSQL through pgx.
package securityeventspgxstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/pgxstore"
	"github.com/jrazmi/helix/core/repositories/securityeventsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/sdk/logger"
)

const (
	table   = "security_events"
	pk      = "security_event_id"
	columns = `security_event_id, user_profile_id, event_type, title, description, source, severity,
		status, detected_at, assigned_to, resolved_at, resolution, metadata, created_at, updated_at`
)

var orderColumns = map[string]pgxstore.Column{
	securityeventsrepo.OrderByPK:         {Name: pk, Type: "uuid"},
	securityeventsrepo.OrderByDetectedAt: {Name: "detected_at", Type: "timestamptz"},
	securityeventsrepo.OrderByCreatedAt:  {Name: "created_at", Type: "timestamptz"},
	securityeventsrepo.OrderByUpdatedAt:  {Name: "updated_at", Type: "timestamptz"},
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

const insertQuery = `
	INSERT INTO security_events (
		user_profile_id, event_type, title, description, source, severity, detected_at,
		assigned_to, metadata
	) VALUES (
		@user_profile_id::uuid, @event_type, @title, @description, @source, @severity,
		coalesce(@detected_at::timestamptz, now()), @assigned_to, @metadata::jsonb
	) RETURNING ` + columns

func createArgs(input securityeventsrepo.CreateSecurityEvent) pgx.NamedArgs {
	return pgx.NamedArgs{
		"user_profile_id": input.UserProfileID,
		"event_type":      input.EventType,
		"title":           input.Title,
		"description":     input.Description,
		"source":          input.Source,
		"severity":        string(input.Severity),
		"detected_at":     input.DetectedAt,
		"assigned_to":     input.AssignedTo,
		"metadata":        input.Metadata,
	}
}

func (s *Store) Create(ctx context.Context, input securityeventsrepo.CreateSecurityEvent) (securityeventsrepo.SecurityEvent, error) {
	return pgxstore.CollectOne[securityeventsrepo.SecurityEvent](ctx, s.pool, insertQuery, createArgs(input))
}

func (s *Store) CreateMany(ctx context.Context, inputs []securityeventsrepo.CreateSecurityEvent) ([]securityeventsrepo.SecurityEvent, error) {
	var records []securityeventsrepo.SecurityEvent
	err := postgresdb.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		records, err = pgxstore.SendBatch[securityeventsrepo.CreateSecurityEvent, securityeventsrepo.SecurityEvent](ctx, tx, insertQuery, inputs, createArgs)
		return err
	})
	return records, err
}

func (s *Store) Get(ctx context.Context, id string) (securityeventsrepo.SecurityEvent, error) {
	return pgxstore.GetOne[securityeventsrepo.SecurityEvent](ctx, s.pool, table, columns, pk, id)
}

func (s *Store) List(ctx context.Context, filter securityeventsrepo.SecurityEventFilter, orderBy fop.By, page fop.PageStringCursor) ([]securityeventsrepo.SecurityEvent, error) {
	args := pgx.NamedArgs{}
	return pgxstore.List[securityeventsrepo.SecurityEvent](ctx, s.pool, pgxstore.ListQuery{
		Select:  "SELECT " + columns + " FROM security_events",
		Where:   applyFilter(filter, args),
		Args:    args,
		OrderBy: orderBy,
		Columns: orderColumns,
		PK:      pk,
		Page:    page,
	})
}

func (s *Store) ListByUserProfileID(ctx context.Context, userProfileID string) ([]securityeventsrepo.SecurityEvent, error) {
	query := `SELECT ` + columns + ` FROM security_events WHERE user_profile_id = @user_profile_id::uuid ORDER BY detected_at DESC, security_event_id`
	return pgxstore.CollectMany[securityeventsrepo.SecurityEvent](ctx, s.pool, query, pgx.NamedArgs{"user_profile_id": userProfileID})
}

func (s *Store) Count(ctx context.Context, filter securityeventsrepo.SecurityEventFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Count(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) Update(ctx context.Context, id string, input securityeventsrepo.UpdateSecurityEvent) (securityeventsrepo.SecurityEvent, error) {
	set := pgxstore.NewSet()
	pgxstore.SetPtr(set, "title", input.Title)
	pgxstore.SetPtr(set, "description", input.Description)
	pgxstore.SetPtr(set, "severity", input.Severity)
	if input.Metadata != nil {
		set.Add("metadata", input.Metadata)
	}
	return pgxstore.UpdateOne[securityeventsrepo.SecurityEvent](ctx, s.pool, table, pk, id, set, columns)
}

// Assign skips events already in a terminal status; a miss on an existing
// row reports ErrInvalidTransition.
func (s *Store) Assign(ctx context.Context, id string, assignee *string) (securityeventsrepo.SecurityEvent, error) {
	query := `
	UPDATE security_events SET assigned_to = @assigned_to, updated_at = now()
	WHERE security_event_id = @id AND status NOT IN ('CLOSED', 'FALSE_POSITIVE')
	RETURNING ` + columns

	record, err := pgxstore.CollectOne[securityeventsrepo.SecurityEvent](ctx, s.pool, query, pgx.NamedArgs{
		"id":          id,
		"assigned_to": assignee,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return securityeventsrepo.SecurityEvent{}, getErr
		}
		return securityeventsrepo.SecurityEvent{}, repositories.ErrInvalidTransition
	}
	return record, err
}

// Transition writes only while the event is still in status from. Moving to
// RESOLVED or FALSE_POSITIVE stamps resolved_at once.
func (s *Store) Transition(ctx context.Context, id string, from securityeventsrepo.EventStatus, change securityeventsrepo.StatusChange, at time.Time) (securityeventsrepo.SecurityEvent, error) {
	query := `
	UPDATE security_events
	SET status = @to::text,
		resolution = coalesce(@resolution::text, resolution),
		resolved_at = CASE WHEN @to::text IN ('RESOLVED', 'FALSE_POSITIVE') THEN coalesce(resolved_at, @at::timestamptz) ELSE resolved_at END,
		updated_at = now()
	WHERE security_event_id = @id AND status = @from
	RETURNING ` + columns

	record, err := pgxstore.CollectOne[securityeventsrepo.SecurityEvent](ctx, s.pool, query, pgx.NamedArgs{
		"id":         id,
		"from":       string(from),
		"to":         string(change.Status),
		"resolution": change.Resolution,
		"at":         at,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return securityeventsrepo.SecurityEvent{}, getErr
		}
		return securityeventsrepo.SecurityEvent{}, repositories.ErrVersionConflict
	}
	return record, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return pgxstore.DeleteOne(ctx, s.pool, table, pk, id)
}

func (s *Store) DeleteMany(ctx context.Context, filter securityeventsrepo.SecurityEventFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.DeleteWhere(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) GroupBy(ctx context.Context, field securityeventsrepo.GroupField, filter securityeventsrepo.SecurityEventFilter) ([]repositories.GroupCount, error) {
	args := pgx.NamedArgs{}
	return pgxstore.GroupBy(ctx, s.pool, table, string(field), applyFilter(filter, args), args)
}

func applyFilter(filter securityeventsrepo.SecurityEventFilter, args pgx.NamedArgs) postgresdb.Conditions {
	var where postgresdb.Conditions

	if len(filter.IDs) > 0 {
		where.Add("security_event_id = ANY(@ids::uuid[])")
		args["ids"] = filter.IDs
	}
	if filter.UserProfileID != nil {
		where.Add("user_profile_id = @user_profile_id::uuid")
		args["user_profile_id"] = *filter.UserProfileID
	}
	if filter.EventType != nil {
		where.Add("event_type = @event_type")
		args["event_type"] = *filter.EventType
	}
	if filter.Severity != nil {
		where.Add("severity = @severity")
		args["severity"] = string(*filter.Severity)
	}
	if filter.Status != nil {
		where.Add("status = @status")
		args["status"] = string(*filter.Status)
	}
	if filter.OpenOnly != nil {
		if *filter.OpenOnly {
			where.Add("status IN ('OPEN', 'IN_PROGRESS')")
		} else {
			where.Add("status NOT IN ('OPEN', 'IN_PROGRESS')")
		}
	}
	if filter.AssignedTo != nil {
		where.Add("assigned_to = @assigned_to")
		args["assigned_to"] = *filter.AssignedTo
	}
	if filter.DetectedAfter != nil {
		where.Add("detected_at >= @detected_after")
		args["detected_after"] = *filter.DetectedAfter
	}
	if filter.DetectedBefore != nil {
		where.Add("detected_at < @detected_before")
		args["detected_before"] = *filter.DetectedBefore
	}

	return where
}
