// Package trainingrecordspgxstore implements trainingrecordsrepo.Storer on
// PostgreSQL through pgx.
package trainingrecordspgxstore

import (
	"bytes"
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/pgxstore"
	"github.com/jrazmi/helix/core/repositories/trainingrecordsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/sdk/logger"
)

const (
	table   = "training_records"
	pk      = "training_record_id"
	columns = `training_record_id, user_profile_id, course_id, course_name, status, score, started_at,
		completed_at, due_date, expires_at, is_required, certificate_url, created_at, updated_at`
)

var orderColumns = map[string]pgxstore.Column{
	trainingrecordsrepo.OrderByPK:         {Name: pk, Type: "uuid"},
	trainingrecordsrepo.OrderByCreatedAt:  {Name: "created_at", Type: "timestamptz"},
	trainingrecordsrepo.OrderByUpdatedAt:  {Name: "updated_at", Type: "timestamptz"},
	trainingrecordsrepo.OrderByCourseID:   {Name: "course_id", Type: "text"},
	trainingrecordsrepo.OrderByCourseName: {Name: "course_name", Type: "text"},
}

// outstanding matches required records that still need doing.
const outstanding = "is_required AND status NOT IN ('COMPLETED', 'WAIVED')"

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

const insertValues = `
	INSERT INTO training_records (
		user_profile_id, course_id, course_name, status, score, started_at, completed_at,
		due_date, expires_at, is_required, certificate_url
	) VALUES (
		@user_profile_id::uuid, @course_id, @course_name, coalesce(@status::text, 'NOT_STARTED'),
		@score::int4, @started_at::timestamptz, @completed_at::timestamptz, @due_date::timestamptz,
		@expires_at::timestamptz, coalesce(@is_required::boolean, false), @certificate_url
	)`

const insertQuery = insertValues + ` RETURNING ` + columns

// Fields absent from the upsert input keep their stored values.
const upsertQuery = insertValues + `
	ON CONFLICT ON CONSTRAINT training_records_user_course_key DO UPDATE SET
		course_name = EXCLUDED.course_name,
		status = CASE WHEN @status::text IS NULL THEN training_records.status ELSE EXCLUDED.status END,
		score = coalesce(EXCLUDED.score, training_records.score),
		started_at = coalesce(EXCLUDED.started_at, training_records.started_at),
		completed_at = coalesce(EXCLUDED.completed_at, training_records.completed_at),
		due_date = coalesce(EXCLUDED.due_date, training_records.due_date),
		expires_at = coalesce(EXCLUDED.expires_at, training_records.expires_at),
		is_required = CASE WHEN @is_required::boolean IS NULL THEN training_records.is_required ELSE EXCLUDED.is_required END,
		certificate_url = coalesce(EXCLUDED.certificate_url, training_records.certificate_url),
		updated_at = now()
	RETURNING ` + columns

func createArgs(input trainingrecordsrepo.CreateTrainingRecord) pgx.NamedArgs {
	return pgx.NamedArgs{
		"user_profile_id": input.UserProfileID,
		"course_id":       input.CourseID,
		"course_name":     input.CourseName,
		"status":          input.Status,
		"score":           input.Score,
		"started_at":      input.StartedAt,
		"completed_at":    input.CompletedAt,
		"due_date":        input.DueDate,
		"expires_at":      input.ExpiresAt,
		"is_required":     input.IsRequired,
		"certificate_url": input.CertificateURL,
	}
}

func (s *Store) Create(ctx context.Context, input trainingrecordsrepo.CreateTrainingRecord) (trainingrecordsrepo.TrainingRecord, error) {
	return pgxstore.CollectOne[trainingrecordsrepo.TrainingRecord](ctx, s.pool, insertQuery, createArgs(input))
}

func (s *Store) CreateMany(ctx context.Context, inputs []trainingrecordsrepo.CreateTrainingRecord) ([]trainingrecordsrepo.TrainingRecord, error) {
	var records []trainingrecordsrepo.TrainingRecord
	err := postgresdb.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		records, err = pgxstore.SendBatch[trainingrecordsrepo.CreateTrainingRecord, trainingrecordsrepo.TrainingRecord](ctx, tx, insertQuery, inputs, createArgs)
		return err
	})
	return records, err
}

func (s *Store) Upsert(ctx context.Context, input trainingrecordsrepo.CreateTrainingRecord) (trainingrecordsrepo.TrainingRecord, error) {
	return pgxstore.CollectOne[trainingrecordsrepo.TrainingRecord](ctx, s.pool, upsertQuery, createArgs(input))
}

func (s *Store) Get(ctx context.Context, id string) (trainingrecordsrepo.TrainingRecord, error) {
	return pgxstore.GetOne[trainingrecordsrepo.TrainingRecord](ctx, s.pool, table, columns, pk, id)
}

func (s *Store) GetByCourse(ctx context.Context, userProfileID, courseID string) (trainingrecordsrepo.TrainingRecord, error) {
	query := `SELECT ` + columns + ` FROM training_records WHERE user_profile_id = @user_profile_id::uuid AND course_id = @course_id`
	return pgxstore.CollectOne[trainingrecordsrepo.TrainingRecord](ctx, s.pool, query, pgx.NamedArgs{
		"user_profile_id": userProfileID,
		"course_id":       courseID,
	})
}

func (s *Store) List(ctx context.Context, filter trainingrecordsrepo.TrainingRecordFilter, orderBy fop.By, page fop.PageStringCursor) ([]trainingrecordsrepo.TrainingRecord, error) {
	args := pgx.NamedArgs{}
	return pgxstore.List[trainingrecordsrepo.TrainingRecord](ctx, s.pool, pgxstore.ListQuery{
		Select:  "SELECT " + columns + " FROM training_records",
		Where:   applyFilter(filter, args),
		Args:    args,
		OrderBy: orderBy,
		Columns: orderColumns,
		PK:      pk,
		Page:    page,
	})
}

func (s *Store) ListByUserProfileID(ctx context.Context, userProfileID string) ([]trainingrecordsrepo.TrainingRecord, error) {
	query := `SELECT ` + columns + ` FROM training_records WHERE user_profile_id = @user_profile_id::uuid ORDER BY course_id`
	return pgxstore.CollectMany[trainingrecordsrepo.TrainingRecord](ctx, s.pool, query, pgx.NamedArgs{"user_profile_id": userProfileID})
}

func (s *Store) ListOverdue(ctx context.Context, now time.Time, limit int) ([]trainingrecordsrepo.TrainingRecord, error) {
	query := `SELECT ` + columns + ` FROM training_records
	WHERE ` + outstanding + ` AND due_date < @now
	ORDER BY due_date, training_record_id
	LIMIT @limit`
	return pgxstore.CollectMany[trainingrecordsrepo.TrainingRecord](ctx, s.pool, query, pgx.NamedArgs{
		"now":   now,
		"limit": limit,
	})
}

func (s *Store) Count(ctx context.Context, filter trainingrecordsrepo.TrainingRecordFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Count(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) Update(ctx context.Context, id string, input trainingrecordsrepo.UpdateTrainingRecord) (trainingrecordsrepo.TrainingRecord, error) {
	set := pgxstore.NewSet()
	pgxstore.SetPtr(set, "course_name", input.CourseName)
	pgxstore.SetPtr(set, "status", input.Status)
	pgxstore.SetPtr(set, "score", input.Score)
	pgxstore.SetPtr(set, "started_at", input.StartedAt)
	pgxstore.SetPtr(set, "completed_at", input.CompletedAt)
	pgxstore.SetPtr(set, "due_date", input.DueDate)
	pgxstore.SetPtr(set, "expires_at", input.ExpiresAt)
	pgxstore.SetPtr(set, "is_required", input.IsRequired)
	pgxstore.SetPtr(set, "certificate_url", input.CertificateURL)
	return pgxstore.UpdateOne[trainingrecordsrepo.TrainingRecord](ctx, s.pool, table, pk, id, set, columns)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return pgxstore.DeleteOne(ctx, s.pool, table, pk, id)
}

func (s *Store) DeleteMany(ctx context.Context, filter trainingrecordsrepo.TrainingRecordFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.DeleteWhere(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) GroupBy(ctx context.Context, field trainingrecordsrepo.GroupField, filter trainingrecordsrepo.TrainingRecordFilter) ([]repositories.GroupCount, error) {
	args := pgx.NamedArgs{}
	return pgxstore.GroupBy(ctx, s.pool, table, string(field), applyFilter(filter, args), args)
}

func (s *Store) AggregateScore(ctx context.Context, filter trainingrecordsrepo.TrainingRecordFilter) (repositories.Aggregate, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Aggregate(ctx, s.pool, table, "score", applyFilter(filter, args), args)
}

func (s *Store) ComplianceSummary(ctx context.Context, scope trainingrecordsrepo.ComplianceScope, now time.Time) (trainingrecordsrepo.ComplianceSummary, error) {
	args := pgx.NamedArgs{"now": now}
	buf := bytes.NewBufferString(`
	SELECT
		count(*) AS total,
		count(*) FILTER (WHERE t.status = 'NOT_STARTED') AS not_started,
		count(*) FILTER (WHERE t.status = 'IN_PROGRESS') AS in_progress,
		count(*) FILTER (WHERE t.status = 'COMPLETED') AS completed,
		count(*) FILTER (WHERE t.status = 'FAILED') AS failed,
		count(*) FILTER (WHERE t.status = 'EXPIRED') AS expired,
		count(*) FILTER (WHERE t.status = 'WAIVED') AS waived,
		count(*) FILTER (WHERE t.status NOT IN ('COMPLETED', 'WAIVED') AND t.due_date < @now) AS overdue
	FROM training_records t`)

	if scope.TenantID != nil {
		buf.WriteString(" JOIN user_profiles u ON u.user_profile_id = t.user_profile_id WHERE t.is_required AND u.tenant_id = @tenant_id")
		args["tenant_id"] = *scope.TenantID
	} else {
		buf.WriteString(" WHERE t.is_required AND t.user_profile_id = @user_profile_id::uuid")
		args["user_profile_id"] = *scope.UserProfileID
	}

	return pgxstore.CollectOne[trainingrecordsrepo.ComplianceSummary](ctx, s.pool, buf.String(), args)
}

func applyFilter(filter trainingrecordsrepo.TrainingRecordFilter, args pgx.NamedArgs) postgresdb.Conditions {
	var where postgresdb.Conditions

	if len(filter.IDs) > 0 {
		where.Add("training_record_id = ANY(@ids::uuid[])")
		args["ids"] = filter.IDs
	}
	if filter.UserProfileID != nil {
		where.Add("user_profile_id = @user_profile_id::uuid")
		args["user_profile_id"] = *filter.UserProfileID
	}
	if filter.CourseID != nil {
		where.Add("course_id = @course_id")
		args["course_id"] = *filter.CourseID
	}
	if filter.Status != nil {
		where.Add("status = @status")
		args["status"] = string(*filter.Status)
	}
	if filter.IsRequired != nil {
		where.Add("is_required = @is_required")
		args["is_required"] = *filter.IsRequired
	}
	if filter.DueBefore != nil {
		where.Add("due_date < @due_before")
		args["due_before"] = *filter.DueBefore
	}
	if filter.ExpiresBefore != nil {
		where.Add("expires_at < @expires_before")
		args["expires_before"] = *filter.ExpiresBefore
	}

	return where
}
