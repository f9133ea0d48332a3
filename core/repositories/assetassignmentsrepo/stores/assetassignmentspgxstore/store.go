// Package assetassignmentspgxstore implements assetassignmentsrepo.Storer on
// PostgreSQL through pgx.
package assetassignmentspgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/assetassignmentsrepo"
	"github.com/jrazmi/helix/core/repositories/pgxstore"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/sdk/logger"
)

const (
	table   = "asset_assignments"
	pk      = "asset_assignment_id"
	columns = `asset_assignment_id, user_profile_id, asset_id, asset_name, asset_type, serial_number,
		status, compliance_status, assigned_at, assigned_by, unassigned_at, unassigned_by, notes,
		metadata, created_at, updated_at`
)

var orderColumns = map[string]pgxstore.Column{
	assetassignmentsrepo.OrderByPK:         {Name: pk, Type: "uuid"},
	assetassignmentsrepo.OrderByAssignedAt: {Name: "assigned_at", Type: "timestamptz"},
	assetassignmentsrepo.OrderByCreatedAt:  {Name: "created_at", Type: "timestamptz"},
	assetassignmentsrepo.OrderByAssetName:  {Name: "asset_name", Type: "text"},
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
	INSERT INTO asset_assignments (
		user_profile_id, asset_id, asset_name, asset_type, serial_number, compliance_status,
		assigned_at, assigned_by, notes, metadata
	) VALUES (
		@user_profile_id::uuid, @asset_id, @asset_name, @asset_type, @serial_number,
		coalesce(@compliance_status::text, 'UNKNOWN'), coalesce(@assigned_at::timestamptz, now()),
		@assigned_by, @notes, @metadata::jsonb
	) RETURNING ` + columns

func createArgs(input assetassignmentsrepo.CreateAssetAssignment) pgx.NamedArgs {
	return pgx.NamedArgs{
		"user_profile_id":   input.UserProfileID,
		"asset_id":          input.AssetID,
		"asset_name":        input.AssetName,
		"asset_type":        string(input.AssetType),
		"serial_number":     input.SerialNumber,
		"compliance_status": input.ComplianceStatus,
		"assigned_at":       input.AssignedAt,
		"assigned_by":       input.AssignedBy,
		"notes":             input.Notes,
		"metadata":          input.Metadata,
	}
}

func (s *Store) Create(ctx context.Context, input assetassignmentsrepo.CreateAssetAssignment) (assetassignmentsrepo.AssetAssignment, error) {
	return pgxstore.CollectOne[assetassignmentsrepo.AssetAssignment](ctx, s.pool, insertQuery, createArgs(input))
}

func (s *Store) CreateMany(ctx context.Context, inputs []assetassignmentsrepo.CreateAssetAssignment) ([]assetassignmentsrepo.AssetAssignment, error) {
	var records []assetassignmentsrepo.AssetAssignment
	err := postgresdb.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		records, err = pgxstore.SendBatch[assetassignmentsrepo.CreateAssetAssignment, assetassignmentsrepo.AssetAssignment](ctx, tx, insertQuery, inputs, createArgs)
		return err
	})
	return records, err
}

func (s *Store) Get(ctx context.Context, id string) (assetassignmentsrepo.AssetAssignment, error) {
	return pgxstore.GetOne[assetassignmentsrepo.AssetAssignment](ctx, s.pool, table, columns, pk, id)
}

func (s *Store) List(ctx context.Context, filter assetassignmentsrepo.AssetAssignmentFilter, orderBy fop.By, page fop.PageStringCursor) ([]assetassignmentsrepo.AssetAssignment, error) {
	args := pgx.NamedArgs{}
	return pgxstore.List[assetassignmentsrepo.AssetAssignment](ctx, s.pool, pgxstore.ListQuery{
		Select:  "SELECT " + columns + " FROM asset_assignments",
		Where:   applyFilter(filter, args),
		Args:    args,
		OrderBy: orderBy,
		Columns: orderColumns,
		PK:      pk,
		Page:    page,
	})
}

func (s *Store) ListByUserProfileID(ctx context.Context, userProfileID string) ([]assetassignmentsrepo.AssetAssignment, error) {
	query := `SELECT ` + columns + ` FROM asset_assignments WHERE user_profile_id = @user_profile_id::uuid ORDER BY assigned_at DESC, asset_assignment_id`
	return pgxstore.CollectMany[assetassignmentsrepo.AssetAssignment](ctx, s.pool, query, pgx.NamedArgs{"user_profile_id": userProfileID})
}

func (s *Store) Count(ctx context.Context, filter assetassignmentsrepo.AssetAssignmentFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Count(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) Update(ctx context.Context, id string, input assetassignmentsrepo.UpdateAssetAssignment) (assetassignmentsrepo.AssetAssignment, error) {
	set := pgxstore.NewSet()
	pgxstore.SetPtr(set, "asset_name", input.AssetName)
	pgxstore.SetPtr(set, "serial_number", input.SerialNumber)
	pgxstore.SetPtr(set, "status", input.Status)
	pgxstore.SetPtr(set, "compliance_status", input.ComplianceStatus)
	pgxstore.SetPtr(set, "notes", input.Notes)
	if input.Metadata != nil {
		set.Add("metadata", input.Metadata)
	}
	if input.Status == nil {
		return pgxstore.UpdateOne[assetassignmentsrepo.AssetAssignment](ctx, s.pool, table, pk, id, set, columns)
	}

	// A status change is only allowed while the assignment is active.
	query := fmt.Sprintf(`
	UPDATE asset_assignments SET %s, updated_at = now()
	WHERE asset_assignment_id = @pk_id AND unassigned_at IS NULL
	RETURNING %s`, set, columns)
	set.Args["pk_id"] = id

	record, err := pgxstore.CollectOne[assetassignmentsrepo.AssetAssignment](ctx, s.pool, query, set.Args)
	if errors.Is(err, repositories.ErrNotFound) {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return assetassignmentsrepo.AssetAssignment{}, getErr
		}
		return assetassignmentsrepo.AssetAssignment{}, repositories.ErrInvalidTransition
	}
	return record, err
}

// Unassign only touches rows still without unassigned_at; a miss on an
// existing row means the assignment already ended.
func (s *Store) Unassign(ctx context.Context, id string, input assetassignmentsrepo.Unassignment) (assetassignmentsrepo.AssetAssignment, error) {
	query := `
	UPDATE asset_assignments
	SET status = @status, unassigned_at = @unassigned_at, unassigned_by = @unassigned_by,
		notes = coalesce(@notes::text, notes), updated_at = now()
	WHERE asset_assignment_id = @id AND unassigned_at IS NULL
	RETURNING ` + columns

	record, err := pgxstore.CollectOne[assetassignmentsrepo.AssetAssignment](ctx, s.pool, query, pgx.NamedArgs{
		"id":            id,
		"status":        string(input.Status),
		"unassigned_at": input.UnassignedAt,
		"unassigned_by": input.UnassignedBy,
		"notes":         input.Notes,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return assetassignmentsrepo.AssetAssignment{}, getErr
		}
		return assetassignmentsrepo.AssetAssignment{}, repositories.ErrInvalidTransition
	}
	return record, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return pgxstore.DeleteOne(ctx, s.pool, table, pk, id)
}

func (s *Store) DeleteMany(ctx context.Context, filter assetassignmentsrepo.AssetAssignmentFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.DeleteWhere(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) GroupBy(ctx context.Context, field assetassignmentsrepo.GroupField, filter assetassignmentsrepo.AssetAssignmentFilter) ([]repositories.GroupCount, error) {
	args := pgx.NamedArgs{}
	return pgxstore.GroupBy(ctx, s.pool, table, string(field), applyFilter(filter, args), args)
}

func applyFilter(filter assetassignmentsrepo.AssetAssignmentFilter, args pgx.NamedArgs) postgresdb.Conditions {
	var where postgresdb.Conditions

	if len(filter.IDs) > 0 {
		where.Add("asset_assignment_id = ANY(@ids::uuid[])")
		args["ids"] = filter.IDs
	}
	if filter.UserProfileID != nil {
		where.Add("user_profile_id = @user_profile_id::uuid")
		args["user_profile_id"] = *filter.UserProfileID
	}
	if filter.AssetID != nil {
		where.Add("asset_id = @asset_id")
		args["asset_id"] = *filter.AssetID
	}
	if filter.AssetType != nil {
		where.Add("asset_type = @asset_type")
		args["asset_type"] = string(*filter.AssetType)
	}
	if filter.Status != nil {
		where.Add("status = @status")
		args["status"] = string(*filter.Status)
	}
	if filter.ComplianceStatus != nil {
		where.Add("compliance_status = @compliance_status")
		args["compliance_status"] = string(*filter.ComplianceStatus)
	}
	if filter.Active != nil {
		if *filter.Active {
			where.Add("unassigned_at IS NULL")
		} else {
			where.Add("unassigned_at IS NOT NULL")
		}
	}
	if filter.AssignedAfter != nil {
		where.Add("assigned_at >= @assigned_after")
		args["assigned_after"] = *filter.AssignedAfter
	}
	if filter.AssignedBefore != nil {
		where.Add("assigned_at < @assigned_before")
		args["assigned_before"] = *filter.AssignedBefore
	}

	return where
}
