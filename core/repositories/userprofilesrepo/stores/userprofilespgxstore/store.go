// Package userprofilespgxstore implements userprofilesrepo.Storer on
// PostgreSQL through pgx.
package userprofilespgxstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/pgxstore"
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/sdk/logger"
)

const table = "user_profiles"

var columnNames = []string{
	"user_profile_id", "helix_uid", "email", "email_canonical", "employee_id",
	"first_name", "last_name", "display_name", "department", "job_title",
	"manager_id", "start_date", "end_date", "status", "security_score",
	"risk_level", "mfa_enabled", "last_login_at", "tenant_id", "roles",
	"permissions", "created_by", "last_updated_by", "data_version",
	"created_at", "updated_at",
}

var columns = strings.Join(columnNames, ", ")

var orderColumns = map[string]pgxstore.Column{
	userprofilesrepo.OrderByPK:            {Name: "user_profile_id", Type: "uuid"},
	userprofilesrepo.OrderByCreatedAt:     {Name: "created_at", Type: "timestamptz"},
	userprofilesrepo.OrderByUpdatedAt:     {Name: "updated_at", Type: "timestamptz"},
	userprofilesrepo.OrderByEmail:         {Name: "email", Type: "text"},
	userprofilesrepo.OrderByHelixUID:      {Name: "helix_uid", Type: "text"},
	userprofilesrepo.OrderBySecurityScore: {Name: "security_score", Type: "int4"},
}

// qualified prefixes every column with alias, for queries that join
// user_profiles with itself.
func qualified(alias string) string {
	out := make([]string, len(columnNames))
	for i, c := range columnNames {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
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

const insertValues = `
	INSERT INTO user_profiles (
		helix_uid, email, email_canonical, employee_id, first_name, last_name,
		display_name, department, job_title, manager_id, start_date, end_date,
		status, security_score, risk_level, mfa_enabled, tenant_id, roles,
		permissions, created_by, last_updated_by
	) VALUES (
		@helix_uid, @email, @email_canonical, @employee_id, @first_name, @last_name,
		@display_name, @department, @job_title, @manager_id::uuid, @start_date, @end_date,
		coalesce(@status::text, 'ACTIVE'), coalesce(@security_score::int4, 0),
		coalesce(@risk_level::text, 'LOW'), coalesce(@mfa_enabled::boolean, false),
		@tenant_id, coalesce(@roles::text[], '{}'), coalesce(@permissions::text[], '{}'),
		@created_by, @created_by
	)`

var insertQuery = insertValues + ` RETURNING ` + columns

// The manager of an existing row is left alone so an upsert can never close
// a cycle in the hierarchy.
var upsertQuery = insertValues + `
	ON CONFLICT (helix_uid) DO UPDATE SET
		email = EXCLUDED.email,
		email_canonical = EXCLUDED.email_canonical,
		employee_id = EXCLUDED.employee_id,
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		display_name = EXCLUDED.display_name,
		department = EXCLUDED.department,
		job_title = EXCLUDED.job_title,
		start_date = EXCLUDED.start_date,
		end_date = EXCLUDED.end_date,
		status = EXCLUDED.status,
		security_score = EXCLUDED.security_score,
		risk_level = EXCLUDED.risk_level,
		mfa_enabled = EXCLUDED.mfa_enabled,
		tenant_id = EXCLUDED.tenant_id,
		roles = EXCLUDED.roles,
		permissions = EXCLUDED.permissions,
		last_updated_by = EXCLUDED.created_by,
		data_version = user_profiles.data_version + 1,
		updated_at = now()
	RETURNING ` + columns

func createArgs(input userprofilesrepo.CreateUserProfile) pgx.NamedArgs {
	return pgx.NamedArgs{
		"helix_uid":       input.HelixUID,
		"email":           input.Email,
		"email_canonical": input.EmailCanonical,
		"employee_id":     input.EmployeeID,
		"first_name":      input.FirstName,
		"last_name":       input.LastName,
		"display_name":    input.DisplayName,
		"department":      input.Department,
		"job_title":       input.JobTitle,
		"manager_id":      input.ManagerID,
		"start_date":      input.StartDate,
		"end_date":        input.EndDate,
		"status":          input.Status,
		"security_score":  input.SecurityScore,
		"risk_level":      input.RiskLevel,
		"mfa_enabled":     input.MFAEnabled,
		"tenant_id":       input.TenantID,
		"roles":           input.Roles,
		"permissions":     input.Permissions,
		"created_by":      input.CreatedBy,
	}
}

func (s *Store) Create(ctx context.Context, input userprofilesrepo.CreateUserProfile) (userprofilesrepo.UserProfile, error) {
	return pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, s.pool, insertQuery, createArgs(input))
}

// CreateMany inserts every profile in one transaction and one round trip.
func (s *Store) CreateMany(ctx context.Context, inputs []userprofilesrepo.CreateUserProfile) ([]userprofilesrepo.UserProfile, error) {
	var records []userprofilesrepo.UserProfile
	err := postgresdb.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		records, err = pgxstore.SendBatch[userprofilesrepo.CreateUserProfile, userprofilesrepo.UserProfile](ctx, tx, insertQuery, inputs, createArgs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Upsert locks an existing row first so a tenant change is checked against
// the hierarchy before the row is overwritten.
func (s *Store) Upsert(ctx context.Context, input userprofilesrepo.CreateUserProfile) (userprofilesrepo.UserProfile, error) {
	var record userprofilesrepo.UserProfile
	err := postgresdb.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, tx,
			"SELECT "+columns+" FROM user_profiles WHERE helix_uid = @helix_uid FOR UPDATE",
			pgx.NamedArgs{"helix_uid": input.HelixUID})
		switch {
		case err == nil:
			if err := s.guardTenantMove(ctx, tx, current, input.TenantID); err != nil {
				return err
			}
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		record, err = pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, tx, upsertQuery, createArgs(input))
		return err
	})
	if err != nil {
		return userprofilesrepo.UserProfile{}, err
	}
	return record, nil
}

func (s *Store) Get(ctx context.Context, id string) (userprofilesrepo.UserProfile, error) {
	return s.getBy(ctx, s.pool, "user_profile_id", id)
}

func (s *Store) GetByHelixUID(ctx context.Context, helixUID string) (userprofilesrepo.UserProfile, error) {
	return s.getBy(ctx, s.pool, "helix_uid", helixUID)
}

func (s *Store) GetByEmailCanonical(ctx context.Context, emailCanonical string) (userprofilesrepo.UserProfile, error) {
	return s.getBy(ctx, s.pool, "email_canonical", emailCanonical)
}

func (s *Store) GetByEmployeeID(ctx context.Context, employeeID string) (userprofilesrepo.UserProfile, error) {
	return s.getBy(ctx, s.pool, "employee_id", employeeID)
}

func (s *Store) getBy(ctx context.Context, db postgresdb.DBTX, column string, value string) (userprofilesrepo.UserProfile, error) {
	qc, err := postgresdb.QuoteIdentifier(column)
	if err != nil {
		return userprofilesrepo.UserProfile{}, err
	}
	query := fmt.Sprintf("SELECT %s FROM user_profiles WHERE %s = @value", columns, qc)
	return pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, db, query, pgx.NamedArgs{"value": value})
}

func (s *Store) List(ctx context.Context, filter userprofilesrepo.UserProfileFilter, orderBy fop.By, page fop.PageStringCursor) ([]userprofilesrepo.UserProfile, error) {
	args := pgx.NamedArgs{}
	return pgxstore.List[userprofilesrepo.UserProfile](ctx, s.pool, pgxstore.ListQuery{
		Select:  "SELECT " + columns + " FROM user_profiles",
		Where:   applyFilter(filter, args),
		Args:    args,
		OrderBy: orderBy,
		Columns: orderColumns,
		PK:      "user_profile_id",
		Page:    page,
	})
}

func (s *Store) Count(ctx context.Context, filter userprofilesrepo.UserProfileFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Count(ctx, s.pool, table, applyFilter(filter, args), args)
}

// Update applies the non-nil fields of input when the stored data_version
// still equals expectedVersion.
func (s *Store) Update(ctx context.Context, id string, expectedVersion int, input userprofilesrepo.UpdateUserProfile) (userprofilesrepo.UserProfile, error) {
	args := pgx.NamedArgs{
		"user_profile_id":  id,
		"expected_version": expectedVersion,
	}

	var sets []string
	set := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = @%s", column, column))
		args[column] = value
	}

	if input.HelixUID != nil {
		set("helix_uid", *input.HelixUID)
	}
	if input.Email != nil {
		set("email", *input.Email)
	}
	if input.EmailCanonical != nil {
		set("email_canonical", *input.EmailCanonical)
	}
	if input.EmployeeID != nil {
		set("employee_id", *input.EmployeeID)
	}
	if input.FirstName != nil {
		set("first_name", *input.FirstName)
	}
	if input.LastName != nil {
		set("last_name", *input.LastName)
	}
	if input.DisplayName != nil {
		set("display_name", *input.DisplayName)
	}
	if input.Department != nil {
		set("department", *input.Department)
	}
	if input.JobTitle != nil {
		set("job_title", *input.JobTitle)
	}
	if input.StartDate != nil {
		set("start_date", *input.StartDate)
	}
	if input.EndDate != nil {
		set("end_date", *input.EndDate)
	}
	if input.Status != nil {
		set("status", string(*input.Status))
	}
	if input.SecurityScore != nil {
		set("security_score", *input.SecurityScore)
	}
	if input.RiskLevel != nil {
		set("risk_level", string(*input.RiskLevel))
	}
	if input.MFAEnabled != nil {
		set("mfa_enabled", *input.MFAEnabled)
	}
	if input.TenantID != nil {
		set("tenant_id", *input.TenantID)
	}
	if input.Roles != nil {
		set("roles", *input.Roles)
	}
	if input.Permissions != nil {
		set("permissions", *input.Permissions)
	}
	if input.LastUpdatedBy != nil {
		set("last_updated_by", *input.LastUpdatedBy)
	}
	if len(sets) == 0 {
		return userprofilesrepo.UserProfile{}, repositories.ErrNoChanges
	}

	query := fmt.Sprintf(`
	UPDATE user_profiles SET %s, data_version = data_version + 1, updated_at = now()
	WHERE user_profile_id = @user_profile_id AND data_version = @expected_version
	RETURNING %s`, strings.Join(sets, ", "), columns)

	if input.TenantID == nil {
		record, err := pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, s.pool, query, args)
		if errors.Is(err, repositories.ErrNotFound) {
			return userprofilesrepo.UserProfile{}, s.missOrConflict(ctx, s.pool, id)
		}
		return record, err
	}

	var record userprofilesrepo.UserProfile
	err := postgresdb.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, tx,
			"SELECT "+columns+" FROM user_profiles WHERE user_profile_id = @id FOR UPDATE",
			pgx.NamedArgs{"id": id})
		if err != nil {
			return err
		}
		if current.DataVersion != expectedVersion {
			return repositories.ErrVersionConflict
		}
		if err := s.guardTenantMove(ctx, tx, current, input.TenantID); err != nil {
			return err
		}

		record, err = pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, tx, query, args)
		return err
	})
	if err != nil {
		return userprofilesrepo.UserProfile{}, err
	}
	return record, nil
}

// guardTenantMove runs on a row locked FOR UPDATE. When tenant differs from
// the stored one it takes the hierarchy locks of both tenants, then refuses
// the move if the manager or a direct report would be left in another tenant.
func (s *Store) guardTenantMove(ctx context.Context, tx pgx.Tx, current userprofilesrepo.UserProfile, tenant *string) error {
	if userprofilesrepo.SameTenant(current.TenantID, tenant) {
		return nil
	}
	if err := lockTenants(ctx, tx, current.TenantID, tenant); err != nil {
		return err
	}

	var manager *userprofilesrepo.UserProfile
	if current.ManagerID != nil {
		m, err := s.getBy(ctx, tx, "user_profile_id", *current.ManagerID)
		switch {
		case err == nil:
			manager = &m
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}
	}

	reports, err := pgxstore.CollectMany[userprofilesrepo.UserProfile](ctx, tx,
		"SELECT "+columns+" FROM user_profiles WHERE manager_id = @id::uuid",
		pgx.NamedArgs{"id": current.UserProfileID})
	if err != nil {
		return err
	}
	return userprofilesrepo.CheckTenantMove(tenant, manager, reports)
}

// lockTenants takes the transaction scoped hierarchy lock of every tenant,
// in sorted order so two opposite moves cannot deadlock. A nil tenant locks
// the empty key.
func lockTenants(ctx context.Context, tx pgx.Tx, tenants ...*string) error {
	keys := make([]string, 0, len(tenants))
	for _, t := range tenants {
		var key string
		if t != nil {
			key = *t
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext('user_profiles.manager:' || @tenant::text))", pgx.NamedArgs{"tenant": key}); err != nil {
			return pgxstore.Error(err)
		}
	}
	return nil
}

// missOrConflict explains why a versioned write touched no row.
func (s *Store) missOrConflict(ctx context.Context, db postgresdb.DBTX, id string) error {
	var exists bool
	err := db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM user_profiles WHERE user_profile_id = @id)", pgx.NamedArgs{"id": id}).Scan(&exists)
	if err != nil {
		return pgxstore.Error(err)
	}
	if !exists {
		return repositories.ErrNotFound
	}
	return repositories.ErrVersionConflict
}

const ancestorsQuery = `
	WITH RECURSIVE chain AS (
		SELECT user_profile_id, manager_id, 1 AS depth
		FROM user_profiles WHERE user_profile_id = @start_id
		UNION ALL
		SELECT m.user_profile_id, m.manager_id, c.depth + 1
		FROM chain c JOIN user_profiles m ON m.user_profile_id = c.manager_id
		WHERE c.depth <= @max_depth
	)
	SELECT user_profile_id::text FROM chain ORDER BY depth`

// SetManager serialises hierarchy changes per tenant: the profile row is
// locked, then a transaction scoped advisory lock on the tenant, and only
// then is the manager's ancestor chain read and checked.
func (s *Store) SetManager(ctx context.Context, id string, change userprofilesrepo.ManagerChange) (userprofilesrepo.UserProfile, error) {
	var record userprofilesrepo.UserProfile

	err := postgresdb.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, tx,
			"SELECT "+columns+" FROM user_profiles WHERE user_profile_id = @id FOR UPDATE",
			pgx.NamedArgs{"id": id})
		if err != nil {
			return err
		}
		if current.DataVersion != change.ExpectedVersion {
			return repositories.ErrVersionConflict
		}

		if err := lockTenants(ctx, tx, current.TenantID); err != nil {
			return err
		}

		if change.ManagerID != nil {
			manager, err := s.getBy(ctx, tx, "user_profile_id", *change.ManagerID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: manager %s", repositories.ErrForeignKeyViolation, *change.ManagerID)
				}
				return err
			}
			if !userprofilesrepo.SameTenant(current.TenantID, manager.TenantID) {
				return fmt.Errorf("%w: manager %s", repositories.ErrTenantMismatch, manager.UserProfileID)
			}

			rows, err := tx.Query(ctx, ancestorsQuery, pgx.NamedArgs{
				"start_id":  manager.UserProfileID,
				"max_depth": userprofilesrepo.MaxHierarchyDepth,
			})
			if err != nil {
				return pgxstore.Error(err)
			}
			chain, err := pgx.CollectRows(rows, pgx.RowTo[string])
			if err != nil {
				return pgxstore.Error(err)
			}
			if err := userprofilesrepo.CheckManagerChain(id, manager.UserProfileID, chain); err != nil {
				return err
			}
		}

		record, err = pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, tx, `
			UPDATE user_profiles
			SET manager_id = @manager_id::uuid, last_updated_by = coalesce(@updated_by::text, last_updated_by),
				data_version = data_version + 1, updated_at = now()
			WHERE user_profile_id = @id AND data_version = @expected_version
			RETURNING `+columns, pgx.NamedArgs{
			"id":               id,
			"manager_id":       change.ManagerID,
			"updated_by":       change.UpdatedBy,
			"expected_version": change.ExpectedVersion,
		})
		if errors.Is(err, repositories.ErrNotFound) {
			return repositories.ErrVersionConflict
		}
		return err
	})
	if err != nil {
		return userprofilesrepo.UserProfile{}, err
	}

	s.log.DebugContext(ctx, "manager changed", "user_profile_id", id, "manager_id", change.ManagerID)
	return record, nil
}

// ManagementChain returns the managers above id, nearest first, at most
// maxDepth of them.
func (s *Store) ManagementChain(ctx context.Context, id string, maxDepth int) ([]userprofilesrepo.UserProfile, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	query := `
	WITH RECURSIVE chain AS (
		SELECT manager_id, 1 AS depth FROM user_profiles WHERE user_profile_id = @id
		UNION ALL
		SELECT m.manager_id, c.depth + 1
		FROM chain c JOIN user_profiles m ON m.user_profile_id = c.manager_id
		WHERE c.depth < @max_depth
	)
	SELECT ` + qualified("u") + `
	FROM chain c JOIN user_profiles u ON u.user_profile_id = c.manager_id
	ORDER BY c.depth`

	return pgxstore.CollectMany[userprofilesrepo.UserProfile](ctx, s.pool, query, pgx.NamedArgs{
		"id":        id,
		"max_depth": maxDepth,
	})
}

func (s *Store) ListDirectReports(ctx context.Context, managerID string) ([]userprofilesrepo.UserProfile, error) {
	query := "SELECT " + columns + " FROM user_profiles WHERE manager_id = @manager_id::uuid ORDER BY created_at, user_profile_id"
	return pgxstore.CollectMany[userprofilesrepo.UserProfile](ctx, s.pool, query, pgx.NamedArgs{"manager_id": managerID})
}

func (s *Store) RecordLogin(ctx context.Context, id string, at time.Time) (userprofilesrepo.UserProfile, error) {
	query := `
	UPDATE user_profiles
	SET last_login_at = @at, data_version = data_version + 1, updated_at = now()
	WHERE user_profile_id = @id
	RETURNING ` + columns
	return pgxstore.CollectOne[userprofilesrepo.UserProfile](ctx, s.pool, query, pgx.NamedArgs{"id": id, "at": at})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return pgxstore.ExecOne(ctx, s.pool, "DELETE FROM user_profiles WHERE user_profile_id = @id", pgx.NamedArgs{"id": id})
}

func (s *Store) DeleteMany(ctx context.Context, filter userprofilesrepo.UserProfileFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.DeleteWhere(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) GroupBy(ctx context.Context, field userprofilesrepo.GroupField, filter userprofilesrepo.UserProfileFilter) ([]repositories.GroupCount, error) {
	args := pgx.NamedArgs{}
	return pgxstore.GroupBy(ctx, s.pool, table, string(field), applyFilter(filter, args), args)
}

func (s *Store) AggregateSecurityScore(ctx context.Context, filter userprofilesrepo.UserProfileFilter) (repositories.Aggregate, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Aggregate(ctx, s.pool, table, "security_score", applyFilter(filter, args), args)
}

func applyFilter(filter userprofilesrepo.UserProfileFilter, args pgx.NamedArgs) postgresdb.Conditions {
	var where postgresdb.Conditions

	if len(filter.IDs) > 0 {
		where.Add("user_profile_id = ANY(@ids::uuid[])")
		args["ids"] = filter.IDs
	}
	if filter.TenantID != nil {
		where.Add("tenant_id = @tenant_id")
		args["tenant_id"] = *filter.TenantID
	}
	if filter.Status != nil {
		where.Add("status = @status")
		args["status"] = string(*filter.Status)
	}
	if filter.RiskLevel != nil {
		where.Add("risk_level = @risk_level")
		args["risk_level"] = string(*filter.RiskLevel)
	}
	if filter.Department != nil {
		where.Add("department = @department")
		args["department"] = *filter.Department
	}
	if filter.ManagerID != nil {
		where.Add("manager_id = @manager_id::uuid")
		args["manager_id"] = *filter.ManagerID
	}
	if filter.HasManager != nil {
		if *filter.HasManager {
			where.Add("manager_id IS NOT NULL")
		} else {
			where.Add("manager_id IS NULL")
		}
	}
	if filter.MFAEnabled != nil {
		where.Add("mfa_enabled = @mfa_enabled")
		args["mfa_enabled"] = *filter.MFAEnabled
	}
	if filter.Role != nil {
		where.Add("@role = ANY(roles)")
		args["role"] = *filter.Role
	}
	if filter.MinSecurityScore != nil {
		where.Add("security_score >= @min_security_score")
		args["min_security_score"] = *filter.MinSecurityScore
	}
	if filter.MaxSecurityScore != nil {
		where.Add("security_score <= @max_security_score")
		args["max_security_score"] = *filter.MaxSecurityScore
	}
	if filter.SearchTerm != nil {
		where.Add("(email ILIKE @search_term OR helix_uid ILIKE @search_term OR display_name ILIKE @search_term OR first_name ILIKE @search_term OR last_name ILIKE @search_term)")
		args["search_term"] = "%" + escapeLike(*filter.SearchTerm) + "%"
	}
	if filter.CreatedAfter != nil {
		where.Add("created_at >= @created_after")
		args["created_after"] = *filter.CreatedAfter
	}
	if filter.CreatedBefore != nil {
		where.Add("created_at < @created_before")
		args["created_before"] = *filter.CreatedBefore
	}

	return where
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
