// Package linkedaccountspgxstore implements linkedaccountsrepo.Storer on
// PostgreSQL through pgx.
package linkedaccountspgxstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/linkedaccountsrepo"
	"github.com/jrazmi/helix/core/repositories/pgxstore"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/sdk/logger"
)

const (
	table   = "linked_accounts"
	pk      = "linked_account_id"
	columns = `linked_account_id, user_profile_id, platform, platform_user_id, platform_username,
		platform_email, is_verified, last_sync_at, sync_enabled, metadata, created_at, updated_at`
)

var orderColumns = map[string]pgxstore.Column{
	linkedaccountsrepo.OrderByPK:        {Name: pk, Type: "uuid"},
	linkedaccountsrepo.OrderByCreatedAt: {Name: "created_at", Type: "timestamptz"},
	linkedaccountsrepo.OrderByUpdatedAt: {Name: "updated_at", Type: "timestamptz"},
	linkedaccountsrepo.OrderByPlatform:  {Name: "platform", Type: "text"},
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
	INSERT INTO linked_accounts (
		user_profile_id, platform, platform_user_id, platform_username, platform_email,
		is_verified, sync_enabled, metadata
	) VALUES (
		@user_profile_id::uuid, @platform, @platform_user_id, @platform_username, @platform_email,
		coalesce(@is_verified::boolean, false), coalesce(@sync_enabled::boolean, true), @metadata::jsonb
	)`

const insertQuery = insertValues + ` RETURNING ` + columns

const upsertQuery = insertValues + `
	ON CONFLICT (platform, platform_user_id) DO UPDATE SET
		user_profile_id = EXCLUDED.user_profile_id,
		platform_username = coalesce(EXCLUDED.platform_username, linked_accounts.platform_username),
		platform_email = coalesce(EXCLUDED.platform_email, linked_accounts.platform_email),
		is_verified = EXCLUDED.is_verified,
		sync_enabled = EXCLUDED.sync_enabled,
		metadata = coalesce(EXCLUDED.metadata, linked_accounts.metadata),
		updated_at = now()
	RETURNING ` + columns

func createArgs(input linkedaccountsrepo.CreateLinkedAccount) pgx.NamedArgs {
	return pgx.NamedArgs{
		"user_profile_id":   input.UserProfileID,
		"platform":          input.Platform,
		"platform_user_id":  input.PlatformUserID,
		"platform_username": input.PlatformUsername,
		"platform_email":    input.PlatformEmail,
		"is_verified":       input.IsVerified,
		"sync_enabled":      input.SyncEnabled,
		"metadata":          input.Metadata,
	}
}

func (s *Store) Create(ctx context.Context, input linkedaccountsrepo.CreateLinkedAccount) (linkedaccountsrepo.LinkedAccount, error) {
	return pgxstore.CollectOne[linkedaccountsrepo.LinkedAccount](ctx, s.pool, insertQuery, createArgs(input))
}

func (s *Store) CreateMany(ctx context.Context, inputs []linkedaccountsrepo.CreateLinkedAccount) ([]linkedaccountsrepo.LinkedAccount, error) {
	var records []linkedaccountsrepo.LinkedAccount
	err := postgresdb.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		records, err = pgxstore.SendBatch[linkedaccountsrepo.CreateLinkedAccount, linkedaccountsrepo.LinkedAccount](ctx, tx, insertQuery, inputs, createArgs)
		return err
	})
	return records, err
}

func (s *Store) Upsert(ctx context.Context, input linkedaccountsrepo.CreateLinkedAccount) (linkedaccountsrepo.LinkedAccount, error) {
	return pgxstore.CollectOne[linkedaccountsrepo.LinkedAccount](ctx, s.pool, upsertQuery, createArgs(input))
}

func (s *Store) Get(ctx context.Context, id string) (linkedaccountsrepo.LinkedAccount, error) {
	return pgxstore.GetOne[linkedaccountsrepo.LinkedAccount](ctx, s.pool, table, columns, pk, id)
}

func (s *Store) GetByPlatformIdentity(ctx context.Context, platform, platformUserID string) (linkedaccountsrepo.LinkedAccount, error) {
	query := `SELECT ` + columns + ` FROM linked_accounts WHERE platform = @platform AND platform_user_id = @platform_user_id`
	return pgxstore.CollectOne[linkedaccountsrepo.LinkedAccount](ctx, s.pool, query, pgx.NamedArgs{
		"platform":         platform,
		"platform_user_id": platformUserID,
	})
}

func (s *Store) List(ctx context.Context, filter linkedaccountsrepo.LinkedAccountFilter, orderBy fop.By, page fop.PageStringCursor) ([]linkedaccountsrepo.LinkedAccount, error) {
	args := pgx.NamedArgs{}
	return pgxstore.List[linkedaccountsrepo.LinkedAccount](ctx, s.pool, pgxstore.ListQuery{
		Select:  "SELECT " + columns + " FROM linked_accounts",
		Where:   applyFilter(filter, args),
		Args:    args,
		OrderBy: orderBy,
		Columns: orderColumns,
		PK:      pk,
		Page:    page,
	})
}

func (s *Store) ListByUserProfileID(ctx context.Context, userProfileID string) ([]linkedaccountsrepo.LinkedAccount, error) {
	query := `SELECT ` + columns + ` FROM linked_accounts WHERE user_profile_id = @user_profile_id::uuid ORDER BY platform, platform_user_id`
	return pgxstore.CollectMany[linkedaccountsrepo.LinkedAccount](ctx, s.pool, query, pgx.NamedArgs{"user_profile_id": userProfileID})
}

func (s *Store) Count(ctx context.Context, filter linkedaccountsrepo.LinkedAccountFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Count(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) Update(ctx context.Context, id string, input linkedaccountsrepo.UpdateLinkedAccount) (linkedaccountsrepo.LinkedAccount, error) {
	set := pgxstore.NewSet()
	pgxstore.SetPtr(set, "platform_username", input.PlatformUsername)
	pgxstore.SetPtr(set, "platform_email", input.PlatformEmail)
	pgxstore.SetPtr(set, "is_verified", input.IsVerified)
	pgxstore.SetPtr(set, "sync_enabled", input.SyncEnabled)
	if input.Metadata != nil {
		set.Add("metadata", input.Metadata)
	}
	return pgxstore.UpdateOne[linkedaccountsrepo.LinkedAccount](ctx, s.pool, table, pk, id, set, columns)
}

func (s *Store) MarkSynced(ctx context.Context, id string, at time.Time) (linkedaccountsrepo.LinkedAccount, error) {
	set := pgxstore.NewSet()
	set.Add("last_sync_at", at)
	return pgxstore.UpdateOne[linkedaccountsrepo.LinkedAccount](ctx, s.pool, table, pk, id, set, columns)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return pgxstore.DeleteOne(ctx, s.pool, table, pk, id)
}

func (s *Store) DeleteMany(ctx context.Context, filter linkedaccountsrepo.LinkedAccountFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.DeleteWhere(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) GroupBy(ctx context.Context, field linkedaccountsrepo.GroupField, filter linkedaccountsrepo.LinkedAccountFilter) ([]repositories.GroupCount, error) {
	args := pgx.NamedArgs{}
	return pgxstore.GroupBy(ctx, s.pool, table, string(field), applyFilter(filter, args), args)
}

func applyFilter(filter linkedaccountsrepo.LinkedAccountFilter, args pgx.NamedArgs) postgresdb.Conditions {
	var where postgresdb.Conditions

	if len(filter.IDs) > 0 {
		where.Add("linked_account_id = ANY(@ids::uuid[])")
		args["ids"] = filter.IDs
	}
	if filter.UserProfileID != nil {
		where.Add("user_profile_id = @user_profile_id::uuid")
		args["user_profile_id"] = *filter.UserProfileID
	}
	if filter.Platform != nil {
		where.Add("platform = @platform")
		args["platform"] = *filter.Platform
	}
	if filter.IsVerified != nil {
		where.Add("is_verified = @is_verified")
		args["is_verified"] = *filter.IsVerified
	}
	if filter.SyncEnabled != nil {
		where.Add("sync_enabled = @sync_enabled")
		args["sync_enabled"] = *filter.SyncEnabled
	}
	if filter.SyncedBefore != nil {
		where.Add("(last_sync_at IS NULL OR last_sync_at < @synced_before)")
		args["synced_before"] = *filter.SyncedBefore
	}

	return where
}
