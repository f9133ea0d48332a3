// Package userticketspgxstore implements userticketsrepo.Storer on
// PostgreSQL through pgx.
package userticketspgxstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/pgxstore"
	"github.com/jrazmi/helix/core/repositories/userticketsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/sdk/logger"
)

const (
	table   = "user_tickets"
	pk      = "user_ticket_id"
	columns = `user_ticket_id, user_profile_id, ticket_id, ticket_system, relationship,
		ticket_title, ticket_status, created_at, updated_at`
)

var orderColumns = map[string]pgxstore.Column{
	userticketsrepo.OrderByPK:        {Name: pk, Type: "uuid"},
	userticketsrepo.OrderByCreatedAt: {Name: "created_at", Type: "timestamptz"},
	userticketsrepo.OrderByTicketID:  {Name: "ticket_id", Type: "text"},
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
	INSERT INTO user_tickets (
		user_profile_id, ticket_id, ticket_system, relationship, ticket_title, ticket_status
	) VALUES (
		@user_profile_id::uuid, @ticket_id, @ticket_system, @relationship, @ticket_title, @ticket_status
	)`

const insertQuery = insertValues + ` RETURNING ` + columns

const upsertQuery = insertValues + `
	ON CONFLICT ON CONSTRAINT user_tickets_user_ticket_relationship_key DO UPDATE SET
		ticket_system = coalesce(EXCLUDED.ticket_system, user_tickets.ticket_system),
		ticket_title = coalesce(EXCLUDED.ticket_title, user_tickets.ticket_title),
		ticket_status = coalesce(EXCLUDED.ticket_status, user_tickets.ticket_status),
		updated_at = now()
	RETURNING ` + columns

func createArgs(input userticketsrepo.CreateUserTicket) pgx.NamedArgs {
	return pgx.NamedArgs{
		"user_profile_id": input.UserProfileID,
		"ticket_id":       input.TicketID,
		"ticket_system":   input.TicketSystem,
		"relationship":    string(input.Relationship),
		"ticket_title":    input.TicketTitle,
		"ticket_status":   input.TicketStatus,
	}
}

func (s *Store) Create(ctx context.Context, input userticketsrepo.CreateUserTicket) (userticketsrepo.UserTicket, error) {
	return pgxstore.CollectOne[userticketsrepo.UserTicket](ctx, s.pool, insertQuery, createArgs(input))
}

func (s *Store) CreateMany(ctx context.Context, inputs []userticketsrepo.CreateUserTicket) ([]userticketsrepo.UserTicket, error) {
	var records []userticketsrepo.UserTicket
	err := postgresdb.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		records, err = pgxstore.SendBatch[userticketsrepo.CreateUserTicket, userticketsrepo.UserTicket](ctx, tx, insertQuery, inputs, createArgs)
		return err
	})
	return records, err
}

func (s *Store) Upsert(ctx context.Context, input userticketsrepo.CreateUserTicket) (userticketsrepo.UserTicket, error) {
	return pgxstore.CollectOne[userticketsrepo.UserTicket](ctx, s.pool, upsertQuery, createArgs(input))
}

func (s *Store) Get(ctx context.Context, id string) (userticketsrepo.UserTicket, error) {
	return pgxstore.GetOne[userticketsrepo.UserTicket](ctx, s.pool, table, columns, pk, id)
}

func (s *Store) GetByKey(ctx context.Context, key userticketsrepo.TicketKey) (userticketsrepo.UserTicket, error) {
	query := `SELECT ` + columns + ` FROM user_tickets
	WHERE user_profile_id = @user_profile_id::uuid AND ticket_id = @ticket_id AND relationship = @relationship`
	return pgxstore.CollectOne[userticketsrepo.UserTicket](ctx, s.pool, query, pgx.NamedArgs{
		"user_profile_id": key.UserProfileID,
		"ticket_id":       key.TicketID,
		"relationship":    string(key.Relationship),
	})
}

func (s *Store) List(ctx context.Context, filter userticketsrepo.UserTicketFilter, orderBy fop.By, page fop.PageStringCursor) ([]userticketsrepo.UserTicket, error) {
	args := pgx.NamedArgs{}
	return pgxstore.List[userticketsrepo.UserTicket](ctx, s.pool, pgxstore.ListQuery{
		Select:  "SELECT " + columns + " FROM user_tickets",
		Where:   applyFilter(filter, args),
		Args:    args,
		OrderBy: orderBy,
		Columns: orderColumns,
		PK:      pk,
		Page:    page,
	})
}

func (s *Store) ListByTicketID(ctx context.Context, ticketID string) ([]userticketsrepo.UserTicket, error) {
	query := `SELECT ` + columns + ` FROM user_tickets WHERE ticket_id = @ticket_id ORDER BY relationship, created_at`
	return pgxstore.CollectMany[userticketsrepo.UserTicket](ctx, s.pool, query, pgx.NamedArgs{"ticket_id": ticketID})
}

func (s *Store) ListByUserProfileID(ctx context.Context, userProfileID string) ([]userticketsrepo.UserTicket, error) {
	query := `SELECT ` + columns + ` FROM user_tickets WHERE user_profile_id = @user_profile_id::uuid ORDER BY created_at DESC, user_ticket_id`
	return pgxstore.CollectMany[userticketsrepo.UserTicket](ctx, s.pool, query, pgx.NamedArgs{"user_profile_id": userProfileID})
}

func (s *Store) Count(ctx context.Context, filter userticketsrepo.UserTicketFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.Count(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) Update(ctx context.Context, id string, input userticketsrepo.UpdateUserTicket) (userticketsrepo.UserTicket, error) {
	set := pgxstore.NewSet()
	pgxstore.SetPtr(set, "ticket_system", input.TicketSystem)
	pgxstore.SetPtr(set, "ticket_title", input.TicketTitle)
	pgxstore.SetPtr(set, "ticket_status", input.TicketStatus)
	return pgxstore.UpdateOne[userticketsrepo.UserTicket](ctx, s.pool, table, pk, id, set, columns)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return pgxstore.DeleteOne(ctx, s.pool, table, pk, id)
}

func (s *Store) DeleteMany(ctx context.Context, filter userticketsrepo.UserTicketFilter) (int64, error) {
	args := pgx.NamedArgs{}
	return pgxstore.DeleteWhere(ctx, s.pool, table, applyFilter(filter, args), args)
}

func (s *Store) GroupBy(ctx context.Context, field userticketsrepo.GroupField, filter userticketsrepo.UserTicketFilter) ([]repositories.GroupCount, error) {
	args := pgx.NamedArgs{}
	return pgxstore.GroupBy(ctx, s.pool, table, string(field), applyFilter(filter, args), args)
}

func applyFilter(filter userticketsrepo.UserTicketFilter, args pgx.NamedArgs) postgresdb.Conditions {
	var where postgresdb.Conditions

	if len(filter.IDs) > 0 {
		where.Add("user_ticket_id = ANY(@ids::uuid[])")
		args["ids"] = filter.IDs
	}
	if filter.UserProfileID != nil {
		where.Add("user_profile_id = @user_profile_id::uuid")
		args["user_profile_id"] = *filter.UserProfileID
	}
	if filter.TicketID != nil {
		where.Add("ticket_id = @ticket_id")
		args["ticket_id"] = *filter.TicketID
	}
	if filter.TicketSystem != nil {
		where.Add("ticket_system = @ticket_system")
		args["ticket_system"] = *filter.TicketSystem
	}
	if filter.Relationship != nil {
		where.Add("relationship = @relationship")
		args["relationship"] = string(*filter.Relationship)
	}
	if filter.TicketStatus != nil {
		where.Add("ticket_status = @ticket_status")
		args["ticket_status"] = *filter.TicketStatus
	}

	return where
}
