package userticketsrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/userticketsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

type bridge struct {
	userTicketRepository *userticketsrepo.Repository
}

func newBridge(repo *userticketsrepo.Repository) *bridge {
	return &bridge{userTicketRepository: repo}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	filter, orderBy, page, err := parseListQuery(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	records, pageInfo, err := b.userTicketRepository.List(ctx, filter, orderBy, page)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewPaginatedResponseFromStringCursorInfo(records, pageInfo)
}

func (b *bridge) httpListByUser(ctx context.Context, r *http.Request) web.Encoder {
	records, err := b.userTicketRepository.ListByUserProfileID(ctx, web.Param(r, "user_profile_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

// httpListByTicket returns every profile relationship recorded on a ticket.
func (b *bridge) httpListByTicket(ctx context.Context, r *http.Request) web.Encoder {
	records, err := b.userTicketRepository.ListByTicketID(ctx, web.Param(r, "ticket_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	record, err := b.userTicketRepository.Get(ctx, web.Param(r, "user_ticket_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpLookup(ctx context.Context, r *http.Request) web.Encoder {
	key := userticketsrepo.TicketKey{
		UserProfileID: web.QueryParam(r, "userProfileId"),
		TicketID:      web.QueryParam(r, "ticketId"),
		Relationship:  userticketsrepo.TicketRelationship(web.QueryParam(r, "relationship")),
	}

	record, err := b.userTicketRepository.GetByKey(ctx, key)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input userticketsrepo.CreateUserTicket
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.userTicketRepository.Create(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewCreatedResponse(record)
}

func (b *bridge) httpUpsert(ctx context.Context, r *http.Request) web.Encoder {
	var input userticketsrepo.CreateUserTicket
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.userTicketRepository.Upsert(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	var input userticketsrepo.UpdateUserTicket
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.userTicketRepository.Update(ctx, web.Param(r, "user_ticket_id"), input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	if err := b.userTicketRepository.Delete(ctx, web.Param(r, "user_ticket_id")); err != nil {
		return errs.FromRepository(err)
	}
	return web.NoContent{}
}

func (b *bridge) httpGroupBy(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	groups, err := b.userTicketRepository.GroupBy(ctx, userticketsrepo.GroupField(web.QueryParam(r, "field")), filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(groups)
}
