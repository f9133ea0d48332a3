package securityeventsrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/securityeventsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

type bridge struct {
	securityEventRepository *securityeventsrepo.Repository
}

func newBridge(repo *securityeventsrepo.Repository) *bridge {
	return &bridge{securityEventRepository: repo}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	filter, orderBy, page, err := parseListQuery(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	records, pageInfo, err := b.securityEventRepository.List(ctx, filter, orderBy, page)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewPaginatedResponseFromStringCursorInfo(records, pageInfo)
}

func (b *bridge) httpListByUser(ctx context.Context, r *http.Request) web.Encoder {
	records, err := b.securityEventRepository.ListByUserProfileID(ctx, web.Param(r, "user_profile_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	record, err := b.securityEventRepository.Get(ctx, web.Param(r, "security_event_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input securityeventsrepo.CreateSecurityEvent
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.securityEventRepository.Create(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewCreatedResponse(record)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	var input securityeventsrepo.UpdateSecurityEvent
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.securityEventRepository.Update(ctx, web.Param(r, "security_event_id"), input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpAssign(ctx context.Context, r *http.Request) web.Encoder {
	var input AssignInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.securityEventRepository.Assign(ctx, web.Param(r, "security_event_id"), input.AssignedTo)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

// httpTransition moves the event through its workflow. Disallowed moves
// are rejected as failed preconditions; a lost race reports aborted.
func (b *bridge) httpTransition(ctx context.Context, r *http.Request) web.Encoder {
	var input securityeventsrepo.StatusChange
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.securityEventRepository.Transition(ctx, web.Param(r, "security_event_id"), input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	if err := b.securityEventRepository.Delete(ctx, web.Param(r, "security_event_id")); err != nil {
		return errs.FromRepository(err)
	}
	return web.NoContent{}
}

func (b *bridge) httpCount(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	n, err := b.securityEventRepository.Count(ctx, filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(fopbridge.CountResult{Count: n})
}

func (b *bridge) httpGroupBy(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	groups, err := b.securityEventRepository.GroupBy(ctx, securityeventsrepo.GroupField(web.QueryParam(r, "field")), filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(groups)
}
