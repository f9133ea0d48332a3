package linkedaccountsrepobridge

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/linkedaccountsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

type bridge struct {
	linkedAccountRepository *linkedaccountsrepo.Repository
}

func newBridge(repo *linkedaccountsrepo.Repository) *bridge {
	return &bridge{linkedAccountRepository: repo}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	filter, orderBy, page, err := parseListQuery(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	records, pageInfo, err := b.linkedAccountRepository.List(ctx, filter, orderBy, page)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewPaginatedResponseFromStringCursorInfo(records, pageInfo)
}

func (b *bridge) httpListByUser(ctx context.Context, r *http.Request) web.Encoder {
	records, err := b.linkedAccountRepository.ListByUserProfileID(ctx, web.Param(r, "user_profile_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	record, err := b.linkedAccountRepository.Get(ctx, web.Param(r, "linked_account_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpLookup(ctx context.Context, r *http.Request) web.Encoder {
	platform := web.QueryParam(r, "platform")
	platformUserID := web.QueryParam(r, "platformUserId")
	if platform == "" || platformUserID == "" {
		return errs.Newf(errs.InvalidArgument, "platform and platformUserId are required")
	}

	record, err := b.linkedAccountRepository.GetByPlatformIdentity(ctx, platform, platformUserID)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input linkedaccountsrepo.CreateLinkedAccount
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.linkedAccountRepository.Create(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewCreatedResponse(record)
}

// httpUpsert creates the account or refreshes the one already linked for
// the same platform identity.
func (b *bridge) httpUpsert(ctx context.Context, r *http.Request) web.Encoder {
	var input linkedaccountsrepo.CreateLinkedAccount
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.linkedAccountRepository.Upsert(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	var input linkedaccountsrepo.UpdateLinkedAccount
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.linkedAccountRepository.Update(ctx, web.Param(r, "linked_account_id"), input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpMarkSynced(ctx context.Context, r *http.Request) web.Encoder {
	var input SyncInput
	if err := web.Decode(r, &input); err != nil && !errors.Is(err, web.ErrEmptyBody) {
		return errs.New(errs.InvalidArgument, err)
	}

	var at time.Time
	if input.At != nil {
		at = *input.At
	}

	record, err := b.linkedAccountRepository.MarkSynced(ctx, web.Param(r, "linked_account_id"), at)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	if err := b.linkedAccountRepository.Delete(ctx, web.Param(r, "linked_account_id")); err != nil {
		return errs.FromRepository(err)
	}
	return web.NoContent{}
}

func (b *bridge) httpGroupBy(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	groups, err := b.linkedAccountRepository.GroupBy(ctx, linkedaccountsrepo.GroupField(web.QueryParam(r, "field")), filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(groups)
}
