package userprofilesrepobridge

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

// bridge provides HTTP handlers for UserProfile operations.
type bridge struct {
	userProfileRepository *userprofilesrepo.Repository
}

func newBridge(repo *userprofilesrepo.Repository) *bridge {
	return &bridge{userProfileRepository: repo}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	filter, orderBy, page, err := parseListQuery(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	records, pageInfo, err := b.userProfileRepository.List(ctx, filter, orderBy, page)
	if err != nil {
		return errs.FromRepository(err)
	}

	return fopbridge.NewPaginatedResponseFromStringCursorInfo(records, pageInfo)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	record, err := b.userProfileRepository.Get(ctx, web.Param(r, "user_profile_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

// httpLookup finds one profile by exactly one of helixUid, email or
// employeeId.
func (b *bridge) httpLookup(ctx context.Context, r *http.Request) web.Encoder {
	q := fopbridge.NewQuery(r)
	helixUID, email, employeeID := q.String("helixUid"), q.String("email"), q.String("employeeId")

	var (
		record userprofilesrepo.UserProfile
		err    error
	)
	switch {
	case helixUID != nil && email == nil && employeeID == nil:
		record, err = b.userProfileRepository.GetByHelixUID(ctx, *helixUID)
	case email != nil && helixUID == nil && employeeID == nil:
		record, err = b.userProfileRepository.GetByEmail(ctx, *email)
	case employeeID != nil && helixUID == nil && email == nil:
		record, err = b.userProfileRepository.GetByEmployeeID(ctx, *employeeID)
	default:
		return errs.Newf(errs.InvalidArgument, "exactly one of helixUid, email or employeeId is required")
	}
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input userprofilesrepo.CreateUserProfile
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.userProfileRepository.Create(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewCreatedResponse(record)
}

func (b *bridge) httpUpsert(ctx context.Context, r *http.Request) web.Encoder {
	var input userprofilesrepo.CreateUserProfile
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.userProfileRepository.Upsert(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	var input UpdateUserProfileInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.userProfileRepository.Update(ctx, web.Param(r, "user_profile_id"), input.DataVersion, input.UpdateUserProfile)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	if err := b.userProfileRepository.Delete(ctx, web.Param(r, "user_profile_id")); err != nil {
		return errs.FromRepository(err)
	}
	return web.NoContent{}
}

func (b *bridge) httpSetManager(ctx context.Context, r *http.Request) web.Encoder {
	var change userprofilesrepo.ManagerChange
	if err := web.Decode(r, &change); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.userProfileRepository.SetManager(ctx, web.Param(r, "user_profile_id"), change)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpDirectReports(ctx context.Context, r *http.Request) web.Encoder {
	records, err := b.userProfileRepository.ListDirectReports(ctx, web.Param(r, "user_profile_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

func (b *bridge) httpManagementChain(ctx context.Context, r *http.Request) web.Encoder {
	records, err := b.userProfileRepository.ManagementChain(ctx, web.Param(r, "user_profile_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

func (b *bridge) httpRecordLogin(ctx context.Context, r *http.Request) web.Encoder {
	var input RecordLoginInput
	if err := web.Decode(r, &input); err != nil && !errors.Is(err, web.ErrEmptyBody) {
		return errs.New(errs.InvalidArgument, err)
	}

	at := time.Now()
	if input.At != nil {
		at = *input.At
	}

	record, err := b.userProfileRepository.RecordLogin(ctx, web.Param(r, "user_profile_id"), at)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpCount(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	n, err := b.userProfileRepository.Count(ctx, filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(fopbridge.CountResult{Count: n})
}

func (b *bridge) httpGroupBy(ctx context.Context, r *http.Request) web.Encoder {
	q := fopbridge.NewQuery(r)
	field := userprofilesrepo.GroupField(web.QueryParam(r, "field"))
	filter, err := parseFilter(q)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	groups, err := b.userProfileRepository.GroupBy(ctx, field, filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(groups)
}

func (b *bridge) httpSecurityScore(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	agg, err := b.userProfileRepository.AggregateSecurityScore(ctx, filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(agg)
}
