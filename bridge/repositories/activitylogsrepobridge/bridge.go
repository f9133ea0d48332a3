package activitylogsrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

type bridge struct {
	activityLogRepository *activitylogsrepo.Repository
}

func newBridge(repo *activitylogsrepo.Repository) *bridge {
	return &bridge{activityLogRepository: repo}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	filter, orderBy, page, err := parseListQuery(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	records, pageInfo, err := b.activityLogRepository.List(ctx, filter, orderBy, page)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewPaginatedResponseFromStringCursorInfo(records, pageInfo)
}

// httpListRecent returns the newest entries of one profile. The repository
// clamps a missing or oversized limit.
func (b *bridge) httpListRecent(ctx context.Context, r *http.Request) web.Encoder {
	q := fopbridge.NewQuery(r)
	limit := q.Int("limit")
	if err := q.Err(); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	n := 0
	if limit != nil {
		n = *limit
	}

	records, err := b.activityLogRepository.ListRecent(ctx, web.Param(r, "user_profile_id"), n)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	record, err := b.activityLogRepository.Get(ctx, web.Param(r, "activity_log_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpAppend(ctx context.Context, r *http.Request) web.Encoder {
	var input activitylogsrepo.NewActivityLog
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.activityLogRepository.Append(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewCreatedResponse(record)
}

func (b *bridge) httpAppendMany(ctx context.Context, r *http.Request) web.Encoder {
	var input AppendBatchInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	n, err := b.activityLogRepository.AppendMany(ctx, input.Entries)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewCreatedResponse(AppendBatchResult{Appended: n})
}

func (b *bridge) httpCount(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	n, err := b.activityLogRepository.Count(ctx, filter)
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

	groups, err := b.activityLogRepository.GroupBy(ctx, activitylogsrepo.GroupField(web.QueryParam(r, "field")), filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(groups)
}

func (b *bridge) httpRiskScore(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	agg, err := b.activityLogRepository.AggregateRiskScore(ctx, filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(agg)
}
