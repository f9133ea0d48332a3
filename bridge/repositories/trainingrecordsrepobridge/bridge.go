package trainingrecordsrepobridge

import (
	"context"
	"net/http"
	"time"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/trainingrecordsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

type bridge struct {
	trainingRecordRepository *trainingrecordsrepo.Repository
}

func newBridge(repo *trainingrecordsrepo.Repository) *bridge {
	return &bridge{trainingRecordRepository: repo}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	filter, orderBy, page, err := parseListQuery(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	records, pageInfo, err := b.trainingRecordRepository.List(ctx, filter, orderBy, page)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewPaginatedResponseFromStringCursorInfo(records, pageInfo)
}

func (b *bridge) httpListByUser(ctx context.Context, r *http.Request) web.Encoder {
	records, err := b.trainingRecordRepository.ListByUserProfileID(ctx, web.Param(r, "user_profile_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

// httpListOverdue lists required training past due as of asOf, or now.
func (b *bridge) httpListOverdue(ctx context.Context, r *http.Request) web.Encoder {
	q := fopbridge.NewQuery(r)
	asOf := q.Time("asOf")
	limit := q.Int("limit")
	if err := q.Err(); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	var now time.Time
	if asOf != nil {
		now = *asOf
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	records, err := b.trainingRecordRepository.ListOverdue(ctx, now, n)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	record, err := b.trainingRecordRepository.Get(ctx, web.Param(r, "training_record_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpGetByCourse(ctx context.Context, r *http.Request) web.Encoder {
	record, err := b.trainingRecordRepository.GetByCourse(ctx, web.Param(r, "user_profile_id"), web.Param(r, "course_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input trainingrecordsrepo.CreateTrainingRecord
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.trainingRecordRepository.Create(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewCreatedResponse(record)
}

func (b *bridge) httpUpsert(ctx context.Context, r *http.Request) web.Encoder {
	var input trainingrecordsrepo.CreateTrainingRecord
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.trainingRecordRepository.Upsert(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	var input trainingrecordsrepo.UpdateTrainingRecord
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.trainingRecordRepository.Update(ctx, web.Param(r, "training_record_id"), input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	if err := b.trainingRecordRepository.Delete(ctx, web.Param(r, "training_record_id")); err != nil {
		return errs.FromRepository(err)
	}
	return web.NoContent{}
}

func (b *bridge) httpUserCompliance(ctx context.Context, r *http.Request) web.Encoder {
	id := web.Param(r, "user_profile_id")
	return b.compliance(ctx, trainingrecordsrepo.ComplianceScope{UserProfileID: &id})
}

func (b *bridge) httpTenantCompliance(ctx context.Context, r *http.Request) web.Encoder {
	tenant := web.Param(r, "tenant_id")
	return b.compliance(ctx, trainingrecordsrepo.ComplianceScope{TenantID: &tenant})
}

func (b *bridge) compliance(ctx context.Context, scope trainingrecordsrepo.ComplianceScope) web.Encoder {
	summary, err := b.trainingRecordRepository.ComplianceSummary(ctx, scope)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(summary)
}

func (b *bridge) httpCount(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	n, err := b.trainingRecordRepository.Count(ctx, filter)
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

	groups, err := b.trainingRecordRepository.GroupBy(ctx, trainingrecordsrepo.GroupField(web.QueryParam(r, "field")), filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(groups)
}

func (b *bridge) httpScore(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	agg, err := b.trainingRecordRepository.AggregateScore(ctx, filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(agg)
}
