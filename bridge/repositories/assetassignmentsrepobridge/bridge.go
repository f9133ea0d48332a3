package assetassignmentsrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/assetassignmentsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

type bridge struct {
	assetAssignmentRepository *assetassignmentsrepo.Repository
}

func newBridge(repo *assetassignmentsrepo.Repository) *bridge {
	return &bridge{assetAssignmentRepository: repo}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	filter, orderBy, page, err := parseListQuery(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	records, pageInfo, err := b.assetAssignmentRepository.List(ctx, filter, orderBy, page)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewPaginatedResponseFromStringCursorInfo(records, pageInfo)
}

func (b *bridge) httpListByUser(ctx context.Context, r *http.Request) web.Encoder {
	records, err := b.assetAssignmentRepository.ListByUserProfileID(ctx, web.Param(r, "user_profile_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(records)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	record, err := b.assetAssignmentRepository.Get(ctx, web.Param(r, "asset_assignment_id"))
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input assetassignmentsrepo.CreateAssetAssignment
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.assetAssignmentRepository.Create(ctx, input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewCreatedResponse(record)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	var input assetassignmentsrepo.UpdateAssetAssignment
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.assetAssignmentRepository.Update(ctx, web.Param(r, "asset_assignment_id"), input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

// httpUnassign ends the assignment with one of the released statuses.
func (b *bridge) httpUnassign(ctx context.Context, r *http.Request) web.Encoder {
	var input assetassignmentsrepo.Unassignment
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	record, err := b.assetAssignmentRepository.Unassign(ctx, web.Param(r, "asset_assignment_id"), input)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(record)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	if err := b.assetAssignmentRepository.Delete(ctx, web.Param(r, "asset_assignment_id")); err != nil {
		return errs.FromRepository(err)
	}
	return web.NoContent{}
}

func (b *bridge) httpCount(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	n, err := b.assetAssignmentRepository.Count(ctx, filter)
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

	groups, err := b.assetAssignmentRepository.GroupBy(ctx, assetassignmentsrepo.GroupField(web.QueryParam(r, "field")), filter)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewNonPaginatedRecords(groups)
}
