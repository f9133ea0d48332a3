package assetassignmentsrepobridge

import (
	"fmt"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/assetassignmentsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
)

var orderByFields = map[string]string{
	"asset_assignment_id": assetassignmentsrepo.OrderByPK,
	"assigned_at":         assetassignmentsrepo.OrderByAssignedAt,
	"created_at":          assetassignmentsrepo.OrderByCreatedAt,
	"asset_name":          assetassignmentsrepo.OrderByAssetName,
}

func parseFilter(q *fopbridge.Query) (assetassignmentsrepo.AssetAssignmentFilter, error) {
	filter := assetassignmentsrepo.AssetAssignmentFilter{
		IDs:            q.Strings("ids"),
		UserProfileID:  q.String("userProfileId"),
		AssetID:        q.String("assetId"),
		Active:         q.Bool("active"),
		AssignedAfter:  q.Time("assignedAfter"),
		AssignedBefore: q.Time("assignedBefore"),
	}

	if v := q.String("assetType"); v != nil {
		t := assetassignmentsrepo.AssetType(*v)
		if !t.Valid() {
			return filter, fmt.Errorf("invalid assetType: %s", *v)
		}
		filter.AssetType = &t
	}
	if v := q.String("status"); v != nil {
		s := assetassignmentsrepo.AssetStatus(*v)
		if !s.Valid() {
			return filter, fmt.Errorf("invalid status: %s", *v)
		}
		filter.Status = &s
	}
	if v := q.String("complianceStatus"); v != nil {
		c := assetassignmentsrepo.ComplianceStatus(*v)
		if !c.Valid() {
			return filter, fmt.Errorf("invalid complianceStatus: %s", *v)
		}
		filter.ComplianceStatus = &c
	}

	return filter, q.Err()
}

func parseListQuery(r *http.Request) (assetassignmentsrepo.AssetAssignmentFilter, fop.By, fop.PageStringCursor, error) {
	q := fopbridge.NewQuery(r)
	page := q.Page()
	orderBy := q.Order(orderByFields, assetassignmentsrepo.DefaultOrderBy)
	filter, err := parseFilter(q)
	return filter, orderBy, page, err
}
