package assetassignmentsrepo

import (
	"time"

	"github.com/jrazmi/helix/core/scaffolding/fop"
)

type AssetAssignmentFilter struct {
	IDs              []string
	UserProfileID    *string
	AssetID          *string
	AssetType        *AssetType
	Status           *AssetStatus
	ComplianceStatus *ComplianceStatus
	// Active selects assignments not yet unassigned (true) or ended (false).
	Active         *bool
	AssignedAfter  *time.Time
	AssignedBefore *time.Time
}

func (f AssetAssignmentFilter) Empty() bool {
	return len(f.IDs) == 0 && f.UserProfileID == nil && f.AssetID == nil && f.AssetType == nil &&
		f.Status == nil && f.ComplianceStatus == nil && f.Active == nil &&
		f.AssignedAfter == nil && f.AssignedBefore == nil
}

const (
	OrderByPK         = "asset_assignment_id"
	OrderByAssignedAt = "assigned_at"
	OrderByCreatedAt  = "created_at"
	OrderByAssetName  = "asset_name"
)

var DefaultOrderBy = fop.NewBy(OrderByAssignedAt, fop.DESC)

type GroupField string

const (
	GroupByAssetType        GroupField = "asset_type"
	GroupByStatus           GroupField = "status"
	GroupByComplianceStatus GroupField = "compliance_status"
)

func (g GroupField) Valid() bool {
	switch g {
	case GroupByAssetType, GroupByStatus, GroupByComplianceStatus:
		return true
	}
	return false
}

func cursorFor(orderBy fop.By) func(AssetAssignment) fop.StringCursor {
	return func(a AssetAssignment) fop.StringCursor {
		c := fop.StringCursor{PK: a.AssetAssignmentID}
		switch orderBy.Field {
		case OrderByAssignedAt:
			c.OrderValue = fop.TimeValue(a.AssignedAt)
		case OrderByCreatedAt:
			c.OrderValue = fop.TimeValue(a.CreatedAt)
		case OrderByAssetName:
			c.OrderValue = a.AssetName
		default:
			c.OrderValue = a.AssetAssignmentID
		}
		return c
	}
}
