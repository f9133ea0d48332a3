package userprofilesrepo

import (
	"strconv"
	"time"

	"github.com/jrazmi/helix/core/scaffolding/fop"
)

// UserProfileFilter holds the available fields a query can be filtered on.
type UserProfileFilter struct {
	IDs              []string
	TenantID         *string
	Status           *UserStatus
	RiskLevel        *RiskLevel
	Department       *string
	ManagerID        *string
	HasManager       *bool
	MFAEnabled       *bool
	Role             *string
	MinSecurityScore *int
	MaxSecurityScore *int
	SearchTerm       *string
	CreatedAfter     *time.Time
	CreatedBefore    *time.Time
}

// Empty reports whether no filter field is set.
func (f UserProfileFilter) Empty() bool {
	return len(f.IDs) == 0 && f.TenantID == nil && f.Status == nil && f.RiskLevel == nil &&
		f.Department == nil && f.ManagerID == nil && f.HasManager == nil && f.MFAEnabled == nil &&
		f.Role == nil && f.MinSecurityScore == nil && f.MaxSecurityScore == nil &&
		f.SearchTerm == nil && f.CreatedAfter == nil && f.CreatedBefore == nil
}

const (
	OrderByPK            = "user_profile_id"
	OrderByCreatedAt     = "created_at"
	OrderByUpdatedAt     = "updated_at"
	OrderByEmail         = "email"
	OrderByHelixUID      = "helix_uid"
	OrderBySecurityScore = "security_score"
)

var DefaultOrderBy = fop.NewBy(OrderByCreatedAt, fop.DESC)

// GroupField names a column profiles can be grouped on.
type GroupField string

const (
	GroupByStatus     GroupField = "status"
	GroupByRiskLevel  GroupField = "risk_level"
	GroupByDepartment GroupField = "department"
	GroupByTenant     GroupField = "tenant_id"
	GroupByMFA        GroupField = "mfa_enabled"
)

func (g GroupField) Valid() bool {
	switch g {
	case GroupByStatus, GroupByRiskLevel, GroupByDepartment, GroupByTenant, GroupByMFA:
		return true
	}
	return false
}

// cursorFor returns the page cursor of a profile under orderBy.
func cursorFor(orderBy fop.By) func(UserProfile) fop.StringCursor {
	return func(p UserProfile) fop.StringCursor {
		c := fop.StringCursor{PK: p.UserProfileID}
		switch orderBy.Field {
		case OrderByCreatedAt:
			c.OrderValue = fop.TimeValue(p.CreatedAt)
		case OrderByUpdatedAt:
			c.OrderValue = fop.TimeValue(p.UpdatedAt)
		case OrderByEmail:
			c.OrderValue = p.Email
		case OrderByHelixUID:
			c.OrderValue = p.HelixUID
		case OrderBySecurityScore:
			c.OrderValue = strconv.Itoa(p.SecurityScore)
		default:
			c.OrderValue = p.UserProfileID
		}
		return c
	}
}
