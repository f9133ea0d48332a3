package userprofilesrepobridge

import (
	"fmt"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
)

var orderByFields = map[string]string{
	"user_profile_id": userprofilesrepo.OrderByPK,
	"created_at":      userprofilesrepo.OrderByCreatedAt,
	"updated_at":      userprofilesrepo.OrderByUpdatedAt,
	"email":           userprofilesrepo.OrderByEmail,
	"helix_uid":       userprofilesrepo.OrderByHelixUID,
	"security_score":  userprofilesrepo.OrderBySecurityScore,
}

func parseFilter(q *fopbridge.Query) (userprofilesrepo.UserProfileFilter, error) {
	filter := userprofilesrepo.UserProfileFilter{
		IDs:              q.Strings("ids"),
		TenantID:         q.String("tenantId"),
		Department:       q.String("department"),
		ManagerID:        q.String("managerId"),
		HasManager:       q.Bool("hasManager"),
		MFAEnabled:       q.Bool("mfaEnabled"),
		Role:             q.String("role"),
		MinSecurityScore: q.Int("minSecurityScore"),
		MaxSecurityScore: q.Int("maxSecurityScore"),
		SearchTerm:       q.String("searchTerm"),
		CreatedAfter:     q.Time("createdAfter"),
		CreatedBefore:    q.Time("createdBefore"),
	}

	if v := q.String("status"); v != nil {
		status := userprofilesrepo.UserStatus(*v)
		if !status.Valid() {
			return filter, fmt.Errorf("invalid status: %s", *v)
		}
		filter.Status = &status
	}
	if v := q.String("riskLevel"); v != nil {
		risk := userprofilesrepo.RiskLevel(*v)
		if !risk.Valid() {
			return filter, fmt.Errorf("invalid riskLevel: %s", *v)
		}
		filter.RiskLevel = &risk
	}

	return filter, q.Err()
}

func parseListQuery(r *http.Request) (userprofilesrepo.UserProfileFilter, fop.By, fop.PageStringCursor, error) {
	q := fopbridge.NewQuery(r)
	page := q.Page()
	orderBy := q.Order(orderByFields, userprofilesrepo.DefaultOrderBy)
	filter, err := parseFilter(q)
	return filter, orderBy, page, err
}
