package linkedaccountsrepobridge

import (
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/linkedaccountsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
)

var orderByFields = map[string]string{
	"linked_account_id": linkedaccountsrepo.OrderByPK,
	"created_at":        linkedaccountsrepo.OrderByCreatedAt,
	"updated_at":        linkedaccountsrepo.OrderByUpdatedAt,
	"platform":          linkedaccountsrepo.OrderByPlatform,
}

func parseFilter(q *fopbridge.Query) (linkedaccountsrepo.LinkedAccountFilter, error) {
	filter := linkedaccountsrepo.LinkedAccountFilter{
		IDs:           q.Strings("ids"),
		UserProfileID: q.String("userProfileId"),
		Platform:      q.String("platform"),
		IsVerified:    q.Bool("isVerified"),
		SyncEnabled:   q.Bool("syncEnabled"),
		SyncedBefore:  q.Time("syncedBefore"),
	}
	return filter, q.Err()
}

func parseListQuery(r *http.Request) (linkedaccountsrepo.LinkedAccountFilter, fop.By, fop.PageStringCursor, error) {
	q := fopbridge.NewQuery(r)
	page := q.Page()
	orderBy := q.Order(orderByFields, linkedaccountsrepo.DefaultOrderBy)
	filter, err := parseFilter(q)
	return filter, orderBy, page, err
}
