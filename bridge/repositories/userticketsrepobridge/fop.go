package userticketsrepobridge

import (
	"fmt"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/userticketsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
)

var orderByFields = map[string]string{
	"user_ticket_id": userticketsrepo.OrderByPK,
	"created_at":     userticketsrepo.OrderByCreatedAt,
	"ticket_id":      userticketsrepo.OrderByTicketID,
}

func parseFilter(q *fopbridge.Query) (userticketsrepo.UserTicketFilter, error) {
	filter := userticketsrepo.UserTicketFilter{
		IDs:           q.Strings("ids"),
		UserProfileID: q.String("userProfileId"),
		TicketID:      q.String("ticketId"),
		TicketSystem:  q.String("ticketSystem"),
		TicketStatus:  q.String("ticketStatus"),
	}

	if v := q.String("relationship"); v != nil {
		rel := userticketsrepo.TicketRelationship(*v)
		if !rel.Valid() {
			return filter, fmt.Errorf("invalid relationship: %s", *v)
		}
		filter.Relationship = &rel
	}

	return filter, q.Err()
}

func parseListQuery(r *http.Request) (userticketsrepo.UserTicketFilter, fop.By, fop.PageStringCursor, error) {
	q := fopbridge.NewQuery(r)
	page := q.Page()
	orderBy := q.Order(orderByFields, userticketsrepo.DefaultOrderBy)
	filter, err := parseFilter(q)
	return filter, orderBy, page, err
}
