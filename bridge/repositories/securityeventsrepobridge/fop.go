package securityeventsrepobridge

import (
	"fmt"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/securityeventsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
)

var orderByFields = map[string]string{
	"security_event_id": securityeventsrepo.OrderByPK,
	"detected_at":       securityeventsrepo.OrderByDetectedAt,
	"created_at":        securityeventsrepo.OrderByCreatedAt,
	"updated_at":        securityeventsrepo.OrderByUpdatedAt,
}

func parseFilter(q *fopbridge.Query) (securityeventsrepo.SecurityEventFilter, error) {
	filter := securityeventsrepo.SecurityEventFilter{
		IDs:            q.Strings("ids"),
		UserProfileID:  q.String("userProfileId"),
		EventType:      q.String("eventType"),
		OpenOnly:       q.Bool("open"),
		AssignedTo:     q.String("assignedTo"),
		DetectedAfter:  q.Time("detectedAfter"),
		DetectedBefore: q.Time("detectedBefore"),
	}

	if v := q.String("severity"); v != nil {
		severity := securityeventsrepo.EventSeverity(*v)
		if !severity.Valid() {
			return filter, fmt.Errorf("invalid severity: %s", *v)
		}
		filter.Severity = &severity
	}

	if v := q.String("status"); v != nil {
		status := securityeventsrepo.EventStatus(*v)
		if !status.Valid() {
			return filter, fmt.Errorf("invalid status: %s", *v)
		}
		filter.Status = &status
	}

	return filter, q.Err()
}

func parseListQuery(r *http.Request) (securityeventsrepo.SecurityEventFilter, fop.By, fop.PageStringCursor, error) {
	q := fopbridge.NewQuery(r)
	page := q.Page()
	orderBy := q.Order(orderByFields, securityeventsrepo.DefaultOrderBy)
	filter, err := parseFilter(q)
	return filter, orderBy, page, err
}
