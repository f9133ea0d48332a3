package activitylogsrepobridge

import (
	"fmt"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
)

var orderByFields = map[string]string{
	"activity_log_id": activitylogsrepo.OrderByPK,
	"occurred_at":     activitylogsrepo.OrderByOccurredAt,
	"created_at":      activitylogsrepo.OrderByCreatedAt,
}

func parseFilter(q *fopbridge.Query) (activitylogsrepo.ActivityLogFilter, error) {
	filter := activitylogsrepo.ActivityLogFilter{
		UserProfileID:  q.String("userProfileId"),
		Action:         q.String("action"),
		Resource:       q.String("resource"),
		MinRiskScore:   q.Int("minRiskScore"),
		OccurredAfter:  q.Time("occurredAfter"),
		OccurredBefore: q.Time("occurredBefore"),
	}

	if v := q.String("outcome"); v != nil {
		outcome := activitylogsrepo.ActivityOutcome(*v)
		if !outcome.Valid() {
			return filter, fmt.Errorf("invalid outcome: %s", *v)
		}
		filter.Outcome = &outcome
	}

	if err := q.Err(); err != nil {
		return filter, err
	}

	if filter.OccurredAfter != nil && filter.OccurredBefore != nil && filter.OccurredBefore.Before(*filter.OccurredAfter) {
		return filter, fmt.Errorf("occurredBefore must not precede occurredAfter")
	}

	return filter, nil
}

func parseListQuery(r *http.Request) (activitylogsrepo.ActivityLogFilter, fop.By, fop.PageStringCursor, error) {
	q := fopbridge.NewQuery(r)
	page := q.Page()
	orderBy := q.Order(orderByFields, activitylogsrepo.DefaultOrderBy)
	filter, err := parseFilter(q)
	return filter, orderBy, page, err
}
