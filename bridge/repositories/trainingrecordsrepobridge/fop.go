package trainingrecordsrepobridge

import (
	"fmt"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/repositories/trainingrecordsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
)

var orderByFields = map[string]string{
	"training_record_id": trainingrecordsrepo.OrderByPK,
	"created_at":         trainingrecordsrepo.OrderByCreatedAt,
	"updated_at":         trainingrecordsrepo.OrderByUpdatedAt,
	"course_id":          trainingrecordsrepo.OrderByCourseID,
	"course_name":        trainingrecordsrepo.OrderByCourseName,
}

func parseFilter(q *fopbridge.Query) (trainingrecordsrepo.TrainingRecordFilter, error) {
	filter := trainingrecordsrepo.TrainingRecordFilter{
		IDs:           q.Strings("ids"),
		UserProfileID: q.String("userProfileId"),
		CourseID:      q.String("courseId"),
		IsRequired:    q.Bool("required"),
		DueBefore:     q.Time("dueBefore"),
		ExpiresBefore: q.Time("expiresBefore"),
	}

	if v := q.String("status"); v != nil {
		status := trainingrecordsrepo.TrainingStatus(*v)
		if !status.Valid() {
			return filter, fmt.Errorf("invalid status: %s", *v)
		}
		filter.Status = &status
	}

	return filter, q.Err()
}

func parseListQuery(r *http.Request) (trainingrecordsrepo.TrainingRecordFilter, fop.By, fop.PageStringCursor, error) {
	q := fopbridge.NewQuery(r)
	page := q.Page()
	orderBy := q.Order(orderByFields, trainingrecordsrepo.DefaultOrderBy)
	filter, err := parseFilter(q)
	return filter, orderBy, page, err
}
