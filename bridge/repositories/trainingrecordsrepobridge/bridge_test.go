package trainingrecordsrepobridge_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/bridge/repositories/trainingrecordsrepobridge"
	"github.com/jrazmi/helix/bridge/scaffolding/bridgetest"
	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/trainingrecordsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/sdk/logger"
)

type stubStore struct {
	trainingrecordsrepo.Storer
	records      map[string]trainingrecordsrepo.TrainingRecord
	lastScope    trainingrecordsrepo.ComplianceScope
	overdueAt    time.Time
	overdueLimit int
}

func (s *stubStore) Create(ctx context.Context, in trainingrecordsrepo.CreateTrainingRecord) (trainingrecordsrepo.TrainingRecord, error) {
	status := trainingrecordsrepo.StatusNotStarted
	if in.Status != nil {
		status = *in.Status
	}
	rec := trainingrecordsrepo.TrainingRecord{
		TrainingRecordID: uuid.NewString(),
		UserProfileID:    in.UserProfileID,
		CourseID:         in.CourseID,
		CourseName:       in.CourseName,
		Status:           status,
		CompletedAt:      in.CompletedAt,
	}
	s.records[rec.TrainingRecordID] = rec
	return rec, nil
}

func (s *stubStore) GetByCourse(ctx context.Context, userProfileID, courseID string) (trainingrecordsrepo.TrainingRecord, error) {
	for _, rec := range s.records {
		if rec.UserProfileID == userProfileID && rec.CourseID == courseID {
			return rec, nil
		}
	}
	return trainingrecordsrepo.TrainingRecord{}, repositories.ErrNotFound
}

func (s *stubStore) ListOverdue(ctx context.Context, now time.Time, limit int) ([]trainingrecordsrepo.TrainingRecord, error) {
	s.overdueAt = now
	s.overdueLimit = limit
	return nil, nil
}

func (s *stubStore) ComplianceSummary(ctx context.Context, scope trainingrecordsrepo.ComplianceScope, now time.Time) (trainingrecordsrepo.ComplianceSummary, error) {
	s.lastScope = scope
	return trainingrecordsrepo.ComplianceSummary{Total: 4, Completed: 2, Waived: 1, NotStarted: 1}, nil
}

func setup(t *testing.T) (*stubStore, http.Handler) {
	t.Helper()
	store := &stubStore{records: make(map[string]trainingrecordsrepo.TrainingRecord)}
	repo := trainingrecordsrepo.NewRepository(logger.NewDiscard(), store)
	h := bridgetest.NewHandler(func(g *web.RouteGroup) {
		trainingrecordsrepobridge.AddHttpRoutes(g, trainingrecordsrepobridge.Config{Repository: repo})
	})
	return store, h
}

func TestCreateCompletedStampsCompletion(t *testing.T) {
	_, h := setup(t)
	user := uuid.NewString()

	rec := bridgetest.Do(t, h, http.MethodPost, "/training", map[string]any{
		"userProfileId": user,
		"courseId":      "SEC-101",
		"courseName":    "Security Awareness",
		"status":        "COMPLETED",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := bridgetest.Record[trainingrecordsrepo.TrainingRecord](t, rec)
	assert.NotNil(t, created.CompletedAt)

	rec = bridgetest.Do(t, h, http.MethodGet, "/users/"+user+"/training/SEC-101", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, created.TrainingRecordID, bridgetest.Record[trainingrecordsrepo.TrainingRecord](t, rec).TrainingRecordID)

	rec = bridgetest.Do(t, h, http.MethodGet, "/users/"+user+"/training/SEC-999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRejectsBadScore(t *testing.T) {
	_, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodPost, "/training", map[string]any{
		"userProfileId": uuid.NewString(), "courseId": "SEC-101", "courseName": "Security Awareness", "score": 140,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompliance(t *testing.T) {
	store, h := setup(t)
	user := uuid.NewString()

	rec := bridgetest.Do(t, h, http.MethodGet, "/users/"+user+"/training/compliance", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := bridgetest.Record[trainingrecordsrepo.ComplianceSummary](t, rec)
	assert.InDelta(t, 0.75, summary.CompletionRate, 0.0001)
	require.NotNil(t, store.lastScope.UserProfileID)
	assert.Equal(t, user, *store.lastScope.UserProfileID)
	assert.Nil(t, store.lastScope.TenantID)

	rec = bridgetest.Do(t, h, http.MethodGet, "/tenants/acme/training/compliance", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, store.lastScope.TenantID)
	assert.Equal(t, "acme", *store.lastScope.TenantID)

	rec = bridgetest.Do(t, h, http.MethodGet, "/users/not-a-uuid/training/compliance", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOverdue(t *testing.T) {
	store, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/training/overdue?asOf=2025-03-01&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), store.overdueAt)
	assert.Equal(t, 5, store.overdueLimit)

	rec = bridgetest.Do(t, h, http.MethodGet, "/training/overdue", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.WithinDuration(t, time.Now(), store.overdueAt, time.Minute)

	rec = bridgetest.Do(t, h, http.MethodGet, "/training/overdue?asOf=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	_, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/training?status=PASSED", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
