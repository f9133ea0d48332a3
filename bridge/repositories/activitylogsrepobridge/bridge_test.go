package activitylogsrepobridge_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/bridge/repositories/activitylogsrepobridge"
	"github.com/jrazmi/helix/bridge/scaffolding/bridgetest"
	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/sdk/logger"
)

type stubStore struct {
	activitylogsrepo.Storer
	appended    []activitylogsrepo.NewActivityLog
	recentLimit int
	lastFilter  activitylogsrepo.ActivityLogFilter
}

func (s *stubStore) Append(ctx context.Context, entry activitylogsrepo.NewActivityLog) (activitylogsrepo.ActivityLog, error) {
	s.appended = append(s.appended, entry)
	return activitylogsrepo.ActivityLog{
		ActivityLogID: uuid.NewString(),
		UserProfileID: entry.UserProfileID,
		Action:        entry.Action,
		Outcome:       entry.Outcome,
		OccurredAt:    *entry.OccurredAt,
	}, nil
}

func (s *stubStore) AppendMany(ctx context.Context, entries []activitylogsrepo.NewActivityLog) (int64, error) {
	s.appended = append(s.appended, entries...)
	return int64(len(entries)), nil
}

func (s *stubStore) ListRecent(ctx context.Context, userProfileID string, limit int) ([]activitylogsrepo.ActivityLog, error) {
	s.recentLimit = limit
	return nil, nil
}

func (s *stubStore) List(ctx context.Context, filter activitylogsrepo.ActivityLogFilter, orderBy fop.By, page fop.PageStringCursor) ([]activitylogsrepo.ActivityLog, error) {
	s.lastFilter = filter
	return nil, nil
}

func (s *stubStore) AggregateRiskScore(ctx context.Context, filter activitylogsrepo.ActivityLogFilter) (repositories.Aggregate, error) {
	s.lastFilter = filter
	avg := 42.5
	return repositories.Aggregate{Count: 4, Avg: &avg}, nil
}

func setup(t *testing.T) (*stubStore, http.Handler) {
	t.Helper()
	store := &stubStore{}
	repo := activitylogsrepo.NewRepository(logger.NewDiscard(), store, activitylogsrepo.WithDefaultRetention(24*time.Hour))
	h := bridgetest.NewHandler(func(g *web.RouteGroup) {
		activitylogsrepobridge.AddHttpRoutes(g, activitylogsrepobridge.Config{Repository: repo})
	})
	return store, h
}

func entry(user string) map[string]any {
	return map[string]any{
		"userProfileId": user,
		"action":        "login",
		"outcome":       "SUCCESS",
		"ipAddress":     "10.0.0.7",
	}
}

func TestAppendStampsRetention(t *testing.T) {
	store, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodPost, "/activity", entry(uuid.NewString()))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, store.appended, 1)
	got := store.appended[0]
	require.NotNil(t, got.OccurredAt)
	require.NotNil(t, got.RetentionDate)
	assert.Equal(t, got.OccurredAt.Add(24*time.Hour), *got.RetentionDate)
}

func TestAppendRejectsBadInput(t *testing.T) {
	_, h := setup(t)

	bad := entry(uuid.NewString())
	bad["ipAddress"] = "not-an-ip"
	rec := bridgetest.Do(t, h, http.MethodPost, "/activity", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad = entry(uuid.NewString())
	bad["outcome"] = "MAYBE"
	rec = bridgetest.Do(t, h, http.MethodPost, "/activity", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityIsNotEditable(t *testing.T) {
	_, h := setup(t)

	path := "/activity/" + uuid.NewString()
	rec := bridgetest.Do(t, h, http.MethodPut, path, entry(uuid.NewString()))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = bridgetest.Do(t, h, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAppendBatch(t *testing.T) {
	store, h := setup(t)
	user := uuid.NewString()

	rec := bridgetest.Do(t, h, http.MethodPost, "/activity/batch", map[string]any{
		"entries": []map[string]any{entry(user), entry(user), entry(user)},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, int64(3), bridgetest.Record[activitylogsrepobridge.AppendBatchResult](t, rec).Appended)
	assert.Len(t, store.appended, 3)

	rec = bridgetest.Do(t, h, http.MethodPost, "/activity/batch", map[string]any{"entries": []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := entry(user)
	delete(bad, "action")
	rec = bridgetest.Do(t, h, http.MethodPost, "/activity/batch", map[string]any{
		"entries": []map[string]any{entry(user), bad},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, store.appended, 3, "invalid batches are not written")
}

func TestListRecentClampsLimit(t *testing.T) {
	store, h := setup(t)
	user := uuid.NewString()

	tests := []struct {
		query string
		want  int
	}{
		{"", activitylogsrepo.DefaultRecentLimit},
		{"?limit=10", 10},
		{"?limit=100000", activitylogsrepo.DefaultRecentLimit},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit%s", tt.query), func(t *testing.T) {
			rec := bridgetest.Do(t, h, http.MethodGet, "/users/"+user+"/activity"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, store.recentLimit)
		})
	}

	rec := bridgetest.Do(t, h, http.MethodGet, "/users/"+user+"/activity?limit=ten", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFilterWindow(t *testing.T) {
	store, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/activity?outcome=BLOCKED&minRiskScore=70&occurredAfter=2024-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, store.lastFilter.Outcome)
	assert.Equal(t, activitylogsrepo.OutcomeBlocked, *store.lastFilter.Outcome)
	require.NotNil(t, store.lastFilter.MinRiskScore)
	assert.Equal(t, 70, *store.lastFilter.MinRiskScore)
	require.NotNil(t, store.lastFilter.OccurredAfter)

	rec = bridgetest.Do(t, h, http.MethodGet, "/activity?occurredAfter=2024-02-01&occurredBefore=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRiskScore(t *testing.T) {
	_, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/activity/stats/risk-score?action=login", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	agg := bridgetest.Record[repositories.Aggregate](t, rec)
	assert.Equal(t, int64(4), agg.Count)
	require.NotNil(t, agg.Avg)
	assert.InDelta(t, 42.5, *agg.Avg, 0.001)
}
