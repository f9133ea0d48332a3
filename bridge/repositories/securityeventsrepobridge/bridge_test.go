package securityeventsrepobridge_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/bridge/repositories/securityeventsrepobridge"
	"github.com/jrazmi/helix/bridge/scaffolding/bridgetest"
	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/securityeventsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/sdk/logger"
)

type stubStore struct {
	securityeventsrepo.Storer
	events     map[string]securityeventsrepo.SecurityEvent
	lastFilter securityeventsrepo.SecurityEventFilter

	// raceTo, when set, is applied between the read and the conditional
	// write of a transition.
	raceTo securityeventsrepo.EventStatus
}

func (s *stubStore) Create(ctx context.Context, in securityeventsrepo.CreateSecurityEvent) (securityeventsrepo.SecurityEvent, error) {
	e := securityeventsrepo.SecurityEvent{
		SecurityEventID: uuid.NewString(),
		UserProfileID:   in.UserProfileID,
		EventType:       in.EventType,
		Title:           in.Title,
		Severity:        in.Severity,
		Status:          securityeventsrepo.StatusOpen,
		DetectedAt:      time.Now().UTC(),
		AssignedTo:      in.AssignedTo,
	}
	s.events[e.SecurityEventID] = e
	return e, nil
}

func (s *stubStore) Get(ctx context.Context, id string) (securityeventsrepo.SecurityEvent, error) {
	e, ok := s.events[id]
	if !ok {
		return securityeventsrepo.SecurityEvent{}, repositories.ErrNotFound
	}
	return e, nil
}

func (s *stubStore) Assign(ctx context.Context, id string, assignee *string) (securityeventsrepo.SecurityEvent, error) {
	e := s.events[id]
	e.AssignedTo = assignee
	s.events[id] = e
	return e, nil
}

func (s *stubStore) Transition(ctx context.Context, id string, from securityeventsrepo.EventStatus, change securityeventsrepo.StatusChange, at time.Time) (securityeventsrepo.SecurityEvent, error) {
	e := s.events[id]
	if s.raceTo != "" {
		e.Status = s.raceTo
		s.events[id] = e
	}
	if e.Status != from {
		return securityeventsrepo.SecurityEvent{}, repositories.ErrVersionConflict
	}
	e.Status = change.Status
	e.Resolution = change.Resolution
	if change.Status == securityeventsrepo.StatusResolved || change.Status == securityeventsrepo.StatusFalsePositive {
		e.ResolvedAt = &at
	}
	s.events[id] = e
	return e, nil
}

func (s *stubStore) List(ctx context.Context, filter securityeventsrepo.SecurityEventFilter, orderBy fop.By, page fop.PageStringCursor) ([]securityeventsrepo.SecurityEvent, error) {
	s.lastFilter = filter
	return nil, nil
}

func setup(t *testing.T) (*stubStore, http.Handler) {
	t.Helper()
	store := &stubStore{events: make(map[string]securityeventsrepo.SecurityEvent)}
	repo := securityeventsrepo.NewRepository(logger.NewDiscard(), store)
	h := bridgetest.NewHandler(func(g *web.RouteGroup) {
		securityeventsrepobridge.AddHttpRoutes(g, securityeventsrepobridge.Config{Repository: repo})
	})
	return store, h
}

func raise(t *testing.T, h http.Handler) securityeventsrepo.SecurityEvent {
	t.Helper()
	rec := bridgetest.Do(t, h, http.MethodPost, "/security-events", map[string]any{
		"userProfileId": uuid.NewString(),
		"eventType":     "impossible_travel",
		"title":         "Sign-in from two continents",
		"severity":      "HIGH",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return bridgetest.Record[securityeventsrepo.SecurityEvent](t, rec)
}

func TestWorkflow(t *testing.T) {
	_, h := setup(t)
	event := raise(t, h)
	base := "/security-events/" + event.SecurityEventID

	rec := bridgetest.Do(t, h, http.MethodPost, base+"/transition", map[string]any{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = bridgetest.Do(t, h, http.MethodPost, base+"/transition", map[string]any{"status": "CLOSED"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "IN_PROGRESS cannot close directly")

	rec = bridgetest.Do(t, h, http.MethodPost, base+"/transition", map[string]any{"status": "RESOLVED", "resolution": "user confirmed travel"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resolved := bridgetest.Record[securityeventsrepo.SecurityEvent](t, rec)
	assert.Equal(t, securityeventsrepo.StatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	rec = bridgetest.Do(t, h, http.MethodPost, base+"/transition", map[string]any{"status": "CLOSED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = bridgetest.Do(t, h, http.MethodPost, base+"/assign", map[string]any{"assignedTo": "analyst-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "closed events keep their owner")
}

func TestTransitionRace(t *testing.T) {
	store, h := setup(t)
	event := raise(t, h)

	store.raceTo = securityeventsrepo.StatusFalsePositive
	rec := bridgetest.Do(t, h, http.MethodPost, "/security-events/"+event.SecurityEventID+"/transition", map[string]any{"status": "RESOLVED"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "aborted", bridgetest.ErrorCode(t, rec))
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	_, h := setup(t)
	event := raise(t, h)

	rec := bridgetest.Do(t, h, http.MethodPost, "/security-events/"+event.SecurityEventID+"/transition", map[string]any{"status": "SNOOZED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignAndUnassign(t *testing.T) {
	_, h := setup(t)
	event := raise(t, h)
	path := "/security-events/" + event.SecurityEventID + "/assign"

	rec := bridgetest.Do(t, h, http.MethodPost, path, map[string]any{"assignedTo": "analyst-2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := bridgetest.Record[securityeventsrepo.SecurityEvent](t, rec)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, "analyst-2", *got.AssignedTo)

	rec = bridgetest.Do(t, h, http.MethodPost, path, `{"assignedTo":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, bridgetest.Record[securityeventsrepo.SecurityEvent](t, rec).AssignedTo)

	rec = bridgetest.Do(t, h, http.MethodPost, path, map[string]any{"assignedTo": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = bridgetest.Do(t, h, http.MethodPost, "/security-events/"+uuid.NewString()+"/assign", map[string]any{"assignedTo": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFilter(t *testing.T) {
	store, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/security-events?severity=CRITICAL&open=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, store.lastFilter.Severity)
	assert.Equal(t, securityeventsrepo.SeverityCritical, *store.lastFilter.Severity)
	require.NotNil(t, store.lastFilter.OpenOnly)
	assert.True(t, *store.lastFilter.OpenOnly)

	rec = bridgetest.Do(t, h, http.MethodGet, "/security-events?status=SNOOZED", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
