package userticketsrepobridge_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/bridge/repositories/userticketsrepobridge"
	"github.com/jrazmi/helix/bridge/scaffolding/bridgetest"
	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/userticketsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/sdk/logger"
)

type stubStore struct {
	userticketsrepo.Storer
	tickets    map[userticketsrepo.TicketKey]userticketsrepo.UserTicket
	lastFilter userticketsrepo.UserTicketFilter
	lastGroup  userticketsrepo.GroupField
}

func keyOf(in userticketsrepo.CreateUserTicket) userticketsrepo.TicketKey {
	return userticketsrepo.TicketKey{UserProfileID: in.UserProfileID, TicketID: in.TicketID, Relationship: in.Relationship}
}

func (s *stubStore) Create(ctx context.Context, in userticketsrepo.CreateUserTicket) (userticketsrepo.UserTicket, error) {
	if _, ok := s.tickets[keyOf(in)]; ok {
		return userticketsrepo.UserTicket{}, repositories.ErrUniqueViolation
	}
	return s.Upsert(ctx, in)
}

func (s *stubStore) Upsert(ctx context.Context, in userticketsrepo.CreateUserTicket) (userticketsrepo.UserTicket, error) {
	t, ok := s.tickets[keyOf(in)]
	if !ok {
		t = userticketsrepo.UserTicket{
			UserTicketID:  uuid.NewString(),
			UserProfileID: in.UserProfileID,
			TicketID:      in.TicketID,
			Relationship:  in.Relationship,
		}
	}
	t.TicketSystem = in.TicketSystem
	t.TicketTitle = in.TicketTitle
	t.TicketStatus = in.TicketStatus
	s.tickets[keyOf(in)] = t
	return t, nil
}

func (s *stubStore) GetByKey(ctx context.Context, key userticketsrepo.TicketKey) (userticketsrepo.UserTicket, error) {
	t, ok := s.tickets[key]
	if !ok {
		return userticketsrepo.UserTicket{}, repositories.ErrNotFound
	}
	return t, nil
}

func (s *stubStore) ListByTicketID(ctx context.Context, ticketID string) ([]userticketsrepo.UserTicket, error) {
	var out []userticketsrepo.UserTicket
	for _, t := range s.tickets {
		if t.TicketID == ticketID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubStore) List(ctx context.Context, filter userticketsrepo.UserTicketFilter, orderBy fop.By, page fop.PageStringCursor) ([]userticketsrepo.UserTicket, error) {
	s.lastFilter = filter
	return nil, nil
}

func (s *stubStore) GroupBy(ctx context.Context, field userticketsrepo.GroupField, filter userticketsrepo.UserTicketFilter) ([]repositories.GroupCount, error) {
	s.lastGroup = field
	return []repositories.GroupCount{{Count: 2}}, nil
}

func setup(t *testing.T) (*stubStore, http.Handler) {
	t.Helper()
	store := &stubStore{tickets: make(map[userticketsrepo.TicketKey]userticketsrepo.UserTicket)}
	repo := userticketsrepo.NewRepository(logger.NewDiscard(), store)
	h := bridgetest.NewHandler(func(g *web.RouteGroup) {
		userticketsrepobridge.AddHttpRoutes(g, userticketsrepobridge.Config{Repository: repo})
	})
	return store, h
}

func TestCreateDuplicateRelationship(t *testing.T) {
	_, h := setup(t)
	body := map[string]any{
		"userProfileId": uuid.NewString(),
		"ticketId":      "INC-1001",
		"relationship":  "ASSIGNEE",
	}

	rec := bridgetest.Do(t, h, http.MethodPost, "/user-tickets", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = bridgetest.Do(t, h, http.MethodPost, "/user-tickets", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_exists", bridgetest.ErrorCode(t, rec))
}

func TestSameTicketDifferentRoles(t *testing.T) {
	_, h := setup(t)
	user := uuid.NewString()

	for _, rel := range []string{"REQUESTER", "WATCHER"} {
		rec := bridgetest.Do(t, h, http.MethodPost, "/user-tickets", map[string]any{
			"userProfileId": user, "ticketId": "INC-7", "relationship": rel,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := bridgetest.Do(t, h, http.MethodGet, "/tickets/INC-7/users", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, bridgetest.Records[userticketsrepo.UserTicket](t, rec), 2)
}

func TestUpsertRefreshesStatus(t *testing.T) {
	_, h := setup(t)
	user := uuid.NewString()

	rec := bridgetest.Do(t, h, http.MethodPut, "/user-tickets", map[string]any{
		"userProfileId": user, "ticketId": "CHG-9", "relationship": "APPROVER", "ticketStatus": "open",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := bridgetest.Record[userticketsrepo.UserTicket](t, rec)

	rec = bridgetest.Do(t, h, http.MethodPut, "/user-tickets", map[string]any{
		"userProfileId": user, "ticketId": "CHG-9", "relationship": "APPROVER", "ticketStatus": "closed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := bridgetest.Record[userticketsrepo.UserTicket](t, rec)

	assert.Equal(t, first.UserTicketID, second.UserTicketID)
	require.NotNil(t, second.TicketStatus)
	assert.Equal(t, "closed", *second.TicketStatus)

	rec = bridgetest.Do(t, h, http.MethodGet, "/user-tickets/lookup?userProfileId="+user+"&ticketId=CHG-9&relationship=APPROVER", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, first.UserTicketID, bridgetest.Record[userticketsrepo.UserTicket](t, rec).UserTicketID)

	rec = bridgetest.Do(t, h, http.MethodGet, "/user-tickets/lookup?userProfileId="+user+"&ticketId=CHG-9", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "relationship missing")
}

func TestListRejectsUnknownRelationship(t *testing.T) {
	store, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/user-tickets?relationship=OWNER", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = bridgetest.Do(t, h, http.MethodGet, "/user-tickets?relationship=RESOLVER&ticketSystem=jira", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, store.lastFilter.Relationship)
	assert.Equal(t, userticketsrepo.RelationshipResolver, *store.lastFilter.Relationship)
	require.NotNil(t, store.lastFilter.TicketSystem)
	assert.Equal(t, "jira", *store.lastFilter.TicketSystem)
}

func TestGroupBy(t *testing.T) {
	store, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/user-tickets/stats/groups?field=relationship", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, userticketsrepo.GroupByRelationship, store.lastGroup)

	rec = bridgetest.Do(t, h, http.MethodGet, "/user-tickets/stats/groups?field=ticket_title", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
