package assetassignmentsrepobridge_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/bridge/repositories/assetassignmentsrepobridge"
	"github.com/jrazmi/helix/bridge/scaffolding/bridgetest"
	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/assetassignmentsrepo"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/sdk/logger"
)

type stubStore struct {
	assetassignmentsrepo.Storer
	assets     map[string]assetassignmentsrepo.AssetAssignment
	lastFilter assetassignmentsrepo.AssetAssignmentFilter
}

func (s *stubStore) Create(ctx context.Context, in assetassignmentsrepo.CreateAssetAssignment) (assetassignmentsrepo.AssetAssignment, error) {
	a := assetassignmentsrepo.AssetAssignment{
		AssetAssignmentID: uuid.NewString(),
		UserProfileID:     in.UserProfileID,
		AssetID:           in.AssetID,
		AssetName:         in.AssetName,
		AssetType:         in.AssetType,
		Status:            assetassignmentsrepo.StatusAssigned,
	}
	s.assets[a.AssetAssignmentID] = a
	return a, nil
}

func (s *stubStore) List(ctx context.Context, filter assetassignmentsrepo.AssetAssignmentFilter, orderBy fop.By, page fop.PageStringCursor) ([]assetassignmentsrepo.AssetAssignment, error) {
	s.lastFilter = filter
	out := make([]assetassignmentsrepo.AssetAssignment, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, a)
	}
	return out, nil
}

func (s *stubStore) Unassign(ctx context.Context, id string, in assetassignmentsrepo.Unassignment) (assetassignmentsrepo.AssetAssignment, error) {
	a, ok := s.assets[id]
	if !ok {
		return assetassignmentsrepo.AssetAssignment{}, repositories.ErrNotFound
	}
	if a.UnassignedAt != nil {
		return assetassignmentsrepo.AssetAssignment{}, repositories.ErrInvalidTransition
	}
	a.Status = in.Status
	a.UnassignedAt = in.UnassignedAt
	a.UnassignedBy = in.UnassignedBy
	s.assets[id] = a
	return a, nil
}

func setup(t *testing.T) (*stubStore, http.Handler) {
	t.Helper()
	store := &stubStore{assets: make(map[string]assetassignmentsrepo.AssetAssignment)}
	repo := assetassignmentsrepo.NewRepository(logger.NewDiscard(), store)
	h := bridgetest.NewHandler(func(g *web.RouteGroup) {
		assetassignmentsrepobridge.AddHttpRoutes(g, assetassignmentsrepobridge.Config{Repository: repo})
	})
	return store, h
}

func TestAssignThenUnassign(t *testing.T) {
	_, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodPost, "/assets", map[string]any{
		"userProfileId": uuid.NewString(),
		"assetId":       "LAP-001",
		"assetName":     "ThinkPad",
		"assetType":     "LAPTOP",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := bridgetest.Record[assetassignmentsrepo.AssetAssignment](t, rec)

	path := "/assets/" + created.AssetAssignmentID + "/unassign"
	rec = bridgetest.Do(t, h, http.MethodPost, path, map[string]any{"status": "RETURNED", "unassignedBy": "it-desk"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := bridgetest.Record[assetassignmentsrepo.AssetAssignment](t, rec)
	assert.Equal(t, assetassignmentsrepo.StatusReturned, got.Status)
	assert.NotNil(t, got.UnassignedAt)

	rec = bridgetest.Do(t, h, http.MethodPost, path, map[string]any{"status": "LOST"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "already ended")
}

func TestUnassignRejectsActiveStatus(t *testing.T) {
	_, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodPost, "/assets/"+uuid.NewString()+"/unassign", map[string]any{"status": "PENDING_RETURN"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateRejectsUnknownAssetType(t *testing.T) {
	_, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodPost, "/assets", map[string]any{
		"userProfileId": uuid.NewString(), "assetId": "X", "assetName": "X", "assetType": "SPACESHIP",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListParsesFilter(t *testing.T) {
	store, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/assets?assetType=LAPTOP&active=true&complianceStatus=COMPLIANT", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, store.lastFilter.AssetType)
	assert.Equal(t, assetassignmentsrepo.AssetLaptop, *store.lastFilter.AssetType)
	assert.True(t, *store.lastFilter.Active)

	rec = bridgetest.Do(t, h, http.MethodGet, "/assets?status=MISPLACED", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
