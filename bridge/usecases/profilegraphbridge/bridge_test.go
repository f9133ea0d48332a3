package profilegraphbridge_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/bridge/scaffolding/bridgetest"
	"github.com/jrazmi/helix/bridge/usecases/profilegraphbridge"
	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
	"github.com/jrazmi/helix/core/usecases/profilegraph"
	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/sdk/logger"
)

type org struct {
	profiles map[string]userprofilesrepo.UserProfile
	reports  map[string][]string
}

func (o *org) add(id, manager string) {
	p := userprofilesrepo.UserProfile{UserProfileID: id}
	if manager != "" {
		p.ManagerID = &manager
		o.reports[manager] = append(o.reports[manager], id)
	}
	o.profiles[id] = p
}

func (o *org) Get(_ context.Context, id string) (userprofilesrepo.UserProfile, error) {
	p, ok := o.profiles[id]
	if !ok {
		return userprofilesrepo.UserProfile{}, repositories.ErrNotFound
	}
	return p, nil
}

func (o *org) ListDirectReports(_ context.Context, managerID string) ([]userprofilesrepo.UserProfile, error) {
	var out []userprofilesrepo.UserProfile
	for _, id := range o.reports[managerID] {
		out = append(out, o.profiles[id])
	}
	return out, nil
}

func (o *org) ManagementChain(_ context.Context, id string) ([]userprofilesrepo.UserProfile, error) {
	return nil, nil
}

type activity struct {
	limit int
}

func (a *activity) ListRecent(_ context.Context, userProfileID string, limit int) ([]activitylogsrepo.ActivityLog, error) {
	a.limit = limit
	return []activitylogsrepo.ActivityLog{{UserProfileID: userProfileID, Action: "login"}}, nil
}

func setup(t *testing.T) (*activity, http.Handler) {
	t.Helper()
	o := &org{profiles: map[string]userprofilesrepo.UserProfile{}, reports: map[string][]string{}}
	o.add("ceo", "")
	o.add("cto", "ceo")
	o.add("eng-1", "cto")
	o.add("eng-2", "cto")

	act := &activity{}
	loader := profilegraph.NewLoader(logger.NewDiscard(), profilegraph.Sources{Profiles: o, Activity: act})
	h := bridgetest.NewHandler(func(g *web.RouteGroup) {
		profilegraphbridge.AddHttpRoutes(g, profilegraphbridge.Config{Loader: loader})
	})
	return act, h
}

func TestGraphInclude(t *testing.T) {
	act, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/users/cto/graph?include=manager,directReports,activity&activityLimit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	graph := bridgetest.Record[profilegraph.Graph](t, rec)
	require.NotNil(t, graph.Manager)
	assert.Equal(t, "ceo", graph.Manager.UserProfileID)
	assert.Len(t, graph.DirectReports, 2)
	assert.Len(t, graph.Activity, 1)
	assert.Equal(t, 5, act.limit)
	assert.Nil(t, graph.Training, "training was not requested")
}

func TestGraphWithoutInclude(t *testing.T) {
	_, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/users/cto/graph", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	graph := bridgetest.Record[profilegraph.Graph](t, rec)
	assert.Equal(t, "cto", graph.Profile.UserProfileID)
	assert.Nil(t, graph.Manager)
	assert.Empty(t, graph.DirectReports)
}

func TestGraphErrors(t *testing.T) {
	_, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/users/cto/graph?include=payroll", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = bridgetest.Do(t, h, http.MethodGet, "/users/nobody/graph?include=all", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTree(t *testing.T) {
	_, h := setup(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/users/ceo/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tree := bridgetest.Record[profilegraphbridge.TreeResponse](t, rec)
	assert.Equal(t, 4, tree.Size)
	require.Len(t, tree.Root.Reports, 1)
	assert.Len(t, tree.Root.Reports[0].Reports, 2)

	rec = bridgetest.Do(t, h, http.MethodGet, "/users/ceo/tree?depth=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, bridgetest.Record[profilegraphbridge.TreeResponse](t, rec).Size)

	rec = bridgetest.Do(t, h, http.MethodGet, "/users/ceo/tree?depth=deep", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
