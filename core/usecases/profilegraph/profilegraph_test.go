package profilegraph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/core/repositories/linkedaccountsrepo"
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
	"github.com/jrazmi/helix/core/usecases/profilegraph"
	"github.com/jrazmi/helix/sdk/logger"
)

// org maps profile id to profile and manager id to direct reports.
type org struct {
	profiles map[string]userprofilesrepo.UserProfile
	reports  map[string][]string
	calls    map[string]int
}

func newOrg() *org {
	return &org{
		profiles: map[string]userprofilesrepo.UserProfile{},
		reports:  map[string][]string{},
		calls:    map[string]int{},
	}
}

func (o *org) add(id string, manager string) {
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
	o.calls[managerID]++
	var out []userprofilesrepo.UserProfile
	for _, id := range o.reports[managerID] {
		out = append(out, o.profiles[id])
	}
	return out, nil
}

func (o *org) ManagementChain(_ context.Context, id string) ([]userprofilesrepo.UserProfile, error) {
	var chain []userprofilesrepo.UserProfile
	p := o.profiles[id]
	for p.ManagerID != nil {
		p = o.profiles[*p.ManagerID]
		chain = append(chain, p)
	}
	return chain, nil
}

type accounts struct{ err error }

func (a accounts) ListByUserProfileID(_ context.Context, id string) ([]linkedaccountsrepo.LinkedAccount, error) {
	if a.err != nil {
		return nil, a.err
	}
	return []linkedaccountsrepo.LinkedAccount{{UserProfileID: id, Platform: "github"}}, nil
}

type activity struct{ limit int }

func (a *activity) ListRecent(_ context.Context, id string, limit int) ([]activitylogsrepo.ActivityLog, error) {
	a.limit = limit
	return []activitylogsrepo.ActivityLog{{UserProfileID: id}}, nil
}

func sampleOrg() *org {
	o := newOrg()
	o.add("ceo", "")
	o.add("cto", "ceo")
	o.add("cfo", "ceo")
	o.add("dev1", "cto")
	o.add("dev2", "cto")
	o.add("intern", "dev1")
	return o
}

func TestLoad(t *testing.T) {
	o := sampleOrg()
	act := &activity{}
	loader := profilegraph.NewLoader(logger.NewDiscard(), profilegraph.Sources{
		Profiles:       o,
		LinkedAccounts: accounts{},
		Activity:       act,
	})

	inc := profilegraph.IncludeAll()
	inc.ActivityLimit = 5
	g, err := loader.Load(context.Background(), "cto", inc)
	require.NoError(t, err)

	assert.Equal(t, "cto", g.Profile.UserProfileID)
	require.NotNil(t, g.Manager)
	assert.Equal(t, "ceo", g.Manager.UserProfileID)
	assert.Len(t, g.DirectReports, 2)
	assert.Len(t, g.LinkedAccounts, 1)
	assert.Len(t, g.Activity, 1)
	assert.Equal(t, 5, act.limit)
	assert.Nil(t, g.Assets)
	assert.Nil(t, g.Training)
}

func TestLoadOnlyRequested(t *testing.T) {
	o := sampleOrg()
	loader := profilegraph.NewLoader(logger.NewDiscard(), profilegraph.Sources{Profiles: o, LinkedAccounts: accounts{}})

	g, err := loader.Load(context.Background(), "ceo", profilegraph.Include{LinkedAccounts: true, Manager: true})
	require.NoError(t, err)
	assert.Nil(t, g.Manager)
	assert.Nil(t, g.DirectReports)
	assert.Len(t, g.LinkedAccounts, 1)
	assert.Zero(t, o.calls["ceo"])
}

func TestLoadErrors(t *testing.T) {
	o := sampleOrg()
	boom := errors.New("boom")
	loader := profilegraph.NewLoader(logger.NewDiscard(), profilegraph.Sources{Profiles: o, LinkedAccounts: accounts{err: boom}})

	_, err := loader.Load(context.Background(), "missing", profilegraph.Include{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = loader.Load(context.Background(), "cto", profilegraph.Include{LinkedAccounts: true, DirectReports: true})
	assert.ErrorIs(t, err, boom)
}

func TestReportingTree(t *testing.T) {
	o := sampleOrg()
	loader := profilegraph.NewLoader(logger.NewDiscard(), profilegraph.Sources{Profiles: o})

	tree, err := loader.ReportingTree(context.Background(), "ceo", 0)
	require.NoError(t, err)
	assert.Equal(t, 6, tree.Size())
	require.Len(t, tree.Reports, 2)
	assert.Equal(t, "cto", tree.Reports[0].Profile.UserProfileID)
	assert.Equal(t, 1, tree.Reports[0].Depth)

	shallow, err := loader.ReportingTree(context.Background(), "ceo", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, shallow.Size())
}

func TestReportingTreeSurvivesCycle(t *testing.T) {
	o := sampleOrg()
	// corrupt data: the intern also reports up to the ceo's id
	o.reports["intern"] = []string{"ceo"}
	loader := profilegraph.NewLoader(logger.NewDiscard(), profilegraph.Sources{Profiles: o})

	tree, err := loader.ReportingTree(context.Background(), "ceo", 0)
	require.NoError(t, err)
	assert.Equal(t, 6, tree.Size())
	assert.Equal(t, 1, o.calls["ceo"])
}

func TestManagementChain(t *testing.T) {
	loader := profilegraph.NewLoader(logger.NewDiscard(), profilegraph.Sources{Profiles: sampleOrg()})

	chain, err := loader.ManagementChain(context.Background(), "intern")
	require.NoError(t, err)
	ids := make([]string, len(chain))
	for i, p := range chain {
		ids[i] = p.UserProfileID
	}
	assert.Equal(t, []string{"dev1", "cto", "ceo"}, ids)
}
