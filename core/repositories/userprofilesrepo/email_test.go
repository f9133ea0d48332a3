package userprofilesrepo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
)

func TestCanonicalEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice@example.com", "alice@example.com"},
		{"  Alice@Example.COM ", "alice@example.com"},
		{"alice+news@example.com", "alice@example.com"},
		{"a.l.i.c.e@example.com", "a.l.i.c.e@example.com"},
		{"A.Lice+x@gmail.com", "alice@gmail.com"},
		{"a.lice@googlemail.com", "alice@gmail.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := userprofilesrepo.CanonicalEmail(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalEmailRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "no-at-sign", "+tag@example.com", "Alice <alice@example.com>"} {
		_, err := userprofilesrepo.CanonicalEmail(in)
		assert.Error(t, err, in)
	}
}

func TestCheckManagerChain(t *testing.T) {
	assert.NoError(t, userprofilesrepo.CheckManagerChain("u", "m", []string{"m", "top"}))
	assert.ErrorIs(t, userprofilesrepo.CheckManagerChain("u", "u", nil), repositories.ErrManagerCycle)
	assert.ErrorIs(t, userprofilesrepo.CheckManagerChain("u", "m", []string{"m", "u", "top"}), repositories.ErrManagerCycle)

	deep := make([]string, userprofilesrepo.MaxHierarchyDepth)
	for i := range deep {
		deep[i] = "x"
	}
	assert.ErrorIs(t, userprofilesrepo.CheckManagerChain("u", "m", deep), repositories.ErrManagerCycle)
}

func TestSameTenant(t *testing.T) {
	acme, globex := "acme", "globex"
	assert.True(t, userprofilesrepo.SameTenant(nil, nil))
	assert.True(t, userprofilesrepo.SameTenant(&acme, &acme))
	assert.False(t, userprofilesrepo.SameTenant(&acme, &globex))
	assert.False(t, userprofilesrepo.SameTenant(&acme, nil))
}

func TestCheckTenantMove(t *testing.T) {
	acme, globex := "acme", "globex"
	manager := &userprofilesrepo.UserProfile{UserProfileID: "m", TenantID: &acme}
	reports := []userprofilesrepo.UserProfile{
		{UserProfileID: "r1", TenantID: &globex},
		{UserProfileID: "r2", TenantID: &acme},
	}

	require.NoError(t, userprofilesrepo.CheckTenantMove(&globex, nil, nil))
	require.NoError(t, userprofilesrepo.CheckTenantMove(&acme, manager, reports[1:]))

	err := userprofilesrepo.CheckTenantMove(&globex, manager, nil)
	assert.ErrorIs(t, err, repositories.ErrTenantMismatch)
	assert.Contains(t, err.Error(), "manager m")

	err = userprofilesrepo.CheckTenantMove(&globex, nil, reports)
	assert.ErrorIs(t, err, repositories.ErrTenantMismatch)
	assert.Contains(t, err.Error(), "direct report r2")

	err = userprofilesrepo.CheckTenantMove(nil, manager, nil)
	assert.ErrorIs(t, err, repositories.ErrTenantMismatch)
}
