package userprofilespgxstore

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
)

func TestApplyFilter(t *testing.T) {
	status := userprofilesrepo.StatusActive
	hasManager := false
	role := "admin"
	term := "50%_off"
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	args := pgx.NamedArgs{}
	where := applyFilter(userprofilesrepo.UserProfileFilter{
		IDs:          []string{"a", "b"},
		Status:       &status,
		HasManager:   &hasManager,
		Role:         &role,
		SearchTerm:   &term,
		CreatedAfter: &after,
	}, args)

	var buf bytes.Buffer
	where.Write(&buf)
	sql := buf.String()

	assert.True(t, strings.HasPrefix(sql, " WHERE "))
	assert.Contains(t, sql, "user_profile_id = ANY(@ids::uuid[])")
	assert.Contains(t, sql, "status = @status")
	assert.Contains(t, sql, "manager_id IS NULL")
	assert.Contains(t, sql, "@role = ANY(roles)")
	assert.Contains(t, sql, "created_at >= @created_after")
	assert.Equal(t, 5, strings.Count(sql, " AND "))

	assert.Equal(t, "ACTIVE", args["status"])
	assert.Equal(t, `%50\%\_off%`, args["search_term"])
	assert.Equal(t, after, args["created_after"])
	assert.NotContains(t, args, "tenant_id")
}

func TestApplyFilterEmpty(t *testing.T) {
	args := pgx.NamedArgs{}
	where := applyFilter(userprofilesrepo.UserProfileFilter{}, args)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestOrderColumnsCoverRepositoryOrders(t *testing.T) {
	for _, field := range []string{
		userprofilesrepo.OrderByPK,
		userprofilesrepo.OrderByCreatedAt,
		userprofilesrepo.OrderByUpdatedAt,
		userprofilesrepo.OrderByEmail,
		userprofilesrepo.OrderByHelixUID,
		userprofilesrepo.OrderBySecurityScore,
	} {
		assert.Contains(t, orderColumns, field)
	}
}

func TestQualified(t *testing.T) {
	q := qualified("u")
	assert.True(t, strings.HasPrefix(q, "u.user_profile_id, u.helix_uid"))
	assert.Equal(t, len(columnNames), strings.Count(q, "u."))
}
