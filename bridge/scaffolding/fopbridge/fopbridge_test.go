package fopbridge_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/scaffolding/fop"
)

func TestQueryParsesTypedValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?status=ACTIVE&mfa=true&min=10&after=2024-01-02&ids=a,+b,&limit=5&order=email,asc", nil)
	q := fopbridge.NewQuery(r)

	assert.Equal(t, "ACTIVE", *q.String("status"))
	assert.Nil(t, q.String("missing"))
	assert.True(t, *q.Bool("mfa"))
	assert.Equal(t, 10, *q.Int("min"))
	assert.Equal(t, 2024, q.Time("after").Year())
	assert.Equal(t, []string{"a", "b"}, q.Strings("ids"))
	assert.Equal(t, 5, q.Page().Limit)
	assert.Equal(t, fop.NewBy("email", fop.ASC), q.Order(map[string]string{"email": "email"}, fop.NewBy("created_at", fop.DESC)))
	require.NoError(t, q.Err())
}

func TestQueryCollectsErrors(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?min=ten&mfa=maybe&limit=500&order=nope", nil)
	q := fopbridge.NewQuery(r)

	assert.Nil(t, q.Int("min"))
	assert.Nil(t, q.Bool("mfa"))
	q.Page()
	def := fop.NewBy("created_at", fop.DESC)
	assert.Equal(t, def, q.Order(map[string]string{}, def))

	err := q.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid min")
	assert.Contains(t, err.Error(), "invalid mfa")
	assert.Contains(t, err.Error(), "too large")
	assert.Contains(t, err.Error(), "unknown order field")
}

func TestPaginatedResponseEnvelope(t *testing.T) {
	resp := fopbridge.NewPaginatedResponseFromStringCursorInfo([]string(nil), fop.PageInfoStringCursor{Limit: 20, NextCursor: "abc", HasNext: true})

	data, _, err := resp.Encode()
	require.NoError(t, err)

	var body struct {
		Records  []string       `json:"records"`
		PageInfo map[string]any `json:"pageInfo"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.NotNil(t, body.Records)
	assert.Equal(t, "abc", body.PageInfo["nextCursor"])
	assert.Equal(t, true, body.PageInfo["hasNext"])
	assert.NotContains(t, body.PageInfo, "previousCursor")
}

func TestCreatedResponseStatus(t *testing.T) {
	assert.Equal(t, http.StatusCreated, fopbridge.NewCreatedResponse("x").HTTPStatus())
	assert.Equal(t, http.StatusOK, fopbridge.NewRecordResponse("x").HTTPStatus())
}
