package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/sdk/validation"
)

type color string

func (c color) Valid() bool { return c == "RED" || c == "BLUE" }

type input struct {
	Email string  `json:"email" validate:"required,email"`
	Score int     `json:"score" validate:"min=0,max=100"`
	Color color   `json:"color" validate:"required,enum"`
	Tint  *color  `json:"tint" validate:"omitempty,enum"`
	Owner string  `json:"owner" validate:"omitempty,uuid"`
	Note  *string `json:"-" validate:"omitempty,max=3"`
}

func TestCheckValid(t *testing.T) {
	tint := color("BLUE")
	err := validation.Check(input{Email: "a@example.com", Score: 10, Color: "RED", Tint: &tint})
	require.NoError(t, err)
}

func TestCheckFieldErrors(t *testing.T) {
	bad := color("GREEN")
	err := validation.Check(input{
		Email: "nope",
		Score: 101,
		Color: "PURPLE",
		Tint:  &bad,
		Owner: "not-a-uuid",
		Note:  validation.StringPtr("toolong"),
	})
	require.Error(t, err)

	var fe validation.FieldErrors
	require.True(t, errors.As(err, &fe))

	fields := fe.Fields()
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "maximum is 100", fields["score"])
	assert.Contains(t, fields["color"], "PURPLE")
	assert.Contains(t, fields, "tint")
	assert.Equal(t, "must be a valid UUID", fields["owner"])
	assert.Contains(t, fields, "Note")
}

func TestParseFlexibleDate(t *testing.T) {
	got, err := validation.ParseFlexibleDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = validation.ParseFlexibleDate("2025-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = validation.ParseFlexibleDate("yesterday")
	require.Error(t, err)
}
