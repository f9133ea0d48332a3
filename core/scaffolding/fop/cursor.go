package fop

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Cursor is the decoded form of a page token: the order column value of the
// last row and its primary key.
type Cursor[PK any, OrderValue any] struct {
	OrderValue OrderValue `json:"order_value"`
	PK         PK         `json:"pk"`
}

// StringCursor carries both values in their text form, which the stores
// cast back to the column type in SQL.
type StringCursor = Cursor[string, string]

func (c Cursor[PK, OrderValue]) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// DecodeCursor returns nil for an empty token.
func DecodeCursor[PK any, OrderValue any](token string) (*Cursor[PK, OrderValue], error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	var cursor Cursor[PK, OrderValue]
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("unmarshal cursor: %w", err)
	}

	return &cursor, nil
}

// TimeValue renders a timestamp for a cursor without losing precision.
func TimeValue(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func IntValue(i int) string {
	return strconv.Itoa(i)
}
