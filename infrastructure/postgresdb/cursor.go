package postgresdb

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// StringCursorConfig describes how a page token maps onto the query. The
// token is base64 JSON of {"order_value": string, "pk": string}; both values
// are cast from text to OrderType and PKType in SQL.
type StringCursorConfig struct {
	Cursor     string
	OrderField string
	OrderType  string
	PKField    string
	PKType     string
	Direction  string
}

type cursorData struct {
	OrderValue string `json:"order_value"`
	PK         string `json:"pk"`
}

func decodeBase64JSON[T any](encoded string) (*T, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}

	return &result, nil
}

// ApplyStringCursorPagination appends the keyset predicate for config to buf.
// It writes WHERE or AND depending on what buf already holds.
func ApplyStringCursorPagination(buf *bytes.Buffer, data pgx.NamedArgs, config StringCursorConfig, forPrevious bool) error {
	if config.Cursor == "" {
		return nil
	}

	decoded, err := decodeBase64JSON[cursorData](config.Cursor)
	if err != nil {
		return fmt.Errorf("decode cursor: %w", err)
	}

	orderType := config.OrderType
	if orderType == "" {
		orderType = "text"
	}
	pkType := config.PKType
	if pkType == "" {
		pkType = "uuid"
	}
	if err := CheckTypeName(orderType); err != nil {
		return err
	}
	if err := CheckTypeName(pkType); err != nil {
		return err
	}

	quotedOrder, err := QuoteIdentifier(config.OrderField)
	if err != nil {
		return fmt.Errorf("invalid order field: %w", err)
	}
	quotedPK, err := QuoteIdentifier(config.PKField)
	if err != nil {
		return fmt.Errorf("invalid pk field: %w", err)
	}

	if strings.Contains(buf.String(), "WHERE") {
		buf.WriteString(" AND ")
	} else {
		buf.WriteString(" WHERE ")
	}

	operator := determineOperator(config.Direction, forPrevious)

	if config.OrderField == config.PKField {
		fmt.Fprintf(buf, "%s %s @cursor_pk::text::%s", quotedPK, operator, pkType)
	} else {
		// Tuple comparison keeps rows with equal order values stable:
		// ("created_at", "id") < ('2025-08-01', 'b2...')
		fmt.Fprintf(buf, "(%s, %s) %s (@cursor_order_value::text::%s, @cursor_pk::text::%s)",
			quotedOrder, quotedPK, operator, orderType, pkType)
		data["cursor_order_value"] = decoded.OrderValue
	}
	data["cursor_pk"] = decoded.PK

	return nil
}

func determineOperator(direction string, forPrevious bool) string {
	descending := strings.EqualFold(direction, DESC)
	if descending != forPrevious {
		return "<"
	}
	return ">"
}
