package fop

import (
	"fmt"
	"strconv"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageStringCursor represents the requested page.
type PageStringCursor struct {
	Limit  int
	Cursor string
}

// PageInfoStringCursor returns pagination data. Every slice query should return page info.
// Cursors only run forward; HasPrev reports that the page followed a cursor.
type PageInfoStringCursor struct {
	HasPrev        bool   `json:"hasPrev,omitempty"`
	HasNext        bool   `json:"hasNext,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	NextCursor     string `json:"nextCursor,omitempty"`
	PageTotal      int    `json:"pageTotal,omitempty"`
}

// ParsePageStringCursor validates the raw limit and cursor query values.
func ParsePageStringCursor(pageLimit string, cursor string) (PageStringCursor, error) {
	limit := DefaultPageLimit

	if pageLimit != "" {
		var err error
		limit, err = strconv.Atoi(pageLimit)
		if err != nil {
			return PageStringCursor{}, fmt.Errorf("page limit conversion: %w", err)
		}
	}

	if limit <= 0 {
		return PageStringCursor{}, fmt.Errorf("rows value too small, must be larger than 0")
	}

	if limit > MaxPageLimit {
		return PageStringCursor{}, fmt.Errorf("rows value too large, must be at most %d", MaxPageLimit)
	}

	if cursor != "" {
		if _, err := DecodeCursor[string, string](cursor); err != nil {
			return PageStringCursor{}, fmt.Errorf("invalid cursor: %w", err)
		}
	}

	return PageStringCursor{
		Limit:  limit,
		Cursor: cursor,
	}, nil
}

// FetchLimit is the row count a store should read: one past the page so the
// caller can tell whether another page exists.
func (p PageStringCursor) FetchLimit() int {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return limit + 1
}

// NewPageInfo trims records read with FetchLimit down to the page and builds
// the cursor for the next page from the last row kept.
func NewPageInfo[T any](records []T, page PageStringCursor, cursorOf func(T) StringCursor) ([]T, PageInfoStringCursor, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	info := PageInfoStringCursor{
		HasPrev: page.Cursor != "",
		Limit:   limit,
	}

	if len(records) > limit {
		records = records[:limit]
		info.HasNext = true

		next, err := cursorOf(records[len(records)-1]).Encode()
		if err != nil {
			return nil, PageInfoStringCursor{}, fmt.Errorf("encode next cursor: %w", err)
		}
		info.NextCursor = next
	}

	info.PageTotal = len(records)
	return records, info, nil
}
