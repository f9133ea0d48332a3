package fopbridge

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/sdk/validation"
)

// Query reads typed values from a request's query string, collecting every
// parse failure so a handler can reject the request once.
type Query struct {
	values url.Values
	errs   []error
}

func NewQuery(r *http.Request) *Query {
	return &Query{values: r.URL.Query()}
}

func (q *Query) String(key string) *string {
	v := strings.TrimSpace(q.values.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// Strings splits a comma separated value.
func (q *Query) Strings(key string) []string {
	v := q.values.Get(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (q *Query) Int(key string) *int {
	v := q.String(key)
	if v == nil {
		return nil
	}
	n, err := strconv.Atoi(*v)
	if err != nil {
		q.errs = append(q.errs, fmt.Errorf("invalid %s: %s", key, *v))
		return nil
	}
	return &n
}

func (q *Query) Bool(key string) *bool {
	v := q.String(key)
	if v == nil {
		return nil
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		q.errs = append(q.errs, fmt.Errorf("invalid %s: %s", key, *v))
		return nil
	}
	return &b
}

func (q *Query) Time(key string) *time.Time {
	v := q.String(key)
	if v == nil {
		return nil
	}
	t, err := validation.ParseFlexibleDate(*v)
	if err != nil {
		q.errs = append(q.errs, fmt.Errorf("invalid %s: %s", key, *v))
		return nil
	}
	return &t
}

// Page reads the limit and cursor parameters.
func (q *Query) Page() fop.PageStringCursor {
	page, err := fop.ParsePageStringCursor(q.values.Get("limit"), q.values.Get("cursor"))
	if err != nil {
		q.errs = append(q.errs, err)
	}
	return page
}

// Order reads the order parameter, "field" or "field,direction".
func (q *Query) Order(fields map[string]string, defaultOrder fop.By) fop.By {
	by, err := fop.ParseOrder(fields, q.values.Get("order"), defaultOrder)
	if err != nil {
		q.errs = append(q.errs, err)
		return defaultOrder
	}
	return by
}

// Err joins every failure seen so far.
func (q *Query) Err() error {
	return errors.Join(q.errs...)
}
