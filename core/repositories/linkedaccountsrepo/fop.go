package linkedaccountsrepo

import (
	"time"

	"github.com/jrazmi/helix/core/scaffolding/fop"
)

type LinkedAccountFilter struct {
	IDs           []string
	UserProfileID *string
	Platform      *string
	IsVerified    *bool
	SyncEnabled   *bool
	// SyncedBefore matches accounts never synced or last synced before the time.
	SyncedBefore *time.Time
}

func (f LinkedAccountFilter) Empty() bool {
	return len(f.IDs) == 0 && f.UserProfileID == nil && f.Platform == nil &&
		f.IsVerified == nil && f.SyncEnabled == nil && f.SyncedBefore == nil
}

const (
	OrderByPK        = "linked_account_id"
	OrderByCreatedAt = "created_at"
	OrderByUpdatedAt = "updated_at"
	OrderByPlatform  = "platform"
)

var DefaultOrderBy = fop.NewBy(OrderByCreatedAt, fop.DESC)

type GroupField string

const (
	GroupByPlatform   GroupField = "platform"
	GroupByIsVerified GroupField = "is_verified"
)

func (g GroupField) Valid() bool {
	return g == GroupByPlatform || g == GroupByIsVerified
}

func cursorFor(orderBy fop.By) func(LinkedAccount) fop.StringCursor {
	return func(a LinkedAccount) fop.StringCursor {
		c := fop.StringCursor{PK: a.LinkedAccountID}
		switch orderBy.Field {
		case OrderByCreatedAt:
			c.OrderValue = fop.TimeValue(a.CreatedAt)
		case OrderByUpdatedAt:
			c.OrderValue = fop.TimeValue(a.UpdatedAt)
		case OrderByPlatform:
			c.OrderValue = a.Platform
		default:
			c.OrderValue = a.LinkedAccountID
		}
		return c
	}
}
