package linkedaccountsrepo

import (
	"encoding/json"
	"time"
)

// LinkedAccount ties a profile to its identity on an external platform.
type LinkedAccount struct {
	LinkedAccountID  string          `db:"linked_account_id" json:"linkedAccountId"`
	UserProfileID    string          `db:"user_profile_id" json:"userProfileId"`
	Platform         string          `db:"platform" json:"platform"`
	PlatformUserID   string          `db:"platform_user_id" json:"platformUserId"`
	PlatformUsername *string         `db:"platform_username" json:"platformUsername,omitempty"`
	PlatformEmail    *string         `db:"platform_email" json:"platformEmail,omitempty"`
	IsVerified       bool            `db:"is_verified" json:"isVerified"`
	LastSyncAt       *time.Time      `db:"last_sync_at" json:"lastSyncAt,omitempty"`
	SyncEnabled      bool            `db:"sync_enabled" json:"syncEnabled"`
	Metadata         json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}

type CreateLinkedAccount struct {
	UserProfileID    string          `json:"userProfileId" validate:"required,uuid"`
	Platform         string          `json:"platform" validate:"required,max=64"`
	PlatformUserID   string          `json:"platformUserId" validate:"required,max=256"`
	PlatformUsername *string         `json:"platformUsername" validate:"omitempty,max=256"`
	PlatformEmail    *string         `json:"platformEmail" validate:"omitempty,email,max=254"`
	IsVerified       *bool           `json:"isVerified"`
	SyncEnabled      *bool           `json:"syncEnabled"`
	Metadata         json.RawMessage `json:"metadata" validate:"omitempty,json"`
}

type UpdateLinkedAccount struct {
	PlatformUsername *string         `json:"platformUsername" validate:"omitempty,max=256"`
	PlatformEmail    *string         `json:"platformEmail" validate:"omitempty,email,max=254"`
	IsVerified       *bool           `json:"isVerified"`
	SyncEnabled      *bool           `json:"syncEnabled"`
	Metadata         json.RawMessage `json:"metadata" validate:"omitempty,json"`
}

func (u UpdateLinkedAccount) Empty() bool {
	return u.PlatformUsername == nil && u.PlatformEmail == nil && u.IsVerified == nil &&
		u.SyncEnabled == nil && u.Metadata == nil
}
