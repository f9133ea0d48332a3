package userprofilesrepobridge

import (
	"errors"
	"time"

	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
)

// UpdateUserProfileInput is a partial update conditioned on the version the
// caller last read.
type UpdateUserProfileInput struct {
	DataVersion int `json:"dataVersion"`
	userprofilesrepo.UpdateUserProfile
}

func (u UpdateUserProfileInput) Validate() error {
	if u.DataVersion < 1 {
		return errors.New("dataVersion is required")
	}
	return nil
}

// RecordLoginInput optionally backdates a login.
type RecordLoginInput struct {
	At *time.Time `json:"at"`
}
