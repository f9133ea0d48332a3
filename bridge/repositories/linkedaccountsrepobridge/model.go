package linkedaccountsrepobridge

import "time"

// SyncInput optionally backdates a completed sync.
type SyncInput struct {
	At *time.Time `json:"at"`
}
