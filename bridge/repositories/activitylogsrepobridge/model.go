package activitylogsrepobridge

import (
	"fmt"

	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
)

// MaxBatchSize bounds a single batch append.
const MaxBatchSize = 500

// AppendBatchInput is the body of a batch append.
type AppendBatchInput struct {
	Entries []activitylogsrepo.NewActivityLog `json:"entries"`
}

func (in AppendBatchInput) Validate() error {
	switch {
	case len(in.Entries) == 0:
		return fmt.Errorf("entries: at least one entry is required")
	case len(in.Entries) > MaxBatchSize:
		return fmt.Errorf("entries: at most %d entries per batch", MaxBatchSize)
	}
	return nil
}

// AppendBatchResult reports how many entries were written.
type AppendBatchResult struct {
	Appended int64 `json:"appended"`
}
