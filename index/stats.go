package index

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/petindex/core"
)

// BulkFailure is one document rejected during a load.
type BulkFailure struct {
	PetID  string
	Reason string
}

// LoadStats reports the outcome of BulkLoad.
type LoadStats struct {
	Submitted int
	Indexed   int
	Failed    int
	Failures  []BulkFailure
	Batches   int
	Elapsed   time.Duration
}

// Err returns an error wrapping core.ErrBulkPartialFailure when any document
// failed, or nil.
func (s *LoadStats) Err() error {
	if s == nil || s.Failed == 0 {
		return nil
	}
	ids := make([]string, 0, min(len(s.Failures), 5))
	for _, f := range s.Failures[:min(len(s.Failures), 5)] {
		ids = append(ids, f.PetID)
	}
	more := ""
	if len(s.Failures) > len(ids) {
		more = ", ..."
	}
	return fmt.Errorf("%w: %d of %d documents rejected (%s%s)",
		core.ErrBulkPartialFailure, s.Failed, s.Submitted, strings.Join(ids, ", "), more)
}

func (s *LoadStats) fail(petID string, reason string) {
	s.Failed++
	s.Failures = append(s.Failures, BulkFailure{PetID: petID, Reason: reason})
}
