package lifecycle

import (
	"fmt"

	"github.com/sauti-platform/sauti/src/api/types"
)

// manualTransitions lists the clerk-driven moves. The two time-driven moves
// (gazetted -> open, open -> closed) belong to the sweep jobs and are not
// allowed through the manual API, so a clerk cannot race the scheduler.
var manualTransitions = map[string][]string{
	types.BillStatusDraft:           {types.BillStatusGazetted},
	types.BillStatusClosed:          {types.BillStatusCommitteeReview},
	types.BillStatusCommitteeReview: {types.BillStatusPassed, types.BillStatusRejected},
}

// ValidateManualTransition returns an error when from -> to is not a legal
// clerk-driven move.
func ValidateManualTransition(from, to string) error {
	for _, allowed := range manualTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("illegal transition %s -> %s", from, to)
}
