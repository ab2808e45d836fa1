// Package engine implements the booking conversation engine: slot
// accumulation, prompt composition, turn sequencing and the rule-based
// fallback responder.
package engine

import (
	"github.com/bookline-ai/booking-engine/internal/model"
)

// ApplySlots merges an extraction patch into the current slot state. Each
// field present in the patch overwrites the current value; absent fields
// leave existing values untouched. No cross-field validation happens here.
func ApplySlots(current, patch model.BookingSlots) model.BookingSlots {
	merged := current
	if patch.ActivityID != "" {
		merged.ActivityID = patch.ActivityID
	}
	if patch.Date != "" {
		merged.Date = patch.Date
	}
	if patch.Time != "" {
		merged.Time = patch.Time
	}
	if patch.PartySize > 0 {
		merged.PartySize = patch.PartySize
	}
	if patch.CustomerEmail != "" {
		merged.CustomerEmail = patch.CustomerEmail
	}
	return merged
}
