package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookline-ai/booking-engine/internal/model"
)

func TestApplySlotsOverwriteOnPresent(t *testing.T) {
	current := model.BookingSlots{
		ActivityID: "act_a",
		Date:       "2026-03-02",
		PartySize:  2,
	}
	patch := model.BookingSlots{
		ActivityID: "act_b",
		Time:       "2:30 PM",
	}

	merged := ApplySlots(current, patch)

	assert.Equal(t, "act_b", merged.ActivityID, "present field overwrites")
	assert.Equal(t, "2026-03-02", merged.Date, "absent field untouched")
	assert.Equal(t, "2:30 PM", merged.Time, "new field set")
	assert.Equal(t, 2, merged.PartySize, "absent field untouched")
}

func TestApplySlotsEmptyPatchNeverClears(t *testing.T) {
	current := model.BookingSlots{
		ActivityID:    "act_a",
		Date:          "2026-03-02",
		Time:          "2:30 PM",
		PartySize:     4,
		CustomerEmail: "jane@example.com",
	}

	merged := ApplySlots(current, model.BookingSlots{})
	assert.Equal(t, current, merged)
}

func TestApplySlotsIdempotent(t *testing.T) {
	patch := model.BookingSlots{ActivityID: "act_a", PartySize: 4}

	once := ApplySlots(model.BookingSlots{}, patch)
	twice := ApplySlots(once, patch)

	assert.Equal(t, once, twice)
}

func TestSlotsCompleteness(t *testing.T) {
	var slots model.BookingSlots
	assert.True(t, slots.IsEmpty())
	assert.False(t, slots.Complete())

	missing, ok := slots.FirstMissing()
	assert.True(t, ok)
	assert.Equal(t, model.SlotActivity, missing)

	slots = model.BookingSlots{
		ActivityID:    "act_a",
		Date:          "2026-03-02",
		Time:          "2:30 PM",
		PartySize:     4,
		CustomerEmail: "jane@example.com",
	}
	assert.True(t, slots.Complete())
	_, ok = slots.FirstMissing()
	assert.False(t, ok)
}
