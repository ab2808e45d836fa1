package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookline-ai/booking-engine/internal/model"
)

func filledExcept(skip model.SlotName) model.BookingSlots {
	slots := model.BookingSlots{
		ActivityID:    "act_mystery_mansion",
		Date:          "2026-03-03",
		Time:          "2:30 PM",
		PartySize:     4,
		CustomerEmail: "jane@example.com",
	}
	switch skip {
	case model.SlotActivity:
		slots.ActivityID = ""
	case model.SlotDate:
		slots.Date = ""
	case model.SlotTime:
		slots.Time = ""
	case model.SlotPartySize:
		slots.PartySize = 0
	case model.SlotEmail:
		slots.CustomerEmail = ""
	}
	return slots
}

func TestRespondAsksForTheOneMissingSlot(t *testing.T) {
	agent := testAgent()

	tests := []struct {
		missing model.SlotName
		keyword string
	}{
		{model.SlotActivity, "activity"},
		{model.SlotDate, "date"},
		{model.SlotTime, "time"},
		{model.SlotPartySize, "people"},
		{model.SlotEmail, "email"},
	}

	for _, tt := range tests {
		reply := Respond(filledExcept(tt.missing), agent)
		assert.Contains(t, strings.ToLower(reply), tt.keyword, "missing slot: %s", tt.missing)
		assert.NotContains(t, reply, CheckoutReadyMarker, "missing slot: %s", tt.missing)
	}
}

func TestRespondPriorityOrder(t *testing.T) {
	agent := testAgent()

	// Everything missing: activity comes first.
	reply := Respond(model.BookingSlots{}, agent)
	assert.Contains(t, reply, "Which activity")
	assert.Contains(t, reply, "Mystery Mansion")

	// Activity filled: date next, even with later slots also missing.
	reply = Respond(model.BookingSlots{ActivityID: "act_mystery_mansion"}, agent)
	assert.Contains(t, reply, "What date")

	// Activity and date filled: time next, and the grid is offered.
	reply = Respond(model.BookingSlots{ActivityID: "act_mystery_mansion", Date: "2026-03-03"}, agent)
	assert.Contains(t, reply, "What time")
	assert.Contains(t, reply, "2:30 PM")
}

func TestRespondAllFilledReturnsMarker(t *testing.T) {
	agent := testAgent()
	reply := Respond(filledExcept(""), agent)
	assert.Contains(t, reply, CheckoutReadyMarker)
}

func TestSummary(t *testing.T) {
	agent := testAgent()
	s := Summary(filledExcept(""), agent)
	assert.Equal(t, "Mystery Mansion, 2026-03-03, 2:30 PM, 4 people, jane@example.com", s)
}
