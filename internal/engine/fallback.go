package engine

import (
	"strconv"
	"strings"

	"github.com/bookline-ai/booking-engine/internal/model"
)

// Respond produces the next deterministic clarifying question from the slot
// state alone. Slots are checked in the same fixed order the prompt composer
// instructs the model to follow, so the dialogue behaves consistently whether
// or not the model is reachable. With every slot filled it returns the
// completion-marker message.
func Respond(slots model.BookingSlots, agent *model.AgentConfig) string {
	missing, ok := slots.FirstMissing()
	if !ok {
		return "Perfect, I have everything I need for your booking. " + CheckoutReadyMarker
	}

	switch missing {
	case model.SlotActivity:
		names := make([]string, 0, len(agent.Activities))
		for _, act := range agent.Activities {
			names = append(names, act.Name)
		}
		if len(names) == 0 {
			return "Which activity would you like to book?"
		}
		return "Which activity would you like to book? We offer: " + strings.Join(names, ", ") + "."
	case model.SlotDate:
		return "What date works for you? You can say something like \"today\" or \"tomorrow\"."
	case model.SlotTime:
		if len(agent.TimeSlots) > 0 {
			return "What time would you like? Available times: " + strings.Join(agent.TimeSlots, ", ") + "."
		}
		return "What time would you like to come in?"
	case model.SlotPartySize:
		return "How many people will be in your group?"
	case model.SlotEmail:
		return "What email address should we send your confirmation to?"
	}

	// Unreachable while SlotOrder covers every field.
	return "Could you tell me a bit more about your booking?"
}

// Summary renders the filled slots as a short human-readable line, used in
// booking-ready notifications and logs.
func Summary(slots model.BookingSlots, agent *model.AgentConfig) string {
	parts := make([]string, 0, 5)
	if slots.ActivityID != "" {
		name := slots.ActivityID
		if act, ok := agent.ActivityByID(slots.ActivityID); ok {
			name = act.Name
		}
		parts = append(parts, name)
	}
	if slots.Date != "" {
		parts = append(parts, slots.Date)
	}
	if slots.Time != "" {
		parts = append(parts, slots.Time)
	}
	if slots.PartySize > 0 {
		parts = append(parts, strconv.Itoa(slots.PartySize)+" people")
	}
	if slots.CustomerEmail != "" {
		parts = append(parts, slots.CustomerEmail)
	}
	return strings.Join(parts, ", ")
}
