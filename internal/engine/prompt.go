package engine

import (
	"strconv"
	"strings"

	"github.com/bookline-ai/booking-engine/internal/model"
)

// CheckoutReadyMarker is the literal token the model is instructed to emit
// once every booking slot is filled. Its presence anywhere in a reply is the
// sole checkout signal; its absence never blocks the conversation.
const CheckoutReadyMarker = "[CHECKOUT_READY]"

// ComposePrompt builds the model-ready system prompt from the agent
// configuration, the offerable activity catalog and the current slot state.
// It is a pure function: identical inputs produce a byte-identical string.
func ComposePrompt(agent *model.AgentConfig, activities []model.Activity, slots model.BookingSlots) string {
	var b strings.Builder

	b.WriteString("You are " + agent.Name + ", a booking assistant.")
	if agent.Behavior != "" {
		b.WriteString("\n" + agent.Behavior)
	}
	if agent.Tone != "" {
		b.WriteString("\nTone: " + agent.Tone)
	}

	b.WriteString("\n\nBookable activities:")
	for i, act := range activities {
		b.WriteString("\n" + strconv.Itoa(i+1) + ". " + act.Name)
		if act.DurationMinutes > 0 {
			b.WriteString(" (" + strconv.Itoa(act.DurationMinutes) + " min)")
		}
		b.WriteString(" - $" + strconv.FormatFloat(act.Price, 'f', 2, 64))
	}

	if len(agent.TimeSlots) > 0 {
		b.WriteString("\n\nAvailable times: " + strings.Join(agent.TimeSlots, ", "))
	}

	b.WriteString("\n\nGuide the customer through booking in this order:" +
		"\n1. Choose an activity" +
		"\n2. Pick a date" +
		"\n3. Pick a time" +
		"\n4. Confirm party size" +
		"\n5. Collect a contact email")

	b.WriteString("\n\nCollected so far:")
	for _, name := range model.SlotOrder {
		b.WriteString("\n- " + slotLabel(name) + ": " + slotValue(slots, name, activities))
	}

	b.WriteString("\n\nAsk one question at a time. Once all five details are collected," +
		" include the literal token " + CheckoutReadyMarker + " in your reply so" +
		" checkout can begin. Never invent activities, dates or times that are" +
		" not listed above.")

	return b.String()
}

func slotLabel(name model.SlotName) string {
	switch name {
	case model.SlotActivity:
		return "activity"
	case model.SlotDate:
		return "date"
	case model.SlotTime:
		return "time"
	case model.SlotPartySize:
		return "party size"
	case model.SlotEmail:
		return "contact email"
	}
	return string(name)
}

func slotValue(slots model.BookingSlots, name model.SlotName, activities []model.Activity) string {
	switch name {
	case model.SlotActivity:
		if slots.ActivityID == "" {
			return "(not set)"
		}
		for _, act := range activities {
			if act.ID == slots.ActivityID {
				return act.Name
			}
		}
		return slots.ActivityID
	case model.SlotDate:
		if slots.Date == "" {
			return "(not set)"
		}
		return slots.Date
	case model.SlotTime:
		if slots.Time == "" {
			return "(not set)"
		}
		return slots.Time
	case model.SlotPartySize:
		if slots.PartySize <= 0 {
			return "(not set)"
		}
		return strconv.Itoa(slots.PartySize)
	case model.SlotEmail:
		if slots.CustomerEmail == "" {
			return "(not set)"
		}
		return slots.CustomerEmail
	}
	return "(not set)"
}
