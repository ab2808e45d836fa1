package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookline-ai/booking-engine/internal/model"
)

func testAgent() *model.AgentConfig {
	return &model.AgentConfig{
		ID:             "agent-1",
		OrganizationID: "org-1",
		Name:           "Riddle Rooms Assistant",
		Greeting:       "Welcome to Riddle Rooms!",
		Behavior:       "Help customers book an escape room.",
		Tone:           "warm",
		Activities: []model.Activity{
			{ID: "act_mystery_mansion", Name: "Mystery Mansion", Price: 45, DurationMinutes: 60},
			{ID: "act_lost_temple", Name: "Lost Temple", Price: 40, DurationMinutes: 60},
		},
		TimeSlots: []string{"1:00 PM", "2:30 PM", "7:00 PM"},
	}
}

func TestComposePromptDeterministic(t *testing.T) {
	agent := testAgent()
	slots := model.BookingSlots{ActivityID: "act_mystery_mansion", PartySize: 4}

	first := ComposePrompt(agent, agent.Activities, slots)
	second := ComposePrompt(agent, agent.Activities, slots)

	assert.Equal(t, first, second, "identical inputs must compose byte-identical prompts")
}

func TestComposePromptContent(t *testing.T) {
	agent := testAgent()
	prompt := ComposePrompt(agent, agent.Activities, model.BookingSlots{})

	assert.Contains(t, prompt, "Riddle Rooms Assistant")
	assert.Contains(t, prompt, "1. Mystery Mansion (60 min) - $45.00")
	assert.Contains(t, prompt, "2. Lost Temple (60 min) - $40.00")
	assert.Contains(t, prompt, "1:00 PM, 2:30 PM, 7:00 PM")
	assert.Contains(t, prompt, CheckoutReadyMarker)

	// Empty slots show as unfilled.
	assert.Equal(t, 5, strings.Count(prompt, "(not set)"))
}

func TestComposePromptReflectsSlotState(t *testing.T) {
	agent := testAgent()
	slots := model.BookingSlots{
		ActivityID: "act_mystery_mansion",
		Date:       "2026-03-03",
		Time:       "2:30 PM",
	}

	prompt := ComposePrompt(agent, agent.Activities, slots)

	assert.Contains(t, prompt, "- activity: Mystery Mansion")
	assert.Contains(t, prompt, "- date: 2026-03-03")
	assert.Contains(t, prompt, "- time: 2:30 PM")
	assert.Contains(t, prompt, "- party size: (not set)")
	assert.Contains(t, prompt, "- contact email: (not set)")
}

func TestComposePromptFiveStepOrder(t *testing.T) {
	agent := testAgent()
	prompt := ComposePrompt(agent, agent.Activities, model.BookingSlots{})

	activity := strings.Index(prompt, "1. Choose an activity")
	date := strings.Index(prompt, "2. Pick a date")
	timeStep := strings.Index(prompt, "3. Pick a time")
	party := strings.Index(prompt, "4. Confirm party size")
	email := strings.Index(prompt, "5. Collect a contact email")

	assert.True(t, activity >= 0 && activity < date)
	assert.True(t, date < timeStep)
	assert.True(t, timeStep < party)
	assert.True(t, party < email)
}
