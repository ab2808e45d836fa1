package model

// Activity is one bookable offering from the agent's catalog.
type Activity struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
}

// AgentConfig is the static, externally supplied configuration for one
// booking agent. The conversation engine treats it as read-only input.
type AgentConfig struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Greeting       string     `json:"greeting"`
	Behavior       string     `json:"behavior"`
	Tone           string     `json:"tone,omitempty"`
	Activities     []Activity `json:"activities"`

	// TimeSlots is the fixed grid of offerable times, e.g. "2:30 PM".
	TimeSlots []string `json:"time_slots"`
}

// ActivityByID returns the catalog entry with the given id, if present.
func (a *AgentConfig) ActivityByID(id string) (Activity, bool) {
	for _, act := range a.Activities {
		if act.ID == id {
			return act, true
		}
	}
	return Activity{}, false
}
