// Package service provides business logic for the booking conversation API.
package service

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/bookline-ai/booking-engine/internal/model"
)

// AgentCatalog holds the registered booking agents. Agents are explicit
// configuration objects loaded at startup; nothing is re-read ambiently.
type AgentCatalog struct {
	mu     sync.RWMutex
	agents map[string]*model.AgentConfig
}

// NewAgentCatalog creates an empty catalog.
func NewAgentCatalog() *AgentCatalog {
	return &AgentCatalog{agents: make(map[string]*model.AgentConfig)}
}

// Register adds or replaces an agent configuration.
func (c *AgentCatalog) Register(agent *model.AgentConfig) {
	c.mu.Lock()
	c.agents[agent.ID] = agent
	c.mu.Unlock()
}

// Get returns the agent with the given id.
func (c *AgentCatalog) Get(id string) (*model.AgentConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	agent, ok := c.agents[id]
	return agent, ok
}

// LoadFile loads agent configurations from a JSON file holding an array of
// AgentConfig objects.
func (c *AgentCatalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read agents file: %w", err)
	}

	var agents []model.AgentConfig
	if err := json.Unmarshal(data, &agents); err != nil {
		return fmt.Errorf("failed to parse agents file: %w", err)
	}

	for i := range agents {
		if agents[i].ID == "" {
			return fmt.Errorf("agent at index %d has no id", i)
		}
		c.Register(&agents[i])
	}
	return nil
}

// DemoAgent is the built-in agent used when no agents file is configured.
func DemoAgent() *model.AgentConfig {
	return &model.AgentConfig{
		ID:             "demo",
		OrganizationID: "demo-org",
		Name:           "Riddle Rooms Assistant",
		Greeting:       "Welcome to Riddle Rooms! Which experience would you like to book?",
		Behavior:       "Help customers book an escape room. Be concise and friendly.",
		Tone:           "warm, upbeat",
		Activities: []model.Activity{
			{ID: "act_mystery_mansion", Name: "Mystery Mansion", Price: 45, DurationMinutes: 60},
			{ID: "act_lost_temple", Name: "Lost Temple", Price: 40, DurationMinutes: 60},
			{ID: "act_midnight_heist", Name: "Midnight Heist", Price: 50, DurationMinutes: 75},
		},
		TimeSlots: []string{
			"10:00 AM", "11:30 AM", "1:00 PM", "2:30 PM", "4:00 PM", "5:30 PM", "7:00 PM", "8:30 PM",
		},
	}
}
