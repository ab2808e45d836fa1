package model

import (
	"time"
)

// Channel identifies where a conversation originates.
type Channel string

const (
	ChannelWidget Channel = "widget"
	ChannelAPI    Channel = "api"
)

// Conversation is the session envelope. It is created once at the first turn
// of a session and never updated afterwards; messages carry all mutable
// content.
type Conversation struct {
	SessionID      string    `json:"session_id"`
	AgentID        string    `json:"agent_id"`
	OrganizationID string    `json:"organization_id"`
	Channel        Channel   `json:"channel"`
	StartedAt      time.Time `json:"started_at"`
}

// SessionState is the conversation session's state machine state.
type SessionState string

const (
	StateAwaitingInput  SessionState = "awaiting_user_input"
	StateProcessingTurn SessionState = "processing_turn"
	StateCheckoutReady  SessionState = "checkout_ready"
	StateClosed         SessionState = "closed"
)

// StartSessionRequest is the request to start a new conversation session.
type StartSessionRequest struct {
	AgentID string  `json:"agent_id"`
	Channel Channel `json:"channel,omitempty"`
}

// StartSessionResponse is the response after starting a session.
type StartSessionResponse struct {
	Conversation *Conversation `json:"conversation"`
	Greeting     *ChatMessage  `json:"greeting"`
}

// SessionStatusResponse describes a live session.
type SessionStatusResponse struct {
	Conversation *Conversation `json:"conversation"`
	State        SessionState  `json:"state"`
	Slots        BookingSlots  `json:"slots"`
}
