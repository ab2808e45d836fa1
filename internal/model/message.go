package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage represents one message in a conversation. Messages are
// append-only; none is ever mutated after creation.
type ChatMessage struct {
	// Identity
	ID        string `json:"id"`
	SessionID string `json:"session_id"`

	// Content
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Entities extracted from this utterance (user messages only).
	Entities *BookingSlots `json:"entities,omitempty"`

	// LLM metadata (assistant messages only).
	TokensUsed *int    `json:"tokens_used,omitempty"`
	Model      *string `json:"model,omitempty"`
	LatencyMs  *int64  `json:"latency_ms,omitempty"`

	// Fallback marks assistant messages produced by the rule-based
	// responder instead of the model.
	Fallback bool `json:"fallback,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// JetStream metadata, populated on read.
	Sequence uint64 `json:"sequence,omitempty"`
}

// SendMessageRequest is the request to send one user turn.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse is the outcome of one turn.
type SendMessageResponse struct {
	UserMessage      *ChatMessage `json:"user_message"`
	AssistantMessage *ChatMessage `json:"assistant_message"`
	Slots            BookingSlots `json:"slots"`
	CheckoutReady    bool         `json:"checkout_ready"`
}

// ListMessagesResponse is the response for listing a session's messages.
type ListMessagesResponse struct {
	Messages     []ChatMessage `json:"messages"`
	HasMore      bool          `json:"has_more"`
	LastSequence uint64        `json:"last_sequence"`
}
