package model

import (
	"time"
)

// EventType represents the type of conversation event.
type EventType string

const (
	EventTypeGatewayError EventType = "gateway_error"
	EventTypeFallback     EventType = "fallback"
	EventTypeReset        EventType = "reset"
	EventTypeBookingReady EventType = "booking_ready"
)

// ConversationEvent represents an out-of-band event in a conversation,
// published to the persistence log alongside messages.
type ConversationEvent struct {
	ID             string       `json:"id"`
	SessionID      string       `json:"session_id"`
	OrganizationID string       `json:"organization_id"`
	Type           EventType    `json:"type"`
	Reason         string       `json:"reason,omitempty"`
	Slots          BookingSlots `json:"slots,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	Sequence       uint64       `json:"sequence,omitempty"`
}
