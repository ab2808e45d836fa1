package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 10000 {
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a session identifier.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}

// ValidateAgentID validates an agent identifier.
func ValidateAgentID(id string) error {
	if len(id) == 0 {
		return errors.New("agent ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("agent ID exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("agent ID must be valid UTF-8")
	}
	return nil
}
