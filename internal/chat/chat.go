// Package chat defines the conversation data model shared by the session
// store, the provider clients and the dispatcher.
package chat

import (
	"fmt"
	"strings"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Backend is a provider slot. Each session prefers one of the two slots and
// the dispatcher falls back to the other.
type Backend uint8

const (
	Primary Backend = iota
	Secondary
)

// Other returns the opposite slot.
func (b Backend) Other() Backend {
	if b == Primary {
		return Secondary
	}
	return Primary
}

func (b Backend) String() string {
	switch b {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return fmt.Sprintf("backend(%d)", uint8(b))
	}
}

// ParseBackend parses a slot name ("primary" or "secondary", case-insensitive).
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary":
		return Primary, nil
	case "secondary":
		return Secondary, nil
	default:
		return Primary, fmt.Errorf("unknown backend %q", s)
	}
}
