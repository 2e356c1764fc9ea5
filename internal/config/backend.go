package config

import (
	"fmt"
	"strings"

	"github.com/edgard/relaybot/internal/chat"
)

const (
	BackendGroq   = "groq"
	BackendGemini = "gemini"
)

// BackendFor resolves a provider name ("groq", "gemini") or a slot name
// ("primary", "secondary") to the slot that serves it.
func (c *Config) BackendFor(name string) (chat.Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case BackendGroq, BackendGemini:
		if name == c.primaryName() {
			return chat.Primary, nil
		}
		return chat.Secondary, nil
	default:
		b, err := chat.ParseBackend(name)
		if err != nil {
			return chat.Primary, fmt.Errorf("unknown backend %q", name)
		}
		return b, nil
	}
}

// BackendName returns the provider name placed in slot b.
func (c *Config) BackendName(b chat.Backend) string {
	if b == chat.Primary {
		return c.primaryName()
	}
	if c.primaryName() == BackendGroq {
		return BackendGemini
	}
	return BackendGroq
}

func (c *Config) primaryName() string {
	if c.Dispatch.PrimaryBackend == "" {
		return DefaultPrimaryBackend
	}
	return strings.ToLower(c.Dispatch.PrimaryBackend)
}
