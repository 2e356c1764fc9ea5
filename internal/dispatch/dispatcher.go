// Package dispatch turns a user's chat message into a model reply. It owns the
// per-message pipeline: session lookup, history update, preferred-first
// fallback across the configured providers and reply chunking.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/relaybot/internal/chat"
	"github.com/edgard/relaybot/internal/provider"
	"github.com/edgard/relaybot/internal/session"
)

var (
	// ErrCommand is returned for command-prefixed text, which belongs to the
	// command router.
	ErrCommand = errors.New("command text is not dispatched")
	// ErrEmptyMessage is returned for blank text.
	ErrEmptyMessage = errors.New("empty message")
	// ErrExhausted is returned when every provider failed.
	ErrExhausted = errors.New("all providers failed")
	// ErrNotConfigured is returned by DispatchVia for a backend with no client.
	ErrNotConfigured = errors.New("backend not configured")
)

const (
	defaultTimeout       = 30 * time.Second
	defaultCommandPrefix = "/"

	OutcomeReplied   = "replied"
	OutcomeExhausted = "exhausted"
)

// Config configures a Dispatcher.
type Config struct {
	// Timeout bounds each provider attempt.
	Timeout time.Duration
	// MaxReplyLength is the chunk size in UTF-16 code units; zero disables
	// chunking.
	MaxReplyLength int
	// CommandPrefix marks text that must not be dispatched.
	CommandPrefix string
	// Format rewrites the reply before chunking. History keeps the reply as
	// the provider returned it.
	Format func(string) string
}

// Event is emitted once per dispatch. It never carries message content.
type Event struct {
	ID       string
	UserID   int64
	Backend  string
	Provider string
	Outcome  string
	Attempts int
	Latency  time.Duration
	At       time.Time
}

// Recorder receives dispatch events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Deps holds the collaborators of a Dispatcher. Clients without an entry
// (or with a nil client) are treated as not configured.
type Deps struct {
	Store    *session.Store
	Clients  map[chat.Backend]provider.Client
	Recorder Recorder
	Logger   *slog.Logger
}

// Request is one inbound chat message.
type Request struct {
	UserID      int64
	DisplayName string
	Text        string
}

// Result is a successful dispatch.
type Result struct {
	// Reply is the full text stored in history.
	Reply string
	// Chunks is Reply, formatted when Config.Format is set, split for delivery.
	Chunks   []string
	Backend  chat.Backend
	Provider string
	Attempts int
}

// Dispatcher runs the chat pipeline. It is safe for concurrent use; messages
// of the same user are processed one at a time.
type Dispatcher struct {
	store   *session.Store
	clients map[chat.Backend]provider.Client
	rec     Recorder
	cfg     Config
	log     *slog.Logger
}

// New creates a Dispatcher.
func New(deps Deps, cfg Config) (*Dispatcher, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = defaultCommandPrefix
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	clients := make(map[chat.Backend]provider.Client, len(deps.Clients))
	for b, c := range deps.Clients {
		if c != nil {
			clients[b] = c
		}
	}
	return &Dispatcher{
		store:   deps.Store,
		clients: clients,
		rec:     deps.Recorder,
		cfg:     cfg,
		log:     log.With("component", "dispatcher"),
	}, nil
}

// Configured reports whether backend has a client.
func (d *Dispatcher) Configured(b chat.Backend) bool {
	_, ok := d.clients[b]
	return ok
}

// ProviderName returns the client name serving backend, or "" when the
// backend is not configured.
func (d *Dispatcher) ProviderName(b chat.Backend) string {
	if c, ok := d.clients[b]; ok {
		return c.Name()
	}
	return ""
}

// Dispatch processes a chat message with the session's preferred backend
// first and the other backend as fallback. Fallback does not change the
// preference.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	if err := d.validate(req.Text); err != nil {
		return Result{}, err
	}

	h := d.store.Acquire(req.UserID, req.DisplayName)
	defer h.Release()

	preferred := h.Snapshot().Preferred
	chain := d.chainFor(preferred, preferred.Other())
	return d.run(ctx, h, req, chain)
}

// DispatchVia processes a chat message with a single backend and no
// fallback. The conversation history is shared with Dispatch.
func (d *Dispatcher) DispatchVia(ctx context.Context, req Request, b chat.Backend) (Result, error) {
	if err := d.validate(req.Text); err != nil {
		return Result{}, err
	}
	if !d.Configured(b) {
		return Result{}, fmt.Errorf("%w: %s", ErrNotConfigured, b)
	}

	h := d.store.Acquire(req.UserID, req.DisplayName)
	defer h.Release()

	return d.run(ctx, h, req, d.chainFor(b))
}

func (d *Dispatcher) validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}
	if strings.HasPrefix(trimmed, d.cfg.CommandPrefix) {
		return ErrCommand
	}
	return nil
}

func (d *Dispatcher) chainFor(order ...chat.Backend) Chain {
	chain := make(Chain, 0, len(order))
	for _, b := range order {
		if c, ok := d.clients[b]; ok {
			chain = append(chain, Link{Backend: b, Client: c})
		}
	}
	return chain
}

func (d *Dispatcher) run(ctx context.Context, h *session.Handle, req Request, chain Chain) (Result, error) {
	start := time.Now()
	log := d.log.With("user_id", req.UserID)

	h.Append(chat.RoleUser, strings.TrimSpace(req.Text))

	out, err := chain.Generate(ctx, h.History(), d.cfg.Timeout, log)
	if err != nil {
		log.ErrorContext(ctx, "No provider could answer", "error", err, "attempts", len(chain))
		d.record(ctx, Event{
			UserID:   req.UserID,
			Outcome:  OutcomeExhausted,
			Attempts: len(chain),
			Latency:  time.Since(start),
		})
		return Result{}, err
	}

	h.Append(chat.RoleAssistant, out.Text)

	name := out.Served.Client.Name()
	log.InfoContext(ctx, "Dispatched message",
		"provider", name,
		"backend", out.Served.Backend.String(),
		"attempts", out.Attempts,
		"duration_ms", time.Since(start).Milliseconds())
	d.record(ctx, Event{
		UserID:   req.UserID,
		Backend:  out.Served.Backend.String(),
		Provider: name,
		Outcome:  OutcomeReplied,
		Attempts: out.Attempts,
		Latency:  time.Since(start),
	})

	delivered := out.Text
	if d.cfg.Format != nil {
		if formatted := d.cfg.Format(out.Text); strings.TrimSpace(formatted) != "" {
			delivered = formatted
		}
	}

	return Result{
		Reply:    out.Text,
		Chunks:   SplitMessage(delivered, d.cfg.MaxReplyLength),
		Backend:  out.Served.Backend,
		Provider: name,
		Attempts: out.Attempts,
	}, nil
}

func (d *Dispatcher) record(ctx context.Context, ev Event) {
	if d.rec == nil {
		return
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	ev.ID = id.String()
	ev.At = time.Now().UTC()
	if err := d.rec.Record(ctx, ev); err != nil {
		d.log.WarnContext(ctx, "Failed to record dispatch event", "error", err, "user_id", ev.UserID)
	}
}
