// Package hook routes relation lifecycle events to an endpoint's handlers.
// The surrounding agent observes joined/changed/departed/broken transitions
// for a relation and feeds them to a Dispatcher one at a time; the endpoint
// state machines in package manilaplugin are written against that
// single-threaded dispatch model.
package hook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ajkavanagh/charm-interface-manila-plugin/internal/logctx"
	"github.com/google/uuid"
)

// Kind names a relation lifecycle transition.
type Kind string

const (
	Joined   Kind = "joined"
	Changed  Kind = "changed"
	Departed Kind = "departed"
	// Broken is delivered when the relation itself is removed. It is
	// handled identically to Departed.
	Broken Kind = "broken"
)

// Event is one lifecycle transition for one scope.
type Event struct {
	Kind  Kind
	Scope string
}

// Endpoint is the handler surface a relation endpoint exposes to the
// dispatcher. Both manilaplugin.Provider and manilaplugin.Requirer satisfy
// it.
type Endpoint interface {
	HandleJoined(ctx context.Context, scope string) error
	HandleChanged(ctx context.Context, scope string) error
	HandleDeparted(ctx context.Context, scope string) error
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// Dispatcher routes lifecycle events to an endpoint's handlers, tagging
// each dispatch with an ID so handler logs can be correlated with the event
// that triggered them.
type Dispatcher struct {
	endpoint Endpoint
	log      *slog.Logger
}

// NewDispatcher returns a Dispatcher for the given endpoint.
func NewDispatcher(endpoint Endpoint, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		endpoint: endpoint,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch invokes the handler for ev.Kind synchronously and returns its
// error. Broken routes to the departed handler. An unknown kind is an
// error.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	ctx = logctx.WithHookData(ctx, &logctx.HookData{
		DispatchID: uuid.NewString(),
		Kind:       string(ev.Kind),
		Scope:      ev.Scope,
	})
	d.log.DebugContext(ctx, "dispatching hook")

	switch ev.Kind {
	case Joined:
		return d.endpoint.HandleJoined(ctx, ev.Scope)
	case Changed:
		return d.endpoint.HandleChanged(ctx, ev.Scope)
	case Departed, Broken:
		return d.endpoint.HandleDeparted(ctx, ev.Scope)
	default:
		return fmt.Errorf("unknown hook kind %q", ev.Kind)
	}
}
