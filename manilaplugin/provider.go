package manilaplugin

import (
	"context"
	"log/slog"

	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata"
)

// Provider is the subordinate (plugin) end of the relation. It consumes the
// authentication data the manila charm publishes and sends back the
// configuration fragments the plugin wants written into manila's config
// files.
type Provider struct {
	view  relationdata.View
	log   *slog.Logger
	flags *flagSet
}

// NewProvider returns a Provider over the given side-bound view. The view
// must be bound to relationdata.ProviderSide.
func NewProvider(view relationdata.View, opts ...Option) *Provider {
	o := applyOptions(opts)
	return &Provider{
		view:  view,
		log:   o.log,
		flags: newFlagSet(),
	}
}

// HandleJoined registers the scope, marks it connected, and reconciles.
func (p *Provider) HandleJoined(ctx context.Context, scope string) error {
	p.log.DebugContext(ctx, "manila-plugin provider: joined", "scope", scope)
	if err := p.view.Join(ctx, scope); err != nil {
		return err
	}
	p.flags.ensure(scope).Connected = true
	return p.Reconcile(ctx, scope)
}

// HandleChanged reconciles the scope's flags against the peer's data. It is
// safe to call repeatedly: an unacknowledged Changed flag survives further
// change events.
func (p *Provider) HandleChanged(ctx context.Context, scope string) error {
	p.log.DebugContext(ctx, "manila-plugin provider: changed", "scope", scope)
	return p.Reconcile(ctx, scope)
}

// HandleDeparted clears all status flags for the scope and drops its bags.
// Departed and broken events are handled identically; the call is
// idempotent.
func (p *Provider) HandleDeparted(ctx context.Context, scope string) error {
	p.log.DebugContext(ctx, "manila-plugin provider: broken, departed", "scope", scope)
	p.flags.clear(scope)
	return p.view.Depart(ctx, scope)
}

// Reconcile sets Available and Changed when the manila charm has published
// authentication data for the scope. It never sets Changed without
// Available, and never clears either.
func (p *Provider) Reconcile(ctx context.Context, scope string) error {
	raw, ok, err := p.view.GetRemote(ctx, scope, keyAuthenticationData)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		return nil
	}
	p.log.DebugContext(ctx, "manila-plugin provider: authentication data available", "scope", scope)
	f := p.flags.ensure(scope)
	f.Available = true
	f.Changed = true
	return nil
}

// AcknowledgeChange clears the Changed flag for the scope, leaving
// Available untouched. The consumer calls this once it has processed the
// new data.
func (p *Provider) AcknowledgeChange(scope string) {
	p.flags.acknowledge(scope)
}

// Connected reports whether the peer has joined the scope.
func (p *Provider) Connected(scope string) bool { return p.flags.get(scope).Connected }

// Available reports whether authentication data has arrived for the scope.
func (p *Provider) Available(scope string) bool { return p.flags.get(scope).Available }

// Changed reports whether unacknowledged authentication data exists for the
// scope.
func (p *Provider) Changed(scope string) bool { return p.flags.get(scope).Changed }

// Flags returns a snapshot of the scope's status flags.
func (p *Provider) Flags(scope string) Flags { return p.flags.get(scope) }

// AuthenticationData returns the credentials the manila charm has published
// for the scope, or ok=false if nothing has arrived yet. The manila charm
// itself may be waiting on its identity relation, so absence is a normal
// transient state.
func (p *Provider) AuthenticationData(ctx context.Context, scope string) (AuthenticationData, bool, error) {
	raw, ok, err := p.view.GetRemote(ctx, scope, keyAuthenticationData)
	if err != nil || !ok || raw == "" {
		return nil, false, err
	}
	data, err := decodeEnvelope[AuthenticationData](raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetConfigurationData publishes the plugin's configuration fragments for
// the scope, keeping a local copy. The write is unconditional; dedup lives
// on the requirer side.
func (p *Provider) SetConfigurationData(ctx context.Context, scope string, data ConfigurationData) error {
	raw, err := encodeEnvelope(data)
	if err != nil {
		return err
	}
	if err := p.view.SetLocal(ctx, scope, keyConfigurationData, raw); err != nil {
		return err
	}
	return p.view.SetRemote(ctx, scope, keyConfigurationData, raw)
}

// ConfigurationData returns the configuration fragments this plugin last
// published for the scope, or ok=false if none have been set.
func (p *Provider) ConfigurationData(ctx context.Context, scope string) (ConfigurationData, bool, error) {
	raw, ok, err := p.view.GetLocal(ctx, scope, keyConfigurationData)
	if err != nil || !ok || raw == "" {
		return ConfigurationData{}, false, err
	}
	data, err := decodeEnvelope[ConfigurationData](raw)
	if err != nil {
		return ConfigurationData{}, false, err
	}
	return data, true, nil
}

// SetName publishes the plugin's name for the scope. The name is for logs
// and to distinguish between multiple plugins.
func (p *Provider) SetName(ctx context.Context, scope, name string) error {
	if err := p.view.SetLocal(ctx, scope, keyName, name); err != nil {
		return err
	}
	return p.view.SetRemote(ctx, scope, keyName, name)
}

// Name returns the name this plugin last set for the scope, or ok=false if
// it has not been set.
func (p *Provider) Name(ctx context.Context, scope string) (string, bool, error) {
	return p.view.GetLocal(ctx, scope, keyName)
}
