package manilaplugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata"
)

// Requirer is the manila (principal) end of the relation. It publishes the
// manila service user's authentication data to each connected plugin and
// consumes the configuration fragments the plugins send back.
type Requirer struct {
	view  relationdata.View
	log   *slog.Logger
	flags *flagSet
}

// NewRequirer returns a Requirer over the given side-bound view. The view
// must be bound to relationdata.RequirerSide.
func NewRequirer(view relationdata.View, opts ...Option) *Requirer {
	o := applyOptions(opts)
	return &Requirer{
		view:  view,
		log:   o.log,
		flags: newFlagSet(),
	}
}

// HandleJoined registers the scope, marks it connected, and reconciles.
func (r *Requirer) HandleJoined(ctx context.Context, scope string) error {
	r.log.DebugContext(ctx, "manila-plugin requirer: joined", "scope", scope)
	if err := r.view.Join(ctx, scope); err != nil {
		return err
	}
	r.flags.ensure(scope).Connected = true
	return r.Reconcile(ctx, scope)
}

// HandleChanged reconciles the scope's flags against the peer's data. It is
// safe to call repeatedly: an unacknowledged Changed flag survives further
// change events.
func (r *Requirer) HandleChanged(ctx context.Context, scope string) error {
	r.log.DebugContext(ctx, "manila-plugin requirer: changed", "scope", scope)
	return r.Reconcile(ctx, scope)
}

// HandleDeparted clears all status flags for the scope and drops its bags.
// Departed and broken events are handled identically; the call is
// idempotent.
func (r *Requirer) HandleDeparted(ctx context.Context, scope string) error {
	r.log.DebugContext(ctx, "manila-plugin requirer: broken, departed", "scope", scope)
	r.flags.clear(scope)
	return r.view.Depart(ctx, scope)
}

// Reconcile sets Available and Changed once the plugin has published both
// its name and its configuration data for the scope. It never sets Changed
// without Available, and never clears either.
func (r *Requirer) Reconcile(ctx context.Context, scope string) error {
	name, ok, err := r.view.GetRemote(ctx, scope, keyName)
	if err != nil {
		return err
	}
	if !ok || name == "" {
		return nil
	}
	raw, ok, err := r.view.GetRemote(ctx, scope, keyConfigurationData)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		return nil
	}
	r.log.DebugContext(ctx, "manila-plugin requirer: have name and configuration data",
		"scope", scope, "name", name)
	f := r.flags.ensure(scope)
	f.Available = true
	f.Changed = true
	return nil
}

// AcknowledgeChange clears the Changed flag for the scope, leaving
// Available untouched. The consumer calls this once it has rewritten its
// config files from the new data.
func (r *Requirer) AcknowledgeChange(scope string) {
	r.flags.acknowledge(scope)
}

// Connected reports whether the peer has joined the scope.
func (r *Requirer) Connected(scope string) bool { return r.flags.get(scope).Connected }

// Available reports whether the plugin's name and configuration data have
// arrived for the scope.
func (r *Requirer) Available(scope string) bool { return r.flags.get(scope).Available }

// Changed reports whether unacknowledged configuration data exists for the
// scope.
func (r *Requirer) Changed(scope string) bool { return r.flags.get(scope).Changed }

// Flags returns a snapshot of the scope's status flags.
func (r *Requirer) Flags(scope string) Flags { return r.flags.get(scope) }

// Name returns the plugin's name for the scope, or ok=false if the plugin
// has not published one yet.
func (r *Requirer) Name(ctx context.Context, scope string) (string, bool, error) {
	name, ok, err := r.view.GetRemote(ctx, scope, keyName)
	if err != nil || !ok || name == "" {
		return "", false, err
	}
	return name, true, nil
}

// ConfigurationData returns the configuration fragments the plugin has
// published for the scope, or ok=false if none have arrived yet.
func (r *Requirer) ConfigurationData(ctx context.Context, scope string) (ConfigurationData, bool, error) {
	raw, ok, err := r.view.GetRemote(ctx, scope, keyConfigurationData)
	if err != nil || !ok || raw == "" {
		return ConfigurationData{}, false, err
	}
	data, err := decodeEnvelope[ConfigurationData](raw)
	if err != nil {
		return ConfigurationData{}, false, err
	}
	return data, true, nil
}

// AuthenticationData returns the credentials last sent for the scope, or
// ok=false if nothing has been sent (including when no scope has joined at
// all).
func (r *Requirer) AuthenticationData(ctx context.Context, scope string) (AuthenticationData, bool, error) {
	raw, ok, err := r.view.GetLocal(ctx, scope, keyAuthenticationData)
	if err != nil || !ok || raw == "" {
		return nil, false, err
	}
	data, err := decodeEnvelope[AuthenticationData](raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetAuthenticationData publishes the manila service user's credentials to
// every active scope. The write is idempotent per scope: a scope whose
// stored copy already equals value is skipped entirely, so repeated calls
// with unchanged data cause no transport traffic and no spurious Changed
// flag on the peer.
//
// The key set of value is checked against the canonical eight keys; a
// mismatch is logged as a warning but the data is sent regardless, since
// downstream charms may tolerate partial or evolving schemas.
//
// A failure on one scope does not stop the others; the per-scope errors are
// joined and returned after every scope has been processed.
func (r *Requirer) SetAuthenticationData(ctx context.Context, value AuthenticationData) error {
	r.log.DebugContext(ctx, "manila-plugin requirer: setting authentication data")
	if missing, extra := value.keySetDiff(); len(missing) > 0 || len(extra) > 0 {
		r.log.WarnContext(ctx, "setting authentication data; there may be missing or misspelt keys",
			"missing", missing, "extra", extra)
	}

	scopes, err := r.view.Scopes(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, scope := range scopes {
		if err := r.sendAuthenticationData(ctx, scope, value); err != nil {
			errs = append(errs, fmt.Errorf("scope %s: %w", scope, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Requirer) sendAuthenticationData(ctx context.Context, scope string, value AuthenticationData) error {
	raw, ok, err := r.view.GetLocal(ctx, scope, keyAuthenticationData)
	if err != nil {
		return err
	}
	if ok && raw != "" {
		existing, err := decodeEnvelope[AuthenticationData](raw)
		if err != nil {
			return err
		}
		if existing.Equal(value) {
			r.log.DebugContext(ctx, "manila-plugin requirer: authentication data unchanged, skipping",
				"scope", scope)
			return nil
		}
	}

	encoded, err := encodeEnvelope(value)
	if err != nil {
		return err
	}
	if err := r.view.SetLocal(ctx, scope, keyAuthenticationData, encoded); err != nil {
		return err
	}
	return r.view.SetRemote(ctx, scope, keyAuthenticationData, encoded)
}
