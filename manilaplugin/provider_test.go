package manilaplugin

import (
	"context"
	"testing"

	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata"
	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata/memorystore"
)

func newTestStore(t *testing.T) relationdata.Store {
	t.Helper()
	s, err := memorystore.New(0)
	if err != nil {
		t.Fatalf("memorystore.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// publishAuth plays the requirer's part directly against the store.
func publishAuth(t *testing.T, store relationdata.Store, scope string, data AuthenticationData) {
	t.Helper()
	raw, err := encodeEnvelope(data)
	if err != nil {
		t.Fatalf("encodeEnvelope: %v", err)
	}
	if err := store.Put(context.Background(), relationdata.RequirerSide, relationdata.BagPublic, scope, keyAuthenticationData, raw); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestProviderLifecycleFlags(t *testing.T) {
	store := newTestStore(t)
	p := NewProvider(relationdata.NewView(store, relationdata.ProviderSide))
	ctx := context.Background()
	const scope = "manila/0"

	if p.Connected(scope) || p.Available(scope) || p.Changed(scope) {
		t.Fatal("flags set before any lifecycle event")
	}

	if err := p.HandleJoined(ctx, scope); err != nil {
		t.Fatalf("HandleJoined: %v", err)
	}
	if !p.Connected(scope) {
		t.Error("Connected not set after joined")
	}
	if p.Available(scope) || p.Changed(scope) {
		t.Error("Available/Changed set with no peer data")
	}

	publishAuth(t, store, scope, fullAuthData())
	if err := p.HandleChanged(ctx, scope); err != nil {
		t.Fatalf("HandleChanged: %v", err)
	}
	if !p.Available(scope) || !p.Changed(scope) {
		t.Errorf("flags after changed = %+v, want Available and Changed", p.Flags(scope))
	}
}

// Once set, Available stays up across further change events until a
// departed/broken event.
func TestProviderAvailabilityIsMonotonic(t *testing.T) {
	store := newTestStore(t)
	p := NewProvider(relationdata.NewView(store, relationdata.ProviderSide))
	ctx := context.Background()
	const scope = "manila/0"

	if err := p.HandleJoined(ctx, scope); err != nil {
		t.Fatalf("HandleJoined: %v", err)
	}
	publishAuth(t, store, scope, fullAuthData())
	for i := 0; i < 3; i++ {
		if err := p.HandleChanged(ctx, scope); err != nil {
			t.Fatalf("HandleChanged #%d: %v", i+1, err)
		}
		if !p.Available(scope) {
			t.Fatalf("Available dropped after change event #%d", i+1)
		}
	}
}

// Changed implies Available in every reachable state.
func TestProviderChangedImpliesAvailable(t *testing.T) {
	store := newTestStore(t)
	p := NewProvider(relationdata.NewView(store, relationdata.ProviderSide))
	ctx := context.Background()
	const scope = "manila/0"

	check := func(when string) {
		t.Helper()
		f := p.Flags(scope)
		if f.Changed && !f.Available {
			t.Errorf("%s: Changed set without Available", when)
		}
	}

	check("initial")
	if err := p.HandleJoined(ctx, scope); err != nil {
		t.Fatalf("HandleJoined: %v", err)
	}
	check("after joined")
	publishAuth(t, store, scope, fullAuthData())
	if err := p.HandleChanged(ctx, scope); err != nil {
		t.Fatalf("HandleChanged: %v", err)
	}
	check("after changed")
	p.AcknowledgeChange(scope)
	check("after acknowledge")
	if err := p.HandleDeparted(ctx, scope); err != nil {
		t.Fatalf("HandleDeparted: %v", err)
	}
	check("after departed")
}

func TestProviderAcknowledgeClearsOnlyChanged(t *testing.T) {
	store := newTestStore(t)
	p := NewProvider(relationdata.NewView(store, relationdata.ProviderSide))
	ctx := context.Background()
	const scope = "manila/0"

	if err := p.HandleJoined(ctx, scope); err != nil {
		t.Fatalf("HandleJoined: %v", err)
	}
	publishAuth(t, store, scope, fullAuthData())
	if err := p.HandleChanged(ctx, scope); err != nil {
		t.Fatalf("HandleChanged: %v", err)
	}

	p.AcknowledgeChange(scope)
	if p.Changed(scope) {
		t.Error("Changed survived AcknowledgeChange")
	}
	if !p.Available(scope) || !p.Connected(scope) {
		t.Errorf("AcknowledgeChange disturbed other flags: %+v", p.Flags(scope))
	}

	// A change event before acknowledgment must not lose the flag; one
	// after re-raises it while the data is still present.
	if err := p.HandleChanged(ctx, scope); err != nil {
		t.Fatalf("HandleChanged: %v", err)
	}
	if !p.Changed(scope) {
		t.Error("Changed not re-raised while data is still present")
	}
}

func TestProviderDepartedClearsAllFlags(t *testing.T) {
	store := newTestStore(t)
	p := NewProvider(relationdata.NewView(store, relationdata.ProviderSide))
	ctx := context.Background()
	const scope = "manila/0"

	if err := p.HandleJoined(ctx, scope); err != nil {
		t.Fatalf("HandleJoined: %v", err)
	}
	publishAuth(t, store, scope, fullAuthData())
	if err := p.HandleChanged(ctx, scope); err != nil {
		t.Fatalf("HandleChanged: %v", err)
	}
	if f := p.Flags(scope); !f.Connected || !f.Available || !f.Changed {
		t.Fatalf("precondition flags = %+v", f)
	}

	if err := p.HandleDeparted(ctx, scope); err != nil {
		t.Fatalf("HandleDeparted: %v", err)
	}
	if f := p.Flags(scope); f.Connected || f.Available || f.Changed {
		t.Errorf("flags after departed = %+v, want all clear", f)
	}

	// Idempotent.
	if err := p.HandleDeparted(ctx, scope); err != nil {
		t.Errorf("second HandleDeparted: %v", err)
	}
}

func TestProviderAuthenticationData(t *testing.T) {
	store := newTestStore(t)
	p := NewProvider(relationdata.NewView(store, relationdata.ProviderSide))
	ctx := context.Background()
	const scope = "manila/0"

	if err := p.HandleJoined(ctx, scope); err != nil {
		t.Fatalf("HandleJoined: %v", err)
	}

	if _, ok, err := p.AuthenticationData(ctx, scope); err != nil {
		t.Fatalf("AuthenticationData before send: %v", err)
	} else if ok {
		t.Error("AuthenticationData reported data before any arrived")
	}

	want := fullAuthData()
	publishAuth(t, store, scope, want)
	if err := p.HandleChanged(ctx, scope); err != nil {
		t.Fatalf("HandleChanged: %v", err)
	}
	got, ok, err := p.AuthenticationData(ctx, scope)
	if err != nil {
		t.Fatalf("AuthenticationData: %v", err)
	}
	if !ok || !got.Equal(want) {
		t.Errorf("AuthenticationData = (%v, %v), want the published record", got, ok)
	}
	if !p.Available(scope) || !p.Changed(scope) {
		t.Errorf("flags = %+v, want Available and Changed", p.Flags(scope))
	}
}

func TestProviderMalformedAuthPayloadIsFatal(t *testing.T) {
	store := newTestStore(t)
	p := NewProvider(relationdata.NewView(store, relationdata.ProviderSide))
	ctx := context.Background()
	const scope = "manila/0"

	if err := p.HandleJoined(ctx, scope); err != nil {
		t.Fatalf("HandleJoined: %v", err)
	}
	if err := store.Put(ctx, relationdata.RequirerSide, relationdata.BagPublic, scope, keyAuthenticationData, "{broken"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, _, err := p.AuthenticationData(ctx, scope); err == nil {
		t.Error("AuthenticationData accepted a malformed envelope")
	}
}

func TestProviderNameAndConfigurationEcho(t *testing.T) {
	store := newTestStore(t)
	p := NewProvider(relationdata.NewView(store, relationdata.ProviderSide))
	ctx := context.Background()
	const scope = "manila/0"

	if err := p.HandleJoined(ctx, scope); err != nil {
		t.Fatalf("HandleJoined: %v", err)
	}

	if _, ok, err := p.Name(ctx, scope); err != nil || ok {
		t.Errorf("Name before set = (ok=%v, err=%v)", ok, err)
	}
	if err := p.SetName(ctx, scope, "generic"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	name, ok, err := p.Name(ctx, scope)
	if err != nil || !ok || name != "generic" {
		t.Errorf("Name = (%q, %v, %v)", name, ok, err)
	}

	want := ConfigurationData{
		Complete: false,
		Files: map[string]ConfigFile{
			"manila.conf": {"generic": Section{Options: []ConfigOption{{Key: "driver", Value: "generic"}}}},
		},
	}
	if err := p.SetConfigurationData(ctx, scope, want); err != nil {
		t.Fatalf("SetConfigurationData: %v", err)
	}
	got, ok, err := p.ConfigurationData(ctx, scope)
	if err != nil || !ok {
		t.Fatalf("ConfigurationData = (ok=%v, err=%v)", ok, err)
	}
	if got.Complete != want.Complete || len(got.Files) != len(want.Files) {
		t.Errorf("ConfigurationData echo = %#v, want %#v", got, want)
	}
}
