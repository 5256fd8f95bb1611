// Package storetest provides a behavioral conformance suite for
// relationdata.Store implementations. Each backend's tests call Run with a
// factory producing a fresh store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata"
)

// StoreFactory creates a new Store instance for testing. Cleanup should be
// registered on t.
type StoreFactory func(t *testing.T) relationdata.Store

// Run runs the complete Store conformance suite against the provided
// factory.
func Run(t *testing.T, factory StoreFactory) {
	t.Run("Bags_PutGetRoundTrip", func(t *testing.T) { testPutGetRoundTrip(t, factory) })
	t.Run("Bags_AbsentKey", func(t *testing.T) { testAbsentKey(t, factory) })
	t.Run("Bags_Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("Bags_EmptyValueIsPresent", func(t *testing.T) { testEmptyValue(t, factory) })
	t.Run("Bags_KindIsolation", func(t *testing.T) { testKindIsolation(t, factory) })
	t.Run("Bags_SideIsolation", func(t *testing.T) { testSideIsolation(t, factory) })
	t.Run("Bags_ScopeIsolation", func(t *testing.T) { testScopeIsolation(t, factory) })

	t.Run("Scopes_EmptyRelation", func(t *testing.T) { testScopesEmpty(t, factory) })
	t.Run("Scopes_JoinIsIdempotent", func(t *testing.T) { testJoinIdempotent(t, factory) })
	t.Run("Scopes_DepartRemovesScope", func(t *testing.T) { testDepartRemovesScope(t, factory) })
	t.Run("Scopes_DepartDropsBags", func(t *testing.T) { testDepartDropsBags(t, factory) })
	t.Run("Scopes_DepartUnknownScope", func(t *testing.T) { testDepartUnknownScope(t, factory) })
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testPutGetRoundTrip(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	if err := s.Put(ctx, relationdata.ProviderSide, relationdata.BagPublic, "peer/0", "_name", "generic"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value, ok, err := s.Get(ctx, relationdata.ProviderSide, relationdata.BagPublic, "peer/0", "_name")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Get reported the key absent after Put")
	}
	if value != "generic" {
		t.Errorf("Get returned %q, want %q", value, "generic")
	}
}

func testAbsentKey(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	value, ok, err := s.Get(ctx, relationdata.RequirerSide, relationdata.BagLocal, "peer/0", "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Errorf("Get reported a never-written key present (value %q)", value)
	}
}

func testOverwrite(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	for _, v := range []string{"one", "two"} {
		if err := s.Put(ctx, relationdata.RequirerSide, relationdata.BagPublic, "peer/0", "k", v); err != nil {
			t.Fatalf("Put %q failed: %v", v, err)
		}
	}
	value, ok, err := s.Get(ctx, relationdata.RequirerSide, relationdata.BagPublic, "peer/0", "k")
	if err != nil || !ok {
		t.Fatalf("Get after overwrite: ok=%v err=%v", ok, err)
	}
	if value != "two" {
		t.Errorf("Get returned %q, want the overwritten value %q", value, "two")
	}
}

func testEmptyValue(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	if err := s.Put(ctx, relationdata.ProviderSide, relationdata.BagLocal, "peer/0", "k", ""); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value, ok, err := s.Get(ctx, relationdata.ProviderSide, relationdata.BagLocal, "peer/0", "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Error("an explicitly stored empty value must read back as present")
	}
	if value != "" {
		t.Errorf("Get returned %q, want empty string", value)
	}
}

func testKindIsolation(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	if err := s.Put(ctx, relationdata.ProviderSide, relationdata.BagLocal, "peer/0", "k", "private"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok, err := s.Get(ctx, relationdata.ProviderSide, relationdata.BagPublic, "peer/0", "k"); err != nil {
		t.Fatalf("Get failed: %v", err)
	} else if ok {
		t.Error("a local-bag write leaked into the public bag")
	}
}

func testSideIsolation(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	if err := s.Put(ctx, relationdata.ProviderSide, relationdata.BagPublic, "peer/0", "k", "from-provider"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok, err := s.Get(ctx, relationdata.RequirerSide, relationdata.BagPublic, "peer/0", "k"); err != nil {
		t.Fatalf("Get failed: %v", err)
	} else if ok {
		t.Error("a provider-side write leaked into the requirer's bag")
	}
}

func testScopeIsolation(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	if err := s.Put(ctx, relationdata.RequirerSide, relationdata.BagLocal, "peer/0", "k", "zero"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok, err := s.Get(ctx, relationdata.RequirerSide, relationdata.BagLocal, "peer/1", "k"); err != nil {
		t.Fatalf("Get failed: %v", err)
	} else if ok {
		t.Error("a write for one scope leaked into another scope")
	}
}

func testScopesEmpty(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	scopes, err := s.Scopes(ctx)
	if err != nil {
		t.Fatalf("Scopes on an empty relation must not fail: %v", err)
	}
	if len(scopes) != 0 {
		t.Errorf("Scopes returned %v, want none", scopes)
	}
}

func testJoinIdempotent(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	for i := 0; i < 3; i++ {
		if err := s.Join(ctx, "peer/0"); err != nil {
			t.Fatalf("Join #%d failed: %v", i+1, err)
		}
	}
	scopes, err := s.Scopes(ctx)
	if err != nil {
		t.Fatalf("Scopes failed: %v", err)
	}
	if len(scopes) != 1 || scopes[0] != "peer/0" {
		t.Errorf("Scopes returned %v, want [peer/0]", scopes)
	}
}

func testDepartRemovesScope(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	for _, scope := range []string{"peer/0", "peer/1"} {
		if err := s.Join(ctx, scope); err != nil {
			t.Fatalf("Join %s failed: %v", scope, err)
		}
	}
	if err := s.Depart(ctx, "peer/0"); err != nil {
		t.Fatalf("Depart failed: %v", err)
	}
	scopes, err := s.Scopes(ctx)
	if err != nil {
		t.Fatalf("Scopes failed: %v", err)
	}
	if len(scopes) != 1 || scopes[0] != "peer/1" {
		t.Errorf("Scopes returned %v, want [peer/1]", scopes)
	}
}

func testDepartDropsBags(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	if err := s.Join(ctx, "peer/0"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	for _, side := range []relationdata.Side{relationdata.ProviderSide, relationdata.RequirerSide} {
		for _, kind := range []relationdata.BagKind{relationdata.BagLocal, relationdata.BagPublic} {
			if err := s.Put(ctx, side, kind, "peer/0", "k", "v"); err != nil {
				t.Fatalf("Put %s/%s failed: %v", side, kind, err)
			}
		}
	}
	if err := s.Depart(ctx, "peer/0"); err != nil {
		t.Fatalf("Depart failed: %v", err)
	}
	for _, side := range []relationdata.Side{relationdata.ProviderSide, relationdata.RequirerSide} {
		for _, kind := range []relationdata.BagKind{relationdata.BagLocal, relationdata.BagPublic} {
			if _, ok, err := s.Get(ctx, side, kind, "peer/0", "k"); err != nil {
				t.Fatalf("Get %s/%s failed: %v", side, kind, err)
			} else if ok {
				t.Errorf("%s/%s bag survived Depart", side, kind)
			}
		}
	}
}

func testDepartUnknownScope(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := testCtx(t)

	if err := s.Depart(ctx, "never-joined/9"); err != nil {
		t.Errorf("Depart of an unknown scope must be a no-op, got: %v", err)
	}
}
