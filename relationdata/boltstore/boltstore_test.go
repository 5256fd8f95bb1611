package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata"
	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata/storetest"
)

func TestBoltStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) relationdata.Store {
		s, err := NewFromFile(filepath.Join(t.TempDir(), "relation.db"), nil)
		if err != nil {
			t.Fatalf("NewFromFile: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

// Bags must survive a close/reopen cycle: every hook invocation is a fresh
// process run against the same database file.
func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relation.db")
	ctx := context.Background()

	s, err := NewFromFile(path, nil)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	if err := s.Join(ctx, "peer/0"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := s.Put(ctx, relationdata.RequirerSide, relationdata.BagLocal, "peer/0", "_authentication_data", `{"data":{}}`); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = NewFromFile(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	scopes, err := s.Scopes(ctx)
	if err != nil {
		t.Fatalf("Scopes: %v", err)
	}
	if len(scopes) != 1 || scopes[0] != "peer/0" {
		t.Errorf("Scopes after reopen = %v, want [peer/0]", scopes)
	}
	value, ok, err := s.Get(ctx, relationdata.RequirerSide, relationdata.BagLocal, "peer/0", "_authentication_data")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || value != `{"data":{}}` {
		t.Errorf("Get after reopen = (%q, %v), want the stored payload", value, ok)
	}
}
