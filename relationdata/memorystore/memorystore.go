// Package memorystore provides an in-memory implementation of the
// relationdata.Store interface using github.com/hashicorp/golang-lru/v2,
// suitable for tests and single-process deployments where both endpoints
// share one store instance.
package memorystore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxEntries bounds the bag cache when no explicit size is given.
// Relation bags hold a handful of keys per scope, so this is generous.
const DefaultMaxEntries = 4096

// Store implements relationdata.Store in process memory.
type Store struct {
	mu     sync.RWMutex
	cache  *lru.Cache[string, string]
	scopes map[string]struct{}
	closed bool
}

// New creates an in-memory store. maxEntries <= 0 selects
// DefaultMaxEntries.
func New(maxEntries int) (*Store, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	cache, err := lru.New[string, string](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &Store{
		cache:  cache,
		scopes: make(map[string]struct{}),
	}, nil
}

// Put stores value under (side, kind, scope, key).
func (s *Store) Put(ctx context.Context, side relationdata.Side, kind relationdata.BagKind, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return relationdata.ErrClosed
	}
	s.cache.Add(buildKey(side, kind, scope, key), value)
	return nil
}

// Get retrieves the value under (side, kind, scope, key).
func (s *Store) Get(ctx context.Context, side relationdata.Side, kind relationdata.BagKind, scope, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, relationdata.ErrClosed
	}
	value, ok := s.cache.Get(buildKey(side, kind, scope, key))
	return value, ok, nil
}

// Join registers scope as active.
func (s *Store) Join(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return relationdata.ErrClosed
	}
	s.scopes[scope] = struct{}{}
	return nil
}

// Depart removes scope and drops every bag stored under it.
func (s *Store) Depart(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return relationdata.ErrClosed
	}
	delete(s.scopes, scope)
	for _, side := range []relationdata.Side{relationdata.ProviderSide, relationdata.RequirerSide} {
		for _, kind := range []relationdata.BagKind{relationdata.BagLocal, relationdata.BagPublic} {
			s.deleteByPrefix(bagPrefix(side, kind, scope))
		}
	}
	return nil
}

// Scopes lists the active scopes in sorted order.
func (s *Store) Scopes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, relationdata.ErrClosed
	}
	scopes := make([]string, 0, len(s.scopes))
	for scope := range s.scopes {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes, nil
}

// Close drops all data; further operations return relationdata.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cache.Purge()
	s.scopes = make(map[string]struct{})
	return nil
}

// deleteByPrefix removes all keys with the given prefix. The LRU cache has
// no prefix iteration, so this walks the key list.
func (s *Store) deleteByPrefix(prefix string) {
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Remove(key)
		}
	}
}

func buildKey(side relationdata.Side, kind relationdata.BagKind, scope, key string) string {
	return bagPrefix(side, kind, scope) + key
}

func bagPrefix(side relationdata.Side, kind relationdata.BagKind, scope string) string {
	return fmt.Sprintf("%s:%s:scope:%s:key:", side, kind, scope)
}

var _ relationdata.Store = (*Store)(nil)
