// Package boltstore provides a bbolt-backed implementation of the
// relationdata.Store interface. Hook invocations are separate process runs,
// so a unit agent points both runs at the same database file and the
// relation bags carry over.
package boltstore

import (
	"context"
	"fmt"

	"github.com/ajkavanagh/charm-interface-manila-plugin/relationdata"
	"go.etcd.io/bbolt"
)

var scopesBucket = []byte("scopes")

// Store implements relationdata.Store backed by a bbolt database. Each
// (side, kind) pair is a top-level bucket holding one nested bucket per
// scope.
type Store struct {
	db *bbolt.DB
}

// New returns a Store on the given bbolt database.
func New(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// NewFromFile opens (or creates) a bbolt database at path.
func NewFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return New(db), nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func bagBucket(side relationdata.Side, kind relationdata.BagKind) []byte {
	return []byte(fmt.Sprintf("%s:%s", side, kind))
}

func (s *Store) Put(ctx context.Context, side relationdata.Side, kind relationdata.BagKind, scope, key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bagBucket(side, kind))
		if err != nil {
			return err
		}
		sb, err := b.CreateBucketIfNotExists([]byte(scope))
		if err != nil {
			return err
		}
		return sb.Put([]byte(key), []byte(value))
	})
}

func (s *Store) Get(ctx context.Context, side relationdata.Side, kind relationdata.BagKind, scope, key string) (string, bool, error) {
	var value string
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bagBucket(side, kind))
		if b == nil {
			return nil
		}
		sb := b.Bucket([]byte(scope))
		if sb == nil {
			return nil
		}
		if data := sb.Get([]byte(key)); data != nil {
			value = string(data)
			ok = true
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (s *Store) Join(ctx context.Context, scope string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(scopesBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(scope), nil)
	})
}

func (s *Store) Depart(ctx context.Context, scope string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(scopesBucket); b != nil {
			if err := b.Delete([]byte(scope)); err != nil {
				return err
			}
		}
		for _, side := range []relationdata.Side{relationdata.ProviderSide, relationdata.RequirerSide} {
			for _, kind := range []relationdata.BagKind{relationdata.BagLocal, relationdata.BagPublic} {
				b := tx.Bucket(bagBucket(side, kind))
				if b == nil || b.Bucket([]byte(scope)) == nil {
					continue
				}
				if err := b.DeleteBucket([]byte(scope)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *Store) Scopes(ctx context.Context) ([]string, error) {
	var scopes []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(scopesBucket)
		if b == nil {
			return nil
		}
		// Bucket iteration is already key-ordered.
		return b.ForEach(func(k, _ []byte) error {
			scopes = append(scopes, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if scopes == nil {
		scopes = []string{}
	}
	return scopes, nil
}

var _ relationdata.Store = (*Store)(nil)
