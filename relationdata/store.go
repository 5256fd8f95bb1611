package relationdata

import (
	"context"
	"errors"
)

// ErrClosed is returned by store operations after Close has been called.
var ErrClosed = errors.New("relation store closed")

// Side identifies one end of the relation.
type Side string

const (
	// ProviderSide is the subordinate plugin end of the relation.
	ProviderSide Side = "provider"
	// RequirerSide is the principal (manila) end of the relation.
	RequirerSide Side = "requirer"
)

// Opposite returns the other end of the relation.
func (s Side) Opposite() Side {
	if s == ProviderSide {
		return RequirerSide
	}
	return ProviderSide
}

// BagKind selects one of the two bags a side holds per scope.
type BagKind string

const (
	// BagLocal is the side-private cache. It is never replicated.
	BagLocal BagKind = "local"
	// BagPublic is the bag replicated to the opposite side's GetRemote.
	BagPublic BagKind = "public"
)

// Store is the minimal contract the endpoints need a data-bag backend to
// provide. Values are opaque strings; structured payloads are serialized
// before they reach the store.
//
// Scope lifecycle is explicit: Join registers a scope (idempotently),
// Depart drops the scope and every bag stored under it. Reads against a
// scope that was never joined simply report the key as absent.
type Store interface {
	// Put stores value under (side, kind, scope, key), overwriting any
	// previous value.
	Put(ctx context.Context, side Side, kind BagKind, scope, key, value string) error

	// Get retrieves the value under (side, kind, scope, key). A missing key
	// is reported via ok=false, not an error.
	Get(ctx context.Context, side Side, kind BagKind, scope, key string) (value string, ok bool, err error)

	// Join registers scope as active. Joining an already-active scope is a
	// no-op.
	Join(ctx context.Context, scope string) error

	// Depart removes scope from the active set and drops all bags stored
	// under it, on both sides. Departing an unknown scope is a no-op.
	Depart(ctx context.Context, scope string) error

	// Scopes lists the active scopes. An empty relation yields an empty
	// slice, never an error.
	Scopes(ctx context.Context) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}
