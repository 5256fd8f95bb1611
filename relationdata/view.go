package relationdata

import "context"

// View binds a Store to one side of the relation and exposes the
// primitives the endpoints are written against. The replication rule lives
// here: SetRemote writes this side's public bag, GetRemote reads the
// opposite side's public bag.
type View struct {
	store Store
	side  Side
}

// NewView returns a View for the given side of the relation.
func NewView(store Store, side Side) View {
	return View{store: store, side: side}
}

// Side reports which end of the relation this view writes as.
func (v View) Side() Side { return v.side }

// SetLocal stores a side-private value for the scope.
func (v View) SetLocal(ctx context.Context, scope, key, value string) error {
	return v.store.Put(ctx, v.side, BagLocal, scope, key, value)
}

// GetLocal reads a side-private value for the scope.
func (v View) GetLocal(ctx context.Context, scope, key string) (string, bool, error) {
	return v.store.Get(ctx, v.side, BagLocal, scope, key)
}

// SetRemote publishes a value to the peer for the scope.
func (v View) SetRemote(ctx context.Context, scope, key, value string) error {
	return v.store.Put(ctx, v.side, BagPublic, scope, key, value)
}

// GetRemote reads a value the peer has published for the scope.
func (v View) GetRemote(ctx context.Context, scope, key string) (string, bool, error) {
	return v.store.Get(ctx, v.side.Opposite(), BagPublic, scope, key)
}

// Join registers the scope as active.
func (v View) Join(ctx context.Context, scope string) error {
	return v.store.Join(ctx, scope)
}

// Depart drops the scope and its bags.
func (v View) Depart(ctx context.Context, scope string) error {
	return v.store.Depart(ctx, scope)
}

// Scopes lists the active scopes.
func (v View) Scopes(ctx context.Context) ([]string, error) {
	return v.store.Scopes(ctx)
}
