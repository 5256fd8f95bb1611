package manilaplugin

// Flags is the per-scope status surface read by the charm's reconciliation
// loop.
type Flags struct {
	// Connected means the peer has joined this scope.
	Connected bool
	// Available means the data this side expects from the peer has arrived
	// at least once. It stays set until a departed/broken event.
	Available bool
	// Changed means Available data exists that the consumer has not yet
	// acknowledged. Changed is never set without Available.
	Changed bool
}

// flagSet tracks Flags per scope for one endpoint.
type flagSet struct {
	byScope map[string]*Flags
}

func newFlagSet() *flagSet {
	return &flagSet{byScope: make(map[string]*Flags)}
}

func (f *flagSet) ensure(scope string) *Flags {
	fl, ok := f.byScope[scope]
	if !ok {
		fl = &Flags{}
		f.byScope[scope] = fl
	}
	return fl
}

// get returns a snapshot; unknown scopes read as all-false.
func (f *flagSet) get(scope string) Flags {
	if fl, ok := f.byScope[scope]; ok {
		return *fl
	}
	return Flags{}
}

func (f *flagSet) acknowledge(scope string) {
	if fl, ok := f.byScope[scope]; ok {
		fl.Changed = false
	}
}

func (f *flagSet) clear(scope string) {
	delete(f.byScope, scope)
}
