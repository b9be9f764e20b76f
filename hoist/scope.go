package hoist

// Scope is an immutable set of locally bound names. Extending a scope
// creates a child frame pointing back at its parent; the receiver is
// never modified, so sibling branches of the walk cannot see each
// other's bindings. The nil *Scope is the valid empty scope.
type Scope struct {
	names  map[string]struct{}
	parent *Scope
}

// With returns a scope extended by the given names. Empty extension
// returns the receiver unchanged.
func (sc *Scope) With(names ...string) *Scope {
	if len(names) == 0 {
		return sc
	}
	frame := make(map[string]struct{}, len(names))
	for _, n := range names {
		frame[n] = struct{}{}
	}
	return &Scope{names: frame, parent: sc}
}

// Has reports whether name is bound in this scope or any parent.
func (sc *Scope) Has(name string) bool {
	for s := sc; s != nil; s = s.parent {
		if _, ok := s.names[name]; ok {
			return true
		}
	}
	return false
}
