package hoist

import "testing"

func TestScopeEmpty(t *testing.T) {
	var sc *Scope
	if sc.Has("x") {
		t.Errorf("empty scope claims to bind x")
	}
}

func TestScopeWith(t *testing.T) {
	sc := (*Scope)(nil).With("a", "b")
	if !sc.Has("a") || !sc.Has("b") {
		t.Errorf("extension lost a binding")
	}
	if sc.Has("c") {
		t.Errorf("scope invented a binding for c")
	}
}

func TestScopeNesting(t *testing.T) {
	outer := (*Scope)(nil).With("a")
	inner := outer.With("b")
	if !inner.Has("a") {
		t.Errorf("inner scope does not see outer binding of a")
	}
	if outer.Has("b") {
		t.Errorf("inner binding of b leaked into the outer scope")
	}
}

func TestScopeEmptyExtension(t *testing.T) {
	outer := (*Scope)(nil).With("a")
	if outer.With() != outer {
		t.Errorf("extension by zero names should return the scope itself")
	}
}
