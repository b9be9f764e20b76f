package sexp

import (
	"reflect"

	"github.com/cnf/structhash"
)

// Equal reports structural equality of two expression trees. Literals
// compare by value including type (an int64 1 is not a float64 1).
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case *Symbol:
		y, ok := b.(*Symbol)
		return ok && x.Name == y.Name
	case *Literal:
		y, ok := b.(*Literal)
		return ok && reflect.DeepEqual(x.Value, y.Value)
	case *Seq:
		y, ok := b.(*Seq)
		if !ok || x.Kind != y.Kind || len(x.Items) != len(y.Items) {
			return false
		}
		return equalItems(x.Items, y.Items)
	case *Mapping:
		y, ok := b.(*Mapping)
		if !ok || len(x.Pairs) != len(y.Pairs) {
			return false
		}
		for i := range x.Pairs {
			if !Equal(x.Pairs[i].Key, y.Pairs[i].Key) || !Equal(x.Pairs[i].Val, y.Pairs[i].Val) {
				return false
			}
		}
		return true
	case *Set:
		y, ok := b.(*Set)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		return equalItems(x.Items, y.Items)
	}
	panic("sexp: unknown node type in Equal")
}

func equalItems(a, b []Node) bool {
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Fingerprint returns a content hash of an expression tree. Two trees
// with equal structure and literal content hash alike. The hoister uses
// fingerprints to detect cyclic macro expansions.
func Fingerprint(n Node) (string, error) {
	return structhash.Hash(n, 1)
}
