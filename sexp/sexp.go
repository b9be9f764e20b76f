package sexp

//go:generate go tool stringer -type=NodeType

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/

// NodeType discriminates the node types of the expression model.
type NodeType int

// The expression model consists of exactly these node types.
const (
	SymbolType NodeType = iota
	LiteralType
	SeqType
	MappingType
	SetType
)

// Node is an expression tree node. The implementing types form a closed
// set: *Symbol, *Literal, *Seq, *Mapping and *Set. Code dispatching on
// node shape type-switches over these five and treats anything else as
// an internal error.
type Node interface {
	Type() NodeType
	String() string
}

// Keyword is the value type for keyword literals (":name"). Keywords
// evaluate to themselves and are mainly used as mapping keys.
type Keyword string

// --- Symbols ----------------------------------------------------------

// Symbol is a name occurrence. Names may be namespace-qualified in the
// form "ns/name"; qualification is plain string content here, resolution
// is the environment's business.
type Symbol struct {
	Name string
}

// Sym creates a symbol node.
func Sym(name string) *Symbol {
	return &Symbol{Name: name}
}

// Type returns SymbolType.
func (s *Symbol) Type() NodeType { return SymbolType }

// --- Literals ---------------------------------------------------------

// Literal wraps an opaque value. The reader produces int64, float64,
// string, bool, Keyword and nil; programmatic construction may wrap
// anything.
type Literal struct {
	Value interface{}
}

// Lit creates a literal node.
func Lit(value interface{}) *Literal {
	return &Literal{Value: value}
}

// Type returns LiteralType.
func (l *Literal) Type() NodeType { return LiteralType }

// --- Sequences --------------------------------------------------------

// SeqKind distinguishes the two sequence containers.
type SeqKind int8

// A Seq is either a call form or a vector.
const (
	CallSeq SeqKind = iota
	VectorSeq
)

func (k SeqKind) String() string {
	if k == CallSeq {
		return "call"
	}
	return "vector"
}

// Seq is an ordered sequence of nodes. Call forms are the operator
// applications of the language: when the first item is a symbol, that
// symbol identifies the operator and all structural dispatch keys on it.
// Vectors are plain data containers.
type Seq struct {
	Kind  SeqKind
	Items []Node
}

// Call creates a call-form sequence.
func Call(items ...Node) *Seq {
	return &Seq{Kind: CallSeq, Items: items}
}

// Vector creates a vector sequence.
func Vector(items ...Node) *Seq {
	return &Seq{Kind: VectorSeq, Items: items}
}

// Type returns SeqType.
func (q *Seq) Type() NodeType { return SeqType }

// HeadSymbol returns the name of the leading symbol of a call form, if
// there is one.
func (q *Seq) HeadSymbol() (string, bool) {
	if q.Kind != CallSeq || len(q.Items) == 0 {
		return "", false
	}
	if s, ok := q.Items[0].(*Symbol); ok {
		return s.Name, true
	}
	return "", false
}

// --- Mappings ---------------------------------------------------------

// Pair is a single key/value entry of a mapping.
type Pair struct {
	Key Node
	Val Node
}

// Mapping is an associative container. Pairs keep their construction
// order, which makes printing and walking deterministic; key semantics
// (hashing, duplicate handling) are the evaluator's concern.
type Mapping struct {
	Pairs []Pair
}

// MapOf creates a mapping node from pairs.
func MapOf(pairs ...Pair) *Mapping {
	return &Mapping{Pairs: pairs}
}

// Type returns MappingType.
func (m *Mapping) Type() NodeType { return MappingType }

// --- Sets -------------------------------------------------------------

// Set is a set literal. Element order is preserved as given.
type Set struct {
	Items []Node
}

// SetOf creates a set node.
func SetOf(items ...Node) *Set {
	return &Set{Items: items}
}

// Type returns SetType.
func (s *Set) Type() NodeType { return SetType }
