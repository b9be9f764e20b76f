package hoist

import (
	"fmt"
	"sync/atomic"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/npillmayer/relex/sexp"
)

// aliasCounter feeds fresh alias names. It is the only process-wide state
// of this package, and it only guarantees that no alias is ever reused
// across hoist calls; all ordering lives in the per-call context.
var aliasCounter uint64

// freshAlias returns a new alias symbol, unique for the process lifetime.
func freshAlias() *sexp.Symbol {
	n := atomic.AddUint64(&aliasCounter, 1)
	return sexp.Sym(fmt.Sprintf("dep__%d", n))
}

// context is the per-invocation accumulator of one hoist call. It is
// created by Hoist, threaded by pointer through the walk, frozen into
// parameter/argument lists at the end, and never shared between calls.
//
// Both tables are insertion-ordered and key-deduplicating:
//
//	hoisted:     free symbol name -> alias symbol
//	passthrough: alias name       -> verbatim dependency expression
//
// Passthrough entries precede hoisted entries in the final lists.
type context struct {
	env         Env
	hoisted     *linkedhashmap.Map
	passthrough *linkedhashmap.Map
}

func newContext(env Env) *context {
	return &context{
		env:         env,
		hoisted:     linkedhashmap.New(),
		passthrough: linkedhashmap.New(),
	}
}

// hoistSymbol returns the alias standing in for a free symbol, creating
// it on first encounter. Repeated hoisting of the same name yields the
// same alias.
func (ctx *context) hoistSymbol(s *sexp.Symbol) *sexp.Symbol {
	if alias, ok := ctx.hoisted.Get(s.Name); ok {
		return alias.(*sexp.Symbol)
	}
	alias := freshAlias()
	ctx.hoisted.Put(s.Name, alias)
	tracer().Debugf("hoist %s as %s", s.Name, alias.Name)
	return alias
}

// passThrough stores a dependency expression under a fresh alias. Unlike
// hoisted symbols, passthrough entries are never deduplicated: every
// quotation is its own dependency.
func (ctx *context) passThrough(n sexp.Node) *sexp.Symbol {
	alias := freshAlias()
	ctx.passthrough.Put(alias.Name, n)
	tracer().Debugf("pass through %s: %s", alias.Name, n)
	return alias
}

// params returns the closure's parameter list: passthrough aliases first,
// hoisted aliases second, each in insertion order.
func (ctx *context) params() []sexp.Node {
	params := make([]sexp.Node, 0, ctx.passthrough.Size()+ctx.hoisted.Size())
	for _, k := range ctx.passthrough.Keys() {
		params = append(params, sexp.Sym(k.(string)))
	}
	for _, v := range ctx.hoisted.Values() {
		params = append(params, v.(*sexp.Symbol))
	}
	return params
}

// args returns the argument list matching params: the verbatim
// passthrough expressions, then the original free symbols.
func (ctx *context) args() []sexp.Node {
	args := make([]sexp.Node, 0, ctx.passthrough.Size()+ctx.hoisted.Size())
	for _, v := range ctx.passthrough.Values() {
		args = append(args, v.(sexp.Node))
	}
	for _, k := range ctx.hoisted.Keys() {
		args = append(args, sexp.Sym(k.(string)))
	}
	return args
}
