package hoist

import (
	"github.com/npillmayer/relex/sexp"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/

// Env is the slice of a host environment a hoist run needs: macro
// lookup for interleaved expansion and the table of always-available
// names. Clients register both on an environment and hand it in here.
type Env interface {
	// ExpandStep rewrites a call form once if its operator names a
	// macro, and returns the input node unchanged otherwise.
	ExpandStep(form sexp.Node) (sexp.Node, error)
	// ResolvesBuiltin reports whether a name denotes a special
	// construct, a builtin, or a namespaced builtin access, i.e. a
	// name that never counts as a dependency.
	ResolvesBuiltin(name string) bool
}

// Hoist decomposes an expression into a closed function literal and the
// ordered list of expressions it depends on. Each free reference in x
// becomes a parameter of the closure; the matching element of args says
// how to obtain it. Passthrough arguments (quoted and unquoted forms)
// precede the hoisted free symbols, and within each group the order of
// first encounter is kept, so the decomposition of structurally equal
// input is stable run over run.
//
// The returned closure contains no free references: applying it to the
// evaluated args reproduces the meaning of x. An expression with no
// free references comes back as a nullary closure with the walked body,
// and args is empty.
func Hoist(x sexp.Node, env Env) (closure sexp.Node, args []sexp.Node, err error) {
	ctx := newContext(env)
	body, err := ctx.walk(x, nil)
	if err != nil {
		return nil, nil, err
	}
	closure = sexp.Call(sexp.Sym("fn"), sexp.Vector(ctx.params()...), body)
	args = ctx.args()
	tracer().Debugf("hoisted %d dependencies out of %s", len(args), x)
	return closure, args, nil
}
