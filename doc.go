/*
Package relex is a hoisting toolbox for reactive formula cells.

ReLEx (Reactive List Expressions) statically decomposes a Lisp-style
expression with free references into a pure closure plus an ordered list
of dependency expressions, and binds the pair into a self-updating
formula cell. Package structure is as follows:

■ sexp: Package sexp implements the expression model, a closed set of
node types for symbols, literals, sequences, mappings and sets.

■ hoist: Package hoist implements the scope-aware tree walker that
replaces free references with generated parameters ("hoisting"),
interleaved with macro expansion to a fixpoint.

■ eval: Package eval applies the closures the hoister synthesizes and
evaluates dependency expressions at bind time.

■ cell: Package cell provides the reactive runtime: input cells,
formula cells, rank-ordered change propagation and transactions.

■ relexlang: Package relexlang reads textual s-expressions into the
expression model. Its sub-directory rrepl holds an interactive
sandbox (R.REPL).

The base package contains the Environment, the host-facing capability
which all the other packages consult for macros, builtins and value
bindings.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package relex

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.environ'.
func tracer() tracing.Trace {
	return tracing.Select("relex.environ")
}
