/*
Package hoist turns an expression with free references into a closure.

Hoisting is a compile-time (setup-time) transform: given an expression
and an environment, Hoist replaces every free symbol with a generated
parameter, extracts quoted sub-forms verbatim, and returns a synthesized
function literal together with the ordered list of original dependency
expressions. A reactive runtime applies the closure to the current values
of the dependencies and re-applies it whenever one of them changes.

The walk is scope-aware: binding forms (let, loop, letfn, fn, try/catch)
extend an immutable scope on the way down, so locally bound names are
never mistaken for dependencies. Macro expansion is interleaved with
walking and driven to a fixpoint at every call form. Definitional forms
(def, ns, deftype and friends) are rejected outright: a definition inside
a closure that is re-invoked on every change is unsound.

Each call to Hoist is pure and self-contained. All bookkeeping lives in a
per-call context, so concurrent hoists never share state.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package hoist

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.hoist'.
func tracer() tracing.Trace {
	return tracing.Select("relex.hoist")
}
