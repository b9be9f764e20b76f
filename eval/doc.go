/*
Package eval implements a small interpreter for symbolic expressions.

It evaluates sexp trees against an environment of builtins and macros,
with lexical frames for local bindings. Function literals close over
the frame they were created in. The interpreter understands the usual
special forms (quote, if, do, let, loop/recur, letfn, fn, try) plus a
member access form for map-shaped values.

Values are untyped: numbers are int64 or float64, collections are Go
slices and maps, functions are closures or builtin Go functions. A
value implementing Dereffer, typically a reactive cell, can be read
with deref.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package eval

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.eval'.
func tracer() tracing.Trace {
	return tracing.Select("relex.eval")
}
