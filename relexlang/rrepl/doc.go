/*
Package rrepl/main provides an interactive command line tool (R.REPL)
for reactive expressions. Users enter expressions of the relex
language; R.REPL evaluates them and prints the result. Cells created
with the defc/defc= commands stay alive between inputs, so the effect
of edits on formula cells can be watched interactively.

R.REPL is intended as a sandbox for experiments with expression
hoisting and reactive re-evaluation.

Please refer to packages "hoist" and "cell".


License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.repl'
func tracer() tracing.Trace {
	return tracing.Select("relex.repl")
}
