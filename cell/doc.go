/*
Package cell implements a reactive value graph.

A graph holds input cells, which carry values edited from outside, and
formula cells, which recompute from other cells whenever those settle a
new value. Formula cells come out of Bind or, together with the hoist
transform, out of FormulaOf: free references in an expression become the
formula's reactive dependencies.

Propagation is glitch-free: after an edit every affected formula
recomputes exactly once, in dependency order, and watchers run only
after the whole wave has settled. Transactions batch several edits into
one wave.

A graph is confined to a single goroutine. Concurrent use needs
external synchronization.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package cell

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.cell'.
func tracer() tracing.Trace {
	return tracing.Select("relex.cell")
}
