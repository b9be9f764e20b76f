/*
Package relexlang provides a reader for formula expressions.

The reader turns source text into sexp trees: call forms in parentheses,
vectors in brackets, maps in braces, sets behind #{, plus the quoting
sugar ' ~ and ~@. It does not evaluate anything.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package relexlang

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.lang'
func tracer() tracing.Trace {
	return tracing.Select("relex.lang")
}
