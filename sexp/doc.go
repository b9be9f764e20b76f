/*
Package sexp implements the ReLEx expression model.

Expressions are trees over a closed set of node types: symbols, opaque
literals, sequences (call forms and vectors), ordered mappings and sets.
The set is closed on purpose: every component that dispatches on node
shape does so with a type switch over exactly five pointer types, and an
unknown type is a programming error, not a case to degrade gracefully on.

Nodes are pure data. They carry no behavior beyond printing, structural
equality and a content fingerprint; scoping, evaluation and rewriting are
the business of the hoist and eval packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sexp
