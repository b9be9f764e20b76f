package hoist

import "fmt"

// UnsupportedFormError reports a definitional form inside an expression
// being hoisted. Definitions (def, ns, deftype, ...) are rejected no
// matter how deeply nested: the closure built from the expression is
// invoked repeatedly and anonymously, and a definition inside it would
// re-execute on every change. The error is fatal to the hoist call; no
// partial closure is produced.
type UnsupportedFormError struct {
	Op string // the offending leading operator
}

func (e *UnsupportedFormError) Error() string {
	return fmt.Sprintf("hoist: unsupported form (%s ...)", e.Op)
}

// unsupported wraps an operator name into an UnsupportedFormError.
func unsupported(op string) error {
	return &UnsupportedFormError{Op: op}
}
