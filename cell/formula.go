package cell

import (
	"fmt"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/eval"
	"github.com/npillmayer/relex/hoist"
	"github.com/npillmayer/relex/sexp"
)

// Bind creates a formula cell from a closure form and its argument
// forms, as produced by hoist.Hoist. The closure and each argument form
// are evaluated once, up front; arguments that evaluate to cells become
// live dependencies of the new cell, everything else is a static
// argument. The cell computes its first value before Bind returns.
func (g *Graph) Bind(closure sexp.Node, args []sexp.Node, env *relex.Environment) (*Cell, error) {
	f, err := eval.Eval(closure, env)
	if err != nil {
		return nil, err
	}
	switch f.(type) {
	case *eval.Closure, relex.BuiltinFn:
	default:
		return nil, fmt.Errorf("cell: formula is not callable: %s", eval.FormatValue(f))
	}
	inputs := make([]interface{}, len(args))
	for i, a := range args {
		v, err := eval.Eval(a, env)
		if err != nil {
			return nil, fmt.Errorf("cell: dependency %s: %w", a.String(), err)
		}
		inputs[i] = v
	}
	c := g.newCell(nil)
	c.fn = f
	c.inputs = inputs
	deps := 0
	for _, in := range inputs {
		if dep, ok := in.(*Cell); ok {
			dep.sinks = append(dep.sinks, c)
			deps++
		}
	}
	c.recompute()
	tracer().Debugf("bound formula cell over %d input(s), %d reactive", len(inputs), deps)
	return c, nil
}

// FormulaOf hoists an expression and binds the result: free references
// in x that name cells become live dependencies, and the returned cell
// recomputes whenever one of them settles a new value.
func FormulaOf(g *Graph, x sexp.Node, env *relex.Environment) (*Cell, error) {
	closure, args, err := hoist.Hoist(x, env)
	if err != nil {
		return nil, err
	}
	return g.Bind(closure, args, env)
}
