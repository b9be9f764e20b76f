package cell

import (
	"errors"
	"fmt"

	"github.com/npillmayer/relex"
)

// Install registers the cell builtins on an environment, binding them to
// graph g:
//
//	(cell v)            create an input cell holding v
//	(cell? x)           test whether x is a cell
//	(reset! c v)        set an input cell, returns v
//	(swap! c f & args)  reset c to (f current & args), returns the new value
//
// deref needs no registration here; the core environment's deref reads
// through cells already.
func Install(env *relex.Environment, g *Graph) {
	env.Defn("cell", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errors.New("cell: expects 1 argument")
		}
		return g.Cell(args[0]), nil
	})
	env.Defn("cell?", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errors.New("cell?: expects 1 argument")
		}
		_, ok := args[0].(*Cell)
		return ok, nil
	})
	env.Defn("reset!", func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, errors.New("reset!: expects 2 arguments")
		}
		c, ok := args[0].(*Cell)
		if !ok {
			return nil, fmt.Errorf("reset!: not a cell: %v", args[0])
		}
		if err := c.Reset(args[1]); err != nil {
			return nil, err
		}
		return args[1], nil
	})
	env.Defn("swap!", func(args []interface{}) (interface{}, error) {
		if len(args) < 2 {
			return nil, errors.New("swap!: expects a cell and a function")
		}
		c, ok := args[0].(*Cell)
		if !ok {
			return nil, fmt.Errorf("swap!: not a cell: %v", args[0])
		}
		return c.Swap(args[1], args[2:]...)
	})
}
