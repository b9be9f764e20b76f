package cell

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/google/uuid"
	"github.com/npillmayer/relex/eval"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/

// Cell is one node of a reactive graph. An input cell carries a value
// edited with Reset or Swap. A formula cell recomputes its value from
// other cells whenever one of them settles a change.
type Cell struct {
	graph    *Graph
	rank     uint64             // creation ticket; dependencies always rank lower
	value    interface{}        // current value, possibly an error
	fn       interface{}        // callable for formula cells, nil for input cells
	inputs   []interface{}      // argument list; *Cell entries are live dependencies
	sinks    []*Cell            // formula cells reading this one
	watchers *linkedhashmap.Map // watcher key -> Watcher, in registration order
}

// Watcher observes value changes of a single cell. It runs after the
// propagation wave that produced the change has settled, with the value
// the cell had before the wave and the value it has now.
type Watcher func(key string, old, new interface{})

// Cell creates an input cell holding an initial value.
func (g *Graph) Cell(initial interface{}) *Cell {
	return g.newCell(initial)
}

func (g *Graph) newCell(v interface{}) *Cell {
	g.ticket++
	return &Cell{
		graph: g,
		rank:  g.ticket,
		value: v,
	}
}

// CurrentValue returns the value the cell holds right now. For a formula
// cell whose last recomputation failed this is an error value.
func (c *Cell) CurrentValue() interface{} {
	return c.value
}

var _ eval.Dereffer = (*Cell)(nil)

// IsFormula reports whether the cell recomputes from other cells.
func (c *Cell) IsFormula() bool {
	return c.fn != nil
}

func (c *Cell) String() string {
	return fmt.Sprintf("#<cell %s>", eval.FormatValue(c.value))
}

// Reset sets the value of an input cell and propagates the change.
// Resetting a formula cell is an error; Detach it first. A value equal
// to the current one does not propagate.
func (c *Cell) Reset(v interface{}) error {
	if c.IsFormula() {
		return errors.New("cell: cannot reset a formula cell")
	}
	if eval.ValueEqual(c.value, v) {
		return nil
	}
	old := c.value
	c.value = v
	tracer().Debugf("reset %v -> %v", eval.FormatValue(old), eval.FormatValue(v))
	c.graph.changed(c, old)
	return nil
}

// Swap applies f to the cell's current value, followed by any extra
// arguments, and resets the cell to the result. It returns the new
// value.
func (c *Cell) Swap(f interface{}, extra ...interface{}) (interface{}, error) {
	if c.IsFormula() {
		return nil, errors.New("cell: cannot swap a formula cell")
	}
	args := append([]interface{}{c.value}, extra...)
	v, err := eval.Apply(f, args)
	if err != nil {
		return nil, err
	}
	return v, c.Reset(v)
}

// Watch registers a watcher on the cell and returns its key, to be used
// with Unwatch.
func (c *Cell) Watch(w Watcher) string {
	key := uuid.NewString()
	c.WatchKeyed(key, w)
	return key
}

// WatchKeyed registers a watcher under a caller-chosen key. A second
// watcher with the same key replaces the first.
func (c *Cell) WatchKeyed(key string, w Watcher) {
	if c.watchers == nil {
		c.watchers = linkedhashmap.New()
	}
	c.watchers.Put(key, w)
}

// Unwatch removes a watcher. Unknown keys are ignored.
func (c *Cell) Unwatch(key string) {
	if c.watchers != nil {
		c.watchers.Remove(key)
	}
}

// Detach cuts a formula cell loose from its dependencies. The cell keeps
// its current value and behaves like an input cell from then on.
// Detaching an input cell is a no-op.
func (c *Cell) Detach() {
	if !c.IsFormula() {
		return
	}
	for _, in := range c.inputs {
		if dep, ok := in.(*Cell); ok {
			dep.removeSink(c)
		}
	}
	c.inputs = nil
	c.fn = nil
}

func (c *Cell) removeSink(s *Cell) {
	for i, x := range c.sinks {
		if x == s {
			c.sinks = append(c.sinks[:i], c.sinks[i+1:]...)
			return
		}
	}
}

// recompute re-applies a formula cell's function to the current values
// of its inputs. A failing recomputation stores the error as the cell's
// value. recompute reports whether the value actually changed.
func (c *Cell) recompute() bool {
	args := make([]interface{}, len(c.inputs))
	for i, in := range c.inputs {
		if dep, ok := in.(*Cell); ok {
			args[i] = dep.value
		} else {
			args[i] = in
		}
	}
	v, err := eval.Apply(c.fn, args)
	if err != nil {
		tracer().Errorf("formula cell: %v", err)
		v = err
	}
	if eval.ValueEqual(c.value, v) {
		return false
	}
	c.value = v
	return true
}

// notify runs the cell's watchers, in registration order.
func (c *Cell) notify(old interface{}) {
	if c.watchers == nil {
		return
	}
	it := c.watchers.Iterator()
	for it.Next() {
		key := it.Key().(string)
		w := it.Value().(Watcher)
		w(key, old, c.value)
	}
}
