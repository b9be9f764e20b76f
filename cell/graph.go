package cell

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/npillmayer/relex/eval"
)

// Graph ties cells together and schedules propagation. Cells of one
// graph never react to cells of another.
type Graph struct {
	ticket   uint64
	txnDepth int
	touched  *linkedhashmap.Map // edited cell -> value before the pending wave
}

// NewGraph creates an empty reactive graph.
func NewGraph() *Graph {
	return &Graph{
		touched: linkedhashmap.New(),
	}
}

// byRank orders cells by creation ticket. A formula cell is always
// created after the cells it reads, so popping by ascending rank
// recomputes dependencies before dependents.
func byRank(a, b interface{}) int {
	ra, rb := a.(*Cell).rank, b.(*Cell).rank
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return 0
}

// changed records that c moved away from old. Outside of a transaction
// the change propagates immediately; inside, it waits for the outermost
// commit. Only the first edit of a cell pins its pre-wave value.
func (g *Graph) changed(c *Cell, old interface{}) {
	if _, ok := g.touched.Get(c); !ok {
		g.touched.Put(c, old)
	}
	if g.txnDepth == 0 {
		g.settle()
	}
}

// settle propagates all pending edits through the graph and, once no
// cell moves any more, notifies the watchers of every cell that ended up
// with a new value. Each affected formula cell recomputes at most once
// per wave.
func (g *Graph) settle() {
	pending := g.touched
	g.touched = linkedhashmap.New()

	changed := linkedhashmap.New() // cell -> value before the wave
	agenda := binaryheap.NewWith(byRank)
	queued := make(map[*Cell]bool)
	enqueue := func(c *Cell) {
		for _, s := range c.sinks {
			if !queued[s] {
				queued[s] = true
				agenda.Push(s)
			}
		}
	}

	it := pending.Iterator()
	for it.Next() {
		c := it.Key().(*Cell)
		old := it.Value()
		if eval.ValueEqual(old, c.value) {
			continue // edited back to where it started
		}
		changed.Put(c, old)
		enqueue(c)
	}

	for {
		x, ok := agenda.Pop()
		if !ok {
			break
		}
		c := x.(*Cell)
		old := c.value
		if !c.recompute() {
			continue
		}
		tracer().Debugf("cell settles %v -> %v", eval.FormatValue(old),
			eval.FormatValue(c.value))
		if _, seen := changed.Get(c); !seen {
			changed.Put(c, old)
		}
		enqueue(c)
	}

	it = changed.Iterator()
	for it.Next() {
		it.Key().(*Cell).notify(it.Value())
	}
}

// Transact runs body with propagation deferred: edits made inside are
// batched and settle as a single wave when the outermost transaction
// ends. Transactions nest. An error from body is returned as is; edits
// made before a failing body still settle, their values are already
// visible.
func (g *Graph) Transact(body func() error) error {
	g.txnDepth++
	defer func() {
		g.txnDepth--
		if g.txnDepth == 0 && !g.touched.Empty() {
			g.settle()
		}
	}()
	return body()
}
