package cell

import (
	"errors"
	"testing"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/eval"
	"github.com/npillmayer/relex/relexlang"
	"github.com/npillmayer/relex/sexp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func testbed() (*Graph, *relex.Environment) {
	g := NewGraph()
	env := eval.StdEnv()
	Install(env, g)
	return g, env
}

func parse(t *testing.T, src string) sexp.Node {
	n, err := relexlang.Parse(src)
	if err != nil {
		t.Fatalf("cannot parse %q: %v", src, err)
	}
	return n
}

func formula(t *testing.T, g *Graph, env *relex.Environment, src string) *Cell {
	c, err := FormulaOf(g, parse(t, src), env)
	if err != nil {
		t.Fatalf("cannot build formula %q: %v", src, err)
	}
	return c
}

func TestInputCell(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g := NewGraph()
	c := g.Cell(int64(1))
	if c.IsFormula() {
		t.Errorf("input cell claims to be a formula")
	}
	if v := c.CurrentValue(); v != int64(1) {
		t.Errorf("fresh cell holds %v, want 1", v)
	}
	if err := c.Reset(int64(2)); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if v := c.CurrentValue(); v != int64(2) {
		t.Errorf("cell holds %v after reset, want 2", v)
	}
}

func TestWatcher(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g := NewGraph()
	c := g.Cell(int64(1))
	var gotKey string
	var gotOld, gotNew interface{}
	calls := 0
	key := c.Watch(func(k string, old, new interface{}) {
		gotKey, gotOld, gotNew = k, old, new
		calls++
	})
	if key == "" {
		t.Fatalf("Watch returned an empty key")
	}
	c.Reset(int64(2))
	if calls != 1 {
		t.Fatalf("watcher ran %d times, want 1", calls)
	}
	if gotKey != key || gotOld != int64(1) || gotNew != int64(2) {
		t.Errorf("watcher saw (%v, %v, %v), want (%v, 1, 2)", gotKey, gotOld, gotNew, key)
	}
	c.Reset(int64(2)) // value unchanged
	if calls != 1 {
		t.Errorf("watcher ran on a no-change reset")
	}
	c.Unwatch(key)
	c.Reset(int64(3))
	if calls != 1 {
		t.Errorf("watcher ran after Unwatch")
	}
}

func TestWatcherOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g := NewGraph()
	c := g.Cell(int64(0))
	var order []string
	c.WatchKeyed("first", func(k string, _, _ interface{}) { order = append(order, k) })
	c.WatchKeyed("second", func(k string, _, _ interface{}) { order = append(order, k) })
	c.Reset(int64(1))
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("watchers ran as %v, want [first second]", order)
	}
}

func TestFormulaRecomputes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	a := g.Cell(int64(1))
	env.Def("a", a)
	f := formula(t, g, env, "(+ a 1)")
	if !f.IsFormula() {
		t.Errorf("formula cell does not report as formula")
	}
	if v := f.CurrentValue(); v != int64(2) {
		t.Fatalf("formula computed %v, want 2", v)
	}
	a.Reset(int64(10))
	if v := f.CurrentValue(); v != int64(11) {
		t.Errorf("formula holds %v after an edit, want 11", v)
	}
}

func TestConstantFormula(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	f := formula(t, g, env, "(+ 1 2)")
	if v := f.CurrentValue(); v != int64(3) {
		t.Errorf("constant formula computed %v, want 3", v)
	}
	if !f.IsFormula() {
		t.Errorf("constant formula does not report as formula")
	}
}

func TestFormulaChain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	a := g.Cell(int64(1))
	env.Def("a", a)
	b := formula(t, g, env, "(+ a 1)")
	env.Def("b", b)
	c := formula(t, g, env, "(* b 2)")
	if v := c.CurrentValue(); v != int64(4) {
		t.Fatalf("chained formula computed %v, want 4", v)
	}
	a.Reset(int64(5))
	if v := b.CurrentValue(); v != int64(6) {
		t.Errorf("middle of the chain holds %v, want 6", v)
	}
	if v := c.CurrentValue(); v != int64(12) {
		t.Errorf("end of the chain holds %v, want 12", v)
	}
}

func TestDiamondRecomputesOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	count := 0
	env.Defn("probe", func(args []interface{}) (interface{}, error) {
		count++
		return args[0], nil
	})
	src := g.Cell(int64(1))
	env.Def("src", src)
	left := formula(t, g, env, "(+ src 1)")
	env.Def("left", left)
	right := formula(t, g, env, "(* src 2)")
	env.Def("right", right)
	top := formula(t, g, env, "(probe (+ left right))")
	if v := top.CurrentValue(); v != int64(4) {
		t.Fatalf("diamond top computed %v, want 4", v)
	}
	count = 0
	src.Reset(int64(3))
	if v := top.CurrentValue(); v != int64(10) {
		t.Errorf("diamond top holds %v, want 10", v)
	}
	if count != 1 {
		t.Errorf("diamond top recomputed %d times for one edit, want 1", count)
	}
}

func TestTransactBatches(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	a := g.Cell(int64(1))
	b := g.Cell(int64(10))
	env.Def("a", a)
	env.Def("b", b)
	sum := formula(t, g, env, "(+ a b)")
	var events [][2]interface{}
	sum.WatchKeyed("probe", func(_ string, old, new interface{}) {
		events = append(events, [2]interface{}{old, new})
	})
	err := g.Transact(func() error {
		if err := a.Reset(int64(2)); err != nil {
			return err
		}
		if err := b.Reset(int64(20)); err != nil {
			return err
		}
		if v := sum.CurrentValue(); v != int64(11) {
			t.Errorf("formula recomputed inside the transaction: %v", v)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if v := sum.CurrentValue(); v != int64(22) {
		t.Errorf("formula holds %v after commit, want 22", v)
	}
	if len(events) != 1 {
		t.Fatalf("watcher ran %d times for one transaction, want 1", len(events))
	}
	if events[0][0] != int64(11) || events[0][1] != int64(22) {
		t.Errorf("watcher saw %v -> %v, want 11 -> 22", events[0][0], events[0][1])
	}
}

func TestTransactNested(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g := NewGraph()
	a := g.Cell(int64(1))
	calls := 0
	var gotOld interface{}
	a.WatchKeyed("probe", func(_ string, old, _ interface{}) {
		calls++
		gotOld = old
	})
	err := g.Transact(func() error {
		if err := a.Reset(int64(2)); err != nil {
			return err
		}
		return g.Transact(func() error {
			if err := a.Reset(int64(3)); err != nil {
				return err
			}
			if calls != 0 {
				t.Errorf("watcher ran before the outermost commit")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("watcher ran %d times, want 1", calls)
	}
	if gotOld != int64(1) {
		t.Errorf("watcher saw old value %v, want the pre-transaction 1", gotOld)
	}
}

func TestTransactEditBack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g := NewGraph()
	a := g.Cell(int64(1))
	calls := 0
	a.WatchKeyed("probe", func(string, interface{}, interface{}) { calls++ })
	err := g.Transact(func() error {
		if err := a.Reset(int64(2)); err != nil {
			return err
		}
		return a.Reset(int64(1))
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("watcher ran %d times for a round-trip edit, want 0", calls)
	}
}

func TestTransactError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g := NewGraph()
	a := g.Cell(int64(1))
	calls := 0
	a.WatchKeyed("probe", func(string, interface{}, interface{}) { calls++ })
	boom := errors.New("boom")
	err := g.Transact(func() error {
		if err := a.Reset(int64(5)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transaction returned %v, want boom", err)
	}
	if v := a.CurrentValue(); v != int64(5) {
		t.Errorf("edit before the failure was lost: %v", v)
	}
	if calls != 1 {
		t.Errorf("watcher ran %d times, want 1", calls)
	}
}

func TestFormulaErrorValue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	d := g.Cell(int64(2))
	env.Def("d", d)
	q := formula(t, g, env, "(/ 10 d)")
	if v := q.CurrentValue(); v != int64(5) {
		t.Fatalf("formula computed %v, want 5", v)
	}
	d.Reset(int64(0))
	if _, ok := q.CurrentValue().(error); !ok {
		t.Fatalf("formula over a zero denominator holds %v, want an error value",
			eval.FormatValue(q.CurrentValue()))
	}
	d.Reset(int64(5))
	if v := q.CurrentValue(); v != int64(2) {
		t.Errorf("formula did not recover from an error value: %v", v)
	}
}

func TestResetFormulaFails(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	a := g.Cell(int64(1))
	env.Def("a", a)
	f := formula(t, g, env, "(+ a 1)")
	if err := f.Reset(int64(9)); err == nil {
		t.Errorf("reset on a formula cell did not fail")
	}
	if _, err := f.Swap(nil); err == nil {
		t.Errorf("swap on a formula cell did not fail")
	}
}

func TestDetach(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	a := g.Cell(int64(1))
	env.Def("a", a)
	f := formula(t, g, env, "(+ a 1)")
	f.Detach()
	if f.IsFormula() {
		t.Errorf("detached cell still claims to be a formula")
	}
	a.Reset(int64(50))
	if v := f.CurrentValue(); v != int64(2) {
		t.Errorf("detached cell recomputed to %v", v)
	}
	if err := f.Reset(int64(7)); err != nil {
		t.Errorf("detached cell refuses reset: %v", err)
	}
	if v := f.CurrentValue(); v != int64(7) {
		t.Errorf("detached cell holds %v after reset, want 7", v)
	}
}

func TestInstallBuiltins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	run := func(src string) interface{} {
		v, err := eval.Eval(parse(t, src), env)
		if err != nil {
			t.Fatalf("eval %q failed: %v", src, err)
		}
		return v
	}
	c, ok := run("(cell 3)").(*Cell)
	if !ok {
		t.Fatalf("(cell 3) did not return a cell")
	}
	env.Def("c", c)
	if v := run("(cell? c)"); v != true {
		t.Errorf("(cell? c) = %v, want true", v)
	}
	if v := run("(cell? 3)"); v != false {
		t.Errorf("(cell? 3) = %v, want false", v)
	}
	if v := run("(deref c)"); v != int64(3) {
		t.Errorf("(deref c) = %v, want 3", v)
	}
	if v := run("(reset! c 5)"); v != int64(5) {
		t.Errorf("(reset! c 5) = %v, want 5", v)
	}
	if v := c.CurrentValue(); v != int64(5) {
		t.Errorf("cell holds %v after reset!, want 5", v)
	}
	if v := run("(swap! c + 10)"); v != int64(15) {
		t.Errorf("(swap! c + 10) = %v, want 15", v)
	}
	f := formula(t, g, env, "(* c 2)")
	env.Def("f", f)
	if _, err := eval.Eval(parse(t, "(reset! f 1)"), env); err == nil {
		t.Errorf("reset! on a formula cell did not fail")
	}
}

func TestQuoteStaysVerbatim(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	a := g.Cell(int64(4))
	env.Def("a", a)
	f := formula(t, g, env, "(list 'x a)")
	lst, ok := f.CurrentValue().([]interface{})
	if !ok || len(lst) != 2 {
		t.Fatalf("formula computed %v", eval.FormatValue(f.CurrentValue()))
	}
	sym, ok := lst[0].(*sexp.Symbol)
	if !ok || sym.Name != "x" {
		t.Errorf("quoted element is %v, want the symbol x", lst[0])
	}
	if lst[1] != int64(4) {
		t.Errorf("reactive element is %v, want 4", lst[1])
	}
	a.Reset(int64(9))
	lst = f.CurrentValue().([]interface{})
	if lst[1] != int64(9) {
		t.Errorf("reactive element did not track the edit: %v", lst[1])
	}
}

func TestSpliceSnapshot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	hidden := g.Cell(int64(41))
	env.Defn("grab", func([]interface{}) (interface{}, error) {
		return hidden, nil
	})
	f := formula(t, g, env, "(+ 1 ~@(grab))")
	if v := f.CurrentValue(); v != int64(42) {
		t.Fatalf("spliced formula computed %v, want 42", v)
	}
	hidden.Reset(int64(100))
	if v := f.CurrentValue(); v != int64(42) {
		t.Errorf("spliced snapshot tracked a later edit: %v", v)
	}
}

func TestBindRejectsNonCallable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	if _, err := g.Bind(parse(t, "3"), nil, env); err == nil {
		t.Errorf("bind accepted a non-callable formula")
	}
}

func TestFormulaErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.cell")
	defer teardown()
	//
	g, env := testbed()
	if _, err := FormulaOf(g, parse(t, "(+ nosuch 1)"), env); err == nil {
		t.Errorf("formula over an unbound symbol did not fail")
	}
	if _, err := FormulaOf(g, parse(t, "(def x 1)"), env); err == nil {
		t.Errorf("formula over a definition form did not fail")
	}
}
