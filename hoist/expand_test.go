package hoist

import (
	"strings"
	"testing"

	"github.com/npillmayer/relex/sexp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestExpandNoMacroIsIdentity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.hoist")
	defer teardown()
	//
	form := sexp.Call(sexp.Sym("+"), sexp.Lit(int64(1)), sexp.Lit(int64(2)))
	out, err := expandFully(form, newTestEnv())
	if err != nil {
		t.Fatal(err)
	}
	if out != sexp.Node(form) {
		t.Errorf("macro-free form should come back as the identical node")
	}
}

func TestExpandChainsToFixpoint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.hoist")
	defer teardown()
	//
	env := newTestEnv()
	env.macros["twice"] = func(call *sexp.Seq) (sexp.Node, error) {
		return sexp.Call(sexp.Sym("+"), call.Items[1], call.Items[1]), nil
	}
	env.macros["four-times"] = func(call *sexp.Seq) (sexp.Node, error) {
		return sexp.Call(sexp.Sym("twice"), sexp.Call(sexp.Sym("twice"), call.Items[1])), nil
	}
	form := sexp.Call(sexp.Sym("four-times"), sexp.Sym("a"))
	out, err := expandFully(form, env)
	if err != nil {
		t.Fatal(err)
	}
	// expansion stops once the operator is no macro; inner calls are
	// left for the walker to reach
	if got := out.String(); got != "(+ (twice a) (twice a))" {
		t.Errorf("expansion chain produced %s", got)
	}
}

func TestExpandDetectsCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.hoist")
	defer teardown()
	//
	env := newTestEnv()
	env.macros["loopy"] = func(call *sexp.Seq) (sexp.Node, error) {
		return sexp.Call(sexp.Sym("loopy"), call.Items[1]), nil
	}
	form := sexp.Call(sexp.Sym("loopy"), sexp.Sym("a"))
	_, err := expandFully(form, env)
	if err == nil {
		t.Fatal("cyclic expansion went undetected")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("unexpected error for cyclic expansion: %v", err)
	}
}

func TestExpandPingPongCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.hoist")
	defer teardown()
	//
	env := newTestEnv()
	env.macros["ping"] = func(call *sexp.Seq) (sexp.Node, error) {
		return sexp.Call(sexp.Sym("pong"), call.Items[1]), nil
	}
	env.macros["pong"] = func(call *sexp.Seq) (sexp.Node, error) {
		return sexp.Call(sexp.Sym("ping"), call.Items[1]), nil
	}
	form := sexp.Call(sexp.Sym("ping"), sexp.Sym("a"))
	_, err := expandFully(form, env)
	if err == nil {
		t.Fatal("alternating expansion cycle went undetected")
	}
}

func TestExpandToNonCall(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.hoist")
	defer teardown()
	//
	env := newTestEnv()
	env.macros["always-one"] = func(call *sexp.Seq) (sexp.Node, error) {
		return sexp.Lit(int64(1)), nil
	}
	form := sexp.Call(sexp.Sym("always-one"))
	out, err := expandFully(form, env)
	if err != nil {
		t.Fatal(err)
	}
	if !sexp.Equal(out, sexp.Lit(int64(1))) {
		t.Errorf("expansion to a literal failed: %s", out)
	}
}
