package relexlang

import (
	"testing"

	"github.com/npillmayer/relex/sexp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestScanner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lang")
	defer teardown()
	//
	input := "(+ alpha 1.5 \"str\" :kw 'x ~@y #{1 2}) ; trailing comment"
	ts, err := newTokenStream(input)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{tokLParen, tokSymbol, tokSymbol, tokNumber, tokString,
		tokKeyword, tokQuote, tokSymbol, tokSplice, tokSymbol,
		tokSetOpen, tokNumber, tokNumber, tokRBrace, tokRParen, tokEOF}
	for i, kind := range want {
		if ts.cur.kind != kind {
			t.Fatalf("token %d: got kind %d (%q), want %d", i, ts.cur.kind, ts.cur.lexeme, kind)
		}
		if ts.cur.kind == tokEOF {
			break
		}
		if err := ts.advance(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestParseAtoms(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lang")
	defer teardown()
	//
	cases := []struct {
		input string
		want  interface{}
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.25", float64(3.25)},
		{"\"hi\\n\"", "hi\n"},
		{":kw", sexp.Keyword("kw")},
		{"true", true},
		{"false", false},
		{"nil", nil},
	}
	for _, c := range cases {
		n, err := Parse(c.input)
		if err != nil {
			t.Errorf("%s: %v", c.input, err)
			continue
		}
		lit, ok := n.(*sexp.Literal)
		if !ok {
			t.Errorf("%s: not a literal: %s", c.input, n)
			continue
		}
		if lit.Value != c.want {
			t.Errorf("%s: got %v (%T), want %v (%T)", c.input, lit.Value, lit.Value, c.want, c.want)
		}
	}
	sym, err := Parse("alpha-1?")
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := sym.(*sexp.Symbol); !ok || s.Name != "alpha-1?" {
		t.Errorf("symbol parse failed: %s", sym)
	}
}

func TestParseForms(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lang")
	defer teardown()
	//
	cases := []string{
		"(+ a 1)",
		"[1 2 3]",
		"{:a 1, :b 2}",
		"#{x y}",
		"(let [a 1] (* a a))",
		"(fn [x & more] (count more))",
		"()",
	}
	for _, input := range cases {
		n, err := Parse(input)
		if err != nil {
			t.Errorf("%s: %v", input, err)
			continue
		}
		if got := n.String(); got != input {
			t.Errorf("round trip of %s gave %s", input, got)
		}
	}
}

func TestParseSugar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lang")
	defer teardown()
	//
	cases := []struct {
		input string
		want  sexp.Node
	}{
		{"'x", sexp.Call(sexp.Sym("quote"), sexp.Sym("x"))},
		{"~x", sexp.Call(sexp.Sym("unquote"), sexp.Sym("x"))},
		{"~@x", sexp.Call(sexp.Sym("unquote-splicing"), sexp.Sym("x"))},
		{"'(a b)", sexp.Call(sexp.Sym("quote"), sexp.Call(sexp.Sym("a"), sexp.Sym("b")))},
	}
	for _, c := range cases {
		n, err := Parse(c.input)
		if err != nil {
			t.Errorf("%s: %v", c.input, err)
			continue
		}
		if !sexp.Equal(n, c.want) {
			t.Errorf("%s parsed to %s, want %s", c.input, n, c.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lang")
	defer teardown()
	//
	input := "(defcell [a {:k #{1 2}}] (str 'lit ~@b))"
	n1, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	n2, err := Parse(n1.String())
	if err != nil {
		t.Fatalf("reparse of %s: %v", n1, err)
	}
	if !sexp.Equal(n1, n2) {
		t.Errorf("round trip changed the tree: %s vs %s", n1, n2)
	}
}

func TestParseAllMultiple(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lang")
	defer teardown()
	//
	forms, err := ParseAll("(+ 1 2) ; first\n[3]\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(forms) != 2 {
		t.Fatalf("want 2 forms, got %d", len(forms))
	}
	if forms[0].String() != "(+ 1 2)" || forms[1].String() != "[3]" {
		t.Errorf("forms parsed wrong: %s, %s", forms[0], forms[1])
	}
}

func TestParseErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.lang")
	defer teardown()
	//
	bad := []string{
		"(a",
		")",
		"{:a}",
		"",
		"(+ 1 2) extra",
		"'",
	}
	for _, input := range bad {
		if _, err := Parse(input); err == nil {
			t.Errorf("%q: expected a parse error", input)
		}
	}
}
