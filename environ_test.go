package relex

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/npillmayer/relex/sexp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestEnvironmentLookupChain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.environ")
	defer teardown()
	//
	parent := NewEnvironment("parent", nil)
	parent.Def("x", int64(1))
	child := NewEnvironment("child", parent)
	if v, ok := child.Lookup("x"); !ok || v != int64(1) {
		t.Errorf("child sees x = %v (%v), want 1", v, ok)
	}
	child.Def("x", int64(2))
	if v, _ := child.Lookup("x"); v != int64(2) {
		t.Errorf("child definition does not shadow: %v", v)
	}
	if v, _ := parent.Lookup("x"); v != int64(1) {
		t.Errorf("child definition leaked into the parent: %v", v)
	}
	if _, ok := child.Lookup("y"); ok {
		t.Errorf("lookup invented a binding for y")
	}
}

func TestEnvironmentBuiltins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.environ")
	defer teardown()
	//
	parent := NewEnvironment("parent", nil)
	parent.Defn("count-args", func(args []interface{}) (interface{}, error) {
		return int64(len(args)), nil
	})
	child := NewEnvironment("child", parent)
	fn, ok := child.Builtin("count-args")
	if !ok {
		t.Fatalf("child does not see the parent's builtin")
	}
	v, err := fn([]interface{}{int64(1), int64(2)})
	if err != nil || v != int64(2) {
		t.Errorf("builtin returned (%v, %v), want 2", v, err)
	}
	if _, ok := child.Builtin("gone"); ok {
		t.Errorf("lookup invented a builtin")
	}
}

func TestExpandStep(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.environ")
	defer teardown()
	//
	env := NewEnvironment("test", nil)
	env.DefMacro("twice", func(form sexp.Node, env *Environment) (sexp.Node, error) {
		call := form.(*sexp.Seq)
		return sexp.Call(sexp.Sym("+"), call.Items[1], call.Items[1]), nil
	})
	form := sexp.Call(sexp.Sym("twice"), sexp.Sym("a"))
	out, err := env.ExpandStep(form)
	if err != nil {
		t.Fatalf("expansion failed: %v", err)
	}
	if out.String() != "(+ a a)" {
		t.Errorf("expansion produced %s, want (+ a a)", out.String())
	}
	// non-macro forms come back as the same pointer
	plain := sexp.Call(sexp.Sym("+"), sexp.Lit(int64(1)))
	out, err = env.ExpandStep(plain)
	if err != nil {
		t.Fatalf("expansion of a non-macro form failed: %v", err)
	}
	if out != sexp.Node(plain) {
		t.Errorf("expansion of a non-macro form did not return the same pointer")
	}
	lit := sexp.Lit(int64(7))
	out, err = env.ExpandStep(lit)
	if err != nil {
		t.Fatalf("expansion of a literal failed: %v", err)
	}
	if out != sexp.Node(lit) {
		t.Errorf("expansion of a literal did not return the same pointer")
	}
}

func TestExpandStepError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.environ")
	defer teardown()
	//
	env := NewEnvironment("test", nil)
	boom := errors.New("boom")
	env.DefMacro("bad", func(sexp.Node, *Environment) (sexp.Node, error) {
		return nil, boom
	})
	_, err := env.ExpandStep(sexp.Call(sexp.Sym("bad")))
	if !errors.Is(err, boom) {
		t.Fatalf("macro error not propagated: %v", err)
	}
	if !strings.Contains(err.Error(), "macro bad") {
		t.Errorf("macro error not attributed to its macro: %v", err)
	}
}

func TestResolvesBuiltin(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.environ")
	defer teardown()
	//
	parent := NewEnvironment("parent", nil)
	parent.DeclareSpecial("if")
	parent.DeclareNamespace("math")
	parent.Defn("+", func(args []interface{}) (interface{}, error) {
		return nil, nil
	})
	child := NewEnvironment("child", parent)
	cases := []struct {
		name string
		want bool
	}{
		{"if", true},
		{"+", true},
		{"math/max", true},
		{"lib/frob", false},
		{"math/", false},
		{"/", false},
		{"x", false},
	}
	for _, c := range cases {
		if got := child.ResolvesBuiltin(c.name); got != c.want {
			t.Errorf("ResolvesBuiltin(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.environ")
	defer teardown()
	//
	parent := NewEnvironment("parent", nil)
	parent.Def("alpha", int64(1))
	parent.Defn("plus", func(args []interface{}) (interface{}, error) {
		return nil, nil
	})
	child := NewEnvironment("child", parent)
	child.Def("alpha", int64(2)) // shadows, must not duplicate
	child.DefMacro("when", func(form sexp.Node, env *Environment) (sexp.Node, error) {
		return form, nil
	})
	names := child.Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("names are not sorted: %v", names)
	}
	want := []string{"alpha", "plus", "when"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestLoadManifest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.environ")
	defer teardown()
	//
	manifest := `
namespaces:
  - geo
  - math
specials:
  - if
  - recur
`
	env := NewEnvironment("test", nil)
	if err := env.LoadManifest(strings.NewReader(manifest)); err != nil {
		t.Fatalf("manifest did not load: %v", err)
	}
	if !env.ResolvesBuiltin("geo/dist") {
		t.Errorf("declared namespace does not resolve")
	}
	if !env.ResolvesBuiltin("if") {
		t.Errorf("declared special does not resolve")
	}
	if env.ResolvesBuiltin("web/get") {
		t.Errorf("undeclared namespace resolves")
	}
}

func TestLoadManifestFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "relex.environ")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	content := "namespaces:\n  - str\nspecials:\n  - recur\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("cannot write manifest file: %v", err)
	}
	env := NewEnvironment("test", nil)
	if err := env.LoadManifestFile(path); err != nil {
		t.Fatalf("manifest file did not load: %v", err)
	}
	if !env.ResolvesBuiltin("str/upper") {
		t.Errorf("declared namespace does not resolve")
	}
	if err := env.LoadManifestFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("loading a missing manifest file did not fail")
	}
}
