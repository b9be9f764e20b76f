package relex

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/npillmayer/relex/sexp"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/

// BuiltinFn is the type for natively implemented functions. Builtins
// receive their arguments fully evaluated and return a value or an error.
type BuiltinFn func(args []interface{}) (interface{}, error)

// MacroFn rewrites a call form into a replacement form. A macro performs
// one step of expansion; the hoister drives expansion to a fixpoint.
// Returning the input form unchanged signals "nothing to expand".
type MacroFn func(form sexp.Node, env *Environment) (sexp.Node, error)

// --- Environment ------------------------------------------------------

// Environment is the capability the hoister, the evaluator and the
// runtime consult for anything outside an expression itself: macro
// definitions, builtin functions, special tokens, always-available
// namespaces, and value bindings for free symbols.
//
// Environments nest. A lookup that fails locally is retried in the
// parent, so hosts typically derive a scratch environment from a
// standard one and define their cells and values there.
type Environment struct {
	name       string
	parent     *Environment
	vals       map[string]interface{}
	builtins   map[string]BuiltinFn
	macros     map[string]MacroFn
	specials   map[string]bool
	namespaces map[string]bool
}

// NewEnvironment creates an empty environment, optionally derived from a
// parent.
func NewEnvironment(name string, parent *Environment) *Environment {
	return &Environment{
		name:       name,
		parent:     parent,
		vals:       make(map[string]interface{}),
		builtins:   make(map[string]BuiltinFn),
		macros:     make(map[string]MacroFn),
		specials:   make(map[string]bool),
		namespaces: make(map[string]bool),
	}
}

// Name returns the environment's name, useful mainly for tracing.
func (env *Environment) Name() string {
	return env.name
}

// Def binds a name to a value. Free symbols in hoisted expressions are
// resolved against these bindings at bind time; the value may be anything,
// including a reactive cell.
func (env *Environment) Def(name string, value interface{}) {
	env.vals[name] = value
}

// Lookup finds the value bound to name, searching parents.
func (env *Environment) Lookup(name string) (interface{}, bool) {
	for e := env; e != nil; e = e.parent {
		if v, ok := e.vals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Defn registers a builtin function under the given name. Builtin names
// count as always-resolved: the hoister will never treat them as free.
func (env *Environment) Defn(name string, fn BuiltinFn) {
	env.builtins[name] = fn
}

// Builtin finds a builtin function by name, searching parents.
func (env *Environment) Builtin(name string) (BuiltinFn, bool) {
	for e := env; e != nil; e = e.parent {
		if fn, ok := e.builtins[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// DefMacro registers a macro under the given name.
func (env *Environment) DefMacro(name string, m MacroFn) {
	env.macros[name] = m
}

// Macro finds a macro by name, searching parents.
func (env *Environment) Macro(name string) (MacroFn, bool) {
	for e := env; e != nil; e = e.parent {
		if m, ok := e.macros[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// DeclareSpecial marks names as special tokens. Special tokens are
// syntactic material (like "if" or "recur") which the hoister must leave
// unresolved rather than hoist as dependencies.
func (env *Environment) DeclareSpecial(names ...string) {
	for _, n := range names {
		env.specials[n] = true
	}
}

// DeclareNamespace marks namespaces as always available. A qualified
// symbol ns/name whose ns is declared here resolves as builtin.
func (env *Environment) DeclareNamespace(names ...string) {
	for _, n := range names {
		env.namespaces[n] = true
	}
}

// Names returns all names known to this environment and its parents:
// value bindings, builtins and macros. Sorted, deduplicated. The REPL
// uses this for completion.
func (env *Environment) Names() []string {
	set := make(map[string]bool)
	for e := env; e != nil; e = e.parent {
		for n := range e.vals {
			set[n] = true
		}
		for n := range e.builtins {
			set[n] = true
		}
		for n := range e.macros {
			set[n] = true
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// --- Hoister capability -----------------------------------------------

// ExpandStep performs one step of macro expansion on a call form whose
// operator names a macro. Any other node is returned unchanged (same
// pointer), which the caller takes as the fixpoint signal.
func (env *Environment) ExpandStep(form sexp.Node) (sexp.Node, error) {
	q, ok := form.(*sexp.Seq)
	if !ok || q.Kind != sexp.CallSeq || len(q.Items) == 0 {
		return form, nil
	}
	head, ok := q.Items[0].(*sexp.Symbol)
	if !ok {
		return form, nil
	}
	m, ok := env.Macro(head.Name)
	if !ok {
		return form, nil
	}
	expanded, err := m(form, env)
	if err != nil {
		return nil, fmt.Errorf("macro %s: %w", head.Name, err)
	}
	tracer().Debugf("macro %s expanded", head.Name)
	return expanded, nil
}

// ResolvesBuiltin reports whether name denotes a special token, a builtin
// function, or a member of an always-available namespace. Such names are
// never hoisted.
func (env *Environment) ResolvesBuiltin(name string) bool {
	slash := strings.IndexByte(name, '/')
	qualified := slash > 0 && slash < len(name)-1
	for e := env; e != nil; e = e.parent {
		if e.specials[name] {
			return true
		}
		if _, ok := e.builtins[name]; ok {
			return true
		}
		if qualified && e.namespaces[name[:slash]] {
			return true
		}
	}
	return false
}

// --- Manifest ----------------------------------------------------------

// Manifest is the YAML shape for host-supplied resolution tables. The set
// of always-available namespaces is deliberately data, not code: hosts
// differ in what they consider ambient.
//
//	namespaces:
//	  - core
//	  - math
//	specials:
//	  - if
//	  - recur
type Manifest struct {
	Namespaces []string `yaml:"namespaces"`
	Specials   []string `yaml:"specials"`
}

// LoadManifest reads a YAML manifest and declares its tables on env.
func (env *Environment) LoadManifest(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("environment manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("environment manifest: %w", err)
	}
	env.DeclareNamespace(m.Namespaces...)
	env.DeclareSpecial(m.Specials...)
	tracer().Infof("manifest declares %d namespace(s), %d special(s)",
		len(m.Namespaces), len(m.Specials))
	return nil
}

// LoadManifestFile reads a YAML manifest from a file.
func (env *Environment) LoadManifestFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("environment manifest: %w", err)
	}
	defer f.Close()
	return env.LoadManifest(f)
}
