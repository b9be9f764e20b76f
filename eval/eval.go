package eval

import (
	"errors"
	"fmt"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/sexp"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/

// Dereffer is anything exposing a current value, typically a reactive
// cell. deref reads through it; every other value derefs to itself.
type Dereffer interface {
	CurrentValue() interface{}
}

// --- Frames -------------------------------------------------------------

// frame is one lexical activation record. Frames chain outwards; the
// environment sits behind the outermost frame.
type frame struct {
	vals   map[string]interface{}
	parent *frame
}

func newFrame(parent *frame) *frame {
	return &frame{vals: make(map[string]interface{}), parent: parent}
}

func (f *frame) lookup(name string) (interface{}, bool) {
	for fr := f; fr != nil; fr = fr.parent {
		if v, ok := fr.vals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// --- Function values ----------------------------------------------------

// fnArity is one parameter list of a function literal with its body.
type fnArity struct {
	params []string
	rest   string // name of the rest parameter, empty if none
	body   []sexp.Node
}

// Closure is a user-level function: one or more arities closed over the
// frame the fn form was evaluated in.
type Closure struct {
	Name    string
	arities []fnArity
	env     *relex.Environment
	frame   *frame
}

func (c *Closure) String() string {
	if c.Name != "" {
		return "#<fn " + c.Name + ">"
	}
	return "#<fn>"
}

// Thrown carries a user-level value raised by throw. Catch clauses
// unwrap it; other errors bind as-is.
type Thrown struct {
	Value interface{}
}

func (t *Thrown) Error() string {
	return fmt.Sprintf("thrown: %v", t.Value)
}

// recurSignal restarts the innermost loop or function body. It travels
// as a value rather than an error, so a recur outside any loop surfaces
// at the consuming site.
type recurSignal struct {
	vals []interface{}
}

// --- Evaluation ---------------------------------------------------------

// Eval evaluates a form in the environment with no local bindings in
// scope.
func Eval(form sexp.Node, env *relex.Environment) (interface{}, error) {
	return eval(form, env, nil)
}

func eval(form sexp.Node, env *relex.Environment, fr *frame) (interface{}, error) {
	switch n := form.(type) {
	case *sexp.Literal:
		return n.Value, nil
	case *sexp.Symbol:
		return resolve(n.Name, env, fr)
	case *sexp.Seq:
		if n.Kind == sexp.VectorSeq {
			return evalItems(n.Items, env, fr)
		}
		return evalCall(n, env, fr)
	case *sexp.Mapping:
		m := make(map[interface{}]interface{}, len(n.Pairs))
		for _, p := range n.Pairs {
			k, err := eval(p.Key, env, fr)
			if err != nil {
				return nil, err
			}
			v, err := eval(p.Val, env, fr)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	case *sexp.Set:
		s := make(map[interface{}]bool, len(n.Items))
		for _, it := range n.Items {
			v, err := eval(it, env, fr)
			if err != nil {
				return nil, err
			}
			s[v] = true
		}
		return s, nil
	}
	return nil, fmt.Errorf("eval: cannot evaluate %T", form)
}

func resolve(name string, env *relex.Environment, fr *frame) (interface{}, error) {
	if v, ok := fr.lookup(name); ok {
		return v, nil
	}
	if v, ok := env.Lookup(name); ok {
		return v, nil
	}
	if b, ok := env.Builtin(name); ok {
		return b, nil
	}
	return nil, fmt.Errorf("eval: unbound symbol %s", name)
}

func evalCall(call *sexp.Seq, env *relex.Environment, fr *frame) (interface{}, error) {
	if len(call.Items) == 0 {
		return []interface{}{}, nil
	}
	if head, ok := call.HeadSymbol(); ok {
		switch head {
		case "quote":
			if len(call.Items) != 2 {
				return nil, fmt.Errorf("eval: quote expects exactly one form")
			}
			return call.Items[1], nil
		case "if":
			return evalIf(call, env, fr)
		case "do":
			return evalBody(call.Items[1:], env, fr)
		case "let":
			return evalLet(call, env, fr)
		case "loop":
			return evalLoop(call, env, fr)
		case "recur":
			vals, err := evalItems(call.Items[1:], env, fr)
			if err != nil {
				return nil, err
			}
			return &recurSignal{vals: vals}, nil
		case "letfn":
			return evalLetfn(call, env, fr)
		case "fn":
			return makeClosure(call, env, fr)
		case "try":
			return evalTry(call, env, fr)
		case ".":
			return evalMemberAccess(call, env, fr)
		case "unquote":
			if len(call.Items) != 2 {
				return nil, fmt.Errorf("eval: unquote expects exactly one form")
			}
			return eval(call.Items[1], env, fr)
		case "unquote-splicing":
			if len(call.Items) != 2 {
				return nil, fmt.Errorf("eval: unquote-splicing expects exactly one form")
			}
			v, err := eval(call.Items[1], env, fr)
			if err != nil {
				return nil, err
			}
			return DerefValue(v), nil
		}
		expanded, err := env.ExpandStep(call)
		if err != nil {
			return nil, err
		}
		if expanded != sexp.Node(call) {
			return eval(expanded, env, fr)
		}
	}
	f, err := eval(call.Items[0], env, fr)
	if err != nil {
		return nil, err
	}
	args, err := evalItems(call.Items[1:], env, fr)
	if err != nil {
		return nil, err
	}
	return Apply(f, args)
}

func evalIf(call *sexp.Seq, env *relex.Environment, fr *frame) (interface{}, error) {
	if len(call.Items) < 3 || len(call.Items) > 4 {
		return nil, fmt.Errorf("eval: if expects a condition and one or two branches")
	}
	cond, err := eval(call.Items[1], env, fr)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return eval(call.Items[2], env, fr)
	}
	if len(call.Items) == 4 {
		return eval(call.Items[3], env, fr)
	}
	return nil, nil
}

func bindingVector(call *sexp.Seq) (*sexp.Seq, error) {
	op, _ := call.HeadSymbol()
	if len(call.Items) < 2 {
		return nil, fmt.Errorf("eval: %s needs a binding vector", op)
	}
	bvec, ok := call.Items[1].(*sexp.Seq)
	if !ok || bvec.Kind != sexp.VectorSeq {
		return nil, fmt.Errorf("eval: %s bindings must be a vector, got %s", op, call.Items[1])
	}
	if len(bvec.Items)%2 != 0 {
		return nil, fmt.Errorf("eval: %s has an odd number of binding forms", op)
	}
	return bvec, nil
}

func evalLet(call *sexp.Seq, env *relex.Environment, fr *frame) (interface{}, error) {
	bvec, err := bindingVector(call)
	if err != nil {
		return nil, err
	}
	inner := newFrame(fr)
	for i := 0; i+1 < len(bvec.Items); i += 2 {
		name, ok := bvec.Items[i].(*sexp.Symbol)
		if !ok {
			return nil, fmt.Errorf("eval: let binds non-symbol %s", bvec.Items[i])
		}
		v, err := eval(bvec.Items[i+1], env, inner)
		if err != nil {
			return nil, err
		}
		inner.vals[name.Name] = v
	}
	return evalBody(call.Items[2:], env, inner)
}

func evalLoop(call *sexp.Seq, env *relex.Environment, fr *frame) (interface{}, error) {
	bvec, err := bindingVector(call)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(bvec.Items)/2)
	inner := newFrame(fr)
	for i := 0; i+1 < len(bvec.Items); i += 2 {
		name, ok := bvec.Items[i].(*sexp.Symbol)
		if !ok {
			return nil, fmt.Errorf("eval: loop binds non-symbol %s", bvec.Items[i])
		}
		v, err := eval(bvec.Items[i+1], env, inner)
		if err != nil {
			return nil, err
		}
		inner.vals[name.Name] = v
		names = append(names, name.Name)
	}
	for {
		v, err := evalBody(call.Items[2:], env, inner)
		if err != nil {
			return nil, err
		}
		rs, ok := v.(*recurSignal)
		if !ok {
			return v, nil
		}
		if len(rs.vals) != len(names) {
			return nil, fmt.Errorf("eval: recur with %d values, loop binds %d", len(rs.vals), len(names))
		}
		next := newFrame(fr)
		for i, nm := range names {
			next.vals[nm] = rs.vals[i]
		}
		inner = next
	}
}

func evalLetfn(call *sexp.Seq, env *relex.Environment, fr *frame) (interface{}, error) {
	if len(call.Items) < 2 {
		return nil, fmt.Errorf("eval: letfn needs a binding vector")
	}
	bvec, ok := call.Items[1].(*sexp.Seq)
	if !ok || bvec.Kind != sexp.VectorSeq {
		return nil, fmt.Errorf("eval: letfn bindings must be a vector, got %s", call.Items[1])
	}
	// one shared frame makes the functions mutually visible
	inner := newFrame(fr)
	for _, it := range bvec.Items {
		spec, ok := it.(*sexp.Seq)
		if !ok || spec.Kind != sexp.CallSeq || len(spec.Items) < 2 {
			return nil, fmt.Errorf("eval: malformed letfn binding %s", it)
		}
		name, ok := spec.Items[0].(*sexp.Symbol)
		if !ok {
			return nil, fmt.Errorf("eval: letfn binds non-symbol %s", spec.Items[0])
		}
		c, err := closureFromParts(name.Name, spec.Items[1:], env, inner)
		if err != nil {
			return nil, err
		}
		inner.vals[name.Name] = c
	}
	return evalBody(call.Items[2:], env, inner)
}

func makeClosure(call *sexp.Seq, env *relex.Environment, fr *frame) (interface{}, error) {
	rest := call.Items[1:]
	name := ""
	if len(rest) > 0 {
		if self, ok := rest[0].(*sexp.Symbol); ok {
			name = self.Name
			rest = rest[1:]
		}
	}
	return closureFromParts(name, rest, env, fr)
}

func closureFromParts(name string, tail []sexp.Node, env *relex.Environment, fr *frame) (*Closure, error) {
	if len(tail) == 0 {
		return nil, fmt.Errorf("eval: fn lacks a parameter vector")
	}
	c := &Closure{Name: name, env: env, frame: fr}
	if pv, ok := tail[0].(*sexp.Seq); ok && pv.Kind == sexp.VectorSeq {
		a, err := parseArity(pv, tail[1:])
		if err != nil {
			return nil, err
		}
		c.arities = []fnArity{a}
	} else {
		for _, g := range tail {
			group, ok := g.(*sexp.Seq)
			if !ok || group.Kind != sexp.CallSeq || len(group.Items) == 0 {
				return nil, fmt.Errorf("eval: malformed fn arity %s", g)
			}
			pv, ok := group.Items[0].(*sexp.Seq)
			if !ok || pv.Kind != sexp.VectorSeq {
				return nil, fmt.Errorf("eval: fn arity lacks a parameter vector: %s", g)
			}
			a, err := parseArity(pv, group.Items[1:])
			if err != nil {
				return nil, err
			}
			c.arities = append(c.arities, a)
		}
	}
	if name != "" {
		// a named closure sees itself
		self := newFrame(fr)
		self.vals[name] = c
		c.frame = self
	}
	return c, nil
}

func parseArity(pv *sexp.Seq, body []sexp.Node) (fnArity, error) {
	a := fnArity{body: body}
	restNext := false
	for _, p := range pv.Items {
		sym, ok := p.(*sexp.Symbol)
		if !ok {
			return a, fmt.Errorf("eval: fn parameter must be a symbol, got %s", p)
		}
		switch {
		case sym.Name == "&":
			restNext = true
		case restNext:
			if a.rest != "" {
				return a, fmt.Errorf("eval: fn has more than one rest parameter")
			}
			a.rest = sym.Name
		default:
			a.params = append(a.params, sym.Name)
		}
	}
	if restNext && a.rest == "" {
		return a, fmt.Errorf("eval: fn rest marker without a name")
	}
	return a, nil
}

// evalTry evaluates body forms until an error or the end. The first
// error selects the first catch clause, which binds the thrown value.
// A finally clause runs in every case, its value discarded.
func evalTry(call *sexp.Seq, env *relex.Environment, fr *frame) (interface{}, error) {
	var catches []*sexp.Seq
	var finally *sexp.Seq
	var body []sexp.Node
	for _, it := range call.Items[1:] {
		if cl, ok := it.(*sexp.Seq); ok && cl.Kind == sexp.CallSeq {
			head, _ := cl.HeadSymbol()
			if head == "catch" {
				catches = append(catches, cl)
				continue
			}
			if head == "finally" {
				finally = cl
				continue
			}
		}
		if len(catches) > 0 || finally != nil {
			return nil, fmt.Errorf("eval: try body form after catch or finally")
		}
		body = append(body, it)
	}
	result, err := evalBody(body, env, fr)
	if err != nil && len(catches) > 0 {
		cl := catches[0]
		if len(cl.Items) < 2 {
			return nil, fmt.Errorf("eval: catch clause needs a binding name")
		}
		bind, ok := cl.Items[1].(*sexp.Symbol)
		if !ok {
			return nil, fmt.Errorf("eval: catch binding must be a symbol, got %s", cl.Items[1])
		}
		tracer().Debugf("catching %v as %s", err, bind.Name)
		inner := newFrame(fr)
		inner.vals[bind.Name] = caughtValue(err)
		result, err = evalBody(cl.Items[2:], env, inner)
	}
	if finally != nil {
		if _, ferr := evalBody(finally.Items[1:], env, fr); ferr != nil {
			return nil, ferr
		}
	}
	return result, err
}

// caughtValue unwraps a thrown user value; other errors bind as the
// error itself.
func caughtValue(err error) interface{} {
	var th *Thrown
	if errors.As(err, &th) {
		return th.Value
	}
	return err
}

// evalMemberAccess implements (. obj member) and (. obj (meth args...)).
// Plain access looks the member up in a map-shaped object, first under
// the keyword, then under the string key. The method forms additionally
// apply the found value to the object followed by the arguments.
func evalMemberAccess(call *sexp.Seq, env *relex.Environment, fr *frame) (interface{}, error) {
	if len(call.Items) < 3 {
		return nil, fmt.Errorf("eval: member access needs an object and a member")
	}
	obj, err := eval(call.Items[1], env, fr)
	if err != nil {
		return nil, err
	}
	member := call.Items[2]
	if mq, ok := member.(*sexp.Seq); ok && mq.Kind == sexp.CallSeq && len(mq.Items) > 0 {
		name, ok := mq.Items[0].(*sexp.Symbol)
		if !ok {
			return nil, fmt.Errorf("eval: method name must be a symbol, got %s", mq.Items[0])
		}
		f, err := memberOf(obj, name.Name)
		if err != nil {
			return nil, err
		}
		args, err := evalItems(mq.Items[1:], env, fr)
		if err != nil {
			return nil, err
		}
		return Apply(f, append([]interface{}{obj}, args...))
	}
	name, ok := member.(*sexp.Symbol)
	if !ok {
		return nil, fmt.Errorf("eval: member name must be a symbol, got %s", member)
	}
	if len(call.Items) > 3 {
		f, err := memberOf(obj, name.Name)
		if err != nil {
			return nil, err
		}
		args, err := evalItems(call.Items[3:], env, fr)
		if err != nil {
			return nil, err
		}
		return Apply(f, append([]interface{}{obj}, args...))
	}
	return memberOf(obj, name.Name)
}

func memberOf(obj interface{}, name string) (interface{}, error) {
	m, ok := obj.(map[interface{}]interface{})
	if !ok {
		return nil, fmt.Errorf("eval: member access on non-map value %v", obj)
	}
	if v, ok := m[sexp.Keyword(name)]; ok {
		return v, nil
	}
	if v, ok := m[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("eval: no member %s", name)
}

// --- Application --------------------------------------------------------

// Apply calls a function value with already evaluated arguments.
// Builtins, closures and keywords are callable.
func Apply(f interface{}, args []interface{}) (interface{}, error) {
	switch fn := f.(type) {
	case relex.BuiltinFn:
		return fn(args)
	case *Closure:
		return applyClosure(fn, args)
	case sexp.Keyword:
		return keywordLookup(fn, args)
	}
	return nil, fmt.Errorf("eval: value %v is not callable", f)
}

func keywordLookup(k sexp.Keyword, args []interface{}) (interface{}, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("eval: keyword lookup expects a map and an optional default")
	}
	if m, ok := args[0].(map[interface{}]interface{}); ok {
		if v, ok := m[k]; ok {
			return v, nil
		}
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return nil, nil
}

func applyClosure(c *Closure, args []interface{}) (interface{}, error) {
	a, err := selectArity(c, len(args))
	if err != nil {
		return nil, err
	}
	for {
		fr := newFrame(c.frame)
		bindParams(fr, a, args)
		v, err := evalBody(a.body, c.env, fr)
		if err != nil {
			return nil, err
		}
		rs, ok := v.(*recurSignal)
		if !ok {
			return v, nil
		}
		args = rs.vals
		if a, err = selectArity(c, len(args)); err != nil {
			return nil, err
		}
	}
}

func selectArity(c *Closure, n int) (fnArity, error) {
	var variadic *fnArity
	for i := range c.arities {
		a := &c.arities[i]
		if a.rest == "" && len(a.params) == n {
			return *a, nil
		}
		if a.rest != "" && n >= len(a.params) {
			variadic = a
		}
	}
	if variadic != nil {
		return *variadic, nil
	}
	name := c.Name
	if name == "" {
		name = "fn"
	}
	return fnArity{}, fmt.Errorf("eval: no arity of %s takes %d arguments", name, n)
}

func bindParams(fr *frame, a fnArity, args []interface{}) {
	for i, p := range a.params {
		fr.vals[p] = args[i]
	}
	if a.rest != "" {
		rest := make([]interface{}, len(args)-len(a.params))
		copy(rest, args[len(a.params):])
		fr.vals[a.rest] = rest
	}
}

func evalItems(items []sexp.Node, env *relex.Environment, fr *frame) ([]interface{}, error) {
	out := make([]interface{}, len(items))
	for i, it := range items {
		v, err := eval(it, env, fr)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// evalBody evaluates forms in order and yields the last value, nil for
// an empty body. A recur signal short-circuits the remaining forms.
func evalBody(body []sexp.Node, env *relex.Environment, fr *frame) (interface{}, error) {
	var last interface{}
	for _, form := range body {
		v, err := eval(form, env, fr)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(*recurSignal); ok {
			return v, nil
		}
		last = v
	}
	return last, nil
}
