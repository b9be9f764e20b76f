package hoist

import (
	"fmt"

	"github.com/npillmayer/relex/sexp"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/

// structuralTokens are symbols that are syntactic material of forms
// handled specially elsewhere: the clause markers of try and the
// rest-parameter marker. They are left alone wherever they appear.
var structuralTokens = map[string]bool{
	"catch":   true,
	"finally": true,
	"&":       true,
}

// disallowedForms are the definitional operators rejected by the walker.
var disallowedForms = map[string]bool{
	"def":         true,
	"defn":        true,
	"defmacro":    true,
	"ns":          true,
	"in-ns":       true,
	"deftype":     true,
	"defrecord":   true,
	"defprotocol": true,
}

// walk rewrites a node under the given scope. Call forms are macro
// expanded to a fixpoint before dispatch, so expansion and walking
// interleave at every level of the tree. The context accumulates
// hoisted symbols and passthrough forms as they are encountered.
func (ctx *context) walk(x sexp.Node, sc *Scope) (sexp.Node, error) {
	if isCall(x) {
		expanded, err := expandFully(x, ctx.env)
		if err != nil {
			return nil, err
		}
		x = expanded
	}
	switch n := x.(type) {
	case *sexp.Symbol:
		return ctx.walkSymbol(n, sc), nil
	case *sexp.Literal:
		return n, nil
	case *sexp.Seq:
		if n.Kind == sexp.VectorSeq {
			items, err := ctx.walkAll(n.Items, sc)
			if err != nil {
				return nil, err
			}
			return sexp.Vector(items...), nil
		}
		return ctx.walkCall(n, sc)
	case *sexp.Mapping:
		pairs := make([]sexp.Pair, len(n.Pairs))
		for i, p := range n.Pairs {
			key, err := ctx.walk(p.Key, sc)
			if err != nil {
				return nil, err
			}
			val, err := ctx.walk(p.Val, sc)
			if err != nil {
				return nil, err
			}
			pairs[i] = sexp.Pair{Key: key, Val: val}
		}
		return sexp.MapOf(pairs...), nil
	case *sexp.Set:
		items, err := ctx.walkAll(n.Items, sc)
		if err != nil {
			return nil, err
		}
		return sexp.SetOf(items...), nil
	}
	panic(fmt.Sprintf("hoist: unknown node type %T", x))
}

// walkSymbol classifies a symbol occurrence: locally bound and
// always-available names stay put, anything else is a free reference
// and is replaced by its alias.
func (ctx *context) walkSymbol(s *sexp.Symbol, sc *Scope) sexp.Node {
	switch {
	case sc.Has(s.Name):
		return s
	case structuralTokens[s.Name]:
		return s
	case ctx.env.ResolvesBuiltin(s.Name):
		return s
	}
	return ctx.hoistSymbol(s)
}

func (ctx *context) walkAll(items []sexp.Node, sc *Scope) ([]sexp.Node, error) {
	out := make([]sexp.Node, len(items))
	for i, it := range items {
		w, err := ctx.walk(it, sc)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// --- Call-form dispatch -------------------------------------------------

func (ctx *context) walkCall(call *sexp.Seq, sc *Scope) (sexp.Node, error) {
	if len(call.Items) == 0 {
		return call, nil
	}
	if head, ok := call.HeadSymbol(); ok {
		switch head {
		case ".":
			return ctx.walkMemberAccess(call, sc)
		case "try":
			return ctx.walkTry(call, sc)
		case "let", "loop":
			return ctx.walkSequentialBinding(call, sc)
		case "letfn":
			return ctx.walkLetfn(call, sc)
		case "fn":
			return ctx.walkFn(call, sc)
		case "quote":
			// opaque compile-time literal, never walked
			return ctx.passThrough(call), nil
		case "unquote":
			return ctx.walkUnquote(call, sc, false)
		case "unquote-splicing":
			return ctx.walkUnquote(call, sc, true)
		}
		if disallowedForms[head] {
			return nil, unsupported(head)
		}
	}
	// ordinary call form: every element walks, operator position included
	items, err := ctx.walkAll(call.Items, sc)
	if err != nil {
		return nil, err
	}
	return sexp.Call(items...), nil
}

// walkMemberAccess handles (. obj member args...). The object and any
// trailing arguments walk normally; the member name does not. A
// method-style member, (. obj (meth a b)), keeps the method name and
// walks the method arguments.
func (ctx *context) walkMemberAccess(call *sexp.Seq, sc *Scope) (sexp.Node, error) {
	items := make([]sexp.Node, len(call.Items))
	items[0] = call.Items[0]
	if len(call.Items) > 1 {
		obj, err := ctx.walk(call.Items[1], sc)
		if err != nil {
			return nil, err
		}
		items[1] = obj
	}
	if len(call.Items) > 2 {
		member := call.Items[2]
		if mq, ok := member.(*sexp.Seq); ok && mq.Kind == sexp.CallSeq && len(mq.Items) > 0 {
			margs, err := ctx.walkAll(mq.Items[1:], sc)
			if err != nil {
				return nil, err
			}
			items[2] = sexp.Call(append([]sexp.Node{mq.Items[0]}, margs...)...)
		} else {
			items[2] = member
		}
		for i := 3; i < len(call.Items); i++ {
			w, err := ctx.walk(call.Items[i], sc)
			if err != nil {
				return nil, err
			}
			items[i] = w
		}
	}
	return sexp.Call(items...), nil
}

// walkTry handles (try body... (catch e body...)... (finally body...)).
// A catch clause's binding name is local to that clause's body only; it
// leaks neither into sibling clauses nor into the surrounding scope. A
// finally body sees the unmodified outer scope.
func (ctx *context) walkTry(call *sexp.Seq, sc *Scope) (sexp.Node, error) {
	items := make([]sexp.Node, len(call.Items))
	items[0] = call.Items[0]
	for i := 1; i < len(call.Items); i++ {
		it := call.Items[i]
		var head string
		if clause, ok := it.(*sexp.Seq); ok && clause.Kind == sexp.CallSeq {
			head, _ = clause.HeadSymbol()
		}
		switch head {
		case "catch":
			clause := it.(*sexp.Seq)
			if len(clause.Items) < 2 {
				return nil, fmt.Errorf("hoist: catch clause needs a binding name")
			}
			bind, ok := clause.Items[1].(*sexp.Symbol)
			if !ok {
				return nil, fmt.Errorf("hoist: catch binding must be a symbol, got %s", clause.Items[1])
			}
			body, err := ctx.walkAll(clause.Items[2:], sc.With(bind.Name))
			if err != nil {
				return nil, err
			}
			items[i] = sexp.Call(append([]sexp.Node{clause.Items[0], bind}, body...)...)
		case "finally":
			clause := it.(*sexp.Seq)
			body, err := ctx.walkAll(clause.Items[1:], sc)
			if err != nil {
				return nil, err
			}
			items[i] = sexp.Call(append([]sexp.Node{clause.Items[0]}, body...)...)
		default:
			w, err := ctx.walk(it, sc)
			if err != nil {
				return nil, err
			}
			items[i] = w
		}
	}
	return sexp.Call(items...), nil
}

// walkSequentialBinding handles let and loop. Pairs bind one at a time:
// each value expression sees the bindings accumulated so far but never
// its own name or later ones.
func (ctx *context) walkSequentialBinding(call *sexp.Seq, sc *Scope) (sexp.Node, error) {
	op := headName(call)
	if len(call.Items) < 2 {
		return nil, fmt.Errorf("hoist: %s needs a binding vector", op)
	}
	bvec, ok := call.Items[1].(*sexp.Seq)
	if !ok || bvec.Kind != sexp.VectorSeq {
		return nil, fmt.Errorf("hoist: %s bindings must be a vector, got %s", op, call.Items[1])
	}
	if len(bvec.Items)%2 != 0 {
		return nil, fmt.Errorf("hoist: %s has an odd number of binding forms", op)
	}
	inner := sc
	bitems := make([]sexp.Node, len(bvec.Items))
	for i := 0; i+1 < len(bvec.Items); i += 2 {
		name, ok := bvec.Items[i].(*sexp.Symbol)
		if !ok {
			return nil, fmt.Errorf("hoist: %s binds non-symbol %s", op, bvec.Items[i])
		}
		val, err := ctx.walk(bvec.Items[i+1], inner)
		if err != nil {
			return nil, err
		}
		bitems[i] = name
		bitems[i+1] = val
		inner = inner.With(name.Name)
	}
	body, err := ctx.walkAll(call.Items[2:], inner)
	if err != nil {
		return nil, err
	}
	return sexp.Call(append([]sexp.Node{call.Items[0], sexp.Vector(bitems...)}, body...)...), nil
}

// walkLetfn handles (letfn [(f [a] ...) (g [b] ...)] body...). All bound
// names become visible before any binding's value is walked, so the
// functions may reference each other freely, forward references
// included.
func (ctx *context) walkLetfn(call *sexp.Seq, sc *Scope) (sexp.Node, error) {
	if len(call.Items) < 2 {
		return nil, fmt.Errorf("hoist: letfn needs a binding vector")
	}
	bvec, ok := call.Items[1].(*sexp.Seq)
	if !ok || bvec.Kind != sexp.VectorSeq {
		return nil, fmt.Errorf("hoist: letfn bindings must be a vector, got %s", call.Items[1])
	}
	names := make([]string, len(bvec.Items))
	specs := make([]*sexp.Seq, len(bvec.Items))
	for i, it := range bvec.Items {
		spec, ok := it.(*sexp.Seq)
		if !ok || spec.Kind != sexp.CallSeq || len(spec.Items) < 2 {
			return nil, fmt.Errorf("hoist: malformed letfn binding %s", it)
		}
		name, ok := spec.Items[0].(*sexp.Symbol)
		if !ok {
			return nil, fmt.Errorf("hoist: letfn binds non-symbol %s", spec.Items[0])
		}
		names[i] = name.Name
		specs[i] = spec
	}
	inner := sc.With(names...)
	bitems := make([]sexp.Node, len(specs))
	for i, spec := range specs {
		tail, err := ctx.walkFnTail(spec.Items[1:], inner, "letfn "+names[i])
		if err != nil {
			return nil, err
		}
		bitems[i] = sexp.Call(append([]sexp.Node{spec.Items[0]}, tail...)...)
	}
	body, err := ctx.walkAll(call.Items[2:], inner)
	if err != nil {
		return nil, err
	}
	return sexp.Call(append([]sexp.Node{call.Items[0], sexp.Vector(bitems...)}, body...)...), nil
}

// walkFn handles function literals: (fn name? [params] body...) and the
// multi-arity (fn name? ([params] body...)+). A self-name is in scope
// for every arity.
func (ctx *context) walkFn(call *sexp.Seq, sc *Scope) (sexp.Node, error) {
	fixed := []sexp.Node{call.Items[0]}
	rest := call.Items[1:]
	inner := sc
	if len(rest) > 0 {
		if self, ok := rest[0].(*sexp.Symbol); ok {
			inner = inner.With(self.Name)
			fixed = append(fixed, self)
			rest = rest[1:]
		}
	}
	tail, err := ctx.walkFnTail(rest, inner, "fn")
	if err != nil {
		return nil, err
	}
	return sexp.Call(append(fixed, tail...)...), nil
}

// walkFnTail walks the arity part shared by fn literals and letfn specs:
// either a single "[params] body..." or one or more "([params] body...)"
// groups.
func (ctx *context) walkFnTail(tail []sexp.Node, sc *Scope, what string) ([]sexp.Node, error) {
	if len(tail) == 0 {
		return nil, fmt.Errorf("hoist: %s lacks a parameter vector", what)
	}
	if params, ok := tail[0].(*sexp.Seq); ok && params.Kind == sexp.VectorSeq {
		body, err := ctx.walkArity(params, tail[1:], sc, what)
		if err != nil {
			return nil, err
		}
		return append([]sexp.Node{params}, body...), nil
	}
	out := make([]sexp.Node, len(tail))
	for i, a := range tail {
		group, ok := a.(*sexp.Seq)
		if !ok || group.Kind != sexp.CallSeq || len(group.Items) == 0 {
			return nil, fmt.Errorf("hoist: malformed %s arity %s", what, a)
		}
		params, ok := group.Items[0].(*sexp.Seq)
		if !ok || params.Kind != sexp.VectorSeq {
			return nil, fmt.Errorf("hoist: %s arity lacks a parameter vector: %s", what, a)
		}
		body, err := ctx.walkArity(params, group.Items[1:], sc, what)
		if err != nil {
			return nil, err
		}
		out[i] = sexp.Call(append([]sexp.Node{params}, body...)...)
	}
	return out, nil
}

// walkArity walks one arity body under the scope extended by the
// parameter names. The rest marker & is syntax, not a bindable name,
// and is excluded from the extension. The parameter vector itself is
// binder syntax and is not walked.
func (ctx *context) walkArity(params *sexp.Seq, body []sexp.Node, sc *Scope, what string) ([]sexp.Node, error) {
	names := make([]string, 0, len(params.Items))
	for _, p := range params.Items {
		sym, ok := p.(*sexp.Symbol)
		if !ok {
			return nil, fmt.Errorf("hoist: %s parameter must be a symbol, got %s", what, p)
		}
		if sym.Name == "&" {
			continue
		}
		names = append(names, sym.Name)
	}
	return ctx.walkAll(body, sc.With(names...))
}

// walkUnquote cancels one level of quoting: the inner form is re-walked
// and the result becomes an ordinary bind-time dependency expression.
// The splicing variant additionally reads the dependency's current value
// at substitution time.
func (ctx *context) walkUnquote(call *sexp.Seq, sc *Scope, deref bool) (sexp.Node, error) {
	if len(call.Items) != 2 {
		return nil, fmt.Errorf("hoist: %s expects exactly one form", headName(call))
	}
	inner, err := ctx.walk(call.Items[1], sc)
	if err != nil {
		return nil, err
	}
	if deref {
		inner = sexp.Call(sexp.Sym("deref"), inner)
	}
	return ctx.passThrough(inner), nil
}

func isCall(x sexp.Node) bool {
	q, ok := x.(*sexp.Seq)
	return ok && q.Kind == sexp.CallSeq
}
