package eval

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/sexp"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/

// StdEnv creates the standard environment: the special-form names, the
// core builtins, the math and str namespaces, and the syntactic macros.
func StdEnv() *relex.Environment {
	env := relex.NewEnvironment("std", nil)
	env.DeclareSpecial("quote", "unquote", "unquote-splicing", "if", "do",
		"let", "loop", "recur", "letfn", "fn", "try", "catch", "finally",
		".", "&")
	env.DeclareNamespace("core", "math", "str")
	coreBuiltins(env)
	mathBuiltins(env)
	strBuiltins(env)
	syntaxMacros(env)
	return env
}

// --- Arithmetic ----------------------------------------------------------

// foldArith folds a binary numeric operation left to right, staying in
// int64 until a float64 appears.
func foldArith(name string, acc interface{}, rest []interface{},
	iop func(a, b int64) int64, fop func(a, b float64) float64) (interface{}, error) {
	if !isNumber(acc) {
		return nil, fmt.Errorf("%s: not a number: %s", name, FormatValue(acc))
	}
	for _, x := range rest {
		if !isNumber(x) {
			return nil, fmt.Errorf("%s: not a number: %s", name, FormatValue(x))
		}
		ai, aIsInt := acc.(int64)
		xi, xIsInt := x.(int64)
		if aIsInt && xIsInt {
			acc = iop(ai, xi)
			continue
		}
		af, _ := asFloat(acc)
		xf, _ := asFloat(x)
		acc = fop(af, xf)
	}
	return acc, nil
}

// compareChain verifies a pairwise numeric relation over the argument
// chain, so that (< 1 2 3) means 1<2 and 2<3.
func compareChain(name string, args []interface{}, holds func(a, b float64) bool) (interface{}, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("%s expects at least two arguments", name)
	}
	for i := 0; i+1 < len(args); i++ {
		a, okA := asFloat(args[i])
		b, okB := asFloat(args[i+1])
		if !okA {
			return nil, fmt.Errorf("%s: not a number: %s", name, FormatValue(args[i]))
		}
		if !okB {
			return nil, fmt.Errorf("%s: not a number: %s", name, FormatValue(args[i+1]))
		}
		if !holds(a, b) {
			return false, nil
		}
	}
	return true, nil
}

func coreBuiltins(env *relex.Environment) {
	env.Defn("+", func(args []interface{}) (interface{}, error) {
		if len(args) == 0 {
			return int64(0), nil
		}
		return foldArith("+", args[0], args[1:],
			func(a, b int64) int64 { return a + b },
			func(a, b float64) float64 { return a + b })
	})
	env.Defn("*", func(args []interface{}) (interface{}, error) {
		if len(args) == 0 {
			return int64(1), nil
		}
		return foldArith("*", args[0], args[1:],
			func(a, b int64) int64 { return a * b },
			func(a, b float64) float64 { return a * b })
	})
	env.Defn("-", func(args []interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("-: expects at least one argument")
		}
		if len(args) == 1 {
			switch n := args[0].(type) {
			case int64:
				return -n, nil
			case float64:
				return -n, nil
			}
			return nil, fmt.Errorf("-: not a number: %s", FormatValue(args[0]))
		}
		return foldArith("-", args[0], args[1:],
			func(a, b int64) int64 { return a - b },
			func(a, b float64) float64 { return a - b })
	})
	env.Defn("/", func(args []interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("/: expects at least one argument")
		}
		acc := args[0]
		rest := args[1:]
		if len(args) == 1 {
			acc = int64(1)
			rest = args
		}
		if !isNumber(acc) {
			return nil, fmt.Errorf("/: not a number: %s", FormatValue(acc))
		}
		for _, x := range rest {
			xf, ok := asFloat(x)
			if !ok {
				return nil, fmt.Errorf("/: not a number: %s", FormatValue(x))
			}
			if xf == 0 {
				return nil, fmt.Errorf("/: divide by zero")
			}
			ai, aIsInt := acc.(int64)
			xi, xIsInt := x.(int64)
			if aIsInt && xIsInt && ai%xi == 0 {
				acc = ai / xi
				continue
			}
			af, _ := asFloat(acc)
			acc = af / xf
		}
		return acc, nil
	})
	env.Defn("mod", func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("mod expects two arguments")
		}
		a, okA := args[0].(int64)
		b, okB := args[1].(int64)
		if !okA || !okB {
			return nil, fmt.Errorf("mod expects integers")
		}
		if b == 0 {
			return nil, fmt.Errorf("mod: divide by zero")
		}
		return ((a % b) + b) % b, nil
	})
	env.Defn("inc", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("inc expects one argument")
		}
		return foldArith("inc", args[0], []interface{}{int64(1)},
			func(a, b int64) int64 { return a + b },
			func(a, b float64) float64 { return a + b })
	})
	env.Defn("dec", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("dec expects one argument")
		}
		return foldArith("dec", args[0], []interface{}{int64(1)},
			func(a, b int64) int64 { return a - b },
			func(a, b float64) float64 { return a - b })
	})

	env.Defn("=", func(args []interface{}) (interface{}, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("= expects at least two arguments")
		}
		for i := 0; i+1 < len(args); i++ {
			if !ValueEqual(args[i], args[i+1]) {
				return false, nil
			}
		}
		return true, nil
	})
	env.Defn("not=", func(args []interface{}) (interface{}, error) {
		eq, err := Apply(mustBuiltin(env, "="), args)
		if err != nil {
			return nil, err
		}
		return !Truthy(eq), nil
	})
	env.Defn("<", func(args []interface{}) (interface{}, error) {
		return compareChain("<", args, func(a, b float64) bool { return a < b })
	})
	env.Defn(">", func(args []interface{}) (interface{}, error) {
		return compareChain(">", args, func(a, b float64) bool { return a > b })
	})
	env.Defn("<=", func(args []interface{}) (interface{}, error) {
		return compareChain("<=", args, func(a, b float64) bool { return a <= b })
	})
	env.Defn(">=", func(args []interface{}) (interface{}, error) {
		return compareChain(">=", args, func(a, b float64) bool { return a >= b })
	})
	env.Defn("not", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("not expects one argument")
		}
		return !Truthy(args[0]), nil
	})

	collectionBuiltins(env)
	predicateBuiltins(env)

	env.Defn("str", func(args []interface{}) (interface{}, error) {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(plainString(a))
		}
		return sb.String(), nil
	})
	env.Defn("keyword", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("keyword expects one argument")
		}
		switch x := args[0].(type) {
		case string:
			return sexp.Keyword(x), nil
		case sexp.Keyword:
			return x, nil
		case *sexp.Symbol:
			return sexp.Keyword(x.Name), nil
		}
		return nil, fmt.Errorf("keyword: cannot name %s", FormatValue(args[0]))
	})
	env.Defn("name", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("name expects one argument")
		}
		switch x := args[0].(type) {
		case string:
			return x, nil
		case sexp.Keyword:
			return string(x), nil
		case *sexp.Symbol:
			return x.Name, nil
		}
		return nil, fmt.Errorf("name: cannot name %s", FormatValue(args[0]))
	})
	env.Defn("symbol", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("symbol expects one argument")
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("symbol expects a string")
		}
		return sexp.Sym(s), nil
	})

	env.Defn("throw", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("throw expects one argument")
		}
		return nil, &Thrown{Value: args[0]}
	})
	env.Defn("deref", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("deref expects one argument")
		}
		return DerefValue(args[0]), nil
	})
	env.Defn("println", func(args []interface{}) (interface{}, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = plainString(a)
		}
		fmt.Println(strings.Join(parts, " "))
		return nil, nil
	})
	env.Defn("apply", func(args []interface{}) (interface{}, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("apply expects a function and an argument list")
		}
		last, ok := args[len(args)-1].([]interface{})
		if !ok {
			return nil, fmt.Errorf("apply: last argument must be a sequence")
		}
		flat := append(append([]interface{}{}, args[1:len(args)-1]...), last...)
		return Apply(args[0], flat)
	})
}

func mustBuiltin(env *relex.Environment, name string) relex.BuiltinFn {
	b, ok := env.Builtin(name)
	if !ok {
		panic("eval: builtin " + name + " not registered")
	}
	return b
}

func collectionBuiltins(env *relex.Environment) {
	env.Defn("list", func(args []interface{}) (interface{}, error) {
		return append([]interface{}{}, args...), nil
	})
	env.Defn("vector", func(args []interface{}) (interface{}, error) {
		return append([]interface{}{}, args...), nil
	})
	env.Defn("cons", func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("cons expects two arguments")
		}
		coll, err := asSeq("cons", args[1])
		if err != nil {
			return nil, err
		}
		return append([]interface{}{args[0]}, coll...), nil
	})
	env.Defn("conj", func(args []interface{}) (interface{}, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("conj expects a collection")
		}
		coll, err := asSeq("conj", args[0])
		if err != nil {
			return nil, err
		}
		out := append(append([]interface{}{}, coll...), args[1:]...)
		return out, nil
	})
	env.Defn("first", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("first expects one argument")
		}
		coll, err := asSeq("first", args[0])
		if err != nil {
			return nil, err
		}
		if len(coll) == 0 {
			return nil, nil
		}
		return coll[0], nil
	})
	env.Defn("rest", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("rest expects one argument")
		}
		coll, err := asSeq("rest", args[0])
		if err != nil {
			return nil, err
		}
		if len(coll) == 0 {
			return []interface{}{}, nil
		}
		return append([]interface{}{}, coll[1:]...), nil
	})
	env.Defn("nth", func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("nth expects a sequence and an index")
		}
		coll, err := asSeq("nth", args[0])
		if err != nil {
			return nil, err
		}
		i, ok := args[1].(int64)
		if !ok {
			return nil, fmt.Errorf("nth: index must be an integer")
		}
		if i < 0 || int(i) >= len(coll) {
			return nil, fmt.Errorf("nth: index %d out of range", i)
		}
		return coll[i], nil
	})
	env.Defn("count", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("count expects one argument")
		}
		switch x := args[0].(type) {
		case nil:
			return int64(0), nil
		case []interface{}:
			return int64(len(x)), nil
		case map[interface{}]interface{}:
			return int64(len(x)), nil
		case map[interface{}]bool:
			return int64(len(x)), nil
		case string:
			return int64(len(x)), nil
		}
		return nil, fmt.Errorf("count: not a collection: %s", FormatValue(args[0]))
	})
	env.Defn("get", func(args []interface{}) (interface{}, error) {
		if len(args) < 2 || len(args) > 3 {
			return nil, fmt.Errorf("get expects a collection, a key and an optional default")
		}
		var dflt interface{}
		if len(args) == 3 {
			dflt = args[2]
		}
		switch x := args[0].(type) {
		case map[interface{}]interface{}:
			if v, ok := x[args[1]]; ok {
				return v, nil
			}
		case map[interface{}]bool:
			if x[args[1]] {
				return args[1], nil
			}
		case []interface{}:
			if i, ok := args[1].(int64); ok && i >= 0 && int(i) < len(x) {
				return x[i], nil
			}
		}
		return dflt, nil
	})
	env.Defn("assoc", func(args []interface{}) (interface{}, error) {
		if len(args) < 3 || len(args)%2 == 0 {
			return nil, fmt.Errorf("assoc expects a map and key/value pairs")
		}
		m, ok := args[0].(map[interface{}]interface{})
		if !ok {
			return nil, fmt.Errorf("assoc expects a map, got %s", FormatValue(args[0]))
		}
		out := make(map[interface{}]interface{}, len(m)+1)
		for k, v := range m {
			out[k] = v
		}
		for i := 1; i+1 < len(args); i += 2 {
			out[args[i]] = args[i+1]
		}
		return out, nil
	})
	env.Defn("dissoc", func(args []interface{}) (interface{}, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("dissoc expects a map and keys")
		}
		m, ok := args[0].(map[interface{}]interface{})
		if !ok {
			return nil, fmt.Errorf("dissoc expects a map, got %s", FormatValue(args[0]))
		}
		out := make(map[interface{}]interface{}, len(m))
		for k, v := range m {
			out[k] = v
		}
		for _, k := range args[1:] {
			delete(out, k)
		}
		return out, nil
	})
	env.Defn("keys", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("keys expects one argument")
		}
		m, ok := args[0].(map[interface{}]interface{})
		if !ok {
			return nil, fmt.Errorf("keys expects a map, got %s", FormatValue(args[0]))
		}
		return sortedKeys(m), nil
	})
	env.Defn("vals", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("vals expects one argument")
		}
		m, ok := args[0].(map[interface{}]interface{})
		if !ok {
			return nil, fmt.Errorf("vals expects a map, got %s", FormatValue(args[0]))
		}
		ks := sortedKeys(m)
		out := make([]interface{}, len(ks))
		for i, k := range ks {
			out[i] = m[k]
		}
		return out, nil
	})
	env.Defn("contains?", func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("contains? expects a collection and a key")
		}
		switch x := args[0].(type) {
		case map[interface{}]interface{}:
			_, ok := x[args[1]]
			return ok, nil
		case map[interface{}]bool:
			return x[args[1]], nil
		case []interface{}:
			i, ok := args[1].(int64)
			return ok && i >= 0 && int(i) < len(x), nil
		}
		return false, nil
	})
}

// sortedKeys gives map keys a reproducible order.
func sortedKeys(m map[interface{}]interface{}) []interface{} {
	ks := make([]interface{}, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool {
		return FormatValue(ks[i]) < FormatValue(ks[j])
	})
	return ks
}

func asSeq(name string, v interface{}) ([]interface{}, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return x, nil
	}
	return nil, fmt.Errorf("%s: not a sequence: %s", name, FormatValue(v))
}

func predicateBuiltins(env *relex.Environment) {
	one := func(name string, pred func(v interface{}) (bool, error)) {
		env.Defn(name, func(args []interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s expects one argument", name)
			}
			return pred(args[0])
		})
	}
	one("nil?", func(v interface{}) (bool, error) { return v == nil, nil })
	one("number?", func(v interface{}) (bool, error) { return isNumber(v), nil })
	one("string?", func(v interface{}) (bool, error) { _, ok := v.(string); return ok, nil })
	one("keyword?", func(v interface{}) (bool, error) { _, ok := v.(sexp.Keyword); return ok, nil })
	one("symbol?", func(v interface{}) (bool, error) { _, ok := v.(*sexp.Symbol); return ok, nil })
	one("fn?", func(v interface{}) (bool, error) {
		switch v.(type) {
		case *Closure, relex.BuiltinFn:
			return true, nil
		}
		return false, nil
	})
	one("vector?", func(v interface{}) (bool, error) { _, ok := v.([]interface{}); return ok, nil })
	one("map?", func(v interface{}) (bool, error) { _, ok := v.(map[interface{}]interface{}); return ok, nil })
	one("set?", func(v interface{}) (bool, error) { _, ok := v.(map[interface{}]bool); return ok, nil })
	one("empty?", func(v interface{}) (bool, error) {
		switch x := v.(type) {
		case nil:
			return true, nil
		case []interface{}:
			return len(x) == 0, nil
		case map[interface{}]interface{}:
			return len(x) == 0, nil
		case map[interface{}]bool:
			return len(x) == 0, nil
		case string:
			return x == "", nil
		}
		return false, fmt.Errorf("empty?: not a collection: %s", FormatValue(v))
	})
	numPred := func(name string, pred func(f float64) bool) {
		one(name, func(v interface{}) (bool, error) {
			f, ok := asFloat(v)
			if !ok {
				return false, fmt.Errorf("%s: not a number: %s", name, FormatValue(v))
			}
			return pred(f), nil
		})
	}
	numPred("zero?", func(f float64) bool { return f == 0 })
	numPred("pos?", func(f float64) bool { return f > 0 })
	numPred("neg?", func(f float64) bool { return f < 0 })
	one("even?", func(v interface{}) (bool, error) {
		n, ok := v.(int64)
		if !ok {
			return false, fmt.Errorf("even?: not an integer: %s", FormatValue(v))
		}
		return n%2 == 0, nil
	})
	one("odd?", func(v interface{}) (bool, error) {
		n, ok := v.(int64)
		if !ok {
			return false, fmt.Errorf("odd?: not an integer: %s", FormatValue(v))
		}
		return n%2 != 0, nil
	})
}

func mathBuiltins(env *relex.Environment) {
	unary := func(name string, fn func(f float64) (interface{}, error)) {
		env.Defn(name, func(args []interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s expects one argument", name)
			}
			f, ok := asFloat(args[0])
			if !ok {
				return nil, fmt.Errorf("%s: not a number: %s", name, FormatValue(args[0]))
			}
			return fn(f)
		})
	}
	env.Defn("math/abs", func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("math/abs expects one argument")
		}
		switch n := args[0].(type) {
		case int64:
			if n < 0 {
				return -n, nil
			}
			return n, nil
		case float64:
			return math.Abs(n), nil
		}
		return nil, fmt.Errorf("math/abs: not a number: %s", FormatValue(args[0]))
	})
	extremum := func(name string, better func(a, b float64) bool) {
		env.Defn(name, func(args []interface{}) (interface{}, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("%s expects at least one argument", name)
			}
			best := args[0]
			bf, ok := asFloat(best)
			if !ok {
				return nil, fmt.Errorf("%s: not a number: %s", name, FormatValue(best))
			}
			for _, x := range args[1:] {
				xf, ok := asFloat(x)
				if !ok {
					return nil, fmt.Errorf("%s: not a number: %s", name, FormatValue(x))
				}
				if better(xf, bf) {
					best, bf = x, xf
				}
			}
			return best, nil
		})
	}
	extremum("math/max", func(a, b float64) bool { return a > b })
	extremum("math/min", func(a, b float64) bool { return a < b })
	unary("math/floor", func(f float64) (interface{}, error) { return int64(math.Floor(f)), nil })
	unary("math/ceil", func(f float64) (interface{}, error) { return int64(math.Ceil(f)), nil })
	unary("math/round", func(f float64) (interface{}, error) { return int64(math.Round(f)), nil })
	unary("math/sqrt", func(f float64) (interface{}, error) {
		if f < 0 {
			return nil, fmt.Errorf("math/sqrt: negative argument")
		}
		return math.Sqrt(f), nil
	})
	env.Defn("math/pow", func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("math/pow expects two arguments")
		}
		a, okA := asFloat(args[0])
		b, okB := asFloat(args[1])
		if !okA || !okB {
			return nil, fmt.Errorf("math/pow expects numbers")
		}
		return math.Pow(a, b), nil
	})
}

func strBuiltins(env *relex.Environment) {
	oneString := func(name string, fn func(s string) interface{}) {
		env.Defn(name, func(args []interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s expects one argument", name)
			}
			s, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("%s expects a string, got %s", name, FormatValue(args[0]))
			}
			return fn(s), nil
		})
	}
	oneString("str/upper", func(s string) interface{} { return strings.ToUpper(s) })
	oneString("str/lower", func(s string) interface{} { return strings.ToLower(s) })
	oneString("str/trim", func(s string) interface{} { return strings.TrimSpace(s) })
	env.Defn("str/join", func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("str/join expects a separator and a sequence")
		}
		sep, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("str/join: separator must be a string")
		}
		coll, err := asSeq("str/join", args[1])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(coll))
		for i, e := range coll {
			parts[i] = plainString(e)
		}
		return strings.Join(parts, sep), nil
	})
	env.Defn("str/split", func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("str/split expects a string and a separator")
		}
		s, okS := args[0].(string)
		sep, okSep := args[1].(string)
		if !okS || !okSep {
			return nil, fmt.Errorf("str/split expects strings")
		}
		fields := strings.Split(s, sep)
		out := make([]interface{}, len(fields))
		for i, f := range fields {
			out[i] = f
		}
		return out, nil
	})
	env.Defn("str/contains?", func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("str/contains? expects two strings")
		}
		s, okS := args[0].(string)
		sub, okSub := args[1].(string)
		if !okS || !okSub {
			return nil, fmt.Errorf("str/contains? expects strings")
		}
		return strings.Contains(s, sub), nil
	})
}

// --- Macros ---------------------------------------------------------------

// branchCounter names the bindings introduced by and/or expansions.
var branchCounter uint64

func gensym(prefix string) *sexp.Symbol {
	n := atomic.AddUint64(&branchCounter, 1)
	return sexp.Sym(fmt.Sprintf("%s__%d", prefix, n))
}

func asMacroCall(name string, form sexp.Node) (*sexp.Seq, error) {
	call, ok := form.(*sexp.Seq)
	if !ok || call.Kind != sexp.CallSeq {
		return nil, fmt.Errorf("%s: not a call form", name)
	}
	return call, nil
}

func syntaxMacros(env *relex.Environment) {
	env.DefMacro("when", func(form sexp.Node, env *relex.Environment) (sexp.Node, error) {
		call, err := asMacroCall("when", form)
		if err != nil {
			return nil, err
		}
		if len(call.Items) < 2 {
			return nil, fmt.Errorf("when expects a condition")
		}
		body := append([]sexp.Node{sexp.Sym("do")}, call.Items[2:]...)
		return sexp.Call(sexp.Sym("if"), call.Items[1], sexp.Call(body...), sexp.Lit(nil)), nil
	})
	env.DefMacro("unless", func(form sexp.Node, env *relex.Environment) (sexp.Node, error) {
		call, err := asMacroCall("unless", form)
		if err != nil {
			return nil, err
		}
		if len(call.Items) < 2 {
			return nil, fmt.Errorf("unless expects a condition")
		}
		body := append([]sexp.Node{sexp.Sym("do")}, call.Items[2:]...)
		return sexp.Call(sexp.Sym("if"), call.Items[1], sexp.Lit(nil), sexp.Call(body...)), nil
	})
	env.DefMacro("cond", func(form sexp.Node, env *relex.Environment) (sexp.Node, error) {
		call, err := asMacroCall("cond", form)
		if err != nil {
			return nil, err
		}
		clauses := call.Items[1:]
		if len(clauses) == 0 {
			return sexp.Lit(nil), nil
		}
		if len(clauses)%2 != 0 {
			return nil, fmt.Errorf("cond expects test/result pairs")
		}
		rest := append([]sexp.Node{sexp.Sym("cond")}, clauses[2:]...)
		return sexp.Call(sexp.Sym("if"), clauses[0], clauses[1], sexp.Call(rest...)), nil
	})
	env.DefMacro("and", func(form sexp.Node, env *relex.Environment) (sexp.Node, error) {
		call, err := asMacroCall("and", form)
		if err != nil {
			return nil, err
		}
		args := call.Items[1:]
		switch len(args) {
		case 0:
			return sexp.Lit(true), nil
		case 1:
			return args[0], nil
		}
		g := gensym("and")
		rest := append([]sexp.Node{sexp.Sym("and")}, args[1:]...)
		return sexp.Call(sexp.Sym("let"),
			sexp.Vector(g, args[0]),
			sexp.Call(sexp.Sym("if"), g, sexp.Call(rest...), g)), nil
	})
	env.DefMacro("or", func(form sexp.Node, env *relex.Environment) (sexp.Node, error) {
		call, err := asMacroCall("or", form)
		if err != nil {
			return nil, err
		}
		args := call.Items[1:]
		switch len(args) {
		case 0:
			return sexp.Lit(nil), nil
		case 1:
			return args[0], nil
		}
		g := gensym("or")
		rest := append([]sexp.Node{sexp.Sym("or")}, args[1:]...)
		return sexp.Call(sexp.Sym("let"),
			sexp.Vector(g, args[0]),
			sexp.Call(sexp.Sym("if"), g, g, sexp.Call(rest...))), nil
	})
}
