package eval

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/relex/sexp"
)

// Truthy reports the conditional interpretation of a value: nil and
// false are falsy, everything else is truthy.
func Truthy(v interface{}) bool {
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return !ok || b
}

// DerefValue reads through a Dereffer; any other value is its own
// current value.
func DerefValue(v interface{}) interface{} {
	if d, ok := v.(Dereffer); ok {
		return d.CurrentValue()
	}
	return v
}

// ValueEqual compares values structurally. Numbers compare promoted, so
// 1 and 1.0 are equal; sexp trees compare by shape.
func ValueEqual(a, b interface{}) bool {
	if isNumber(a) && isNumber(b) {
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		return af == bf
	}
	if an, ok := a.(sexp.Node); ok {
		bn, ok := b.(sexp.Node)
		return ok && sexp.Equal(an, bn)
	}
	if as, ok := a.([]interface{}); ok {
		bs, ok := b.([]interface{})
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !ValueEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int64, float64:
		return true
	}
	return false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// FormatValue renders a value in reader notation where one exists.
// Strings print quoted; use plainString for user-facing text.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return strconv.Quote(x)
	case sexp.Keyword:
		return ":" + string(x)
	case sexp.Node:
		return x.String()
	case []interface{}:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case map[interface{}]interface{}:
		parts := make([]string, 0, len(x))
		for k, val := range x {
			parts = append(parts, FormatValue(k)+" "+FormatValue(val))
		}
		sort.Strings(parts) // map iteration order is not specified
		return "{" + strings.Join(parts, ", ") + "}"
	case map[interface{}]bool:
		parts := make([]string, 0, len(x))
		for k := range x {
			parts = append(parts, FormatValue(k))
		}
		sort.Strings(parts)
		return "#{" + strings.Join(parts, " ") + "}"
	case error:
		return "#<error " + x.Error() + ">"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}

func plainString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return FormatValue(v)
}
