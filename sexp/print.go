package sexp

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical textual form of expressions. The output re-reads to an equal
// tree for everything the reader can produce.

func (s *Symbol) String() string {
	return s.Name
}

func (l *Literal) String() string {
	return formatLiteral(l.Value)
}

func (q *Seq) String() string {
	open, close := "(", ")"
	if q.Kind == VectorSeq {
		open, close = "[", "]"
	}
	return open + joinNodes(q.Items, " ") + close
}

func (m *Mapping) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range m.Pairs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Key.String())
		b.WriteByte(' ')
		b.WriteString(p.Val.String())
	}
	b.WriteByte('}')
	return b.String()
}

func (s *Set) String() string {
	return "#{" + joinNodes(s.Items, " ") + "}"
}

func joinNodes(items []Node, sep string) string {
	strs := make([]string, len(items))
	for i, it := range items {
		strs[i] = it.String()
	}
	return strings.Join(strs, sep)
}

func formatLiteral(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		return strconv.Quote(x)
	case Keyword:
		return ":" + string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
