package relexlang

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/relex/sexp"
)

// Parse reads exactly one expression from the input. Trailing tokens
// are an error; use ParseAll for multiple expressions.
func Parse(input string) (sexp.Node, error) {
	ts, err := newTokenStream(input)
	if err != nil {
		return nil, err
	}
	n, err := ts.parseForm()
	if err != nil {
		return nil, err
	}
	if ts.cur.kind != tokEOF {
		return nil, fmt.Errorf("lang: trailing input after expression at line %d", ts.cur.line)
	}
	return n, nil
}

// ParseAll reads every expression in the input.
func ParseAll(input string) ([]sexp.Node, error) {
	ts, err := newTokenStream(input)
	if err != nil {
		return nil, err
	}
	var out []sexp.Node
	for ts.cur.kind != tokEOF {
		n, err := ts.parseForm()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (ts *tokenStream) parseForm() (sexp.Node, error) {
	t := ts.cur
	switch t.kind {
	case tokEOF:
		return nil, fmt.Errorf("lang: unexpected end of input")
	case tokLParen:
		items, err := ts.parseSeq(tokRParen)
		if err != nil {
			return nil, err
		}
		return sexp.Call(items...), nil
	case tokLBrack:
		items, err := ts.parseSeq(tokRBrack)
		if err != nil {
			return nil, err
		}
		return sexp.Vector(items...), nil
	case tokLBrace:
		items, err := ts.parseSeq(tokRBrace)
		if err != nil {
			return nil, err
		}
		if len(items)%2 != 0 {
			return nil, fmt.Errorf("lang: map literal needs an even number of forms")
		}
		pairs := make([]sexp.Pair, 0, len(items)/2)
		for i := 0; i+1 < len(items); i += 2 {
			pairs = append(pairs, sexp.Pair{Key: items[i], Val: items[i+1]})
		}
		return sexp.MapOf(pairs...), nil
	case tokSetOpen:
		items, err := ts.parseSeq(tokRBrace)
		if err != nil {
			return nil, err
		}
		return sexp.SetOf(items...), nil
	case tokQuote:
		return ts.parseSugar("quote")
	case tokUnquote:
		return ts.parseSugar("unquote")
	case tokSplice:
		return ts.parseSugar("unquote-splicing")
	case tokString:
		if err := ts.advance(); err != nil {
			return nil, err
		}
		s, err := unescape(t.lexeme)
		if err != nil {
			return nil, err
		}
		return sexp.Lit(s), nil
	case tokNumber:
		if err := ts.advance(); err != nil {
			return nil, err
		}
		if i, err := strconv.ParseInt(t.lexeme, 10, 64); err == nil {
			return sexp.Lit(i), nil
		}
		f, err := strconv.ParseFloat(t.lexeme, 64)
		if err != nil {
			return nil, fmt.Errorf("lang: malformed number %q", t.lexeme)
		}
		return sexp.Lit(f), nil
	case tokKeyword:
		if err := ts.advance(); err != nil {
			return nil, err
		}
		return sexp.Lit(sexp.Keyword(t.lexeme[1:])), nil
	case tokSymbol:
		if err := ts.advance(); err != nil {
			return nil, err
		}
		switch t.lexeme {
		case "nil":
			return sexp.Lit(nil), nil
		case "true":
			return sexp.Lit(true), nil
		case "false":
			return sexp.Lit(false), nil
		}
		return sexp.Sym(t.lexeme), nil
	}
	return nil, fmt.Errorf("lang: unexpected %q at line %d, column %d", t.lexeme, t.line, t.col)
}

// parseSeq collects forms up to the closing token, consuming both
// delimiters.
func (ts *tokenStream) parseSeq(closing int) ([]sexp.Node, error) {
	open := ts.cur
	if err := ts.advance(); err != nil {
		return nil, err
	}
	var items []sexp.Node
	for ts.cur.kind != closing {
		if ts.cur.kind == tokEOF {
			return nil, fmt.Errorf("lang: unclosed %q starting at line %d", open.lexeme, open.line)
		}
		n, err := ts.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := ts.advance(); err != nil {
		return nil, err
	}
	return items, nil
}

func (ts *tokenStream) parseSugar(op string) (sexp.Node, error) {
	if err := ts.advance(); err != nil {
		return nil, err
	}
	inner, err := ts.parseForm()
	if err != nil {
		return nil, err
	}
	return sexp.Call(sexp.Sym(op), inner), nil
}

// unescape strips the surrounding quotes and processes escapes.
func unescape(lexeme string) (string, error) {
	body := lexeme[1 : len(lexeme)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("lang: dangling escape in string %s", lexeme)
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			return "", fmt.Errorf("lang: unknown escape \\%c in string", body[i])
		}
	}
	return sb.String(), nil
}
