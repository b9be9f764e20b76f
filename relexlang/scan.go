package relexlang

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// The token kinds produced by the scanner.
const (
	tokEOF = iota
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokLBrace
	tokRBrace
	tokSetOpen // #{
	tokQuote
	tokUnquote
	tokSplice // ~@
	tokString
	tokNumber
	tokKeyword
	tokSymbol
)

// The tokens representing literal lexemes
var literalTokens = map[string]int{
	"(":  tokLParen,
	")":  tokRParen,
	"[":  tokLBrack,
	"]":  tokRBrack,
	"{":  tokLBrace,
	"}":  tokRBrace,
	"#{": tokSetOpen,
	"'":  tokQuote,
	"~":  tokUnquote,
	"~@": tokSplice,
}

// Symbols start with a letter or operator character; digits may follow.
const symbolPattern = `[a-zA-Z\+\-\*/=<>!\?\.&%_][a-zA-Z0-9\+\-\*/=<>!\?\.&%_]*`

var lexOnce sync.Once // monitors one-time DFA compilation
var lexer *lexmachine.Lexer
var lexErr error

// Lexer creates the lexmachine lexer for formula source text. The DFA
// compiles once; subsequent calls return the shared instance.
func Lexer() (*lexmachine.Lexer, error) {
	lexOnce.Do(func() {
		lexer = lexmachine.NewLexer()
		lexer.Add([]byte(`;[^\n]*\n?`), skip) // comments run to end of line
		lexer.Add([]byte(`( |\t|\n|\r|,)+`), skip)
		lexer.Add([]byte(`\"(\\.|[^\"\\])*\"`), makeToken(tokString))
		lexer.Add([]byte(`(\+|\-)?[0-9]+(\.[0-9]+)?`), makeToken(tokNumber))
		lexer.Add([]byte(`:`+symbolPattern), makeToken(tokKeyword))
		lexer.Add([]byte(symbolPattern), makeToken(tokSymbol))
		for lit, id := range literalTokens {
			r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
			lexer.Add([]byte(r), makeToken(id))
		}
		lexErr = lexer.Compile()
		if lexErr != nil {
			tracer().Errorf("Error compiling DFA: %v", lexErr)
		}
	})
	return lexer, lexErr
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// --- Token stream ---------------------------------------------------------

type token struct {
	kind   int
	lexeme string
	line   int
	col    int
}

// tokenStream drives a lexmachine scanner with one token of lookahead
// for the parser.
type tokenStream struct {
	scan *lexmachine.Scanner
	cur  token
}

func newTokenStream(input string) (*tokenStream, error) {
	lex, err := Lexer()
	if err != nil {
		return nil, err
	}
	s, err := lex.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	ts := &tokenStream{scan: s}
	if err := ts.advance(); err != nil {
		return nil, err
	}
	return ts, nil
}

// advance moves the lookahead by one token. Unscannable input is an
// error, not a silent skip.
func (ts *tokenStream) advance() error {
	tok, err, eof := ts.scan.Next()
	if err != nil {
		if ui, is := err.(*machines.UnconsumedInput); is {
			return fmt.Errorf("lang: unexpected character at line %d, column %d",
				ui.StartLine, ui.StartColumn)
		}
		return err
	}
	if eof {
		ts.cur = token{kind: tokEOF, line: ts.cur.line}
		return nil
	}
	t := tok.(*lexmachine.Token)
	ts.cur = token{
		kind:   t.Type,
		lexeme: string(t.Lexeme),
		line:   t.StartLine,
		col:    t.StartColumn,
	}
	tracer().Debugf("token %q (%d)", ts.cur.lexeme, ts.cur.kind)
	return nil
}
