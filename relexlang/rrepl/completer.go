package main

import (
	"strings"

	"github.com/npillmayer/relex"
	"github.com/sahilm/fuzzy"
)

// replCommands are the REPL-level command forms, offered as completion
// candidates next to the environment's names.
var replCommands = []string{"defc", "defc=", "hoist", "watch", "tree"}

// isDelimiter reports whether a rune ends a symbol for completion
// purposes. The symbol charset itself is liberal (Lisp identifiers), so
// only genuine structure characters delimit.
func isDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '(', ')', '[', ']', '{', '}', '\'', '~', '@', '"', ',', ';':
		return true
	}
	return false
}

// completer implements readline.AutoCompleter over the names known to an
// environment, ranked with fuzzy matching.
type completer struct {
	env *relex.Environment
}

func newCompleter(env *relex.Environment) *completer {
	return &completer{env: env}
}

func (c *completer) candidates() []string {
	return append(c.env.Names(), replCommands...)
}

// Do completes the word under the cursor. Readline appends the returned
// runes after the cursor, so matches are emitted as suffixes of the
// typed word; fuzzy.Find supplies the ranking.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 && !isDelimiter(line[start-1]) {
		start--
	}
	word := string(line[start:pos])
	cands := c.candidates()
	if word == "" {
		out := make([][]rune, len(cands))
		for i, s := range cands {
			out[i] = []rune(s)
		}
		return out, 0
	}
	var out [][]rune
	for _, m := range fuzzy.Find(word, cands) {
		if strings.HasPrefix(m.Str, word) {
			out = append(out, []rune(m.Str[len(word):]))
		}
	}
	return out, len([]rune(word))
}
