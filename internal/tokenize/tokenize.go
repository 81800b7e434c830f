// Package tokenize implements the fuzzy tokenizer (C2): cheap shingling
// tokens used only for LSH candidate generation, never for final scoring.
package tokenize

import (
	"strings"
	"unicode"

	"github.com/e4c5/dupscan/internal/ast"
)

const shingleSize = 3

// Shingles walks the statements' surface text with a lexical scan and
// returns the set of k=3 shingles (as a deduplicated slice) suitable for
// Jaccard-over-sets comparison via MinHash.
func Shingles(stmts []ast.Node) []string {
	tokens := lex(stmts)
	if len(tokens) < shingleSize {
		if len(tokens) == 0 {
			return nil
		}
		return []string{strings.Join(tokens, "")}
	}
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for i := 0; i+shingleSize <= len(tokens); i++ {
		s := strings.Join(tokens[i:i+shingleSize], "")
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// lex produces a flat token stream across every statement's text: a
// lexical scan that collapses whitespace, quotes literals by kind, and
// preserves identifier stems.
func lex(stmts []ast.Node) []string {
	var out []string
	for _, s := range stmts {
		out = append(out, lexOne(s.Text())...)
	}
	return out
}

func lexOne(text string) []string {
	var out []string
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '"' || r == '\'':
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				if runes[j] == '\\' && j+1 < len(runes) {
					j++
				}
				j++
			}
			if j < len(runes) {
				j++
			}
			if quote == '"' {
				out = append(out, "STR")
			} else {
				out = append(out, "CHAR")
			}
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.' || runes[j] == '_' ||
				unicode.IsLetter(runes[j])) {
				j++
			}
			out = append(out, "NUM")
			i = j
		case unicode.IsLetter(r) || r == '_' || r == '$':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_' || runes[j] == '$') {
				j++
			}
			out = append(out, string(runes[i:j]))
			i = j
		default:
			// operator/punctuation: group common multi-char operators, else single char
			j := i + 1
			if j < len(runes) && isOpChar(runes[i]) && isOpChar(runes[j]) {
				j++
			}
			out = append(out, string(runes[i:j]))
			i = j
		}
	}
	return out
}

func isOpChar(r rune) bool {
	switch r {
	case '=', '!', '<', '>', '&', '|', '+', '-', '*', '/', '%', '^', ':':
		return true
	default:
		return false
	}
}
