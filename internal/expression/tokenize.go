package expression

import (
	"regexp"
	"strings"
)

// Operator and grouping tokens.
const (
	And    = "AND"
	Or     = "OR"
	With   = "WITH"
	LParen = "("
	RParen = ")"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	delimiterRe  = regexp.MustCompile(`\bAND\b|\bOR\b|\(|\)`)
)

// Tokenize splits expr on the AND and OR words and on parentheses.
// Everything between two delimiters is one atom with its surrounding
// whitespace trimmed, so rendered categories such as "Copyleft Limited"
// stay a single token.
func Tokenize(expr string) []string {
	expr = whitespaceRe.ReplaceAllString(strings.TrimSpace(expr), " ")
	if expr == "" {
		return nil
	}

	var tokens []string
	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			tokens = append(tokens, s)
		}
	}

	last := 0
	for _, loc := range delimiterRe.FindAllStringIndex(expr, -1) {
		emit(expr[last:loc[0]])
		emit(expr[loc[0]:loc[1]])
		last = loc[1]
	}
	emit(expr[last:])
	return tokens
}

// fields splits expr on whitespace and peels every leading "(" and
// trailing ")" off into its own token.
func fields(expr string) []string {
	var tokens []string
	for _, f := range strings.Fields(expr) {
		for strings.HasPrefix(f, LParen) {
			tokens = append(tokens, LParen)
			f = f[1:]
		}
		var closing int
		for strings.HasSuffix(f, RParen) {
			closing++
			f = f[:len(f)-1]
		}
		if f != "" {
			tokens = append(tokens, f)
		}
		for ; closing > 0; closing-- {
			tokens = append(tokens, RParen)
		}
	}
	return tokens
}
