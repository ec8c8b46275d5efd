package expression

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

const andSep = " AND "

// Simplify deduplicates a license or category expression and absorbs
// redundant OR alternatives while keeping the order of first appearance.
//
// Evaluation is strictly left to right: AND and OR have the same binding
// strength and every operator is reduced as soon as two operands are
// available outside of an open parenthesis. A closing parenthesis drops
// its opening one without reducing the enclosing operator, so
// "A AND (B) OR C" yields "A AND (B OR C)".
//
// Reduction rules:
//   - AND concatenates the AND-separated atoms of both sides and drops
//     repeats.
//   - OR compares both sides as sets of AND-separated atoms. When one set
//     is contained in the other the contained side wins, since it is the
//     weaker requirement ("A OR (A AND B)" is "A"). Otherwise both sides
//     are kept as "(left OR right)", with an AND-joined side in its own
//     parentheses so that simplifying the result again leaves it as is.
//
// Unbalanced parentheses, operators without two operands and operands
// without an operator between them yield a *ParseError.
func Simplify(expr string) (string, error) {
	tokens := Tokenize(expr)
	s := simplifier{expr: expr}

	for pos, tok := range tokens {
		switch tok {
		case And, Or, LParen:
			s.ops = append(s.ops, tok)
		case RParen:
			if pos > 0 && tokens[pos-1] == LParen {
				return "", newParseError(expr, pos, "empty parentheses")
			}
			for len(s.ops) > 0 && s.top() != LParen {
				if err := s.reduce(pos); err != nil {
					return "", err
				}
			}
			if len(s.ops) == 0 {
				return "", newParseError(expr, pos, "unbalanced %q", RParen)
			}
			s.ops = s.ops[:len(s.ops)-1]
		default:
			s.values = append(s.values, tok)
			for len(s.values) > 1 && len(s.ops) > 0 && s.top() != LParen {
				if err := s.reduce(pos); err != nil {
					return "", err
				}
			}
		}
	}

	for len(s.ops) > 0 {
		if s.top() == LParen {
			return "", newParseError(expr, -1, "unbalanced %q", LParen)
		}
		if err := s.reduce(-1); err != nil {
			return "", err
		}
	}

	switch len(s.values) {
	case 0:
		return "", nil
	case 1:
		return s.values[0], nil
	default:
		return "", newParseError(expr, -1, "missing operator between %q and %q", s.values[0], s.values[1])
	}
}

type simplifier struct {
	expr   string
	values []string
	ops    []string
}

func (s *simplifier) top() string {
	return s.ops[len(s.ops)-1]
}

func (s *simplifier) reduce(pos int) error {
	op := s.top()
	if len(s.values) < 2 {
		return newParseError(s.expr, pos, "operator %q is missing an operand", op)
	}
	right := s.values[len(s.values)-1]
	left := s.values[len(s.values)-2]
	s.values = s.values[:len(s.values)-2]
	s.ops = s.ops[:len(s.ops)-1]

	var reduced string
	if op == And {
		reduced = andCombine(left, right)
	} else {
		reduced = orCombine(left, right)
	}
	s.values = append(s.values, reduced)
	return nil
}

func andCombine(left, right string) string {
	atoms := append(strings.Split(left, andSep), strings.Split(right, andSep)...)
	seen := mapset.NewThreadUnsafeSet[string]()
	kept := atoms[:0]
	for _, a := range atoms {
		if seen.Add(a) {
			kept = append(kept, a)
		}
	}
	return strings.Join(kept, andSep)
}

func orCombine(left, right string) string {
	leftSet := mapset.NewThreadUnsafeSet(strings.Split(left, andSep)...)
	rightSet := mapset.NewThreadUnsafeSet(strings.Split(right, andSep)...)
	switch {
	case leftSet.IsSubset(rightSet):
		return left
	case rightSet.IsSubset(leftSet):
		return right
	default:
		return LParen + groupAnd(left) + " " + Or + " " + groupAnd(right) + RParen
	}
}

// groupAnd parenthesizes an OR operand joined by a top-level AND, so the
// result reads back with the same grouping.
func groupAnd(operand string) string {
	if !strings.Contains(operand, andSep) || enclosed(operand) {
		return operand
	}
	return LParen + operand + RParen
}

// enclosed reports whether s opens with a parenthesis closed by its last
// byte.
func enclosed(s string) bool {
	if !strings.HasPrefix(s, LParen) || !strings.HasSuffix(s, RParen) {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}
