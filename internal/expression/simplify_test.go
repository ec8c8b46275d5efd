package expression

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single atom", "mit", []string{"mit"}},
		{"parens without spaces", "(mit OR bsd)", []string{"(", "mit", "OR", "bsd", ")"}},
		{"multi word atom", "Permissive AND Copyleft Limited", []string{"Permissive", "AND", "Copyleft Limited"}},
		{"collapses whitespace", "  a \t AND\n b ", []string{"a", "AND", "b"}},
		{"operator words inside atoms", "ANDROID OR ORACLE", []string{"ANDROID", "OR", "ORACLE"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Tokenize(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"nested groups", "((Copyleft AND Copyleft AND Copyleft) OR Permissive) AND (Permissive AND Permissive)", "(Copyleft OR Permissive) AND Permissive"},
		{"nested single letters", "((X AND X AND X) OR Y) AND (Y AND Y)", "(X OR Y) AND Y"},
		{"single atom", "Permissive", "Permissive"},
		{"and duplicate", "Permissive AND Permissive", "Permissive"},
		{"or duplicate", "Permissive OR Permissive", "Permissive"},
		{"multi word atom", "Permissive AND Copyleft Limited AND Permissive", "Permissive AND Copyleft Limited"},
		{"and keeps first seen order", "B AND A AND B", "B AND A"},
		{"or absorbs stronger right side", "A OR (A AND B)", "A"},
		{"or absorbs stronger left side", "(A AND B) OR A", "A"},
		{"or keeps unrelated sides", "A OR B", "(A OR B)"},
		{"or groups and-joined sides", "(A AND B) OR (C AND D)", "((A AND B) OR (C AND D))"},
		{"or groups and-joined left side", "(A OR B) AND C OR D", "(((A OR B) AND C) OR D)"},
		{"or keeps enclosed side", "(A AND B OR C) OR D", "(((A AND B) OR C) OR D)"},
		{"no precedence between operators", "A AND (B) OR C", "A AND (B OR C)"},
		{"empty", "", ""},
		{"whitespace only", "  \n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Simplify(tt.input)
			if err != nil {
				t.Fatalf("Simplify(%q) returned error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("Simplify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	inputs := []string{
		"((X AND X AND X) OR Y) AND (Y AND Y)",
		"B AND A AND B",
		"A OR (A AND B)",
		"(A AND B) OR C",
		"A OR B OR C",
		"(mit OR apache-2.0) AND (bsd-new OR mit) AND gpl-2.0",
		"Permissive AND Copyleft Limited",
		"(A AND B) OR (C AND D)",
		"(A AND B) OR C",
		"(A OR B) AND C OR D",
		"A OR B AND C",
		"(A AND B OR C AND D) AND E",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once, err := Simplify(in)
			if err != nil {
				t.Fatalf("first pass: %v", err)
			}
			twice, err := Simplify(once)
			if err != nil {
				t.Fatalf("second pass on %q: %v", once, err)
			}
			if once != twice {
				t.Errorf("not idempotent: %q -> %q -> %q", in, once, twice)
			}
		})
	}
}

func TestSimplifyMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"trailing operator", "A AND"},
		{"leading operator", "OR A"},
		{"unclosed paren", "(A AND B"},
		{"unopened paren", "A AND B)"},
		{"missing operator", "A (B)"},
		{"empty parens", "A AND ()"},
		{"operator before close", "(A AND) OR B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simplify(tt.input)
			if err == nil {
				t.Fatalf("Simplify(%q) expected error", tt.input)
			}
			if !errors.Is(err, ErrMalformedExpression) {
				t.Errorf("expected ErrMalformedExpression, got %v", err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Expr != tt.input {
				t.Errorf("ParseError.Expr = %q, want %q", perr.Expr, tt.input)
			}
		})
	}
}

func TestPromoteExceptions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "A AND B WITH C", "A AND C"},
		{"multi word exception", "Permissive AND Copyleft WITH Copyleft Limited", "Permissive AND Copyleft Limited"},
		{"inside group", "(Permissive OR Copyleft WITH Copyleft Limited) OR Permissive", "(Permissive OR Copyleft Limited) OR Permissive"},
		{"keys", "(bsd-new AND gpl-2.0 WITH classpath-exception) OR mit", "(bsd-new AND classpath-exception) OR mit"},
		{"double parens", "((gpl-2.0 WITH classpath-exception))", "((classpath-exception))"},
		{"no exception", "mit OR apache-2.0", "mit OR apache-2.0"},
		{"dangling with", "WITH mit", "mit"},
		{"with after open paren keeps the paren", "(WITH mit) AND bsd-new", "(mit) AND bsd-new"},
		{"peels every paren", "(((gpl-2.0 WITH classpath-exception))) AND mit", "(((classpath-exception))) AND mit"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PromoteExceptions(tt.input)
			if result != tt.expected {
				t.Errorf("PromoteExceptions(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
