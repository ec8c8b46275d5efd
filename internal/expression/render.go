package expression

import "strings"

// Render writes e back out with each symbol replaced by fn(key). The
// AND/OR/WITH structure is preserved and nested AND/OR nodes are wrapped
// in parentheses.
func (e *Expr) Render(fn func(key string) string) string {
	var b strings.Builder
	e.render(&b, fn)
	return b.String()
}

func (e *Expr) render(b *strings.Builder, fn func(string) string) {
	switch e.Kind {
	case KindSymbol:
		b.WriteString(fn(e.Key))
	case KindWith:
		e.Args[0].render(b, fn)
		b.WriteString(" " + With + " ")
		e.Args[1].render(b, fn)
	default:
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(" " + e.Kind.String() + " ")
			}
			nested := arg.Kind == KindAnd || arg.Kind == KindOr
			if nested {
				b.WriteString(LParen)
			}
			arg.render(b, fn)
			if nested {
				b.WriteString(RParen)
			}
		}
	}
}

func (e *Expr) String() string {
	return e.Render(func(key string) string { return key })
}

// Keys returns every license and exception key of e in order of
// appearance, repeats included.
func (e *Expr) Keys() []string {
	var keys []string
	e.walk(func(n *Expr) {
		if n.Kind == KindSymbol {
			keys = append(keys, n.Key)
		}
	})
	return keys
}

func (e *Expr) walk(fn func(*Expr)) {
	fn(e)
	for _, arg := range e.Args {
		arg.walk(fn)
	}
}

// Dedup returns a copy of e where nested nodes of the same operator are
// flattened, repeated operands of an AND or OR are dropped and single
// operand nodes collapse into their operand.
func (e *Expr) Dedup() *Expr {
	switch e.Kind {
	case KindSymbol:
		return Symbol(e.Key)
	case KindWith:
		return &Expr{Kind: KindWith, Args: []*Expr{e.Args[0].Dedup(), e.Args[1].Dedup()}}
	}

	var args []*Expr
	seen := make(map[string]bool)
	var add func(arg *Expr)
	add = func(arg *Expr) {
		if arg.Kind == e.Kind {
			for _, sub := range arg.Args {
				add(sub)
			}
			return
		}
		if s := arg.String(); !seen[s] {
			seen[s] = true
			args = append(args, arg)
		}
	}
	for _, arg := range e.Args {
		add(arg.Dedup())
	}
	if len(args) == 1 {
		return args[0]
	}
	return &Expr{Kind: e.Kind, Args: args}
}

// PromoteExceptions returns a copy of e with every WITH node replaced by
// its exception symbol. It is the tree counterpart of the string function
// of the same name and keeps multi-word rendered values intact.
func (e *Expr) PromoteExceptions() *Expr {
	switch e.Kind {
	case KindSymbol:
		return Symbol(e.Key)
	case KindWith:
		return Symbol(e.Args[1].Key)
	}
	args := make([]*Expr, len(e.Args))
	for i, arg := range e.Args {
		args[i] = arg.PromoteExceptions()
	}
	return &Expr{Kind: e.Kind, Args: args}
}
