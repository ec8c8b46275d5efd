package expression

// Kind identifies the node type of an Expr.
type Kind int

const (
	KindSymbol Kind = iota
	KindAnd
	KindOr
	KindWith
)

func (k Kind) String() string {
	switch k {
	case KindAnd:
		return And
	case KindOr:
		return Or
	case KindWith:
		return With
	default:
		return "SYMBOL"
	}
}

// Expr is a parsed license expression.
//
// A KindSymbol node carries Key. KindAnd and KindOr nodes carry two or
// more Args. A KindWith node carries exactly two symbol Args: the license
// and its exception.
type Expr struct {
	Kind Kind
	Key  string
	Args []*Expr
}

// Symbol returns a leaf node for key.
func Symbol(key string) *Expr {
	return &Expr{Kind: KindSymbol, Key: key}
}

// Parse parses expr using the usual license expression precedence:
// WITH binds tightest, then AND, then OR. An unparenthesized chain of the
// same operator becomes one node with all operands as Args.
func Parse(expr string) (*Expr, error) {
	p := &parser{expr: expr, tokens: fields(expr)}
	if len(p.tokens) == 0 {
		return nil, newParseError(expr, -1, "empty expression")
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, newParseError(expr, p.pos, "unexpected %q", p.tokens[p.pos])
	}
	return e, nil
}

type parser struct {
	expr   string
	tokens []string
	pos    int
}

func (p *parser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *parser) parseOr() (*Expr, error) {
	return p.parseChain(Or, KindOr, p.parseAnd)
}

func (p *parser) parseAnd() (*Expr, error) {
	return p.parseChain(And, KindAnd, p.parseWith)
}

func (p *parser) parseChain(op string, kind Kind, next func() (*Expr, error)) (*Expr, error) {
	first, err := next()
	if err != nil {
		return nil, err
	}
	args := []*Expr{first}
	for p.peek() == op {
		p.pos++
		e, err := next()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	if len(args) == 1 {
		return first, nil
	}
	return &Expr{Kind: kind, Args: args}, nil
}

func (p *parser) parseWith() (*Expr, error) {
	lic, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek() != With {
		return lic, nil
	}
	if lic.Kind != KindSymbol {
		return nil, newParseError(p.expr, p.pos, "%s must follow a single license key", With)
	}
	p.pos++
	exc, err := p.parseSymbol()
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: KindWith, Args: []*Expr{lic, exc}}, nil
}

func (p *parser) parsePrimary() (*Expr, error) {
	if p.peek() != LParen {
		return p.parseSymbol()
	}
	open := p.pos
	p.pos++
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek() != RParen {
		return nil, newParseError(p.expr, open, "unbalanced %q", LParen)
	}
	p.pos++
	return e, nil
}

func (p *parser) parseSymbol() (*Expr, error) {
	tok := p.peek()
	switch tok {
	case "":
		return nil, newParseError(p.expr, -1, "unexpected end of expression")
	case And, Or, With, LParen, RParen:
		return nil, newParseError(p.expr, p.pos, "expected a license key, got %q", tok)
	}
	p.pos++
	return Symbol(tok), nil
}
