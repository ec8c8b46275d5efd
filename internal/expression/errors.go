package expression

import (
	"errors"
	"fmt"
)

// ErrMalformedExpression is wrapped by every ParseError.
var ErrMalformedExpression = errors.New("malformed license expression")

// ParseError reports where an expression stopped making sense.
// Pos is the index of the offending token, or -1 when the problem is only
// visible at the end of input.
type ParseError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%s %q: %s", ErrMalformedExpression, e.Expr, e.Msg)
	}
	return fmt.Sprintf("%s %q at token %d: %s", ErrMalformedExpression, e.Expr, e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedExpression
}

func newParseError(expr string, pos int, format string, args ...any) *ParseError {
	return &ParseError{Expr: expr, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
