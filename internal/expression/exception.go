package expression

import "strings"

// PromoteExceptions rewrites every "X WITH Y" of expr into "Y" so that the
// exception is reported as the primary value:
//
//	"key1 WITH key2 AND key3" becomes "key2 AND key3"
//
// The rewrite is token based: the token right before WITH is dropped along
// with WITH itself. Parentheses are kept in place.
func PromoteExceptions(expr string) string {
	var out []string
	for _, tok := range fields(expr) {
		if tok == With {
			if n := len(out); n > 0 && out[n-1] != LParen {
				out = out[:n-1]
			}
			continue
		}
		out = append(out, tok)
	}
	joined := strings.Join(out, " ")
	joined = strings.ReplaceAll(joined, LParen+" ", LParen)
	return strings.ReplaceAll(joined, " "+RParen, RParen)
}
