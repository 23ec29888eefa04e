package linear

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

// coef renders a coefficient in front of a variable: 1 -> "", -1 -> "-".
func coef(c int) string {
	switch c {
	case 1:
		return ""
	case -1:
		return "-"
	default:
		return strconv.Itoa(c)
	}
}

// term renders c·v as it leads an expression.
func term(c int, v string) string {
	return coef(c) + v
}

// plus renders a trailing " + c" or " - |c|".
func plus(c int) string {
	if c < 0 {
		return fmt.Sprintf(" - %d", -c)
	}
	return fmt.Sprintf(" + %d", c)
}

// plusTerm renders a trailing " + c·v" or " - |c|·v".
func plusTerm(c int, v string) string {
	if c < 0 {
		return " - " + term(-c, v)
	}
	return " + " + term(c, v)
}

// expr renders a·v + b, dropping zero parts.
func expr(a int, v string, b int) string {
	switch {
	case a == 0:
		return strconv.Itoa(b)
	case b == 0:
		return term(a, v)
	default:
		return term(a, v) + plus(b)
	}
}

// expr2 renders a·u + b·v, dropping zero parts.
func expr2(a int, u string, b int, v string) string {
	switch {
	case a == 0 && b == 0:
		return "0"
	case a == 0:
		return term(b, v)
	case b == 0:
		return term(a, u)
	default:
		return term(a, u) + plusTerm(b, v)
	}
}

// shift renders v - p, e.g. "x - 3", "x + 2" or "x" for p == 0.
func shift(v string, p int) string {
	if p == 0 {
		return v
	}
	return v + plus(-p)
}

// times renders c·(inner). A bare inner (no operator) is not parenthesised.
func times(c int, inner string) string {
	if c == 0 {
		return "0"
	}
	if !strings.ContainsAny(inner, "+-") {
		return coef(c) + inner
	}
	return coef(c) + "(" + inner + ")"
}

// fracTerm renders q·v for a rational coefficient.
func fracTerm(q problem.Fraction, v string) string {
	if q.IsInteger() {
		return term(q.Num(), v)
	}
	return q.Latex() + v
}

// fracExpr renders q·v + c with rational parts, dropping zero parts.
func fracExpr(q problem.Fraction, v string, c problem.Fraction) string {
	switch {
	case q.Num() == 0:
		return c.Latex()
	case c.Num() == 0:
		return fracTerm(q, v)
	case c.Sign < 0:
		return fracTerm(q, v) + " - " + c.Neg().Latex()
	default:
		return fracTerm(q, v) + " + " + c.Latex()
	}
}

// point renders (x, y).
func point(x, y int) string {
	return fmt.Sprintf("(%d, %d)", x, y)
}
