package problem

import (
	"fmt"
	"strconv"
)

// Fraction is an exact rational in lowest terms. Numerator and Denominator
// are non-negative and Sign is -1 or 1; zero has Sign 1.
type Fraction struct {
	Sign        int `json:"sign"`
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// NewFraction reduces num/den. It panics when den is zero; callers guard
// their divisors before building a fraction.
func NewFraction(num, den int) Fraction {
	if den == 0 {
		panic("problem: zero denominator")
	}
	sign := 1
	if (num < 0) != (den < 0) && num != 0 {
		sign = -1
	}
	n, d := abs(num), abs(den)
	if g := gcd(n, d); g > 1 {
		n, d = n/g, d/g
	}
	if n == 0 {
		d = 1
	}
	return Fraction{Sign: sign, Numerator: n, Denominator: d}
}

// IsInteger reports whether the denominator reduced to 1.
func (f Fraction) IsInteger() bool { return f.Denominator == 1 }

// Float returns the decimal value.
func (f Fraction) Float() float64 {
	return float64(f.Sign*f.Numerator) / float64(f.Denominator)
}

// Num returns the signed numerator.
func (f Fraction) Num() int { return f.Sign * f.Numerator }

// Neg returns -f.
func (f Fraction) Neg() Fraction { return NewFraction(-f.Num(), f.Denominator) }

// Add returns f + g.
func (f Fraction) Add(g Fraction) Fraction {
	return NewFraction(f.Num()*g.Denominator+g.Num()*f.Denominator, f.Denominator*g.Denominator)
}

// Sub returns f - g.
func (f Fraction) Sub(g Fraction) Fraction { return f.Add(g.Neg()) }

// Mul returns f * g.
func (f Fraction) Mul(g Fraction) Fraction {
	return NewFraction(f.Num()*g.Num(), f.Denominator*g.Denominator)
}

// Div returns f / g. It panics when g is zero.
func (f Fraction) Div(g Fraction) Fraction {
	return NewFraction(f.Num()*g.Denominator, f.Denominator*g.Num())
}

// Latex renders the value as an integer or a signed \frac.
func (f Fraction) Latex() string {
	if f.IsInteger() {
		return strconv.Itoa(f.Num())
	}
	s := fmt.Sprintf(`\frac{%d}{%d}`, f.Numerator, f.Denominator)
	if f.Sign < 0 {
		return "-" + s
	}
	return s
}

// String renders the value as n/d, or n for integers.
func (f Fraction) String() string {
	if f.IsInteger() {
		return strconv.Itoa(f.Num())
	}
	return fmt.Sprintf("%d/%d", f.Num(), f.Denominator)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
