// Package linear generates linear-equation practice problems: solving
// one-variable equations, identifying slope and intercepts in the common line
// forms, and graphing.
package linear

import (
	"fmt"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

const (
	stepSubtractConstant = "Subtract the constant term from both sides of the equation."
	stepDivideCoef       = "Divide both sides of the equation by the coefficient of the variable."
)

func nonZero(r problem.Rand, lo, hi int, key string) (int, error) {
	v, ok := problem.NonZero(r, lo, hi)
	if !ok {
		return 0, fmt.Errorf("%w %q: range contains only zero", problem.ErrInvalidParam, key)
	}
	return v, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// standardForm is a drawn instance of ax + b = c.
type standardForm struct {
	a, b, c int
	x       string
}

func drawStandardForm(r problem.Rand, p problem.Params) (standardForm, error) {
	rd := p.Read()
	minA, maxA := rd.Range("minCoefficient", "maxCoefficient")
	minB, maxB := rd.Range("minConstant", "maxConstant")
	minC, maxC := rd.Range("minSolution", "maxSolution")
	if err := rd.Err(); err != nil {
		return standardForm{}, err
	}
	a, err := nonZero(r, minA, maxA, "minCoefficient")
	if err != nil {
		return standardForm{}, err
	}
	b := r.Int(minB, maxB)
	c := r.Int(minC, maxC)
	// Move c onto the nearest value below it that yields an integer solution.
	c = b + a*floorDiv(c-b, a)
	return standardForm{a: a, b: b, c: c, x: problem.Variable(r)}, nil
}

func (s standardForm) solution() problem.Fraction {
	return problem.NewFraction(s.c-s.b, s.a)
}

func (s standardForm) problem() problem.Problem {
	x := s.solution()
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text(fmt.Sprintf("Solve for %s:", s.x)),
			problem.Formula(fmt.Sprintf("%s = %d", expr(s.a, s.x, s.b), s.c)),
		},
		Steps: []problem.Block{
			problem.Text(stepSubtractConstant),
			problem.Formula(fmt.Sprintf("%s = %d", term(s.a, s.x), s.c-s.b)),
			problem.Text(stepDivideCoef),
			problem.Formula(fmt.Sprintf(`%s = \frac{%d}{%d}`, s.x, s.c-s.b, s.a)),
			problem.Text(fmt.Sprintf("Calculate the value of %s.", s.x)),
			problem.Formula(fmt.Sprintf("%s = %s", s.x, x.Latex())),
		},
		Solution: []problem.Solution{problem.Numeric("", x)},
	}
}

// StandardForm generates ax + b = c with an integer solution.
func StandardForm(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawStandardForm(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.problem(), nil
}

// parentheses is a drawn instance of a(x + b) = c.
type parentheses struct {
	a, b, c int
	x       string
}

func drawParentheses(r problem.Rand, p problem.Params) (parentheses, error) {
	rd := p.Read()
	minA, maxA := rd.Range("minCoefficient", "maxCoefficient")
	minB, maxB := rd.Range("minConstant", "maxConstant")
	minC, maxC := rd.Range("minSolution", "maxSolution")
	if err := rd.Err(); err != nil {
		return parentheses{}, err
	}
	a, err := nonZero(r, minA, maxA, "minCoefficient")
	if err != nil {
		return parentheses{}, err
	}
	return parentheses{a: a, b: r.Int(minB, maxB), c: r.Int(minC, maxC), x: problem.Variable(r)}, nil
}

func (s parentheses) solution() problem.Fraction {
	return problem.NewFraction(s.c-s.a*s.b, s.a)
}

func (s parentheses) problem() problem.Problem {
	x := s.solution()
	rest := s.c - s.a*s.b
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text(fmt.Sprintf("Solve for %s:", s.x)),
			problem.Formula(fmt.Sprintf("%s = %d", times(s.a, shift(s.x, -s.b)), s.c)),
		},
		Steps: []problem.Block{
			problem.Text("Distribute the coefficient across the parentheses."),
			problem.Formula(fmt.Sprintf("%s = %d", expr(s.a, s.x, s.a*s.b), s.c)),
			problem.Text(stepSubtractConstant),
			problem.Formula(fmt.Sprintf("%s = %d", term(s.a, s.x), rest)),
			problem.Text(stepDivideCoef),
			problem.Formula(fmt.Sprintf(`%s = \frac{%d}{%d}`, s.x, rest, s.a)),
			problem.Text(fmt.Sprintf("Calculate the value of %s.", s.x)),
			problem.Formula(fmt.Sprintf("%s = %s", s.x, x.Latex())),
		},
		Solution: []problem.Solution{problem.Numeric("", x)},
	}
}

// WithParentheses generates a(x + b) = c.
func WithParentheses(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawParentheses(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.problem(), nil
}

// fractions is a drawn instance of ax/b = c.
type fractions struct {
	a, b, c int
	x       string
}

func drawFractions(r problem.Rand, p problem.Params) (fractions, error) {
	rd := p.Read()
	minA, maxA := rd.Range("minCoefficient", "maxCoefficient")
	minB, maxB := rd.Range("minDenominator", "maxDenominator")
	minC, maxC := rd.Range("minSolution", "maxSolution")
	if err := rd.Err(); err != nil {
		return fractions{}, err
	}
	a, err := nonZero(r, minA, maxA, "minCoefficient")
	if err != nil {
		return fractions{}, err
	}
	b, err := nonZero(r, minB, maxB, "minDenominator")
	if err != nil {
		return fractions{}, err
	}
	return fractions{a: a, b: b, c: r.Int(minC, maxC), x: problem.Variable(r)}, nil
}

func (s fractions) solution() problem.Fraction {
	return problem.NewFraction(s.b*s.c, s.a)
}

func (s fractions) problem() problem.Problem {
	x := s.solution()
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text(fmt.Sprintf("Solve for %s:", s.x)),
			problem.Formula(fmt.Sprintf(`\frac{%s}{%d} = %d`, term(s.a, s.x), s.b, s.c)),
		},
		Steps: []problem.Block{
			problem.Text("Multiply both sides of the equation by the denominator."),
			problem.Formula(fmt.Sprintf(`%s = %d \cdot %d`, term(s.a, s.x), s.b, s.c)),
			problem.Text(stepDivideCoef),
			problem.Formula(fmt.Sprintf(`%s = \frac{%d \cdot %d}{%d}`, s.x, s.b, s.c, s.a)),
			problem.Text(fmt.Sprintf("Calculate the value of %s.", s.x)),
			problem.Formula(fmt.Sprintf("%s = %s", s.x, x.Latex())),
		},
		Solution: []problem.Solution{problem.Numeric("", x)},
	}
}

// WithFractions generates ax/b = c.
func WithFractions(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawFractions(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.problem(), nil
}

// absolute is a drawn instance of |ax + b| = c with c >= 0.
type absolute struct {
	a, b, c int
	x       string
}

func drawAbsolute(r problem.Rand, p problem.Params) (absolute, error) {
	rd := p.Read()
	minA, maxA := rd.Range("minCoefficient", "maxCoefficient")
	minB, maxB := rd.Range("minConstant", "maxConstant")
	minC, maxC := rd.Range("minSolution", "maxSolution")
	if err := rd.Err(); err != nil {
		return absolute{}, err
	}
	if maxC < 0 {
		return absolute{}, fmt.Errorf("%w %q: an absolute value cannot equal a negative number", problem.ErrInvalidParam, "maxSolution")
	}
	a, err := nonZero(r, minA, maxA, "minCoefficient")
	if err != nil {
		return absolute{}, err
	}
	return absolute{a: a, b: r.Int(minB, maxB), c: r.Int(max(minC, 0), maxC), x: problem.Variable(r)}, nil
}

// solutions returns the non-negative case then the negative case.
func (s absolute) solutions() (problem.Fraction, problem.Fraction) {
	return problem.NewFraction(s.c-s.b, s.a), problem.NewFraction(-s.c-s.b, s.a)
}

func (s absolute) problem() problem.Problem {
	x1, x2 := s.solutions()
	inner := expr(s.a, s.x, s.b)
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text(fmt.Sprintf("Solve for %s:", s.x)),
			problem.Formula(fmt.Sprintf("|%s| = %d", inner, s.c)),
		},
		Steps: []problem.Block{
			problem.Text("Consider the two cases for the absolute value expression."),
			problem.Text("Case 1: The expression inside the absolute value is positive or zero."),
			problem.Formula(fmt.Sprintf("%s = %d", inner, s.c)),
			problem.Text(stepSubtractConstant),
			problem.Formula(fmt.Sprintf("%s = %d", term(s.a, s.x), s.c-s.b)),
			problem.Text(stepDivideCoef),
			problem.Formula(fmt.Sprintf(`%s = \frac{%d}{%d}`, s.x, s.c-s.b, s.a)),
			problem.Text("Case 2: The expression inside the absolute value is negative."),
			problem.Formula(fmt.Sprintf("%s = %d", inner, -s.c)),
			problem.Text(stepSubtractConstant),
			problem.Formula(fmt.Sprintf("%s = %d", term(s.a, s.x), -s.c-s.b)),
			problem.Text(stepDivideCoef),
			problem.Formula(fmt.Sprintf(`%s = \frac{%d}{%d}`, s.x, -s.c-s.b, s.a)),
			problem.Text(fmt.Sprintf("Calculate the two possible values of %s.", s.x)),
			problem.Formula(fmt.Sprintf("%s = %s", s.x, x1.Latex())),
			problem.Formula(fmt.Sprintf("%s = %s", s.x, x2.Latex())),
		},
		Solution: []problem.Solution{
			problem.Numeric("", x1),
			problem.Numeric("", x2),
		},
	}
}

// WithAbsoluteValue generates |ax + b| = c and returns both solutions.
func WithAbsoluteValue(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawAbsolute(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.problem(), nil
}

// bothSides is a drawn instance of ax + b = cx + d with a != c.
type bothSides struct {
	a, b, c, d int
	x          string
}

func drawBothSides(r problem.Rand, p problem.Params) (bothSides, error) {
	rd := p.Read()
	minA, maxA := rd.Range("minCoefficient", "maxCoefficient")
	minB, maxB := rd.Range("minConstant", "maxConstant")
	if err := rd.Err(); err != nil {
		return bothSides{}, err
	}
	a, err := nonZero(r, minA, maxA, "minCoefficient")
	if err != nil {
		return bothSides{}, err
	}
	c, ok := problem.Except(r, minA, maxA, a)
	if !ok {
		return bothSides{}, fmt.Errorf("%w %q: need two distinct coefficients", problem.ErrInvalidParam, "minCoefficient")
	}
	return bothSides{a: a, b: r.Int(minB, maxB), c: c, d: r.Int(minB, maxB), x: problem.Variable(r)}, nil
}

func (s bothSides) solution() problem.Fraction {
	return problem.NewFraction(s.d-s.b, s.a-s.c)
}

func (s bothSides) problem() problem.Problem {
	x := s.solution()
	k := s.a - s.c
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text(fmt.Sprintf("Solve for %s:", s.x)),
			problem.Formula(fmt.Sprintf("%s = %s", expr(s.a, s.x, s.b), expr(s.c, s.x, s.d))),
		},
		Steps: []problem.Block{
			problem.Text("Move the variable terms to the left side of the equation."),
			problem.Formula(fmt.Sprintf("%s = %d", expr(k, s.x, s.b), s.d)),
			problem.Text(stepSubtractConstant),
			problem.Formula(fmt.Sprintf("%s = %d", term(k, s.x), s.d-s.b)),
			problem.Text(stepDivideCoef),
			problem.Formula(fmt.Sprintf(`%s = \frac{%d}{%d}`, s.x, s.d-s.b, k)),
			problem.Text(fmt.Sprintf("Calculate the value of %s.", s.x)),
			problem.Formula(fmt.Sprintf("%s = %s", s.x, x.Latex())),
		},
		Solution: []problem.Solution{problem.Numeric("", x)},
	}
}

// VariablesOnBothSides generates ax + b = cx + d.
func VariablesOnBothSides(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawBothSides(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.problem(), nil
}
