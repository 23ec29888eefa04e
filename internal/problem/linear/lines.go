package linear

import (
	"fmt"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

// slopeIntercept is a drawn instance of k·y = k·m·x + k·b. k is 1 when the
// equation is presented simplified.
type slopeIntercept struct {
	m, b, k int
	mcq     bool
	offsets [4]int // distractor offsets: slope up, slope down, intercept up, intercept down
}

func drawSlopeIntercept(r problem.Rand, p problem.Params) (slopeIntercept, error) {
	rd := p.Read()
	mcq := rd.Bool("isMCQ")
	simplified := rd.Bool("isSimplified")
	minM, maxM := rd.Range("minSlope", "maxSlope")
	minB, maxB := rd.Range("minYIntercept", "maxYIntercept")
	if err := rd.Err(); err != nil {
		return slopeIntercept{}, err
	}
	s := slopeIntercept{m: r.Int(minM, maxM), b: r.Int(minB, maxB), k: 1, mcq: mcq}
	if !simplified {
		s.k = r.Int(2, 5)
	}
	if mcq {
		for i := range s.offsets {
			s.offsets[i] = r.Int(2, 5)
		}
	}
	return s, nil
}

func (s slopeIntercept) equation() string {
	if s.k == 1 {
		return "y = " + expr(s.m, "x", s.b)
	}
	return fmt.Sprintf("%s = %s", term(s.k, "y"), expr(s.k*s.m, "x", s.k*s.b))
}

func (s slopeIntercept) problem(r problem.Rand) problem.Problem {
	steps := []problem.Block{}
	if s.k > 1 {
		steps = append(steps, problem.Text(fmt.Sprintf("Simplify the equation by dividing all terms by %d.", s.k)))
	} else {
		steps = append(steps, problem.Text("The equation is already in slope-intercept form."))
	}
	steps = append(steps,
		problem.Formula("y = "+expr(s.m, "x", s.b)),
		problem.Text(fmt.Sprintf("The slope of the line is %d and the y-intercept is %d.", s.m, s.b)),
	)

	if !s.mcq {
		return problem.Problem{
			Problem: []problem.Block{
				problem.Text("Write the equation in slope-intercept form, and identify the slope and y-intercept."),
				problem.Formula(s.equation()),
			},
			Steps: steps,
			Solution: []problem.Solution{
				problem.Integer("Slope", s.m),
				problem.Integer("Y-intercept", s.b),
			},
		}
	}

	label := func(m, b int) string { return fmt.Sprintf("Slope: %d, Y-intercept: %d", m, b) }
	correct := label(s.m, s.b)
	// The negated line coincides with the answer at the origin and can
	// coincide with an offset distractor, so two spares follow it.
	distractors := distinctChoices(3, correct,
		label(s.m+s.offsets[0], s.b+s.offsets[2]),
		label(s.m-s.offsets[1], s.b-s.offsets[3]),
		label(-s.m, -s.b),
		label(s.m+s.offsets[1], s.b-s.offsets[3]),
		label(s.m-s.offsets[0], s.b+s.offsets[2]),
	)
	choices, answer := multipleChoice(r, correct, distractors...)
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text("Which of the following represents the slope and y-intercept of the line?"),
			problem.Formula(s.equation()),
			problem.Options(choices),
		},
		Steps:    steps,
		Solution: []problem.Solution{problem.ChoiceAnswer(answer)},
	}
}

// SlopeInterceptForm asks for the slope and y-intercept of y = mx + b,
// optionally scaled by a multiplier in [2, 5] and optionally as a
// four-choice question.
func SlopeInterceptForm(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawSlopeIntercept(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.problem(r), nil
}

// pointSlope is a drawn instance of k(y - y1) = k·m(x - x1).
type pointSlope struct {
	m, x1, y1, k int
	mcq          bool
	offsets      [2]int
}

func drawPointSlope(r problem.Rand, p problem.Params) (pointSlope, error) {
	rd := p.Read()
	mcq := rd.Bool("isMCQ")
	simplified := rd.Bool("isSimplified")
	minM, maxM := rd.Range("minSlope", "maxSlope")
	minP, maxP := rd.Range("minPoint", "maxPoint")
	if err := rd.Err(); err != nil {
		return pointSlope{}, err
	}
	s := pointSlope{m: r.Int(minM, maxM), x1: r.Int(minP, maxP), y1: r.Int(minP, maxP), k: 1, mcq: mcq}
	if !simplified {
		s.k = r.Int(2, 5)
	}
	if mcq {
		s.offsets[0] = r.Int(1, 3)
		s.offsets[1] = r.Int(1, 3)
	}
	return s, nil
}

func (s pointSlope) simplified() string {
	return fmt.Sprintf("%s = %s", shift("y", s.y1), times(s.m, shift("x", s.x1)))
}

func (s pointSlope) equation() string {
	if s.k == 1 {
		return s.simplified()
	}
	left := term(s.k, "y")
	if s.y1 != 0 {
		left += plus(-s.k * s.y1)
	}
	return fmt.Sprintf("%s = %s", left, times(s.k*s.m, shift("x", s.x1)))
}

func (s pointSlope) problem(r problem.Rand) problem.Problem {
	steps := []problem.Block{}
	if s.k > 1 {
		steps = append(steps, problem.Text(fmt.Sprintf("Simplify the equation by dividing all terms by %d.", s.k)))
	} else {
		steps = append(steps, problem.Text("The equation is already in point-slope form."))
	}
	steps = append(steps,
		problem.Formula(s.simplified()),
		problem.Text(fmt.Sprintf("The slope of the line is %d and the point is %s.", s.m, point(s.x1, s.y1))),
	)

	if !s.mcq {
		return problem.Problem{
			Problem: []problem.Block{
				problem.Text("Write the equation in point-slope form and identify the slope and the point."),
				problem.Formula(s.equation()),
			},
			Steps: steps,
			Solution: []problem.Solution{
				problem.Integer("Slope", s.m),
				problem.TextAnswer("Point (x1, y1)", point(s.x1, s.y1)),
			},
		}
	}

	label := func(m int, pt string) string { return fmt.Sprintf("Slope: %d, Point: %s", m, pt) }
	choices, answer := multipleChoice(r,
		label(s.m, point(s.x1, s.y1)),
		label(s.m+s.offsets[0], point(s.x1+1, s.y1)),
		label(s.m-s.offsets[1], point(s.x1, s.y1+1)),
		label(-s.m, point(s.x1-1, s.y1-1)),
	)
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text("Which of the following represents the slope and point of the line?"),
			problem.Formula(s.equation()),
			problem.Options(choices),
		},
		Steps:    steps,
		Solution: []problem.Solution{problem.ChoiceAnswer(answer)},
	}
}

// PointSlopeForm asks for the slope and point of y - y1 = m(x - x1).
func PointSlopeForm(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawPointSlope(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.problem(r), nil
}

// twoPoints is a drawn pair of points with distinct x coordinates.
type twoPoints struct {
	x1, y1, x2, y2 int
}

func drawTwoPoints(r problem.Rand, p problem.Params) (twoPoints, error) {
	rd := p.Read()
	lo, hi := rd.Range("minPoint", "maxPoint")
	if err := rd.Err(); err != nil {
		return twoPoints{}, err
	}
	x1 := r.Int(lo, hi)
	x2, ok := problem.Except(r, lo, hi, x1)
	if !ok {
		return twoPoints{}, fmt.Errorf("%w %q: need two distinct x coordinates", problem.ErrInvalidParam, "minPoint")
	}
	return twoPoints{x1: x1, y1: r.Int(lo, hi), x2: x2, y2: r.Int(lo, hi)}, nil
}

func (s twoPoints) slope() problem.Fraction {
	return problem.NewFraction(s.y2-s.y1, s.x2-s.x1)
}

func (s twoPoints) problem() problem.Problem {
	m := s.slope()
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text(fmt.Sprintf("Find the slope of the line passing through the points %s and %s.",
				point(s.x1, s.y1), point(s.x2, s.y2))),
		},
		Steps: []problem.Block{
			problem.Text("Use the slope formula."),
			problem.Formula(`m = \frac{y_2 - y_1}{x_2 - x_1}`),
			problem.Formula(fmt.Sprintf(`m = \frac{%d - (%d)}{%d - (%d)}`, s.y2, s.y1, s.x2, s.x1)),
			problem.Formula(fmt.Sprintf(`m = \frac{%d}{%d}`, s.y2-s.y1, s.x2-s.x1)),
			problem.Text("Simplify the fraction."),
			problem.Formula("m = " + m.Latex()),
		},
		Solution: []problem.Solution{problem.Numeric("Slope", m)},
	}
}

// SlopeFromTwoPoints asks for the slope through two points.
func SlopeFromTwoPoints(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawTwoPoints(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.problem(), nil
}

// standardLine is a drawn instance of Ax + By = C.
type standardLine struct {
	a, b, c int
}

func (s standardLine) equation() string {
	return fmt.Sprintf("%s = %d", expr2(s.a, "x", s.b, "y"), s.c)
}

func drawStandardLine(r problem.Rand, p problem.Params, nonZeroA bool) (standardLine, error) {
	rd := p.Read()
	minA, maxA := rd.Range("minCoefficient", "maxCoefficient")
	minC, maxC := rd.Range("minConstant", "maxConstant")
	if err := rd.Err(); err != nil {
		return standardLine{}, err
	}
	var a int
	if nonZeroA {
		var err error
		if a, err = nonZero(r, minA, maxA, "minCoefficient"); err != nil {
			return standardLine{}, err
		}
	} else {
		a = r.Int(minA, maxA)
	}
	b, err := nonZero(r, minA, maxA, "minCoefficient")
	if err != nil {
		return standardLine{}, err
	}
	return standardLine{a: a, b: b, c: r.Int(minC, maxC)}, nil
}

func (s standardLine) intercepts() (problem.Fraction, problem.Fraction) {
	return problem.NewFraction(s.c, s.a), problem.NewFraction(s.c, s.b)
}

func (s standardLine) interceptsProblem() problem.Problem {
	xi, yi := s.intercepts()
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text("Find the x-intercept and the y-intercept of the line."),
			problem.Formula(s.equation()),
		},
		Steps: []problem.Block{
			problem.Text("Set y = 0 and solve for x."),
			problem.Formula(fmt.Sprintf("%s = %d", term(s.a, "x"), s.c)),
			problem.Formula("x = " + xi.Latex()),
			problem.Text("Set x = 0 and solve for y."),
			problem.Formula(fmt.Sprintf("%s = %d", term(s.b, "y"), s.c)),
			problem.Formula("y = " + yi.Latex()),
		},
		Solution: []problem.Solution{
			problem.Numeric("X-intercept", xi),
			problem.Numeric("Y-intercept", yi),
		},
	}
}

// FindIntercepts asks for both intercepts of Ax + By = C.
func FindIntercepts(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawStandardLine(r, p, true)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.interceptsProblem(), nil
}

// slopeIntercept returns m = -A/B and b = C/B.
func (s standardLine) slopeIntercept() (problem.Fraction, problem.Fraction) {
	return problem.NewFraction(-s.a, s.b), problem.NewFraction(s.c, s.b)
}

func (s standardLine) conversionProblem() problem.Problem {
	m, b := s.slopeIntercept()
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text("Rewrite the equation in slope-intercept form and identify the slope and y-intercept."),
			problem.Formula(s.equation()),
		},
		Steps: []problem.Block{
			problem.Text("Move the x term to the right side of the equation."),
			problem.Formula(fmt.Sprintf("%s = %s", term(s.b, "y"), expr(-s.a, "x", s.c))),
			problem.Text(fmt.Sprintf("Divide every term by %d.", s.b)),
			problem.Formula("y = " + fracExpr(m, "x", b)),
		},
		Solution: []problem.Solution{
			problem.Numeric("Slope", m),
			problem.Numeric("Y-intercept", b),
		},
	}
}

// StandardToSlopeIntercept rewrites Ax + By = C as y = mx + b.
func StandardToSlopeIntercept(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawStandardLine(r, p, false)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.conversionProblem(), nil
}

const (
	relationParallel      = "parallel"
	relationPerpendicular = "perpendicular"
)

// related is a drawn line y = mx + b and the requested relation.
type related struct {
	m, b     int
	relation string
}

func drawRelated(r problem.Rand, p problem.Params) (related, error) {
	rd := p.Read()
	parallel := rd.Bool("includeParallel")
	perpendicular := rd.Bool("includePerpendicular")
	minM, maxM := rd.Range("minSlope", "maxSlope")
	minB, maxB := rd.Range("minYIntercept", "maxYIntercept")
	if err := rd.Err(); err != nil {
		return related{}, err
	}
	m, err := nonZero(r, minM, maxM, "minSlope")
	if err != nil {
		return related{}, err
	}
	var relations []string
	if parallel {
		relations = append(relations, relationParallel)
	}
	if perpendicular {
		relations = append(relations, relationPerpendicular)
	}
	relation := relationParallel
	if len(relations) > 0 {
		relation = problem.Pick(r, relations)
	}
	return related{m: m, b: r.Int(minB, maxB), relation: relation}, nil
}

func (s related) answer() problem.Fraction {
	if s.relation == relationPerpendicular {
		return problem.NewFraction(-1, s.m)
	}
	return problem.NewFraction(s.m, 1)
}

func (s related) problem() problem.Problem {
	ans := s.answer()
	steps := []problem.Block{
		problem.Text(fmt.Sprintf("The slope of the given line is %d.", s.m)),
	}
	if s.relation == relationPerpendicular {
		steps = append(steps,
			problem.Text("Perpendicular slopes are negative reciprocals of each other."),
			problem.Formula(fmt.Sprintf(`m_{\perp} = -\frac{1}{%d} = %s`, s.m, ans.Latex())),
		)
	} else {
		steps = append(steps,
			problem.Text("Parallel lines have equal slopes."),
			problem.Formula(fmt.Sprintf(`m_{\parallel} = %s`, ans.Latex())),
		)
	}
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text(fmt.Sprintf("Find the slope of a line %s to the given line.", s.relation)),
			problem.Formula("y = " + expr(s.m, "x", s.b)),
		},
		Steps:    steps,
		Solution: []problem.Solution{problem.Numeric("Slope", ans)},
	}
}

// ParallelPerpendicular asks for the slope of a parallel or perpendicular line.
func ParallelPerpendicular(r problem.Rand, p problem.Params) (problem.Problem, error) {
	s, err := drawRelated(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return s.problem(), nil
}
