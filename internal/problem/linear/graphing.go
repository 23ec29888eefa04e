package linear

import (
	"fmt"
	"math"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

// Line forms offered by the graphing generator.
const (
	FormStandard       = "standard"
	FormSlopeIntercept = "slopeIntercept"
	FormPointSlope     = "pointSlope"
)

// DefaultBounds is the viewport every graph starts from.
var DefaultBounds = problem.Bounds{Left: -10, Right: 10, Bottom: -10, Top: 10}

// boundsPadding is the margin kept around an intercept that falls outside
// the default viewport.
const boundsPadding = 2

// graphLine is a drawn line in one of the three forms. Unused fields stay zero.
type graphLine struct {
	form   string
	m, b   int // slope-intercept
	x1, y1 int // point-slope, and the lattice point a standard-form line passes through
	a, bb  int // standard: a·x + bb·y = c
	c      int
}

func drawGraphLine(r problem.Rand, p problem.Params) (graphLine, error) {
	rd := p.Read()
	var forms []string
	if rd.Bool("includeStandard") {
		forms = append(forms, FormStandard)
	}
	if rd.Bool("includeSlopeIntercept") {
		forms = append(forms, FormSlopeIntercept)
	}
	if rd.Bool("includePointSlope") {
		forms = append(forms, FormPointSlope)
	}
	if err := rd.Err(); err != nil {
		return graphLine{}, err
	}
	g := graphLine{form: FormStandard}
	if len(forms) > 0 {
		g.form = problem.Pick(r, forms)
	}

	switch g.form {
	case FormSlopeIntercept:
		g.m, g.b = r.Int(-5, 5), r.Int(-10, 10)
	case FormPointSlope:
		g.m, g.x1, g.y1 = r.Int(-5, 5), r.Int(-5, 5), r.Int(-10, 10)
	default:
		g.a = r.Int(-5, 5)
		g.bb, _ = problem.NonZero(r, -5, 5)
		g.x1, g.y1 = r.Int(-5, 5), r.Int(-10, 10)
		g.c = g.a*g.x1 + g.bb*g.y1
	}
	return g, nil
}

func (g graphLine) equation() string {
	switch g.form {
	case FormSlopeIntercept:
		return "y = " + expr(g.m, "x", g.b)
	case FormPointSlope:
		return fmt.Sprintf("%s = %s", shift("y", g.y1), times(g.m, shift("x", g.x1)))
	default:
		return fmt.Sprintf("%s = %d", expr2(g.a, "x", g.bb, "y"), g.c)
	}
}

// intercepts returns the x and y intercepts. An intercept is nil when the
// coefficient it would be divided by is zero.
func (g graphLine) intercepts() (x, y *float64) {
	ptr := func(q problem.Fraction) *float64 {
		v := q.Float()
		return &v
	}
	switch g.form {
	case FormSlopeIntercept:
		y = ptr(problem.NewFraction(g.b, 1))
		if g.m != 0 {
			x = ptr(problem.NewFraction(-g.b, g.m))
		}
	case FormPointSlope:
		y = ptr(problem.NewFraction(g.y1-g.m*g.x1, 1))
		if g.m != 0 {
			x = ptr(problem.NewFraction(g.m*g.x1-g.y1, g.m))
		}
	default:
		if g.a != 0 {
			x = ptr(problem.NewFraction(g.c, g.a))
		}
		if g.bb != 0 {
			y = ptr(problem.NewFraction(g.c, g.bb))
		}
	}
	return x, y
}

// GraphBounds grows the default viewport to show both intercepts with
// padding, then widens the narrower axis so the result is square. Nil or
// NaN intercepts are ignored.
func GraphBounds(xIntercept, yIntercept *float64) problem.Bounds {
	b := DefaultBounds
	if v, ok := finite(xIntercept); ok {
		b.Left = math.Min(b.Left, math.Floor(v-boundsPadding))
		b.Right = math.Max(b.Right, math.Ceil(v+boundsPadding))
	}
	if v, ok := finite(yIntercept); ok {
		b.Bottom = math.Min(b.Bottom, math.Floor(v-boundsPadding))
		b.Top = math.Max(b.Top, math.Ceil(v+boundsPadding))
	}

	w, h := b.Width(), b.Height()
	switch {
	case w > h:
		d := w - h
		b.Bottom -= math.Floor(d / 2)
		b.Top += math.Ceil(d / 2)
	case h > w:
		d := h - w
		b.Left -= math.Floor(d / 2)
		b.Right += math.Ceil(d / 2)
	}
	return b
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func (g graphLine) problem() problem.Problem {
	xi, yi := g.intercepts()
	line := problem.Graph{
		Form:       g.form,
		Equation:   g.equation(),
		XIntercept: xi,
		YIntercept: yi,
		MathBounds: GraphBounds(xi, yi),
	}
	return problem.Problem{
		Problem: []problem.Block{
			problem.Text("Graph the following linear equation:"),
			problem.Formula(line.Equation),
			problem.Grid(line.Form, line.MathBounds),
		},
		Steps:    []problem.Block{},
		Solution: []problem.Solution{problem.GraphAnswer(line)},
	}
}

// GraphingLinearEquations asks the student to plot a line given in one of
// the enabled forms, picked uniformly per problem.
func GraphingLinearEquations(r problem.Rand, p problem.Params) (problem.Problem, error) {
	g, err := drawGraphLine(r, p)
	if err != nil {
		return problem.Problem{}, err
	}
	return g.problem(), nil
}
