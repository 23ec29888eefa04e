package linear

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

func equationParams() problem.Params {
	return problem.Params{
		"minCoefficient": -10, "maxCoefficient": 10,
		"minConstant": -10, "maxConstant": 10,
		"minSolution": -10, "maxSolution": 10,
		"minDenominator": 2, "maxDenominator": 9,
	}
}

func lineParams(mcq, simplified bool) problem.Params {
	return problem.Params{
		"minSlope": -5, "maxSlope": 5,
		"minYIntercept": -10, "maxYIntercept": 10,
		"minPoint": -10, "maxPoint": 10,
		"isMCQ": mcq, "isSimplified": simplified,
	}
}

func frac(n int) problem.Fraction { return problem.NewFraction(n, 1) }

func TestStandardForm_IntegerSolution(t *testing.T) {
	r := problem.NewRand(11)
	for i := 0; i < 500; i++ {
		s, err := drawStandardForm(r, equationParams())
		if err != nil {
			t.Fatalf("drawStandardForm() error = %v", err)
		}
		x := s.solution()
		if !x.IsInteger() {
			t.Fatalf("%+v: solution %v is not an integer", s, x)
		}
		if s.a*x.Num()+s.b != s.c {
			t.Fatalf("%+v: %d·%d + %d != %d", s, s.a, x.Num(), s.b, s.c)
		}
	}
}

func TestWithParentheses_Substitution(t *testing.T) {
	r := problem.NewRand(12)
	for i := 0; i < 500; i++ {
		s, err := drawParentheses(r, equationParams())
		if err != nil {
			t.Fatalf("drawParentheses() error = %v", err)
		}
		x := s.solution()
		if got := frac(s.a).Mul(x.Add(frac(s.b))); got != frac(s.c) {
			t.Fatalf("%+v: a(x + b) = %v, want %d", s, got, s.c)
		}
	}
}

func TestWithFractions_Substitution(t *testing.T) {
	r := problem.NewRand(13)
	for i := 0; i < 500; i++ {
		s, err := drawFractions(r, equationParams())
		if err != nil {
			t.Fatalf("drawFractions() error = %v", err)
		}
		if got := frac(s.a).Mul(s.solution()).Div(frac(s.b)); got != frac(s.c) {
			t.Fatalf("%+v: ax/b = %v, want %d", s, got, s.c)
		}
	}
}

func TestWithAbsoluteValue_TwoSolutions(t *testing.T) {
	r := problem.NewRand(14)
	for i := 0; i < 500; i++ {
		s, err := drawAbsolute(r, equationParams())
		if err != nil {
			t.Fatalf("drawAbsolute() error = %v", err)
		}
		if s.c < 0 {
			t.Fatalf("c = %d, want non-negative", s.c)
		}
		x1, x2 := s.solutions()
		for _, x := range []problem.Fraction{x1, x2} {
			v := frac(s.a).Mul(x).Add(frac(s.b))
			if v.Numerator != s.c || v.Denominator != 1 {
				t.Fatalf("%+v: |a·%v + b| = %v, want %d", s, x, v, s.c)
			}
		}
		if got := len(s.problem().Solution); got != 2 {
			t.Fatalf("len(Solution) = %d, want 2", got)
		}
	}
}

func TestWithAbsoluteValue_NegativeRange(t *testing.T) {
	p := equationParams()
	p["minSolution"], p["maxSolution"] = -5, -1
	_, err := WithAbsoluteValue(problem.NewRand(1), p)
	if !errors.Is(err, problem.ErrInvalidParam) {
		t.Errorf("WithAbsoluteValue() error = %v, want ErrInvalidParam", err)
	}
}

func TestVariablesOnBothSides_Substitution(t *testing.T) {
	r := problem.NewRand(15)
	for i := 0; i < 500; i++ {
		s, err := drawBothSides(r, equationParams())
		if err != nil {
			t.Fatalf("drawBothSides() error = %v", err)
		}
		x := s.solution()
		left := frac(s.a).Mul(x).Add(frac(s.b))
		right := frac(s.c).Mul(x).Add(frac(s.d))
		if left != right {
			t.Fatalf("%+v: %v != %v", s, left, right)
		}
	}
}

func TestGenerators_InvalidRange(t *testing.T) {
	p := equationParams()
	p["minCoefficient"], p["maxCoefficient"] = 5, 1
	if _, err := StandardForm(problem.NewRand(1), p); !errors.Is(err, problem.ErrInvalidParam) {
		t.Errorf("StandardForm() error = %v, want ErrInvalidParam", err)
	}

	p = equationParams()
	p["minCoefficient"], p["maxCoefficient"] = 0, 0
	if _, err := StandardForm(problem.NewRand(1), p); !errors.Is(err, problem.ErrInvalidParam) {
		t.Errorf("StandardForm() with zero-only coefficient error = %v, want ErrInvalidParam", err)
	}

	if _, err := SlopeInterceptForm(problem.NewRand(1), problem.Params{}); !errors.Is(err, problem.ErrInvalidParam) {
		t.Errorf("SlopeInterceptForm() with no params error = %v, want ErrInvalidParam", err)
	}
}

func TestSlopeIntercept_NotSimplifiedRecoversLine(t *testing.T) {
	r := problem.NewRand(21)
	for i := 0; i < 200; i++ {
		s, err := drawSlopeIntercept(r, lineParams(false, false))
		if err != nil {
			t.Fatalf("drawSlopeIntercept() error = %v", err)
		}
		if s.k < 2 || s.k > 5 {
			t.Fatalf("k = %d, want [2, 5]", s.k)
		}
		// k·y = (k·m)x + k·b divided through by k
		if (s.k*s.m)/s.k != s.m || (s.k*s.b)/s.k != s.b {
			t.Fatalf("%+v does not reduce to the drawn line", s)
		}
		want := fmt.Sprintf("%dy = ", s.k)
		if eq := s.equation(); !strings.HasPrefix(eq, want) {
			t.Fatalf("equation() = %q, want prefix %q", eq, want)
		}
	}
}

func TestSlopeIntercept_Simplified(t *testing.T) {
	s := slopeIntercept{m: -2, b: 3, k: 1}
	if got := s.equation(); got != "y = -2x + 3" {
		t.Errorf("equation() = %q", got)
	}
	p := s.problem(problem.NewRand(1))
	if len(p.Solution) != 2 || *p.Solution[0].Decimal != -2 || *p.Solution[1].Decimal != 3 {
		t.Errorf("Solution = %+v", p.Solution)
	}
}

func TestPointSlope_Equation(t *testing.T) {
	tests := []struct {
		s    pointSlope
		want string
	}{
		{pointSlope{m: 2, x1: 3, y1: -4, k: 1}, "y + 4 = 2(x - 3)"},
		{pointSlope{m: -1, x1: -2, y1: 5, k: 1}, "y - 5 = -(x + 2)"},
		{pointSlope{m: 3, x1: 0, y1: 0, k: 1}, "y = 3x"},
		{pointSlope{m: 2, x1: 3, y1: -4, k: 2}, "2y + 8 = 4(x - 3)"},
	}
	for _, tt := range tests {
		if got := tt.s.equation(); got != tt.want {
			t.Errorf("%+v.equation() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestMultipleChoice_Integrity(t *testing.T) {
	gens := map[string]func(problem.Rand, problem.Params) (problem.Problem, error){
		"slopeIntercept": SlopeInterceptForm,
		"pointSlope":     PointSlopeForm,
	}
	for name, gen := range gens {
		t.Run(name, func(t *testing.T) {
			r := problem.NewRand(31)
			for i := 0; i < 100; i++ {
				p, err := gen(r, lineParams(true, i%2 == 0))
				if err != nil {
					t.Fatalf("generate error = %v", err)
				}
				var opts *problem.Block
				for j := range p.Problem {
					if p.Problem[j].Type == problem.BlockOptions {
						opts = &p.Problem[j]
					}
				}
				if opts == nil || len(opts.Choices) != 4 {
					t.Fatalf("options block = %+v, want 4 choices", opts)
				}
				if len(p.Solution) != 1 || p.Solution[0].Type != problem.SolutionChoice {
					t.Fatalf("Solution = %+v, want one choice", p.Solution)
				}
				if idx := *p.Solution[0].Choice; idx < 0 || idx > 3 {
					t.Fatalf("choice index = %d", idx)
				}
				data, err := json.Marshal(p)
				if err != nil {
					t.Fatalf("Marshal() error = %v", err)
				}
				if strings.Contains(string(data), "correct") {
					t.Fatalf("serialized problem leaks a correct marker: %s", data)
				}
			}
		})
	}
}

func TestMultipleChoice_AnswerIndex(t *testing.T) {
	r := problem.NewRand(5)
	for i := 0; i < 100; i++ {
		choices, answer := multipleChoice(r, "right", "w1", "w2", "w3")
		if choices[answer].Value != "right" {
			t.Fatalf("choices[%d] = %q, want right", answer, choices[answer].Value)
		}
	}
}

func TestMultipleChoice_DistinctChoices(t *testing.T) {
	p := lineParams(true, true)
	p["minSlope"], p["maxSlope"] = 0, 0
	p["minYIntercept"], p["maxYIntercept"] = 0, 0

	r := problem.NewRand(17)
	for i := 0; i < 50; i++ {
		got, err := SlopeInterceptForm(r, p)
		if err != nil {
			t.Fatalf("SlopeInterceptForm() error = %v", err)
		}
		choices := got.Problem[2].Choices
		seen := map[string]bool{}
		for _, c := range choices {
			if seen[c.Value] {
				t.Fatalf("choices = %+v, %q appears twice", choices, c.Value)
			}
			seen[c.Value] = true
		}
		if len(choices) != 4 {
			t.Fatalf("len(choices) = %d, want 4", len(choices))
		}
		if answer := *got.Solution[0].Choice; choices[answer].Value != "Slope: 0, Y-intercept: 0" {
			t.Fatalf("choices[%d] = %q, want the origin line", answer, choices[answer].Value)
		}
	}
}

func TestDistinctChoices(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       []string
	}{
		{"all distinct", []string{"a", "b", "c", "d"}, []string{"a", "b", "c"}},
		{"skips correct", []string{"a", "right", "b", "c"}, []string{"a", "b", "c"}},
		{"skips repeats", []string{"a", "a", "b", "a", "c"}, []string{"a", "b", "c"}},
		{"too few", []string{"a", "right"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := distinctChoices(3, "right", tt.candidates...)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("distinctChoices() = %v, want %v", got, tt.want)
			}
		})
	}
}

// countingRand counts Int draws.
type countingRand struct {
	problem.Rand
	ints int
}

func (c *countingRand) Int(min, max int) int {
	c.ints++
	return c.Rand.Int(min, max)
}

func TestDrawStandardLine_DrawsEachCoefficientOnce(t *testing.T) {
	for _, nonZeroA := range []bool{false, true} {
		r := &countingRand{Rand: problem.NewRand(8)}
		s, err := drawStandardLine(r, equationParams(), nonZeroA)
		if err != nil {
			t.Fatalf("drawStandardLine(%v) error = %v", nonZeroA, err)
		}
		if r.ints != 3 {
			t.Errorf("drawStandardLine(%v) drew %d values, want 3", nonZeroA, r.ints)
		}
		if nonZeroA && s.a == 0 {
			t.Errorf("drawStandardLine(true) a = 0")
		}
	}
}

func TestSlopeFromTwoPoints(t *testing.T) {
	r := problem.NewRand(41)
	for i := 0; i < 300; i++ {
		s, err := drawTwoPoints(r, lineParams(false, true))
		if err != nil {
			t.Fatalf("drawTwoPoints() error = %v", err)
		}
		if s.x1 == s.x2 {
			t.Fatalf("%+v: vertical line", s)
		}
		m := s.slope()
		if frac(s.x2 - s.x1).Mul(m) != frac(s.y2-s.y1) {
			t.Fatalf("%+v: slope %v", s, m)
		}
	}
}

func TestFindIntercepts(t *testing.T) {
	s := standardLine{a: 2, b: -3, c: 6}
	x, y := s.intercepts()
	if x != frac(3) || y != frac(-2) {
		t.Errorf("intercepts() = %v, %v, want 3, -2", x, y)
	}
	if got := s.equation(); got != "2x - 3y = 6" {
		t.Errorf("equation() = %q", got)
	}
}

func TestStandardToSlopeIntercept(t *testing.T) {
	s := standardLine{a: 2, b: 4, c: -6}
	m, b := s.slopeIntercept()
	if m != problem.NewFraction(-1, 2) || b != problem.NewFraction(-3, 2) {
		t.Errorf("slopeIntercept() = %v, %v", m, b)
	}
	p := s.conversionProblem()
	last := p.Steps[len(p.Steps)-1].Value
	if last != `y = -\frac{1}{2}x - \frac{3}{2}` {
		t.Errorf("final step = %q", last)
	}
}

func TestParallelPerpendicular(t *testing.T) {
	p := lineParams(false, true)
	p["includeParallel"], p["includePerpendicular"] = false, true
	r := problem.NewRand(51)
	for i := 0; i < 100; i++ {
		s, err := drawRelated(r, p)
		if err != nil {
			t.Fatalf("drawRelated() error = %v", err)
		}
		if s.relation != relationPerpendicular {
			t.Fatalf("relation = %q", s.relation)
		}
		if got := s.answer().Mul(frac(s.m)); got != frac(-1) {
			t.Fatalf("m·m⊥ = %v, want -1", got)
		}
	}
}

func graphParams(standard, slopeIntercept, pointSlope bool) problem.Params {
	return problem.Params{
		"includeStandard":       standard,
		"includeSlopeIntercept": slopeIntercept,
		"includePointSlope":     pointSlope,
	}
}

func TestGraphing_OnlySlopeIntercept(t *testing.T) {
	r := problem.NewRand(61)
	for i := 0; i < 200; i++ {
		p, err := GraphingLinearEquations(r, graphParams(false, true, false))
		if err != nil {
			t.Fatalf("GraphingLinearEquations() error = %v", err)
		}
		g := p.Solution[0].Graph
		if g == nil || g.Form != FormSlopeIntercept {
			t.Fatalf("graph = %+v, want slopeIntercept form", g)
		}
		if g.MathBounds.Width() != g.MathBounds.Height() {
			t.Fatalf("bounds %+v are not square", g.MathBounds)
		}
		if p.Steps == nil || len(p.Steps) != 0 {
			t.Fatalf("Steps = %v, want empty", p.Steps)
		}
	}
}

func TestGraphing_DefaultsToStandard(t *testing.T) {
	g, err := drawGraphLine(problem.NewRand(1), graphParams(false, false, false))
	if err != nil {
		t.Fatalf("drawGraphLine() error = %v", err)
	}
	if g.form != FormStandard {
		t.Errorf("form = %q, want standard", g.form)
	}
}

func TestGraphing_AllFormsSelected(t *testing.T) {
	r := problem.NewRand(71)
	seen := map[string]bool{}
	for i := 0; i < 300; i++ {
		g, err := drawGraphLine(r, graphParams(true, true, true))
		if err != nil {
			t.Fatalf("drawGraphLine() error = %v", err)
		}
		seen[g.form] = true
		b := GraphBounds(g.intercepts())
		if b.Width() != b.Height() {
			t.Fatalf("%+v: bounds %+v are not square", g, b)
		}
	}
	if len(seen) != 3 {
		t.Errorf("forms seen = %v, want all three", seen)
	}
}

func TestGraphing_InterceptGuards(t *testing.T) {
	x, y := graphLine{form: FormSlopeIntercept, m: 0, b: 4}.intercepts()
	if x != nil || y == nil || *y != 4 {
		t.Errorf("horizontal line intercepts = %v, %v", x, y)
	}
	x, y = graphLine{form: FormStandard, a: 0, bb: 2, c: 6}.intercepts()
	if x != nil || y == nil || *y != 3 {
		t.Errorf("standard a=0 intercepts = %v, %v", x, y)
	}
	x, _ = graphLine{form: FormPointSlope, m: 2, x1: 1, y1: 4}.intercepts()
	if x == nil || *x != -1 {
		t.Errorf("point-slope x-intercept = %v, want -1", x)
	}
}

func ptr(v float64) *float64 { return &v }

func TestGraphBounds(t *testing.T) {
	tests := []struct {
		name string
		x, y *float64
		want problem.Bounds
	}{
		{"none", nil, nil, DefaultBounds},
		{"inside", ptr(3), ptr(-4), DefaultBounds},
		{"wide", ptr(15), nil, problem.Bounds{Left: -10, Right: 17, Bottom: -13, Top: 14}},
		{"tall", nil, ptr(-20.5), problem.Bounds{Left: -16, Right: 17, Bottom: -23, Top: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GraphBounds(tt.x, tt.y)
			if got != tt.want {
				t.Errorf("GraphBounds() = %+v, want %+v", got, tt.want)
			}
			if got.Width() != got.Height() {
				t.Errorf("bounds %+v are not square", got)
			}
		})
	}
}
