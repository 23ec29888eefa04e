// Package problem defines the records produced by problem generators: display
// blocks, typed solutions, reduced fractions and graph rendering specs.
package problem

import "encoding/json"

// BlockType tags a display block.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockFormula BlockType = "formula"
	BlockGraph   BlockType = "graph"
	BlockOptions BlockType = "options"
)

// Block is one display element of a problem statement or worked solution.
// Value holds the text or formula; Choices is set for options blocks and
// Graph for graph blocks.
type Block struct {
	Type    BlockType `json:"type"`
	Value   string    `json:"value,omitempty"`
	Choices []Choice  `json:"choices,omitempty"`
	Graph   *Graph    `json:"graph,omitempty"`
}

// Choice is one entry of a multiple-choice options block.
type Choice struct {
	Type  BlockType `json:"type"`
	Value string    `json:"value"`
}

// Text returns a text block.
func Text(v string) Block { return Block{Type: BlockText, Value: v} }

// Formula returns a formula block.
func Formula(v string) Block { return Block{Type: BlockFormula, Value: v} }

// Options returns a multiple-choice block.
func Options(choices []Choice) Block { return Block{Type: BlockOptions, Choices: choices} }

// Grid returns an empty graph block spanning bounds, for the student to plot on.
func Grid(form string, bounds Bounds) Block {
	return Block{Type: BlockGraph, Graph: &Graph{Form: form, MathBounds: bounds}}
}

// SolutionType discriminates solution values.
type SolutionType string

const (
	SolutionNumeric SolutionType = "numeric"
	SolutionChoice  SolutionType = "choice"
	SolutionText    SolutionType = "text"
	SolutionGraph   SolutionType = "graph"
)

// Solution is one typed answer value.
type Solution struct {
	Type     SolutionType `json:"type"`
	Label    string       `json:"label,omitempty"`
	Decimal  *float64     `json:"decimal,omitempty"`
	Fraction *Fraction    `json:"fraction,omitempty"`
	Choice   *int         `json:"choice,omitempty"`
	Value    string       `json:"value,omitempty"`
	Graph    *Graph       `json:"graph,omitempty"`
}

// Numeric returns a numeric solution for the rational q. The fraction is
// left nil when q is an integer.
func Numeric(label string, q Fraction) Solution {
	d := q.Float()
	s := Solution{Type: SolutionNumeric, Label: label, Decimal: &d}
	if !q.IsInteger() {
		f := q
		s.Fraction = &f
	}
	return s
}

// Integer returns a numeric solution for an integer value.
func Integer(label string, v int) Solution {
	return Numeric(label, NewFraction(v, 1))
}

// ChoiceAnswer returns a solution pointing at a multiple-choice index.
func ChoiceAnswer(index int) Solution {
	return Solution{Type: SolutionChoice, Choice: &index}
}

// TextAnswer returns a free-text solution.
func TextAnswer(label, value string) Solution {
	return Solution{Type: SolutionText, Label: label, Value: value}
}

// GraphAnswer returns a solution holding the plotted line.
func GraphAnswer(g Graph) Solution {
	return Solution{Type: SolutionGraph, Value: g.Equation, Graph: &g}
}

// MarshalJSON writes only the fields that belong to the solution type. Numeric
// solutions always carry a fraction key, null for integer values.
func (s Solution) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": s.Type}
	if s.Label != "" {
		out["label"] = s.Label
	}
	switch s.Type {
	case SolutionNumeric:
		out["decimal"] = s.Decimal
		out["fraction"] = s.Fraction
	case SolutionChoice:
		out["choice"] = s.Choice
	case SolutionText:
		out["value"] = s.Value
	case SolutionGraph:
		out["value"] = s.Value
		out["graph"] = s.Graph
	}
	return json.Marshal(out)
}

// Problem is the output of a single generator invocation.
type Problem struct {
	Problem  []Block    `json:"problem"`
	Steps    []Block    `json:"steps"`
	Solution []Solution `json:"solution"`
}

// Bounds is a rectangular viewport in math coordinates.
type Bounds struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// Width returns Right - Left.
func (b Bounds) Width() float64 { return b.Right - b.Left }

// Height returns Top - Bottom.
func (b Bounds) Height() float64 { return b.Top - b.Bottom }

// Graph describes a line to be plotted.
type Graph struct {
	Form       string   `json:"form"`
	Equation   string   `json:"equation"`
	XIntercept *float64 `json:"xIntercept"`
	YIntercept *float64 `json:"yIntercept"`
	MathBounds Bounds   `json:"mathBounds"`
}
