package generator

import "github.com/p-n-ai/pai-classroom/internal/problem/linear"

const linearEquations = "math/algebra/linear-equations/"

// Builtin returns every generator shipped with the server, keyed by the
// catalog path it serves.
func Builtin() map[string]Func {
	return map[string]Func{
		linearEquations + "standardForm":             linear.StandardForm,
		linearEquations + "withParentheses":          linear.WithParentheses,
		linearEquations + "withFractions":            linear.WithFractions,
		linearEquations + "withAbsoluteValue":        linear.WithAbsoluteValue,
		linearEquations + "variablesOnBothSides":     linear.VariablesOnBothSides,
		linearEquations + "slopeInterceptForm":       linear.SlopeInterceptForm,
		linearEquations + "pointSlopeForm":           linear.PointSlopeForm,
		linearEquations + "slopeFromTwoPoints":       linear.SlopeFromTwoPoints,
		linearEquations + "findIntercepts":           linear.FindIntercepts,
		linearEquations + "standardToSlopeIntercept": linear.StandardToSlopeIntercept,
		linearEquations + "parallelPerpendicular":    linear.ParallelPerpendicular,
		linearEquations + "graphingLinearEquations":  linear.GraphingLinearEquations,
	}
}

// NewBuiltinRegistry builds the registry from the embedded catalog, or from
// catalogDir when it is set.
func NewBuiltinRegistry(catalogDir string) (*Registry, error) {
	var (
		roots []Node
		err   error
	)
	if catalogDir != "" {
		roots, err = LoadCatalogDir(catalogDir)
	} else {
		roots, err = EmbeddedCatalog()
	}
	if err != nil {
		return nil, err
	}
	return NewRegistry(roots, Builtin())
}
