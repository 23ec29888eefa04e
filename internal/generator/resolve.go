package generator

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

const (
	// CountKey is the implicit option holding how many problems to generate.
	CountKey = "count"
	// DefaultCount applies when a request does not set count.
	DefaultCount = 5
	// DefaultMaxCount is the per-topic ceiling when none is configured.
	DefaultMaxCount = 1000
)

// ResolveParams overlays options on defaults. Keys not in defaults are
// dropped and count is taken out and clamped to [0, maxCount]. Neither input
// map is modified.
func ResolveParams(defaults, options map[string]any, maxCount int) (problem.Params, int, error) {
	count := DefaultCount
	if v, ok := options[CountKey]; ok && v != nil {
		n, err := resolveCount(v, maxCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w %q: %v", problem.ErrInvalidParam, CountKey, err)
		}
		count = n
	}
	count = min(max(count, 0), maxCount)

	params := make(problem.Params, len(defaults))
	for k, def := range defaults {
		if v, ok := options[k]; ok && v != nil {
			params[k] = v
		} else {
			params[k] = def
		}
	}
	return params, count, nil
}

// resolveCount converts v to an int, saturating integral values outside
// [0, maxCount] before conversion.
func resolveCount(v any, maxCount int) (int, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case uint64:
		if n > uint64(max(maxCount, 0)) {
			return maxCount, nil
		}
	case json.Number:
		f, _ = n.Float64()
	}
	if !math.IsInf(f, 0) && f == math.Trunc(f) {
		switch {
		case f > float64(maxCount):
			return maxCount, nil
		case f < 0:
			return 0, nil
		}
	}
	return problem.ToInt(v)
}
