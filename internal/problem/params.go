package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidParam reports a missing or mistyped generator parameter.
var ErrInvalidParam = errors.New("invalid parameter")

// MaxMagnitude bounds every integer generator parameter, so range widths and
// coefficient products stay far from int overflow.
const MaxMagnitude = 1_000_000

// Params is a resolved, flat parameter record. Values are numbers, booleans
// or strings as decoded from YAML or JSON.
type Params map[string]any

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Reader reads typed values from Params and keeps the first error, so a
// generator can read all of its inputs and check Err once.
type Reader struct {
	p   Params
	err error
}

// Read returns a Reader over p.
func (p Params) Read() *Reader { return &Reader{p: p} }

// Err returns the first error encountered.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(key, format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w %q: %s", ErrInvalidParam, key, fmt.Sprintf(format, args...))
	}
}

// Int returns the integer value of key.
func (r *Reader) Int(key string) int {
	v, ok := r.p[key]
	if !ok {
		r.fail(key, "missing")
		return 0
	}
	n, err := toInt(v)
	if err != nil {
		r.fail(key, "%v", err)
		return 0
	}
	if n < -MaxMagnitude || n > MaxMagnitude {
		r.fail(key, "%d is outside [%d, %d]", n, -MaxMagnitude, MaxMagnitude)
		return 0
	}
	return n
}

// Range returns the integer pair (minKey, maxKey), failing when min > max.
func (r *Reader) Range(minKey, maxKey string) (int, int) {
	lo, hi := r.Int(minKey), r.Int(maxKey)
	if r.err == nil && lo > hi {
		r.fail(minKey, "%d is greater than %s %d", lo, maxKey, hi)
	}
	return lo, hi
}

// Bool returns the boolean value of key.
func (r *Reader) Bool(key string) bool {
	v, ok := r.p[key]
	if !ok {
		r.fail(key, "missing")
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			r.fail(key, "%q is not a boolean", b)
		}
		return parsed
	default:
		r.fail(key, "%T is not a boolean", v)
		return false
	}
}

// ToInt converts a decoded JSON/YAML number to an int. Fractional values,
// values outside the int range and non-numeric types are rejected.
func ToInt(v any) (int, error) { return toInt(v) }

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, fmt.Errorf("%d is out of range", n)
		}
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, fmt.Errorf("%d is out of range", n)
		}
		return int(n), nil
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return toInt(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s is not an integer", n)
		}
		return floatToInt(f)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%T is not a number", v)
	}
}

// floatToInt converts an integral float. float64(math.MaxInt) rounds up to
// 2^63, so the upper bound is exclusive.
func floatToInt(f float64) (int, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt || f >= -math.MinInt {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int(f), nil
}
