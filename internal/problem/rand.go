package problem

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Rand is the random source threaded through every generator call.
type Rand interface {
	// Int returns a uniform integer in [min, max].
	Int(min, max int) int
	// Shuffle permutes n elements uniformly (Fisher-Yates).
	Shuffle(n int, swap func(i, j int))
}

// SeededRand is a Rand backed by a PCG source. It is safe for concurrent use.
type SeededRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a source seeded with seed. A zero seed draws the seed from
// the process-wide generator.
func NewRand(seed uint64) *SeededRand {
	hi, lo := seed, seed^0x9e3779b97f4a7c15
	if seed == 0 {
		hi, lo = rand.Uint64(), rand.Uint64()
	}
	return &SeededRand{r: rand.New(rand.NewPCG(hi, lo))}
}

func (s *SeededRand) Int(min, max int) int {
	if max < min {
		min, max = max, min
	}
	// The width is taken in uint64 so ranges wider than MaxInt do not wrap.
	width := uint64(max) - uint64(min)
	s.mu.Lock()
	defer s.mu.Unlock()
	if width == math.MaxUint64 {
		return int(s.r.Uint64())
	}
	return min + int(s.r.Uint64N(width+1))
}

func (s *SeededRand) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Shuffle(n, swap)
}

// Except draws uniformly from [min, max] with skip removed. It returns false
// when the range holds nothing but skip.
func Except(r Rand, min, max, skip int) (int, bool) {
	if max < min {
		min, max = max, min
	}
	if skip < min || skip > max {
		return r.Int(min, max), true
	}
	if min == max {
		return 0, false
	}
	v := r.Int(min, max-1)
	if v >= skip {
		v++
	}
	return v, true
}

// NonZero draws uniformly from [min, max] with zero removed.
func NonZero(r Rand, min, max int) (int, bool) {
	return Except(r, min, max, 0)
}

// Pick returns a uniformly chosen element of items, which must be non-empty.
func Pick[T any](r Rand, items []T) T {
	return items[r.Int(0, len(items)-1)]
}

// Variable returns a random lower-case variable name.
func Variable(r Rand) string {
	return string(rune(r.Int('a', 'z')))
}
