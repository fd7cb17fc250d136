package evaluator

import "math/rand/v2"

// Source supplies the permutation used to sample questions.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Perm(n int) []int
}

// globalSource uses the process-wide generator, which is safe for concurrent use.
type globalSource struct{}

func (globalSource) Perm(n int) []int { return rand.Perm(n) }

// DefaultSource returns the shared concurrency-safe random source
func DefaultSource() Source {
	return globalSource{}
}

// NewSeededSource returns a deterministic source. It must not be shared across goroutines.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
