package perturb

import "math/rand/v2"

// Rand is the deterministic random stream for one statement. Streams derive
// from the run seed and the statement's input index, so every statement sees
// the same choices no matter how many workers process the batch or in what
// order they finish.
type Rand struct {
	r *rand.Rand
}

// NewRand creates the stream for a statement index under a run seed.
// PCG is specified exactly by the runtime, so output is identical across
// machines and Go releases.
func NewRand(seed uint64, index int) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, uint64(index)))}
}

// IntN returns a uniform int in [0, n). n must be positive.
func (r *Rand) IntN(n int) int {
	return r.r.IntN(n)
}

// Perm returns a random permutation of [0, n)
func (r *Rand) Perm(n int) []int {
	return r.r.Perm(n)
}

// Shuffle pseudo-randomizes the order of n elements
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.r.Shuffle(n, swap)
}
