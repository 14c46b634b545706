package randutil

import rand "math/rand/v2"

// New builds a *rand.Rand from a single int64 seed. rand/v2's PCG wants two
// 64-bit seeds, so both are drawn from a splitmix64 stream to keep every call
// site reproducible from one logged seed value.
func New(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(splitmix64(&s), splitmix64(&s)))
}

// Pick returns a uniformly chosen element of choices.
func Pick[T any](rng *rand.Rand, choices ...T) T {
	return choices[rng.IntN(len(choices))]
}

func splitmix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
