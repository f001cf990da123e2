package provider

import (
	"math/rand/v2"
	"sync"
)

// lockedRand — общий генератор для всех вкладок. *rand.Rand не потокобезопасен,
// а вкладки могут рендериться параллельно.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// newRand: seed == 0 — энтропия системы, иначе воспроизводимая последовательность.
func newRand(seed uint64) *lockedRand {
	if seed == 0 {
		return &lockedRand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// intBetween возвращает целое из [lo, hi] включительно.
func (l *lockedRand) intBetween(lo, hi int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return lo + l.r.IntN(hi-lo+1)
}

// floatBetween возвращает число из [lo, hi).
func (l *lockedRand) floatBetween(lo, hi float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return lo + l.r.Float64()*(hi-lo)
}
