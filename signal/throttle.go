package signal

import "math"

// DefaultEpsilon is the smallest attack-speed change worth propagating.
const DefaultEpsilon = 0.01

// Gate suppresses samples whose rate is within epsilon of the last emitted
// one. The initial last rate is 0, outside the valid range, so the first
// sample always passes. A Gate is owned by one producer and is not safe for
// concurrent use.
type Gate struct {
	epsilon float64
	last    float64
}

// NewGate creates a gate. A non-positive epsilon uses DefaultEpsilon.
func NewGate(epsilon float64) *Gate {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Gate{epsilon: epsilon}
}

// Allow reports whether rate should be emitted and records it if so.
func (g *Gate) Allow(rate float64) bool {
	// Written so NaN never passes.
	if !(math.Abs(rate-g.last) > g.epsilon) {
		return false
	}
	g.last = rate
	return true
}

// Reset forgets the last emission so the next sample passes.
func (g *Gate) Reset() {
	g.last = 0
}

// Last returns the last emitted rate, 0 if none.
func (g *Gate) Last() float64 {
	return g.last
}
