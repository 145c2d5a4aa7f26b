package timing

import "time"

const (
	// DefaultRampPeriod is how often the ramp is re-evaluated.
	DefaultRampPeriod = 5 * time.Second
	// DefaultMaxRamp is the largest fractional speed-up over a session.
	DefaultMaxRamp = 0.15
)

// Ramp computes the bounded pace multiplier from elapsed session time.
type Ramp struct {
	MaxFraction float64
	Total       time.Duration
}

// Multiplier returns 1 + progress*MaxFraction with progress clamped to [0, 1].
func (r Ramp) Multiplier(elapsed time.Duration) float64 {
	if r.MaxFraction <= 0 || r.Total <= 0 {
		return 1
	}
	progress := min(max(float64(elapsed)/float64(r.Total), 0), 1)
	return 1 + progress*r.MaxFraction
}

// Apply scales velocity up and the spawn interval down by the multiplier.
func (r Ramp) Apply(elapsed time.Duration, velocity, spawnInterval float64) (float64, float64) {
	m := r.Multiplier(elapsed)
	return velocity * m, spawnInterval / m
}
