package session

import (
	"math/rand"
	"time"
)

// Delay returns the wait before retry number retry (1-based). Jitter scales
// the delay by a factor in [0.5, 1.5); a nil rng uses the midpoint 0.5.
func (b BackoffConfig) Delay(retry int, rng *rand.Rand) time.Duration {
	if b.InitialDelay <= 0 {
		return 0
	}
	mult := b.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	delay := float64(b.InitialDelay)
	for i := 1; i < retry; i++ {
		delay *= mult
		if b.MaxDelay > 0 && delay >= float64(b.MaxDelay) {
			delay = float64(b.MaxDelay)
			break
		}
	}
	if b.Jitter {
		f := 0.5
		if rng != nil {
			f += rng.Float64()
		}
		delay *= f
	}
	return time.Duration(delay)
}
