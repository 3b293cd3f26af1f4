package session

import "time"

// BackoffConfig defines retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines connection behavior. Zero timeouts block without deadline.
type Config struct {
	ConnectTimeout  time.Duration
	ConnectAttempts int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	Backoff         BackoffConfig
}

// DefaultConfig dials once and never times out a read, so a stalled
// compositor stalls the probe.
func DefaultConfig() Config {
	return Config{
		ConnectAttempts: 1,
		Backoff: BackoffConfig{
			InitialDelay: 100 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     2 * time.Second,
			Jitter:       true,
		},
	}
}
