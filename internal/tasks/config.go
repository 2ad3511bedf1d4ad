package tasks

import "time"

// Config tunes the queue. Zero fields take the value from DefaultConfig.
type Config struct {
	Workers         int
	ReleaseAfter    time.Duration // a claimed task not finished by then is handed to another worker
	CleanupInterval time.Duration
}

// DefaultConfig is two workers, a 15m release window and hourly cleanup.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = d.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	return c
}
