package module

import (
	"time"

	"warden/internal/platform/config"
)

// Options holds configuration settings for the scheduler module
type Options struct {
	SweepEvery     time.Duration
	LockSweepEvery time.Duration
	StaleLockAge   time.Duration
	DigestHourUTC  int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	sf := cfg.Prefix("SCHED_")
	return Options{
		SweepEvery:     sf.MayDuration("SWEEP_EVERY", time.Hour),
		LockSweepEvery: sf.MayDuration("LOCK_SWEEP_EVERY", time.Hour),
		StaleLockAge:   sf.MayDuration("STALE_LOCK_AGE", time.Hour),
		DigestHourUTC:  sf.MayInt("DIGEST_HOUR_UTC", 9),
	}
}
