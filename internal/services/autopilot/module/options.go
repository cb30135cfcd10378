package module

import (
	"time"

	"warden/internal/platform/config"
)

// Options holds configuration settings for the autopilot module
type Options struct {
	RenewAmount   int64
	SubmitTimeout time.Duration
	DedupCapacity int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("AUTOPILOT_")
	return Options{
		RenewAmount:   int64(af.MayInt("RENEW_AMOUNT", 10)),
		SubmitTimeout: af.MayDuration("SUBMIT_TIMEOUT", 30*time.Second),
		DedupCapacity: af.MayInt("DEDUP_CAPACITY", 0),
	}
}
