package module

import "warden/internal/platform/config"

// Options holds configuration settings for the alerts module
type Options struct {
	DedupCapacity  int
	DigestPerOwner int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("ALERTS_")
	return Options{
		DedupCapacity:  af.MayInt("DEDUP_CAPACITY", 0),
		DigestPerOwner: af.MayInt("DIGEST_PER_OWNER", 0),
	}
}
