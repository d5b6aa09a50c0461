package config

import (
	"fmt"
	"strings"
)

var (
	validMergeOrders = []string{"natural", "alphabetical", "reversed"}
	validSpeeds      = []string{"normal", "fast", "veryfast"}
	validResizes     = []string{"", "A4", "LETTER", "A3", "A5", "HD", "FHD"}
)

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if !contains(validMergeOrders, c.Conversion.MergeOrder) {
		return fmt.Errorf("conversion.merge_order: unsupported value %q (valid: %s)",
			c.Conversion.MergeOrder, strings.Join(validMergeOrders, ", "))
	}
	if !contains(validSpeeds, c.Conversion.Speed) {
		return fmt.Errorf("conversion.speed: unsupported value %q (valid: %s)",
			c.Conversion.Speed, strings.Join(validSpeeds, ", "))
	}
	if !contains(validResizes, c.Conversion.Resize) {
		return fmt.Errorf("conversion.resize: unsupported value %q", c.Conversion.Resize)
	}
	if c.Conversion.Workers > 64 {
		return fmt.Errorf("conversion.workers: %d exceeds the maximum of 64", c.Conversion.Workers)
	}
	if c.Conversion.MinSuccessRatio > 1 {
		return fmt.Errorf("conversion.min_success_ratio: %g must be within (0, 1]", c.Conversion.MinSuccessRatio)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
