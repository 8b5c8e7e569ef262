// Package review derives record-level status, risk, and review priority
// from a consolidated provider record.
package review

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Leorasaharia/provider-directory/internal/config"
)

// DefaultConfig returns the standard evaluation thresholds and priority
// weights.
func DefaultConfig() config.ReviewConfig {
	return config.ReviewConfig{
		// Confidence cutoffs.
		LowConfidence:     0.6,
		VeryLowConfidence: 0.4,

		// Priority blend: business impact vs data-quality risk.
		ImpactWeight: 0.6,
		RiskWeight:   0.4,

		// Priority level thresholds.
		HighThreshold:   7,
		MediumThreshold: 4,
	}
}

// ValidateConfig checks that a ReviewConfig is internally consistent.
func ValidateConfig(c config.ReviewConfig) error {
	var errs []string

	if c.LowConfidence < 0 || c.LowConfidence > 1 {
		errs = append(errs, "low_confidence must be between 0 and 1")
	}
	if c.VeryLowConfidence < 0 || c.VeryLowConfidence > 1 {
		errs = append(errs, "very_low_confidence must be between 0 and 1")
	}
	if c.VeryLowConfidence > c.LowConfidence {
		errs = append(errs, "very_low_confidence must be <= low_confidence")
	}
	if c.ImpactWeight < 0 {
		errs = append(errs, "impact_weight must be >= 0")
	}
	if c.RiskWeight < 0 {
		errs = append(errs, "risk_weight must be >= 0")
	}
	if c.ImpactWeight+c.RiskWeight <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	if c.MediumThreshold < 0 {
		errs = append(errs, "medium_threshold must be >= 0")
	}
	if c.HighThreshold < c.MediumThreshold {
		errs = append(errs, fmt.Sprintf("high_threshold (%.1f) must be >= medium_threshold (%.1f)", c.HighThreshold, c.MediumThreshold))
	}

	if len(errs) > 0 {
		return eris.Errorf("review: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
