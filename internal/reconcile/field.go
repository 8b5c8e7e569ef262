// Package reconcile merges caller-submitted provider fields with external
// observations into consolidated values with confidence and rationale.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/Leorasaharia/provider-directory/internal/config"
	"github.com/Leorasaharia/provider-directory/internal/model"
	"github.com/Leorasaharia/provider-directory/internal/similarity"
)

// Confidence tiers assigned by the field decision table. The tier picked
// depends on which sources are present and how closely they match the input.
const (
	confRegistryStrong = 0.95
	confRegistryWeak   = 0.75
	confRegistryPoor   = 0.4

	confWebStrong = 0.9
	confWebWeak   = 0.7
	confWebPoor   = 0.45

	confCorroborated = 0.97

	// Disagreement keeps the base single-source confidence and subtracts a
	// flat penalty. The subtraction is intentional: the penalty is a fixed
	// deduction, not a tunable.
	confDisagreeBase    = 0.7
	disagreementPenalty = 0.2

	confNPIFound   = 0.98
	confNPIMissing = 0.0
)

// Notes attached to the identifier field. The evaluator keys off the
// "not found" phrase, so these are exported for reuse in tests.
const (
	NoteNPIFound   = "NPI found in registry"
	NoteNPIMissing = "NPI not found in registry"
)

// Reconciler applies the field decision table using configured similarity
// thresholds.
type Reconciler struct {
	cfg config.ReconcileConfig
}

// New creates a Reconciler. Zero or negative thresholds fall back to
// defaults.
func New(cfg config.ReconcileConfig) *Reconciler {
	if cfg.StrongMatch <= 0 {
		cfg.StrongMatch = DefaultConfig().StrongMatch
	}
	if cfg.WeakMatch <= 0 {
		cfg.WeakMatch = DefaultConfig().WeakMatch
	}
	return &Reconciler{cfg: cfg}
}

// DefaultConfig returns the standard similarity thresholds.
func DefaultConfig() config.ReconcileConfig {
	return config.ReconcileConfig{
		StrongMatch: 85,
		WeakMatch:   60,
	}
}

// Field merges one input value with up to two external observations of the
// same field. registryVal is the authoritative registry observation,
// webVal the practice-website one; either may be empty (absent).
//
// The table is evaluated in order, first match wins:
//  1. both absent: keep input, confidence 0.
//  2. registry only: adopt registry value, tiered by input similarity.
//  3. web only: adopt web value, lower tiers (registry was not found).
//  4. both present: corroboration at strong agreement, otherwise pick the
//     source closer to the input (ties favor the registry) at a penalized
//     confidence.
func (r *Reconciler) Field(input, registryVal, webVal, label string) model.ReconciledField {
	input = strings.TrimSpace(input)
	registryVal = strings.TrimSpace(registryVal)
	webVal = strings.TrimSpace(webVal)

	if registryVal == "" && webVal == "" {
		return model.ReconciledField{
			Value:      input,
			Confidence: 0.0,
			Note:       fmt.Sprintf("No NPI/website %s available", label),
		}
	}

	if registryVal != "" && webVal == "" {
		return model.ReconciledField{
			Value:      registryVal,
			Confidence: r.tier(similarity.Score(input, registryVal), confRegistryStrong, confRegistryWeak, confRegistryPoor),
			Note:       fmt.Sprintf("%s validated via NPI only", label),
		}
	}

	if webVal != "" && registryVal == "" {
		return model.ReconciledField{
			Value:      webVal,
			Confidence: r.tier(similarity.Score(input, webVal), confWebStrong, confWebWeak, confWebPoor),
			Note:       fmt.Sprintf("%s validated via website only (NPI not found)", label),
		}
	}

	// Both sources present: check agreement between them first.
	if similarity.Score(registryVal, webVal) >= r.cfg.StrongMatch {
		return model.ReconciledField{
			Value:      registryVal,
			Confidence: confCorroborated,
			Note:       fmt.Sprintf("%s confirmed by NPI + website", label),
		}
	}

	// Sources disagree: lean towards whichever is closer to the input.
	chosen, source := registryVal, "NPI"
	if similarity.Score(input, webVal) > similarity.Score(input, registryVal) {
		chosen, source = webVal, "website"
	}
	return model.ReconciledField{
		Value:      chosen,
		Confidence: confDisagreeBase - disagreementPenalty,
		Note:       fmt.Sprintf("%s disagreement between NPI and website; leaning towards %s", label, source),
	}
}

// Identifier annotates the NPI field. The NPI is the join key used to fetch
// registry data, so its value is never replaced, only scored.
func (r *Reconciler) Identifier(npi string, foundInRegistry bool) model.ReconciledField {
	if foundInRegistry {
		return model.ReconciledField{
			Value:      strings.TrimSpace(npi),
			Confidence: confNPIFound,
			Note:       NoteNPIFound,
		}
	}
	return model.ReconciledField{
		Value:      strings.TrimSpace(npi),
		Confidence: confNPIMissing,
		Note:       NoteNPIMissing,
	}
}

func (r *Reconciler) tier(score int, strong, weak, poor float64) float64 {
	switch {
	case score >= r.cfg.StrongMatch:
		return strong
	case score >= r.cfg.WeakMatch:
		return weak
	default:
		return poor
	}
}
