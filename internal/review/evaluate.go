package review

import (
	"fmt"
	"strings"

	"github.com/Leorasaharia/provider-directory/internal/config"
	"github.com/Leorasaharia/provider-directory/internal/model"
)

// Risk score penalties. Risk is an additive, unbounded measure of
// data-quality concerns, computed for every record regardless of status.
const (
	riskNPIMissing   = 5.0
	riskVeryLowField = 2.0
	riskLowField     = 1.0
	riskDisagreement = 2.0
)

// reasonAllValid is the synthetic reason attached to confirmed records with
// no field changes.
const reasonAllValid = "All fields validated; no changes required"

// Evaluator computes record-level status, reasons, risk, and priority.
type Evaluator struct {
	cfg config.ReviewConfig
}

// NewEvaluator creates an Evaluator. Zero-valued thresholds fall back to
// defaults so an empty config section still evaluates sensibly.
func NewEvaluator(cfg config.ReviewConfig) *Evaluator {
	def := DefaultConfig()
	if cfg.LowConfidence <= 0 {
		cfg.LowConfidence = def.LowConfidence
	}
	if cfg.VeryLowConfidence <= 0 {
		cfg.VeryLowConfidence = def.VeryLowConfidence
	}
	if cfg.ImpactWeight <= 0 && cfg.RiskWeight <= 0 {
		cfg.ImpactWeight = def.ImpactWeight
		cfg.RiskWeight = def.RiskWeight
	}
	if cfg.HighThreshold <= 0 {
		cfg.HighThreshold = def.HighThreshold
	}
	if cfg.MediumThreshold <= 0 {
		cfg.MediumThreshold = def.MediumThreshold
	}
	return &Evaluator{cfg: cfg}
}

// Evaluate derives the record-level outcome from the original input and its
// consolidated record. Reasons accumulate in fixed field order: identifier
// first, then name, phone, address, speciality.
func (e *Evaluator) Evaluate(p model.ProviderRecord, c model.ConsolidatedRecord) model.Report {
	var reasons []string

	npiMissing := strings.Contains(strings.ToLower(c.NPI.Note), "not found")
	if npiMissing {
		reasons = append(reasons, "NPI not found in registry")
	}

	// TrackedFields leads with the identifier, which is handled above.
	for _, f := range model.TrackedFields[1:] {
		rf := c.Get(f)
		if fieldChanged(p.Value(f), rf.Value) {
			reasons = append(reasons, fmt.Sprintf("%s updated (confidence=%.2f; note=%s)", f.Label(), rf.Confidence, rf.Note))
		}
	}

	lowConfidence := false
	for _, rf := range c.ContactFields() {
		if rf.Confidence < e.cfg.LowConfidence {
			lowConfidence = true
			break
		}
	}

	status := model.StatusConfirmed
	switch {
	case npiMissing || lowConfidence:
		status = model.StatusNeedsReview
	case len(reasons) > 0:
		status = model.StatusUpdated
	}

	if len(reasons) == 0 && status == model.StatusConfirmed {
		reasons = append(reasons, reasonAllValid)
	}

	risk := e.riskScore(npiMissing, c)

	score, level := 0.0, model.PriorityNone
	if status == model.StatusNeedsReview {
		score = e.cfg.ImpactWeight*float64(p.Impact) + e.cfg.RiskWeight*risk
		level = e.level(score)
	}

	return model.Report{
		Provider:      p,
		Consolidated:  c,
		Status:        status,
		Reasons:       reasons,
		RiskScore:     risk,
		PriorityScore: score,
		PriorityLevel: level,
	}
}

// riskScore adds up the data-quality penalties: a missing NPI, low-confidence
// contact fields, and any source disagreement.
func (e *Evaluator) riskScore(npiMissing bool, c model.ConsolidatedRecord) float64 {
	risk := 0.0
	if npiMissing {
		risk += riskNPIMissing
	}
	for _, rf := range c.ContactFields() {
		if rf.Confidence < e.cfg.VeryLowConfidence {
			risk += riskVeryLowField
		} else if rf.Confidence < e.cfg.LowConfidence {
			risk += riskLowField
		}
		if strings.Contains(strings.ToLower(rf.Note), "disagreement") {
			risk += riskDisagreement
		}
	}
	return risk
}

func (e *Evaluator) level(score float64) model.PriorityLevel {
	switch {
	case score >= e.cfg.HighThreshold:
		return model.PriorityHigh
	case score >= e.cfg.MediumThreshold:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func fieldChanged(original, final string) bool {
	return strings.TrimSpace(original) != strings.TrimSpace(final)
}
