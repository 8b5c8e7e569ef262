package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Leorasaharia/provider-directory/internal/config"
	"github.com/Leorasaharia/provider-directory/internal/model"
)

func provider() model.ProviderRecord {
	return model.ProviderRecord{
		Name:       "Jon Smith",
		NPI:        "1053395590",
		Phone:      "555-1000",
		Address:    "123 Main St, Springfield",
		Speciality: "Cardiology",
		Impact:     3,
	}
}

// allConfirmed mirrors the input exactly with corroborated confidence.
func allConfirmed(p model.ProviderRecord) model.ConsolidatedRecord {
	return model.ConsolidatedRecord{
		NPI:        model.ReconciledField{Value: p.NPI, Confidence: 0.98, Note: "NPI found in registry"},
		Name:       model.ReconciledField{Value: p.Name, Confidence: 0.97, Note: "Name confirmed by NPI + website"},
		Phone:      model.ReconciledField{Value: p.Phone, Confidence: 0.97, Note: "Phone confirmed by NPI + website"},
		Address:    model.ReconciledField{Value: p.Address, Confidence: 0.97, Note: "Address confirmed by NPI + website"},
		Speciality: model.ReconciledField{Value: p.Speciality, Confidence: 0.97, Note: "Speciality confirmed by NPI + website"},
	}
}

func TestEvaluate_Confirmed(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(DefaultConfig())
	p := provider()

	r := e.Evaluate(p, allConfirmed(p))

	assert.Equal(t, model.StatusConfirmed, r.Status)
	assert.Equal(t, []string{reasonAllValid}, r.Reasons)
	assert.Equal(t, 0.0, r.RiskScore)
	assert.Equal(t, 0.0, r.PriorityScore)
	assert.Equal(t, model.PriorityNone, r.PriorityLevel)
}

func TestEvaluate_UpdatedField(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(DefaultConfig())
	p := provider()

	c := allConfirmed(p)
	c.Phone = model.ReconciledField{Value: "555-2000", Confidence: 0.95, Note: "Phone validated via NPI only"}

	r := e.Evaluate(p, c)

	assert.Equal(t, model.StatusUpdated, r.Status)
	assert.Equal(t, []string{"Phone updated (confidence=0.95; note=Phone validated via NPI only)"}, r.Reasons)
	assert.Equal(t, model.PriorityNone, r.PriorityLevel)
	assert.Equal(t, 0.0, r.PriorityScore)
}

func TestEvaluate_WhitespaceOnlyChangeIsNotAnUpdate(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(DefaultConfig())
	p := provider()
	p.Phone = "  555-1000  "

	r := e.Evaluate(p, allConfirmed(provider()))

	assert.Equal(t, model.StatusConfirmed, r.Status)
}

func TestEvaluate_MissingNPI(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(DefaultConfig())
	p := provider()

	c := allConfirmed(p)
	c.NPI = model.ReconciledField{Value: p.NPI, Confidence: 0.0, Note: "NPI not found in registry"}

	r := e.Evaluate(p, c)

	assert.Equal(t, model.StatusNeedsReview, r.Status)
	assert.Contains(t, r.Reasons, "NPI not found in registry")
	assert.Equal(t, 5.0, r.RiskScore)
	// 0.6*3 + 0.4*5 = 3.8
	assert.InDelta(t, 3.8, r.PriorityScore, 1e-9)
	assert.Equal(t, model.PriorityLow, r.PriorityLevel)
}

func TestEvaluate_LowConfidenceField(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(DefaultConfig())
	p := provider()

	c := allConfirmed(p)
	c.Address = model.ReconciledField{Value: p.Address, Confidence: 0.5, Note: "Address disagreement between NPI and website; leaning towards NPI"}

	r := e.Evaluate(p, c)

	assert.Equal(t, model.StatusNeedsReview, r.Status)
	// 1.0 for the low-confidence field plus 2.0 for the disagreement note.
	assert.Equal(t, 3.0, r.RiskScore)
}

func TestEvaluate_VeryLowConfidenceField(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(DefaultConfig())
	p := provider()

	c := allConfirmed(p)
	c.Speciality = model.ReconciledField{Value: "Oncology", Confidence: 0.4, Note: "Speciality validated via NPI only"}

	r := e.Evaluate(p, c)

	assert.Equal(t, model.StatusNeedsReview, r.Status)
	// confidence 0.4 is below low (0.6) but not below very-low (0.4): 1.0.
	assert.Equal(t, 1.0, r.RiskScore)
	assert.Contains(t, r.Reasons[0], "Speciality updated")
}

func TestEvaluate_ReasonOrderFixed(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(DefaultConfig())
	p := provider()

	c := allConfirmed(p)
	c.NPI = model.ReconciledField{Value: p.NPI, Note: "NPI not found in registry"}
	c.Speciality = model.ReconciledField{Value: "Oncology", Confidence: 0.45, Note: "Speciality validated via website only (NPI not found)"}
	c.Phone = model.ReconciledField{Value: "555-2000", Confidence: 0.45, Note: "Phone validated via website only (NPI not found)"}

	r := e.Evaluate(p, c)

	assert.Len(t, r.Reasons, 3)
	assert.Contains(t, r.Reasons[0], "NPI")
	assert.Contains(t, r.Reasons[1], "Phone")
	assert.Contains(t, r.Reasons[2], "Speciality")
}

func TestEvaluate_PriorityBoundaries(t *testing.T) {
	t.Parallel()

	// Weight priority entirely on impact so the score is the impact value
	// and the level thresholds can be probed exactly.
	e := NewEvaluator(config.ReviewConfig{
		LowConfidence:     0.6,
		VeryLowConfidence: 0.4,
		ImpactWeight:      1,
		RiskWeight:        0,
		HighThreshold:     7,
		MediumThreshold:   4,
	})

	cases := []struct {
		name   string
		impact int
		want   model.PriorityLevel
	}{
		{"score at high threshold", 7, model.PriorityHigh},
		{"score above high threshold", 9, model.PriorityHigh},
		{"score at medium threshold", 4, model.PriorityMedium},
		{"score below medium threshold", 3, model.PriorityLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := provider()
			p.Impact = tc.impact

			c := allConfirmed(p)
			c.NPI = model.ReconciledField{Value: p.NPI, Note: "NPI not found in registry"}

			r := e.Evaluate(p, c)
			assert.Equal(t, model.StatusNeedsReview, r.Status)
			assert.Equal(t, tc.want, r.PriorityLevel)
		})
	}
}

func TestEvaluate_PriorityMonotonicInImpactAndRisk(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(DefaultConfig())

	// Rising impact with fixed consolidated record never lowers the score.
	base := allConfirmed(provider())
	base.NPI = model.ReconciledField{Value: "123", Note: "NPI not found in registry"}

	prev := -1.0
	for impact := 1; impact <= 5; impact++ {
		p := provider()
		p.Impact = impact
		r := e.Evaluate(p, base)
		assert.GreaterOrEqual(t, r.PriorityScore, prev)
		prev = r.PriorityScore
	}

	// Extra risk with fixed impact never lowers the score.
	riskier := base
	riskier.Address = model.ReconciledField{
		Value:      "somewhere else",
		Confidence: 0.5,
		Note:       "Address disagreement between NPI and website; leaning towards NPI",
	}

	low := e.Evaluate(provider(), base)
	high := e.Evaluate(provider(), riskier)
	assert.Greater(t, high.RiskScore, low.RiskScore)
	assert.GreaterOrEqual(t, high.PriorityScore, low.PriorityScore)
}

func TestNewEvaluator_ZeroConfigFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(config.ReviewConfig{})
	p := provider()

	c := allConfirmed(p)
	c.NPI = model.ReconciledField{Value: p.NPI, Note: "NPI not found in registry"}

	r := e.Evaluate(p, c)
	assert.Equal(t, 5.0, r.RiskScore)
	assert.InDelta(t, 3.8, r.PriorityScore, 1e-9)
}
