package review

import (
	"strings"

	"github.com/Leorasaharia/provider-directory/internal/model"
)

// Explanation text is rule-based on purpose: deterministic, free, and
// auditable. Reasons are mapped to guidance by keyword, in priority order.
const (
	explainNoReview = "No manual review required. Provider information met " +
		"confidence thresholds across validated data sources."

	explainNPI = "• NPI could not be confidently verified in the public registry. " +
		"Confirm provider identity and active enrollment status."
	explainAddress = "• Address information is inconsistent across sources. " +
		"Verify the provider's current practice location."
	explainPhone = "• Contact number appears outdated or mismatched. " +
		"Confirm the correct phone number for patient access."
	explainSpeciality = "• Speciality information does not align with public records. " +
		"Validate the provider's primary taxonomy."

	explainClosing = "• Recommended action: Perform targeted manual verification or " +
		"provider outreach before updating member-facing directories."
)

// Explain renders the human-facing guidance for a report. Records outside
// the review queue get a single reassurance sentence; records needing
// review get one guidance line per reason plus a closing recommendation.
func Explain(r model.Report) string {
	if r.Status != model.StatusNeedsReview {
		return explainNoReview
	}

	lines := make([]string, 0, len(r.Reasons)+1)
	for _, reason := range r.Reasons {
		lower := strings.ToLower(reason)
		switch {
		case strings.Contains(lower, "npi"):
			lines = append(lines, explainNPI)
		case strings.Contains(lower, "address"):
			lines = append(lines, explainAddress)
		case strings.Contains(lower, "phone"), strings.Contains(lower, "mobile"):
			lines = append(lines, explainPhone)
		case strings.Contains(lower, "speciality"):
			lines = append(lines, explainSpeciality)
		default:
			lines = append(lines, "• "+reason)
		}
	}
	lines = append(lines, explainClosing)

	return strings.Join(lines, "\n")
}
