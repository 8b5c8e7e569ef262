package model

import "time"

// ReviewStatus is the record-level outcome of an evaluation.
type ReviewStatus string

const (
	StatusConfirmed   ReviewStatus = "confirmed"
	StatusUpdated     ReviewStatus = "updated"
	StatusNeedsReview ReviewStatus = "needs_review"
)

// PriorityLevel buckets the priority score for human triage.
type PriorityLevel string

const (
	PriorityHigh   PriorityLevel = "HIGH"
	PriorityMedium PriorityLevel = "MEDIUM"
	PriorityLow    PriorityLevel = "LOW"
	PriorityNone   PriorityLevel = "NONE"
)

// Report is the terminal output of one provider's validation run: the
// consolidated record plus the record-level evaluation. Computed once,
// immutable thereafter.
type Report struct {
	ID            string             `json:"id,omitempty"`
	Provider      ProviderRecord     `json:"provider"`
	Consolidated  ConsolidatedRecord `json:"consolidated"`
	Status        ReviewStatus       `json:"status"`
	Reasons       []string           `json:"reasons"`
	RiskScore     float64            `json:"risk_score"`
	PriorityScore float64            `json:"priority_score"`
	PriorityLevel PriorityLevel      `json:"priority_level"`
	Explanation   string             `json:"explanation,omitempty"`
	CreatedAt     time.Time          `json:"created_at,omitempty"`
}
