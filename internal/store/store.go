// Package store persists validation reports.
package store

import (
	"context"

	"github.com/Leorasaharia/provider-directory/internal/model"
)

// ReportFilter specifies criteria for listing reports.
type ReportFilter struct {
	Status model.ReviewStatus `json:"status,omitempty"`
	NPI    string             `json:"npi,omitempty"`
	Limit  int                `json:"limit,omitempty"`
	Offset int                `json:"offset,omitempty"`
}

// Store defines the persistence interface for validation reports.
type Store interface {
	SaveReport(ctx context.Context, report *model.Report) error
	GetReport(ctx context.Context, id string) (*model.Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.Report, error)

	// ReviewQueue returns persisted needs_review reports ordered by
	// descending priority score.
	ReviewQueue(ctx context.Context, limit int) ([]model.Report, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
