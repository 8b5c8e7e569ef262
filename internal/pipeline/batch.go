package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Leorasaharia/provider-directory/internal/model"
	"github.com/Leorasaharia/provider-directory/internal/review"
)

// maxErrorReasonLen bounds the error text carried into a degraded report's
// reason.
const maxErrorReasonLen = 200

// BatchResult holds the ordered reports for a batch plus the prioritized
// review queue derived from them.
type BatchResult struct {
	Reports []model.Report `json:"reports"`
	Queue   []model.Report `json:"review_queue"`
}

// RunBatch validates many providers with bounded concurrency. Results are
// written back by input index, so output order always matches input order
// regardless of completion order. A failure or panic inside one provider's
// run degrades that slot to a needs_review/HIGH report carrying the error;
// the batch itself never fails.
func (p *Pipeline) RunBatch(ctx context.Context, providers []model.ProviderRecord, concurrency int) *BatchResult {
	if concurrency <= 0 {
		concurrency = p.cfg.Batch.MaxConcurrentProviders
	}
	if concurrency <= 0 {
		concurrency = 8
	}

	zap.L().Info("pipeline: processing batch",
		zap.Int("providers", len(providers)),
		zap.Int("concurrency", concurrency),
	)

	reports := make([]model.Report, len(providers))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, provider := range providers {
		g.Go(func() error {
			reports[i] = p.runIsolated(gCtx, provider)
			return nil // don't abort batch on individual failure
		})
	}
	_ = g.Wait()

	return &BatchResult{
		Reports: reports,
		Queue:   review.BuildQueue(reports),
	}
}

// runIsolated runs one provider's pipeline, converting any error or panic
// into a terminal degraded report.
func (p *Pipeline) runIsolated(ctx context.Context, provider model.ProviderRecord) (report model.Report) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("pipeline: panic during provider validation",
				zap.String("npi", provider.NPI),
				zap.Any("panic", r),
			)
			report = p.degradedReport(provider, fmt.Errorf("panic: %v", r))
		}
	}()

	result, err := p.Run(ctx, provider)
	if err != nil {
		zap.L().Error("pipeline: provider validation failed",
			zap.String("npi", provider.NPI),
			zap.Error(err),
		)
		return p.degradedReport(provider, err)
	}
	return *result
}

// degradedReport is the terminal evaluation for a provider whose pipeline
// run failed outright: needs_review at HIGH priority, with the truncated
// error as the reason. Degraded slots still flow through queue building
// like any other report.
func (p *Pipeline) degradedReport(provider model.ProviderRecord, err error) model.Report {
	provider = provider.Normalize()

	msg := err.Error()
	if len(msg) > maxErrorReasonLen {
		msg = msg[:maxErrorReasonLen]
	}

	cfg := p.cfg.Review
	score := cfg.HighThreshold
	if score <= 0 {
		score = review.DefaultConfig().HighThreshold
	}

	report := model.Report{
		Provider: provider,
		// No external data was obtained; consolidate against absent
		// observations so every field still carries a note.
		Consolidated:  p.reconciler.Record(provider, nil, nil),
		Status:        model.StatusNeedsReview,
		Reasons:       []string{"processing failed: " + msg},
		PriorityScore: score,
		PriorityLevel: model.PriorityHigh,
	}
	report.Explanation = review.Explain(report)
	return report
}
