// Package pipeline orchestrates provider validation: external lookups,
// field reconciliation, record evaluation, and report persistence.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Leorasaharia/provider-directory/internal/config"
	"github.com/Leorasaharia/provider-directory/internal/model"
	"github.com/Leorasaharia/provider-directory/internal/reconcile"
	"github.com/Leorasaharia/provider-directory/internal/registry"
	"github.com/Leorasaharia/provider-directory/internal/review"
	"github.com/Leorasaharia/provider-directory/internal/scrape"
	"github.com/Leorasaharia/provider-directory/internal/store"
)

// Pipeline validates provider records end to end.
type Pipeline struct {
	cfg        *config.Config
	registry   registry.Client
	scraper    scrape.Scraper
	store      store.Store // optional; nil disables persistence
	sites      SiteDirectory
	reconciler *reconcile.Reconciler
	evaluator  *review.Evaluator
}

// New creates a Pipeline with all dependencies. st may be nil when report
// persistence is not wanted.
func New(cfg *config.Config, reg registry.Client, sc scrape.Scraper, st store.Store, sites SiteDirectory) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		registry:   reg,
		scraper:    sc,
		store:      st,
		sites:      sites,
		reconciler: reconcile.New(cfg.Reconcile),
		evaluator:  review.NewEvaluator(cfg.Review),
	}
}

// Run validates a single provider: fetches the registry record and (when a
// practice URL is known) the website observation in parallel, reconciles
// every tracked field, evaluates the record, and persists the report.
//
// External source failures are not pipeline errors; they degrade to absent
// observations and are reflected in confidence scores.
func (p *Pipeline) Run(ctx context.Context, provider model.ProviderRecord) (*model.Report, error) {
	provider = provider.Normalize()
	log := zap.L().With(zap.String("npi", provider.NPI), zap.String("name", provider.Name))
	log.Info("pipeline: validating provider")

	var (
		registryObs *model.Observation
		webObs      *model.Observation
	)

	g, gCtx := errgroup.WithContext(ctx)

	// Each fetch goroutine carries its own panic boundary: errgroup does not
	// recover panics, and a panicking collaborator must surface as this
	// record's error, not kill the process.
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = eris.Errorf("pipeline: registry lookup panicked: %v", r)
			}
		}()
		if provider.NPI == "" {
			return nil
		}
		obs, err := p.registry.Lookup(gCtx, provider.NPI)
		if err != nil {
			log.Warn("pipeline: registry lookup failed, treating as not found", zap.Error(err))
			return nil
		}
		registryObs = obs
		return nil
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = eris.Errorf("pipeline: website scrape panicked: %v", r)
			}
		}()
		siteURL := p.sites.URLFor(provider.NPI)
		if siteURL == "" {
			return nil
		}
		obs, err := p.scraper.Scrape(gCtx, siteURL)
		if err != nil {
			log.Warn("pipeline: website scrape failed, treating as absent",
				zap.String("url", siteURL),
				zap.Error(err),
			)
			return nil
		}
		webObs = obs
		return nil
	})

	// Collaborator errors are swallowed above; Wait only reports a recovered
	// panic or context cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	consolidated := p.reconciler.Record(provider, registryObs, webObs)
	report := p.evaluator.Evaluate(provider, consolidated)
	report.Explanation = review.Explain(report)
	report.ID = uuid.New().String()
	report.CreatedAt = time.Now().UTC()

	if p.store != nil {
		if err := p.store.SaveReport(ctx, &report); err != nil {
			log.Warn("pipeline: failed to persist report", zap.Error(err))
		}
	}

	log.Info("pipeline: provider validated",
		zap.String("status", string(report.Status)),
		zap.Float64("risk_score", report.RiskScore),
		zap.Float64("priority_score", report.PriorityScore),
	)

	return &report, nil
}
