package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Leorasaharia/provider-directory/internal/pipeline"
	"github.com/Leorasaharia/provider-directory/internal/registry"
	"github.com/Leorasaharia/provider-directory/internal/review"
	"github.com/Leorasaharia/provider-directory/internal/scrape"
	"github.com/Leorasaharia/provider-directory/internal/store"
)

// pipelineEnv holds the initialized store and pipeline shared by the run,
// batch, and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, external clients, and site directory, and
// builds the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := review.ValidateConfig(cfg.Review); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "init: migrate store")
	}

	var sites pipeline.SiteDirectory
	if cfg.Sites.Path != "" {
		sites, err = pipeline.LoadSiteDirectory(cfg.Sites.Path)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		zap.L().Info("loaded site directory", zap.Int("entries", len(sites)))
	}

	p := pipeline.New(
		cfg,
		registry.NewHTTPClient(cfg.Registry),
		scrape.NewSiteScraper(cfg.Scrape),
		st,
		sites,
	)

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	}
	return nil, eris.Errorf("init: unknown store driver %q", cfg.Store.Driver)
}
