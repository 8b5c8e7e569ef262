package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Leorasaharia/provider-directory/internal/model"
	"github.com/Leorasaharia/provider-directory/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Pipeline, cfg.Batch.MaxConcurrentProviders),
		}

		go gracefulShutdown(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

const shutdownTimeout = 10 * time.Second

// gracefulShutdown waits for the signal context to cancel, then drains
// in-flight requests on a fresh timeout context. Shutting down on the
// already-canceled context would abort the drain immediately.
func gracefulShutdown(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(drainCtx)
}

// newRouter builds the API routes.
func newRouter(p *pipeline.Pipeline, batchConcurrency int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/validate", func(w http.ResponseWriter, req *http.Request) {
		var provider model.ProviderRecord
		if err := json.NewDecoder(req.Body).Decode(&provider); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if provider.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		report, err := p.Run(req.Context(), provider)
		if err != nil {
			zap.L().Error("validate failed", zap.String("npi", provider.NPI), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "validation failed")
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	r.Post("/validate-batch", func(w http.ResponseWriter, req *http.Request) {
		var providers []model.ProviderRecord
		if err := json.NewDecoder(req.Body).Decode(&providers); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result := p.RunBatch(req.Context(), providers, batchConcurrency)
		writeJSON(w, http.StatusOK, result)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
