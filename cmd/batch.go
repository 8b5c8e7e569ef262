package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Leorasaharia/provider-directory/internal/ingest"
	"github.com/Leorasaharia/provider-directory/internal/model"
)

var (
	batchFile        string
	batchLimit       int
	batchConcurrency int
	batchOutput      string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Validate a provider roster from a CSV or XLSX file",
	Long: `Reads a provider roster and validates every record concurrently,
printing the ordered reports and the prioritized review queue as JSON.

Examples:
  provider-directory batch --file roster.csv
  provider-directory batch --file roster.xlsx --limit 50 --output results.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		providers, err := loadRoster(batchFile)
		if err != nil {
			return err
		}
		zap.L().Info("parsed roster", zap.Int("providers", len(providers)))

		if batchLimit > 0 && batchLimit < len(providers) {
			providers = providers[:batchLimit]
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result := env.Pipeline.RunBatch(ctx, providers, batchConcurrency)

		zap.L().Info("batch complete",
			zap.Int("reports", len(result.Reports)),
			zap.Int("review_queue", len(result.Queue)),
		)

		out := os.Stdout
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrapf(err, "batch: create output file %s", batchOutput)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// loadRoster picks the ingest loader by file extension.
func loadRoster(path string) ([]model.ProviderRecord, error) {
	if path == "" {
		return nil, eris.New("batch: --file is required")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ingest.LoadCSV(path)
	case ".xlsx":
		return ingest.LoadXLSX(path)
	}
	return nil, eris.Errorf("batch: unsupported roster format %q (use .csv or .xlsx)", filepath.Ext(path))
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "roster file (.csv or .xlsx)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of providers to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent providers (default from config)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write JSON results to file instead of stdout")
	rootCmd.AddCommand(batchCmd)
}
