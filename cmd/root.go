package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Leorasaharia/provider-directory/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "provider-directory",
	Short: "Provider directory validation pipeline",
	Long:  "Validates healthcare provider records against the NPI registry and practice websites, scoring per-field confidence and prioritizing records for human review.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
