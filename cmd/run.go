package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Leorasaharia/provider-directory/internal/model"
)

var runProvider model.ProviderRecord

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Validate a single provider record",
	Long: `Validates one provider against the NPI registry and any known
practice website, printing the full report as JSON.

Example:
  provider-directory run --name "Jon Smith" --npi 1053395590 --phone 555-1000 --impact 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if runProvider.Name == "" {
			return eris.New("run: --name is required")
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Pipeline.Run(ctx, runProvider)
		if err != nil {
			return eris.Wrap(err, "run: validate provider")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	runCmd.Flags().StringVar(&runProvider.Name, "name", "", "provider name")
	runCmd.Flags().StringVar(&runProvider.NPI, "npi", "", "NPI number")
	runCmd.Flags().StringVar(&runProvider.Phone, "phone", "", "phone number")
	runCmd.Flags().StringVar(&runProvider.Address, "address", "", "practice address")
	runCmd.Flags().StringVar(&runProvider.Speciality, "speciality", "", "speciality")
	runCmd.Flags().IntVar(&runProvider.Impact, "impact", model.DefaultImpact, "member impact (1-5)")
	rootCmd.AddCommand(runCmd)
}
