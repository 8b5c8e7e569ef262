package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Leorasaharia/provider-directory/internal/model"
	"github.com/Leorasaharia/provider-directory/internal/store"
)

var (
	reportsStatus string
	reportsNPI    string
	reportsLimit  int
	reportsQueue  bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List persisted validation reports",
	Long: `Lists reports from the store, optionally filtered by status or NPI.
With --queue, prints the persisted review queue ordered by priority.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var reports []model.Report
		if reportsQueue {
			reports, err = st.ReviewQueue(ctx, reportsLimit)
		} else {
			reports, err = st.ListReports(ctx, store.ReportFilter{
				Status: model.ReviewStatus(reportsStatus),
				NPI:    reportsNPI,
				Limit:  reportsLimit,
			})
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	},
}

func init() {
	reportsCmd.Flags().StringVar(&reportsStatus, "status", "", "filter by status (confirmed|updated|needs_review)")
	reportsCmd.Flags().StringVar(&reportsNPI, "npi", "", "filter by NPI")
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 100, "max reports to list")
	reportsCmd.Flags().BoolVar(&reportsQueue, "queue", false, "print the prioritized review queue")
	rootCmd.AddCommand(reportsCmd)
}
