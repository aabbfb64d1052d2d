package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtailor/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many records sit in each pipeline status",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()

		cfg, logger, err := setup()
		if err != nil {
			log.Fatalf("setup: %v", err)
		}

		st, err := store.Connect(ctx, cfg)
		if err != nil {
			logger.Fatal("connecting store", zap.Error(err))
		}
		defer st.Close()

		counts, err := st.StatusCounts(ctx)
		if err != nil {
			logger.Fatal("reading status counts", zap.Error(err))
		}
		printStatusCounts(counts)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
