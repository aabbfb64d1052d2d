package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtailor/internal/store"
)

var skipReason string

var skipCmd = &cobra.Command{
	Use:   "skip <record-id>",
	Short: "Mark a record skipped so the pipeline stops processing it",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
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

		id := args[0]
		if err := st.Skip(ctx, id, skipReason); err != nil {
			logger.Fatal("skipping record",
				zap.String("record_id", id),
				zap.Error(err),
			)
		}
		fmt.Printf("record %s skipped: %s\n", id, skipReason)
	},
}

func init() {
	rootCmd.AddCommand(skipCmd)

	skipCmd.Flags().StringVarP(&skipReason, "reason", "r", "skipped manually", "reason recorded on the skipped record")
}
