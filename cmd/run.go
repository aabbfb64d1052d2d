package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtailor/pkg/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: ingest, analyze, match, generate",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()

		cfg, logger, err := setup()
		if err != nil {
			log.Fatalf("setup: %v", err)
		}

		runner, st, err := buildRunner(ctx, cfg, runnerOptions{needLLM: true, needEmbeddings: true})
		if err != nil {
			logger.Fatal("building pipeline", zap.Error(err))
		}
		defer st.Close()

		summary, err := runner.Run(ctx)
		if err != nil {
			logger.Fatal("pipeline run failed", zap.Error(err))
		}

		if summary.Ingest != nil {
			fmt.Printf("ingest: fetched=%d inserted=%d duplicates=%d failed=%d\n",
				summary.Ingest.Fetched, summary.Ingest.Inserted, summary.Ingest.Duplicates, summary.Ingest.Failed)
		}
		for _, stage := range summary.Stages {
			printStageSummary(stage)
		}
		fmt.Printf("run %s finished in %s\n", summary.RunID, utils.FormatDuration(summary.Duration))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
