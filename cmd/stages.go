package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtailor/internal/pipeline"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch postings from configured sources and store what is new",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()

		cfg, logger, err := setup()
		if err != nil {
			log.Fatalf("setup: %v", err)
		}

		runner, st, err := buildRunner(ctx, cfg, runnerOptions{})
		if err != nil {
			logger.Fatal("building pipeline", zap.Error(err))
		}
		defer st.Close()

		res := runner.Ingest(ctx)
		fmt.Printf("ingest: fetched=%d inserted=%d duplicates=%d failed=%d\n",
			res.Fetched, res.Inserted, res.Duplicates, res.Failed)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract structured requirements for new records",
	Run: func(_ *cobra.Command, _ []string) {
		runStage(runnerOptions{needLLM: true}, func(ctx context.Context, r *pipeline.Runner) (pipeline.StageSummary, error) {
			return r.Analyze(ctx)
		})
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Select the best-matching experience for analyzed records",
	Run: func(_ *cobra.Command, _ []string) {
		runStage(runnerOptions{needEmbeddings: true}, func(ctx context.Context, r *pipeline.Runner) (pipeline.StageSummary, error) {
			return r.Match(ctx)
		})
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate tailored resume PDFs for matched records",
	Run: func(_ *cobra.Command, _ []string) {
		runStage(runnerOptions{}, func(ctx context.Context, r *pipeline.Runner) (pipeline.StageSummary, error) {
			return r.Generate(ctx)
		})
	},
}

func runStage(opts runnerOptions, stage func(context.Context, *pipeline.Runner) (pipeline.StageSummary, error)) {
	ctx := context.Background()

	cfg, logger, err := setup()
	if err != nil {
		log.Fatalf("setup: %v", err)
	}

	// The LLM provider is only needed by generate for optional bullet
	// rewriting; pick it up when a key is available so rewriting works, and
	// run without it otherwise.
	if !opts.needLLM && cfg.LLM.RewriteEnabled && cfg.LLM.APIKey != "" {
		opts.needLLM = true
	}

	runner, st, err := buildRunner(ctx, cfg, opts)
	if err != nil {
		logger.Fatal("building pipeline", zap.Error(err))
	}
	defer st.Close()

	summary, err := stage(ctx, runner)
	if err != nil {
		logger.Fatal("stage failed", zap.Error(err))
	}
	printStageSummary(summary)
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(generateCmd)
}
