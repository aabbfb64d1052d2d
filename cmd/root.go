package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtailor/internal/config"
	"jobtailor/internal/embeddings"
	"jobtailor/internal/llm"
	"jobtailor/internal/logging"
	"jobtailor/internal/pipeline"
	"jobtailor/internal/profile"
	"jobtailor/internal/store"
	"jobtailor/pkg/models"
)

const app = "jobtailor"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobtailor collects job postings and generates a tailored resume for each",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is jobtailor.yaml in current directory)")
}

// setup loads configuration and installs the global logger. Every
// subcommand except version goes through it.
func setup() (*config.Config, *zap.Logger, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(app + ".yaml"); err == nil {
			path = app + ".yaml"
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	logging.SetGlobalLogger(logger)

	return cfg, logger, nil
}

// runnerOptions controls which collaborators a subcommand needs; the
// expensive ones stay unbuilt when the command never touches them.
type runnerOptions struct {
	needLLM        bool
	needEmbeddings bool
}

// buildRunner assembles the pipeline runner with exactly the collaborators
// the subcommand asked for.
func buildRunner(ctx context.Context, cfg *config.Config, opts runnerOptions) (*pipeline.Runner, store.Store, error) {
	st, err := store.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect store: %w", err)
	}

	prof, err := profile.Load(cfg.Profile.Path)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}

	var provider llm.Provider
	if opts.needLLM {
		provider, err = llm.NewProvider(cfg)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
	}

	var embedder embeddings.Provider
	if opts.needEmbeddings {
		gemini, err := embeddings.NewGeminiProvider(ctx, cfg)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
		embedder = embeddings.NewRedisCache(cfg, gemini)
	}

	return pipeline.New(cfg, st, provider, embedder, prof), st, nil
}

func printStageSummary(s pipeline.StageSummary) {
	fmt.Printf("%s: processed=%d succeeded=%d skipped=%d stale=%d failed=%d\n",
		s.Stage, s.Processed, s.Succeeded, s.Skipped, s.Stale, s.Failed)
	for _, f := range s.Failures {
		fmt.Printf("  failed %s (%s at %s): %s\n", f.RecordID, f.Title, f.Company, f.Reason)
	}
}

func printStatusCounts(counts map[models.Status]int) {
	total := 0
	for _, status := range models.AllStatuses {
		fmt.Printf("%-10s %d\n", status, counts[status])
		total += counts[status]
	}
	fmt.Printf("%-10s %d\n", "total", total)
}
