package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chembench/molprop/pkg/chem/fingerprint"
	"github.com/chembench/molprop/pkg/config"
	"github.com/chembench/molprop/pkg/dataset"
	"github.com/chembench/molprop/pkg/experiment"
	"github.com/chembench/molprop/pkg/llms"
	"github.com/chembench/molprop/pkg/logging"
	"github.com/chembench/molprop/pkg/plot"
	"github.com/chembench/molprop/pkg/results"
)

var runFlags struct {
	configPath  string
	datasetPath string
	tasks       []string
	mlOnly      bool
	verbose     bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full experiment",
	Long: `Runs the regression battery over every configured task and
representation, then (unless --ml-only) queries the configured language
models over the same splits. Raw per-trial records go to the SQLite store,
summaries to CSV, transcripts to the provider response directories.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExperiment(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.configPath, "config", "c", "", "config file (YAML)")
	runCmd.Flags().StringVarP(&runFlags.datasetPath, "dataset", "d", "", "dataset file (CSV or Parquet), overrides config")
	runCmd.Flags().StringSliceVarP(&runFlags.tasks, "tasks", "t", nil, "task keys to run (default: all)")
	runCmd.Flags().BoolVar(&runFlags.mlOnly, "ml-only", false, "skip language model experiments")
	runCmd.Flags().BoolVarP(&runFlags.verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(runCmd)
}

func loadRunConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if runFlags.configPath != "" {
		cfg, err = config.Load(runFlags.configPath)
	} else {
		cfg = config.Default()
		err = cfg.Validate()
	}
	if err != nil {
		return nil, err
	}
	if runFlags.datasetPath != "" {
		cfg.Dataset.Path = runFlags.datasetPath
	}
	if len(runFlags.tasks) > 0 {
		cfg.Experiment.Tasks = runFlags.tasks
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func setupLogging(level string, verbose bool) {
	severity := logging.ParseSeverity(level)
	if verbose {
		severity = logging.DEBUG
	}
	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: severity,
		Outputs:  []logging.Output{logging.NewConsoleOutput(true)},
	}))
}

func runExperiment(ctx context.Context) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging.Level, runFlags.verbose)
	logger := logging.GetLogger()

	// Credentials for every configured provider are checked before any trial
	// work; a missing key in LLM mode fails the run here, not hours in.
	llmEnabled := !runFlags.mlOnly && cfg.LLM.Enabled
	var providers []string
	if llmEnabled {
		for name := range cfg.LLM.Providers {
			providers = append(providers, name)
		}
		sort.Strings(providers)
		for _, provider := range providers {
			if _, err := cfg.ResolveAPIKey(provider); err != nil {
				return err
			}
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := dataset.Load(ctx, cfg.Dataset.Path, cfg.Dataset.SMILESColumn)
	if err != nil {
		return err
	}
	logger.Info(ctx, "loaded %d molecules (%d excluded)", ds.Len(), ds.Excluded)

	store, err := results.OpenStore(filepath.Join(cfg.Output.ResultsDir, "results.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.BeginRun()
	if err != nil {
		return err
	}
	logger.Info(ctx, "run %s started", runID)

	tasks, err := config.SelectTasks(cfg.Experiment.Tasks)
	if err != nil {
		return err
	}

	reprs := cfg.Experiment.Representations
	if len(reprs) == 0 {
		reprs = fingerprint.Names()
	}

	var all []results.TrialRecord

	runner := experiment.NewRunner(cfg, ds, runID)
	for _, task := range tasks {
		for _, repr := range reprs {
			logger.Info(ctx, "running battery: task=%s repr=%s", task.Key, repr)
			records, err := runner.RunTask(ctx, task, repr)
			if err != nil {
				return err
			}
			if err := store.Insert(records); err != nil {
				return err
			}
			all = append(all, records...)
		}
	}
	for name, n := range runner.FitFailures {
		logger.Warn(ctx, "model %s failed %d fits", name, n)
	}

	if llmEnabled {
		for _, provider := range providers {
			llm, err := llms.New(cfg, provider)
			if err != nil {
				return err
			}
			lrunner := experiment.NewLLMRunner(cfg, ds, llm, provider, runID)
			for _, task := range tasks {
				logger.Info(ctx, "querying %s: task=%s", provider, task.Key)
				records, err := lrunner.RunTask(ctx, task)
				if err != nil {
					return err
				}
				if err := store.Insert(records); err != nil {
					return err
				}
				all = append(all, records...)
			}
			for task, n := range lrunner.Missing {
				logger.Warn(ctx, "%s: %d missing trials on task %s", provider, n, task)
			}
		}
	}

	summaries := results.Aggregate(all)
	results.SortForReport(summaries)
	summaryPath := filepath.Join(cfg.Output.ResultsDir, "summary.csv")
	if err := results.WriteSummaryCSV(summaryPath, summaries); err != nil {
		return err
	}
	logger.Info(ctx, "summary written to %s", summaryPath)

	for _, task := range tasks {
		for _, repr := range reprs {
			path := filepath.Join(cfg.Output.ResultsDir, "plots",
				fmt.Sprintf("%s_%s_mae.png", task.Key, repr))
			if err := plot.MAEBarChart(path, task.Key, repr, summaries); err != nil {
				logger.Warn(ctx, "plot skipped for %s/%s: %v", task.Key, repr, err)
			}
		}
		if llmEnabled {
			path := filepath.Join(cfg.Output.ResultsDir, "plots",
				fmt.Sprintf("%s_llm_mae.png", task.Key))
			if err := plot.MAEBarChart(path, task.Key, "", summaries); err != nil {
				logger.Warn(ctx, "plot skipped for %s (llm): %v", task.Key, err)
			}
		}
	}
	return nil
}
