package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chembench/molprop/pkg/results"
)

var aggregateFlags struct {
	resultsDir string
	runID      string
	out        string
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Rebuild summaries from the raw record store",
	Long: `Reads the per-trial records of a run (the latest by default) from
the SQLite store and regenerates the ranked summary CSV. The result is
identical to the summary written by the original run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := results.OpenStore(filepath.Join(aggregateFlags.resultsDir, "results.db"))
		if err != nil {
			return err
		}
		defer store.Close()

		runID := aggregateFlags.runID
		if runID == "" {
			if runID, err = store.LatestRun(); err != nil {
				return err
			}
		}

		records, err := store.Records(runID)
		if err != nil {
			return err
		}
		summaries := results.Aggregate(records)
		results.SortForReport(summaries)

		out := aggregateFlags.out
		if out == "" {
			out = filepath.Join(aggregateFlags.resultsDir, "summary.csv")
		}
		if err := results.WriteSummaryCSV(out, summaries); err != nil {
			return err
		}
		fmt.Printf("aggregated %d records from run %s into %s\n", len(records), runID, out)
		return nil
	},
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateFlags.resultsDir, "results-dir", "Results", "directory holding results.db")
	aggregateCmd.Flags().StringVar(&aggregateFlags.runID, "run", "", "run id (default: latest)")
	aggregateCmd.Flags().StringVarP(&aggregateFlags.out, "out", "o", "", "output CSV path")
	rootCmd.AddCommand(aggregateCmd)
}
