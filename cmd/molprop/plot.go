package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chembench/molprop/pkg/plot"
	"github.com/chembench/molprop/pkg/results"
)

var plotFlags struct {
	summary string
	outDir  string
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render MAE bar charts from a summary CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := results.ReadSummaryCSV(plotFlags.summary)
		if err != nil {
			return err
		}

		type group struct{ task, repr string }
		seen := map[group]bool{}
		for _, s := range summaries {
			seen[group{s.Task, s.Representation}] = true
		}

		n := 0
		for g := range seen {
			name := fmt.Sprintf("%s_%s_mae.png", g.task, g.repr)
			if g.repr == "" {
				name = fmt.Sprintf("%s_llm_mae.png", g.task)
			}
			path := filepath.Join(plotFlags.outDir, name)
			if err := plot.MAEBarChart(path, g.task, g.repr, summaries); err != nil {
				fmt.Printf("skipping %s: %v\n", name, err)
				continue
			}
			n++
		}
		fmt.Printf("wrote %d charts to %s\n", n, plotFlags.outDir)
		return nil
	},
}

func init() {
	plotCmd.Flags().StringVarP(&plotFlags.summary, "summary", "s", filepath.Join("Results", "summary.csv"), "summary CSV to plot")
	plotCmd.Flags().StringVarP(&plotFlags.outDir, "out-dir", "o", filepath.Join("Results", "plots"), "output directory")
	rootCmd.AddCommand(plotCmd)
}
