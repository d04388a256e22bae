package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chembench/molprop/pkg/config"
	"github.com/chembench/molprop/pkg/dataset"
	"github.com/chembench/molprop/pkg/experiment"
	"github.com/chembench/molprop/pkg/prompt"
)

var previewFlags struct {
	configPath  string
	datasetPath string
	task        string
	hint        string
	count       int
}

var previewCmd = &cobra.Command{
	Use:   "preview-prompt",
	Short: "Print the prompts the first trials would send, without any network calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.Config
		var err error
		if previewFlags.configPath != "" {
			cfg, err = config.Load(previewFlags.configPath)
		} else {
			cfg = config.Default()
			err = cfg.Validate()
		}
		if err != nil {
			return err
		}
		if previewFlags.datasetPath != "" {
			cfg.Dataset.Path = previewFlags.datasetPath
		}
		if previewFlags.hint != "" {
			cfg.LLM.Hint = previewFlags.hint
		}

		task, ok := config.TaskByKey(previewFlags.task)
		if !ok {
			return fmt.Errorf("unknown task %q", previewFlags.task)
		}

		ds, err := dataset.Load(context.Background(), cfg.Dataset.Path, cfg.Dataset.SMILESColumn)
		if err != nil {
			return err
		}
		y, err := ds.Targets(task)
		if err != nil {
			return err
		}

		for trial := 1; trial <= previewFlags.count; trial++ {
			split, err := experiment.NewSplit(trial, ds.Len(),
				cfg.Experiment.TrainSize, cfg.Experiment.TestSize)
			if err != nil {
				return err
			}
			examples := make([]prompt.Example, len(split.Train))
			for i, idx := range split.Train {
				examples[i] = prompt.Example{SMILES: ds.Records[idx].SMILES, Value: y[idx]}
			}
			testIdx := split.Test[0]

			text, err := prompt.Build(prompt.Hint(cfg.LLM.Hint), ds.Records[testIdx].SMILES, examples)
			if err != nil {
				return err
			}
			fmt.Printf("--- Prompt Preview %d ---\n%s\n", trial, text)
			fmt.Printf("True value: %v\n%s\n", y[testIdx], strings.Repeat("=", 50))
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewFlags.configPath, "config", "c", "", "config file (YAML)")
	previewCmd.Flags().StringVarP(&previewFlags.datasetPath, "dataset", "d", "", "dataset file, overrides config")
	previewCmd.Flags().StringVarP(&previewFlags.task, "task", "t", "logp", "task key")
	previewCmd.Flags().StringVar(&previewFlags.hint, "hint", "", "hint type, overrides config")
	previewCmd.Flags().IntVarP(&previewFlags.count, "count", "n", 3, "number of prompts to preview")
	rootCmd.AddCommand(previewCmd)
}
