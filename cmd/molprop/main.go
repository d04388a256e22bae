package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "molprop",
	Short: "Molecular property prediction benchmark",
	Long: `molprop compares classical regression models against language model
in-context learning on molecular property prediction.

Each run samples deterministic train/test splits from a SMILES dataset,
trains the full regression battery on several molecular representations,
optionally queries the configured language models with the same splits, and
aggregates everything into ranked mean-absolute-error summaries.`,
	Version: "1.0.0",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
