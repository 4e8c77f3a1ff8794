package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmeta/internal/doi"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [dois...]",
	Short: "Clean and validate DOIs without fetching metadata",
	Long: `Normalize strips URL and "doi:" prefixes, lower-cases, validates against
the DOI syntax, and dedupes while preserving order. Valid DOIs go to
stdout one per line; rejected tokens are reported on stderr.`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().String("input", "", "file with DOIs, one per line or comma-separated (\"-\" for stdin)")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	rawText, err := readInput(args, inputPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rawText) == "" {
		return fmt.Errorf("provide DOIs as arguments, via --input, or on stdin")
	}

	result := doi.Parse(rawText)
	for _, d := range result.DOIs {
		fmt.Println(d)
	}
	for _, raw := range result.Invalid {
		fmt.Fprintf(os.Stderr, "invalid: %s\n", raw)
	}

	if len(result.DOIs) == 0 {
		return fmt.Errorf("no valid DOIs found in input")
	}
	return nil
}
