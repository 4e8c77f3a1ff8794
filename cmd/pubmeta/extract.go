package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmeta/internal/export"
	"github.com/pdiddy/pubmeta/internal/extract"
	"github.com/pdiddy/pubmeta/internal/fetch"
	"github.com/pdiddy/pubmeta/pkg/types"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "pubmeta/0.1"
)

var extractCmd = &cobra.Command{
	Use:   "extract [dois...]",
	Short: "Fetch and flatten publication metadata for DOIs",
	Long: `Extract cleans the given DOIs (arguments, --input file, or stdin), fetches
each one from the OpenAlex works API in order, flattens the nested records
into tabular rows, and writes a timestamped export file. Failures are
reported per DOI and never abort the rest of the batch.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("input", "", "file with DOIs, one per line or comma-separated (\"-\" for stdin)")
	extractCmd.Flags().Int("chunk-size", 0, "DOIs per processing chunk (default 50)")
	extractCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 10s)")
	extractCmd.Flags().Int("retries", 0, "retry attempts per transient failure (default 3)")
	extractCmd.Flags().Float64("rate", 0, "max API requests per second (default 5)")
	extractCmd.Flags().String("email", "", "email for the OpenAlex polite pool")
	extractCmd.Flags().String("api-key", "", "OpenAlex Premium API key")
	extractCmd.Flags().String("format", "csv", "export format: csv, json, or yaml")
	extractCmd.Flags().String("output-dir", "output", "directory for export files")
	extractCmd.Flags().Bool("stdout", false, "write the export to stdout instead of a file")

	rootCmd.AddCommand(extractCmd)
}

// readInput assembles the raw DOI text from arguments, an input file, or stdin.
func readInput(args []string, inputPath string) (string, error) {
	var parts []string
	if len(args) > 0 {
		parts = append(parts, strings.Join(args, "\n"))
	}

	switch inputPath {
	case "":
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		parts = append(parts, string(data))
	default:
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return "", fmt.Errorf("reading input file: %w", err)
		}
		parts = append(parts, string(data))
	}

	return strings.Join(parts, "\n"), nil
}

func fetchConfigFromFlags(cmd *cobra.Command) types.FetchConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	retries, _ := cmd.Flags().GetInt("retries")
	ratePerSec, _ := cmd.Flags().GetFloat64("rate")
	email, _ := cmd.Flags().GetString("email")
	apiKey, _ := cmd.Flags().GetString("api-key")

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Email:             secretDefault("openalex-email", email),
		APIKey:            secretDefault("openalex-api-key", apiKey),
		MaxRetries:        retries,
		RequestsPerSecond: ratePerSec,
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	rawText, err := readInput(args, inputPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rawText) == "" {
		return fmt.Errorf("provide DOIs as arguments, via --input, or on stdin")
	}

	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	formatStr, _ := cmd.Flags().GetString("format")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	toStdout, _ := cmd.Flags().GetBool("stdout")

	format := types.ExportFormat(formatStr)
	switch format {
	case types.ExportCSV, types.ExportJSON, types.ExportYAML:
	default:
		return fmt.Errorf("unknown format %q (use csv, json, or yaml)", formatStr)
	}

	fetcher := fetch.New(fetchConfigFromFlags(cmd))

	result, err := extract.Extract(cmd.Context(), fetcher, rawText,
		types.ExtractConfig{ChunkSize: chunkSize}, os.Stderr)
	if err != nil {
		return err
	}

	if len(result.Records) > 0 {
		if toStdout {
			content, renderErr := export.Render(result.Records, format)
			if renderErr != nil {
				return renderErr
			}
			os.Stdout.Write(content)
		} else {
			path, writeErr := export.Write(result.Records, types.ExportConfig{
				OutputDir: outputDir,
				Format:    format,
			})
			if writeErr != nil {
				return writeErr
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d input(s) failed extraction", result.Failed())
	}
	return nil
}
