package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/pubmeta/internal/server"
	"github.com/pdiddy/pubmeta/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction pipeline over HTTP",
	Long: `Serve starts an HTTP server exposing POST /extract (JSON preview of the
flattened records), POST /download (CSV attachment), and GET /healthz.
Each request runs its own sequential extraction against OpenAlex.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":5001", "listen address")
	serveCmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().Duration("write-timeout", 5*time.Minute, "HTTP write timeout")
	serveCmd.Flags().Int("chunk-size", 0, "DOIs per processing chunk (default 50)")
	serveCmd.Flags().Duration("timeout", 0, "outbound HTTP request timeout (default 10s)")
	serveCmd.Flags().Int("retries", 0, "retry attempts per transient failure (default 3)")
	serveCmd.Flags().Float64("rate", 0, "max API requests per second (default 5)")
	serveCmd.Flags().String("email", "", "email for the OpenAlex polite pool")
	serveCmd.Flags().String("api-key", "", "OpenAlex Premium API key")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	s := server.New(
		types.ServerConfig{
			Addr:         addr,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		fetchConfigFromFlags(cmd),
		types.ExtractConfig{ChunkSize: chunkSize},
		log,
	)
	return s.Run()
}
