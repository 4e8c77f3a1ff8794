package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmeta/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the OpenAlex metadata fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the OpenAlex works endpoint. Defaults to the public API;
	// tests substitute an httptest server.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Email is sent as the mailto parameter for OpenAlex polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// APIKey is an optional OpenAlex Premium key sent as the api_key parameter.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts after a transient failure
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestsPerSecond caps the sustained request rate against the API
	// (default 5).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// ExtractConfig holds settings for the batch extraction pipeline.
type ExtractConfig struct {
	// ChunkSize is the number of DOIs per processing chunk (default 50).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`
}

// ExportFormat selects the export output format.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// ExportConfig holds settings for the export writer.
type ExportConfig struct {
	// OutputDir is the directory export files are written to (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Format selects the output format: csv, json, or yaml.
	Format ExportFormat `json:"format" yaml:"format"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (default ":5001").
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout bounds reading of the request including the body (default 30s).
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing of the response (default 5m; a large batch
	// of DOIs is fetched sequentially while the client waits).
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Extract ExtractConfig `json:"extract" yaml:"extract"`
	Export  ExportConfig  `json:"export" yaml:"export"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}
