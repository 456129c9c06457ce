// Package config loads and validates gridkit.json, the demo server's
// configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "gridkit.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultDataset is the dataset served when none is configured.
	DefaultDataset = "tasks"
)

// Dataset names understood by the demo server. "s3" and "postgres" need
// their respective sections filled in; the rest are generated in memory.
var knownDatasets = map[string]bool{
	"tasks":    true,
	"users":    true,
	"s3":       true,
	"postgres": true,
}

// Config represents the complete gridkit.json configuration.
type Config struct {
	// Name is the project name, used in logs.
	Name string `json:"name,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the server port.
	Port int `json:"port,omitempty"`

	// Dataset selects the data source: "tasks", "users", "s3" or
	// "postgres".
	Dataset string `json:"dataset,omitempty"`

	// Grid contains URL state settings.
	Grid GridConfig `json:"grid,omitempty"`

	// S3 configures the S3-backed dataset.
	S3 S3Config `json:"s3,omitempty"`

	// Postgres configures the Postgres-backed dataset.
	Postgres PostgresConfig `json:"postgres,omitempty"`

	// Metrics enables the Prometheus /metrics endpoint.
	Metrics bool `json:"metrics,omitempty"`

	// Tracing enables OpenTelemetry event tracing.
	Tracing bool `json:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// GridConfig contains URL state settings.
type GridConfig struct {
	// PageSize is the default rows per page.
	PageSize int `json:"pageSize,omitempty"`

	// MultiSort switches the sort encoding from the sort_by/sort_order
	// pair to the delimited multi-column parameter.
	MultiSort bool `json:"multiSort,omitempty"`

	// ManualFilters lists filter fields that stage edits until an
	// explicit apply instead of committing instantly.
	ManualFilters []string `json:"manualFilters,omitempty"`
}

// S3Config contains the S3 dataset settings.
type S3Config struct {
	// Bucket is the bucket holding the dataset object.
	Bucket string `json:"bucket,omitempty"`

	// Key is the object key of the JSON dataset.
	Key string `json:"key,omitempty"`

	// Region overrides the SDK's default region resolution.
	Region string `json:"region,omitempty"`
}

// PostgresConfig contains the Postgres dataset settings.
type PostgresConfig struct {
	// DSN is the connection string.
	DSN string `json:"dsn,omitempty"`

	// Table is the table to serve.
	Table string `json:"table,omitempty"`

	// Columns maps grid column IDs to table columns. Columns not listed
	// cannot be filtered or sorted.
	Columns map[string]string `json:"columns,omitempty"`

	// SearchColumns lists the table columns the global filter searches.
	SearchColumns []string `json:"searchColumns,omitempty"`

	// DefaultOrder is the ORDER BY clause used when the URL carries no
	// sort, e.g. "id ASC".
	DefaultOrder string `json:"defaultOrder,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Name:    "gridkit",
		Host:    DefaultHost,
		Port:    DefaultPort,
		Dataset: DefaultDataset,
		Grid: GridConfig{
			PageSize: 10,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// gridkit.json in the directory; a missing file yields the defaults.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := New()
			cfg.configPath = path
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "gridkit"
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Dataset == "" {
		c.Dataset = DefaultDataset
	}
	if c.Grid.PageSize == 0 {
		c.Grid.PageSize = 10
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if !knownDatasets[c.Dataset] {
		return fmt.Errorf("unknown dataset %q", c.Dataset)
	}
	if c.Dataset == "s3" && (c.S3.Bucket == "" || c.S3.Key == "") {
		return fmt.Errorf("dataset %q needs s3.bucket and s3.key", c.Dataset)
	}
	if c.Dataset == "postgres" && (c.Postgres.DSN == "" || c.Postgres.Table == "") {
		return fmt.Errorf("dataset %q needs postgres.dsn and postgres.table", c.Dataset)
	}
	if c.Grid.PageSize < 1 {
		return fmt.Errorf("invalid grid.pageSize %d", c.Grid.PageSize)
	}
	return nil
}

// Address returns the host:port to listen on.
func (c *Config) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Exists reports whether a gridkit.json is present in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
