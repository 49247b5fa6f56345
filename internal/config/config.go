package config

import (
	"fmt"
	"os"

	"brai/internal/artifact"
	"brai/internal/csvload"

	"gopkg.in/yaml.v3"
)

// Catalog modes.
const (
	ModeStatic = "static"
	ModeCSV    = "csv"
	ModeFile   = "file"
)

// Prediction store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"` // "development" or "production"
	} `yaml:"server"`

	Data struct {
		Mode        string   `yaml:"mode"` // "static" or "csv"
		DatasetRoot string   `yaml:"dataset_root"`
		Encodings   []string `yaml:"encodings"`
	} `yaml:"data"`

	Models struct {
		Mode   string            `yaml:"mode"`   // "static" or "file"
		Source string            `yaml:"source"` // "fs" or "s3"
		Root   string            `yaml:"root"`
		S3     artifact.S3Config `yaml:"s3"`
	} `yaml:"models"`

	Scoring struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"scoring"`

	Store struct {
		Driver string `yaml:"driver"` // "memory", "sqlite" or "postgres"
		DSN    string `yaml:"dsn"`    // SQLite path or PostgreSQL URL
	} `yaml:"store"`

	Auth struct {
		Enabled   bool   `yaml:"enabled"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	// Expand environment variables in secrets and connection strings
	config.Store.DSN = os.ExpandEnv(config.Store.DSN)
	config.Auth.JWTSecret = os.ExpandEnv(config.Auth.JWTSecret)
	config.Models.S3.Bucket = os.ExpandEnv(config.Models.S3.Bucket)
	config.Models.S3.Endpoint = os.ExpandEnv(config.Models.S3.Endpoint)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a configuration that serves the built-in static tables.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "development"
	}
	if c.Data.Mode == "" {
		c.Data.Mode = ModeStatic
	}
	if c.Data.DatasetRoot == "" {
		c.Data.DatasetRoot = "./data/datasets"
	}
	if len(c.Data.Encodings) == 0 {
		c.Data.Encodings = append([]string(nil), csvload.DefaultEncodings...)
	}
	if c.Models.Mode == "" {
		c.Models.Mode = ModeStatic
	}
	if c.Models.Source == "" {
		c.Models.Source = string(artifact.DriverFilesystem)
	}
	if c.Models.Root == "" {
		c.Models.Root = "./data/models"
	}
	if c.Scoring.TimeoutSeconds == 0 {
		c.Scoring.TimeoutSeconds = 30
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreMemory
	}
	if c.Store.Driver == StoreSQLite && c.Store.DSN == "" {
		c.Store.DSN = "./data/predictions.db"
	}
}

// Validate rejects unknown modes and incomplete sections.
func (c *Config) Validate() error {
	switch c.Data.Mode {
	case ModeStatic, ModeCSV:
	default:
		return fmt.Errorf("data.mode must be %q or %q, got %q", ModeStatic, ModeCSV, c.Data.Mode)
	}
	if err := csvload.ValidateEncodings(c.Data.Encodings); err != nil {
		return fmt.Errorf("data.encodings: %w", err)
	}

	switch c.Models.Mode {
	case ModeStatic, ModeFile:
	default:
		return fmt.Errorf("models.mode must be %q or %q, got %q", ModeStatic, ModeFile, c.Models.Mode)
	}
	switch artifact.Driver(c.Models.Source) {
	case artifact.DriverFilesystem:
	case artifact.DriverS3:
		if c.Models.Mode == ModeFile && c.Models.S3.Bucket == "" {
			return fmt.Errorf("models.s3.bucket is required when models.source is s3")
		}
	default:
		return fmt.Errorf("models.source must be %q or %q, got %q", artifact.DriverFilesystem, artifact.DriverS3, c.Models.Source)
	}

	switch c.Store.Driver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver must be one of memory, sqlite, postgres, got %q", c.Store.Driver)
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production"
}
