package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// FileName is the optional YAML configuration file read from the working directory.
const FileName = "config.yaml"

// Config holds all configuration for the grocery console.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration (report viewer)
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	Database DatabaseConfig `yaml:"database"`
	Reports  ReportsConfig  `yaml:"reports"`
	PowerBI  PowerBIConfig  `yaml:"powerbi"`
	Email    EmailConfig    `yaml:"email"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects the relational store holding the grocery tables.
type DatabaseConfig struct {
	// Driver is one of: sqlite, postgres, mysql, sqlserver.
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	Path     string `yaml:"path" env:"DB_PATH" env-default:"database/grocery_store.db"` // sqlite only
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"0"` // 0 means dialect default
	User     string `yaml:"user" env:"DB_USER" env-default:"grocery"`
	Password string `yaml:"-" env:"DB_PASSWORD"` // Secret - not in YAML
	Name     string `yaml:"name" env:"DB_NAME" env-default:"grocery_store"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
}

// ReportsConfig holds the output directories for generated artifacts.
type ReportsConfig struct {
	CSVDir   string `yaml:"csv_dir" env:"REPORTS_CSV_DIR" env-default:"reports/csv"`
	GraphDir string `yaml:"graph_dir" env:"REPORTS_GRAPH_DIR" env-default:"reports/graphs"`
}

// PowerBIConfig holds the Power BI workspace and service principal used for uploads.
type PowerBIConfig struct {
	TenantID     string `yaml:"tenant_id" env:"POWERBI_TENANT_ID" env-default:""`
	ClientID     string `yaml:"client_id" env:"POWERBI_CLIENT_ID" env-default:""`
	ClientSecret string `yaml:"-" env:"POWERBI_CLIENT_SECRET"` // Secret - not in YAML
	GroupID      string `yaml:"group_id" env:"POWERBI_GROUP_ID" env-default:""`
	DatasetID    string `yaml:"dataset_id" env:"POWERBI_DATASET_ID" env-default:""`
	// TableName is the dataset table receiving rows. Empty means one table per report type.
	TableName string `yaml:"table_name" env:"POWERBI_TABLE_NAME" env-default:""`
	ReportID  string `yaml:"report_id" env:"POWERBI_REPORT_ID" env-default:""`
	APIURL    string `yaml:"api_url" env:"POWERBI_API_URL" env-default:"https://api.powerbi.com/v1.0/myorg"`
	// AuthorityHost is the Entra ID authority used for the client-credentials exchange.
	AuthorityHost string `yaml:"authority_host" env:"POWERBI_AUTHORITY_HOST" env-default:"https://login.microsoftonline.com/"`
}

// IsConfigured returns true if the service principal and dataset are set.
func (c *PowerBIConfig) IsConfigured() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != "" &&
		c.GroupID != "" && c.DatasetID != ""
}

// EmailConfig holds the transactional-email provider settings.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"-" env:"SENDGRID_API_KEY"` // Secret - not in YAML
	SenderEmail    string `yaml:"sender_email" env:"SENDER_EMAIL" env-default:""`
	SenderName     string `yaml:"sender_name" env:"SENDER_NAME" env-default:"Grocery Store"`
	BaseURL        string `yaml:"base_url" env:"SENDGRID_BASE_URL" env-default:"https://api.sendgrid.com"`
}

// IsConfigured returns true if an API key and verified sender are set.
func (c *EmailConfig) IsConfigured() bool {
	return c.SendGridAPIKey != "" && c.SenderEmail != ""
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from config.yaml (if present) with environment variable overrides.
// A .env file in the working directory is loaded first; variables already set win.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(FileName); err == nil {
		if err := cleanenv.ReadConfig(FileName, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Database.Host = ResolveHostForDocker(cfg.Database.Host)

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// supportedDrivers mirrors the dialects compiled into pkg/database.
var supportedDrivers = map[string]bool{
	"sqlite":    true,
	"postgres":  true,
	"mysql":     true,
	"sqlserver": true,
}

func (c *Config) validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if !supportedDrivers[c.Database.Driver] {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		return fmt.Errorf("database path is required for sqlite")
	}
	if c.Reports.CSVDir == "" || c.Reports.GraphDir == "" {
		return fmt.Errorf("reports csv_dir and graph_dir must be set")
	}
	return nil
}

// IsDevelopment returns true for local and test environments.
func (c *Config) IsDevelopment() bool {
	return c.Env == "local" || c.Env == "test"
}
