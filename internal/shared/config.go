package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Database DatabaseConfig `toml:"database"`
	Player   PlayerConfig   `toml:"player"`
	Server   ServerConfig   `toml:"server"`
	Payments PaymentsConfig `toml:"payments"`
}

// CatalogConfig points at the hosted catalog REST endpoint.
type CatalogConfig struct {
	BaseURL           string   `toml:"base_url" env:"WAVELET_CATALOG_URL"`
	APIKey            string   `toml:"api_key" env:"WAVELET_CATALOG_API_KEY"`
	Statuses          []string `toml:"statuses"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
}

// Timeout returns the per-request timeout, defaulting to 15 seconds.
func (c CatalogConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"WAVELET_DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig selects the playback policies used by the terminal player.
type PlayerConfig struct {
	RestartOnPlay   string `toml:"restart_on_play"`
	TickMode        string `toml:"tick_mode"`
	WaveformSamples int    `toml:"waveform_samples"`
	LogPath         string `toml:"log_path"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host" env:"WAVELET_SERVER_HOST"`
	Port int    `toml:"port" env:"WAVELET_SERVER_PORT"`
}

// Addr returns host:port for [http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PaymentsConfig groups payment provider credentials.
type PaymentsConfig struct {
	Stripe StripeConfig `toml:"stripe"`
	PayPal PayPalConfig `toml:"paypal"`
}

// StripeConfig contains Stripe API and webhook credentials.
type StripeConfig struct {
	SecretKey        string `toml:"secret_key" env:"WAVELET_STRIPE_SECRET_KEY"`
	WebhookSecret    string `toml:"webhook_secret" env:"WAVELET_STRIPE_WEBHOOK_SECRET"`
	APIBaseURL       string `toml:"api_base_url"`
	SuccessURL       string `toml:"success_url"`
	CancelURL        string `toml:"cancel_url"`
	ToleranceSeconds int    `toml:"tolerance_seconds"`
}

// PayPalConfig contains PayPal REST credentials.
type PayPalConfig struct {
	ClientID     string `toml:"client_id" env:"WAVELET_PAYPAL_CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"WAVELET_PAYPAL_CLIENT_SECRET"`
	APIBaseURL   string `toml:"api_base_url"`
	ReturnURL    string `toml:"return_url"`
	CancelURL    string `toml:"cancel_url"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment overrides are applied after parsing, see [ApplyEnv].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv overrides secrets and endpoints from WAVELET_* environment variables.
//
// Unset variables leave the loaded values untouched.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
