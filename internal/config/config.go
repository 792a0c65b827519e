package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/menta2k/aqi-analyzer/pkg/catalog"
	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// EnvPrefix is prepended to every environment override, e.g. AQI_BACKEND_URL
const EnvPrefix = "AQI"

// Config holds the application configuration
type Config struct {
	Backend  BackendConfig        `json:"backend" mapstructure:"backend"`
	Send     SendConfig           `json:"send" mapstructure:"send"`
	Analyzer AnalyzerConfig       `json:"analyzer" mapstructure:"analyzer"`
	Server   ServerConfig         `json:"server" mapstructure:"server"`
	Log      LogConfig            `json:"log" mapstructure:"log"`
	Breaker  BreakerConfig        `json:"breaker" mapstructure:"breaker"`
	Catalog  []types.CategoryInfo `json:"catalog" mapstructure:"catalog"`
}

// BackendConfig selects and addresses the vision model server
type BackendConfig struct {
	Kind    string        `json:"kind" mapstructure:"kind"`
	URL     string        `json:"url" mapstructure:"url"`
	Model   string        `json:"model" mapstructure:"model"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// SendConfig controls the image encoding sent to the model
type SendConfig struct {
	Format  string `json:"format" mapstructure:"format"`
	MaxSize int    `json:"max_size" mapstructure:"max_size"`
	Quality int    `json:"quality" mapstructure:"quality"`
}

// AnalyzerConfig holds image acceptance settings
type AnalyzerConfig struct {
	MinImageSize int `json:"min_image_size" mapstructure:"min_image_size"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr         string        `json:"addr" mapstructure:"addr"`
	ReadTimeout  time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
	BodyLimit    int           `json:"body_limit" mapstructure:"body_limit"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// BreakerConfig holds the circuit breaker settings for the vision backend
type BreakerConfig struct {
	MaxFailures uint32        `json:"max_failures" mapstructure:"max_failures"`
	OpenTimeout time.Duration `json:"open_timeout" mapstructure:"open_timeout"`
}

// Backend kinds
const (
	BackendOllama   = "ollama"
	BackendLlamaCpp = "llamacpp"
)

// DefaultBackendURL returns the usual address of a backend kind
func DefaultBackendURL(kind string) string {
	if kind == BackendOllama {
		return "http://localhost:11434"
	}
	return "http://localhost:8080"
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Kind:    BackendLlamaCpp,
			URL:     DefaultBackendURL(BackendLlamaCpp),
			Model:   "openbmb/minicpm-v4.5",
			Timeout: 5 * time.Minute,
		},
		Send: SendConfig{
			Format:  "jpg",
			MaxSize: 768,
			Quality: 85,
		},
		Analyzer: AnalyzerConfig{
			MinImageSize: 32,
		},
		Server: ServerConfig{
			Addr:         ":8090",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 5 * time.Minute,
			BodyLimit:    16 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Breaker: BreakerConfig{
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
		Catalog: catalog.DefaultEntries(),
	}
}

// Load reads configuration from an optional file and AQI_* environment variables.
// A .env file in the working directory is loaded first when present. With an
// empty path the file at GetConfigPath is used if it exists.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if p := GetConfigPath(); fileExists(p) {
			path = p
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Catalog has no viper default so a configured list replaces it instead of merging.
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = catalog.DefaultEntries()
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = DefaultBackendURL(cfg.Backend.Kind)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("backend.kind", d.Backend.Kind)
	// Empty URL means "default for the selected kind".
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.model", d.Backend.Model)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("send.format", d.Send.Format)
	v.SetDefault("send.max_size", d.Send.MaxSize)
	v.SetDefault("send.quality", d.Send.Quality)
	v.SetDefault("analyzer.min_image_size", d.Analyzer.MinImageSize)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("breaker.max_failures", d.Breaker.MaxFailures)
	v.SetDefault("breaker.open_timeout", d.Breaker.OpenTimeout)
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend.Kind {
	case BackendOllama, BackendLlamaCpp:
	default:
		errs = append(errs, fmt.Errorf("backend.kind must be %q or %q, got %q", BackendOllama, BackendLlamaCpp, c.Backend.Kind))
	}
	if c.Backend.URL == "" {
		errs = append(errs, errors.New("backend.url cannot be empty"))
	}
	if c.Backend.Model == "" {
		errs = append(errs, errors.New("backend.model cannot be empty"))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}

	switch strings.ToLower(c.Send.Format) {
	case "jpg", "jpeg", "png":
	default:
		errs = append(errs, fmt.Errorf("send.format must be jpg or png, got %q", c.Send.Format))
	}
	if c.Send.Quality < 1 || c.Send.Quality > 100 {
		errs = append(errs, errors.New("send.quality must be between 1 and 100"))
	}
	if c.Send.MaxSize < 0 {
		errs = append(errs, errors.New("send.max_size cannot be negative"))
	}

	if c.Analyzer.MinImageSize < 1 {
		errs = append(errs, errors.New("analyzer.min_image_size must be positive"))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr cannot be empty"))
	}
	if c.Server.BodyLimit < 1 {
		errs = append(errs, errors.New("server.body_limit must be positive"))
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	if _, err := catalog.New(c.Catalog); err != nil {
		errs = append(errs, fmt.Errorf("catalog: %w", err))
	}

	return errors.Join(errs...)
}

// BuildCatalog constructs the immutable catalog described by the configuration
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	return catalog.New(c.Catalog)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "aqi-analyzer", "config.json")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
