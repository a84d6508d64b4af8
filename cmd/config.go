package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables overriding the configuration file.
const (
	eodhdKeyEnv     = "EODHD_API_KEY"
	fredKeyEnv      = "FRED_API_KEY"
	tradierTokenEnv = "TRADIER_TOKEN"
	coingeckoKeyEnv = "COINGECKO_API_KEY"
	currencyEnv     = "FTERM_CURRENCY"
	logLevelEnv     = "FTERM_LOG_LEVEL"
)

// Config is the configuration of the terminal.
type Config struct {
	Keys      KeysConfig        `toml:"keys"`
	Portfolio PortfolioConfig   `toml:"portfolio"`
	Log       LogConfig         `toml:"log"`
	Cache     CacheConfig       `toml:"cache"`
	Endpoints map[string]string `toml:"endpoints"` // provider name to base URL
}

// KeysConfig holds the API keys of the data providers.
type KeysConfig struct {
	EODHD     string `toml:"eodhd"`
	FRED      string `toml:"fred"`
	Tradier   string `toml:"tradier"`
	CoinGecko string `toml:"coingecko"`
}

// PortfolioConfig holds the portfolio defaults.
type PortfolioConfig struct {
	Currency string `toml:"currency"`
	Method   string `toml:"method"`
	File     string `toml:"file"` // ledger loaded when the portfolio menu opens
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// CacheConfig holds the HTTP cache settings.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// NewDefaultConfig returns the configuration used when no file is found.
func NewDefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "fterm")
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "fterm")
	}
	return &Config{
		Portfolio: PortfolioConfig{Currency: "USD", Method: "average"},
		Log:       LogConfig{Level: "warn"},
		Cache:     CacheConfig{Dir: cacheDir},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/fterm/config.toml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fterm", "config.toml")
}

// LoadConfig loads the configuration with priority: defaults, then the file
// at path, then the environment. The .env files in the working directory and
// next to the configuration file are loaded into the environment first,
// without overriding variables already set.
//
// An empty path means DefaultConfigPath, which may not exist. An explicit
// path must exist.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	for _, env := range []string{".env", filepath.Join(filepath.Dir(path), ".env")} {
		if err := godotenv.Load(env); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", env, err)
		}
	}

	config := NewDefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnvOverrides(config)
	config.Portfolio.File = expandHome(config.Portfolio.File)
	config.Log.File = expandHome(config.Log.File)
	config.Cache.Dir = expandHome(config.Cache.Dir)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(eodhdKeyEnv); v != "" {
		config.Keys.EODHD = v
	}
	if v := os.Getenv(fredKeyEnv); v != "" {
		config.Keys.FRED = v
	}
	if v := os.Getenv(tradierTokenEnv); v != "" {
		config.Keys.Tradier = v
	}
	if v := os.Getenv(coingeckoKeyEnv); v != "" {
		config.Keys.CoinGecko = v
	}
	if v := os.Getenv(currencyEnv); v != "" {
		config.Portfolio.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		config.Log.Level = v
	}
}

// expandHome replaces a leading "~/" by the home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
