// Package config loads the server configuration.
//
// SOURCES, HIGHEST PRIORITY FIRST:
//  1. Process environment variables (PORT=4000)
//  2. A .env file in the config directory (loaded into the environment by
//     godotenv; it never overrides a variable that is already set)
//  3. An optional config.yaml in the same directory (port: 4000)
//  4. The defaults below
//
// Keys are the environment variable names. viper matches them
// case-insensitively, so config.yaml may use lower case.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends accepted by DB_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// GitHubConfig holds the OAuth app settings.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	TokenURL     string // empty means github.com
	APIURL       string // empty means api.github.com
	Timeout      time.Duration
}

// Config is the full server configuration.
type Config struct {
	Port int

	DBBackend     string
	DBPath        string // sqlite file
	DBHost        string // mongo connection URI
	MongoDatabase string

	SeedSampleData bool

	GitHub      GitHubConfig
	StateSecret string

	ImageBaseURL       string
	RandomUserURL      string
	CORSAllowedOrigins []string

	LogLevel slog.Level
}

// BrowserLoginEnabled reports whether the /auth/github routes can work.
// They need an OAuth app and a key to sign the state with.
func (c *Config) BrowserLoginEnabled() bool {
	return c.GitHub.ClientID != "" && c.StateSecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 4000)
	v.SetDefault("DB_BACKEND", BackendMemory)
	v.SetDefault("DB_PATH", "data/photoshare.db")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("MONGO_DATABASE", "photoshare")
	v.SetDefault("SEED_SAMPLE_DATA", true)
	v.SetDefault("GITHUB_CLIENT_ID", "")
	v.SetDefault("GITHUB_CLIENT_SECRET", "")
	v.SetDefault("GITHUB_CALLBACK_URL", "")
	v.SetDefault("GITHUB_TOKEN_URL", "")
	v.SetDefault("GITHUB_API_URL", "")
	v.SetDefault("GITHUB_TIMEOUT", 10*time.Second)
	v.SetDefault("STATE_SECRET", "")
	v.SetDefault("IMAGE_BASE_URL", "http://localhost:4040")
	v.SetDefault("RANDOMUSER_URL", "https://randomuser.me/api/")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads the configuration, looking for .env and config.yaml in dir.
// Both files are optional.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config.yaml: %w", err)
		}
	}

	cfg := &Config{
		Port:           v.GetInt("PORT"),
		DBBackend:      strings.ToLower(strings.TrimSpace(v.GetString("DB_BACKEND"))),
		DBPath:         v.GetString("DB_PATH"),
		DBHost:         v.GetString("DB_HOST"),
		MongoDatabase:  v.GetString("MONGO_DATABASE"),
		SeedSampleData: v.GetBool("SEED_SAMPLE_DATA"),
		GitHub: GitHubConfig{
			ClientID:     v.GetString("GITHUB_CLIENT_ID"),
			ClientSecret: v.GetString("GITHUB_CLIENT_SECRET"),
			CallbackURL:  v.GetString("GITHUB_CALLBACK_URL"),
			TokenURL:     v.GetString("GITHUB_TOKEN_URL"),
			APIURL:       v.GetString("GITHUB_API_URL"),
			Timeout:      v.GetDuration("GITHUB_TIMEOUT"),
		},
		StateSecret:        v.GetString("STATE_SECRET"),
		ImageBaseURL:       strings.TrimSuffix(v.GetString("IMAGE_BASE_URL"), "/"),
		RandomUserURL:      v.GetString("RANDOMUSER_URL"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	if cfg.GitHub.CallbackURL == "" {
		cfg.GitHub.CallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	switch c.DBBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.DBPath == "" {
			return errors.New("config: DB_PATH is required for the sqlite backend")
		}
	case BackendMongo:
		if c.DBHost == "" {
			return errors.New("config: DB_HOST is required for the mongo backend")
		}
	default:
		return fmt.Errorf("config: unknown DB_BACKEND %q (want memory, sqlite or mongo)", c.DBBackend)
	}
	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("config: GITHUB_TIMEOUT must be positive, got %s", c.GitHub.Timeout)
	}
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
