// Package config resolves the server settings.
//
// Values come from, in order of increasing priority: built-in defaults, an
// optional TOML file, then environment variables. A .env file, when
// present, is loaded into the environment by the CLI before Load runs.
//
// Example gamehome.toml:
//
//	port = 8080
//	data_dir = "/var/lib/gamehome/data"
//	uploads_dir = "/var/lib/gamehome/uploads"
//	env = "production"
//	log_format = "json"
//	allowed_origins = ["https://gamehome.example"]
//	rate_window = "15m"
//	trust_proxy = true
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port           int           `toml:"port"`
	DataDir        string        `toml:"data_dir"`
	UploadsDir     string        `toml:"uploads_dir"`
	FrontendDir    string        `toml:"frontend_dir"`
	Env            string        `toml:"env"`        // "development" or "production"
	LogLevel       string        `toml:"log_level"`  // debug, info, warn, error
	LogFormat      string        `toml:"log_format"` // text or json
	AllowedOrigins []string      `toml:"allowed_origins"`
	RateLimit      int           `toml:"rate_limit"` // requests per client per window on /api
	RateWindow     time.Duration `toml:"rate_window"`
	// TrustProxy makes the server take the client address from
	// X-Forwarded-For / X-Real-IP. Enable it only behind a reverse proxy
	// that overwrites those headers.
	TrustProxy bool `toml:"trust_proxy"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Port:           3000,
		DataDir:        "data",
		UploadsDir:     "uploads",
		FrontendDir:    "frontend/dist",
		Env:            "development",
		LogLevel:       "info",
		LogFormat:      "text",
		AllowedOrigins: []string{"*"},
		RateLimit:      100,
		RateWindow:     15 * time.Minute,
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		if err := cfg.Read(f); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read decodes TOML from r on top of the current values. Keys absent from
// the document keep their value.
func (c *Config) Read(r io.Reader) error {
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("DATA_DIR", &c.DataDir)
	str("UPLOADS_DIR", &c.UploadsDir)
	str("FRONTEND_DIR", &c.FrontendDir)
	str("ENV", &c.Env)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT value %q: %w", v, err)
		}
		c.Port = port
	}
	if v, ok := lookup("RATE_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT value %q: %w", v, err)
		}
		c.RateLimit = n
	}
	if v, ok := lookup("RATE_WINDOW"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_WINDOW value %q: %w", v, err)
		}
		c.RateWindow = d
	}
	if v, ok := lookup("TRUST_PROXY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRUST_PROXY value %q: %w", v, err)
		}
		c.TrustProxy = b
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for o := range strings.SplitSeq(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.UploadsDir == "" {
		errs = append(errs, errors.New("uploads_dir must not be empty"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit must be positive, got %d", c.RateLimit))
	}
	if c.RateWindow <= 0 {
		errs = append(errs, fmt.Errorf("rate_window must be positive, got %s", c.RateWindow))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return level, nil
}

// Debug reports whether internal error details may be sent to clients.
func (c *Config) Debug() bool {
	return c.Env == "development"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
