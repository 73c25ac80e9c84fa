package photoengine

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tailscale/hujson"
)

// SiteConfig holds all configuration for a photoengine site.
type SiteConfig struct {
	Name        string `json:"name"`        // Site name (default "Portfolio")
	URL         string `json:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `json:"description"` // Site description for RSS and meta tags
	Author      string `json:"author"`      // Photographer name for JSON-LD

	Addr      string `json:"addr"`      // Listen address (default ":3000")
	DataDir   string `json:"dataDir"`   // Flat-file collection documents (default "data")
	PublicDir string `json:"publicDir"` // Static web root with the uploads area (default "public")

	// Development gates the whole admin surface. Outside development every
	// admin route answers 403; there is no session login to fall back to.
	Development bool `json:"development"`

	AnalyticsEnabled      bool   `json:"analyticsEnabled"`
	AnalyticsDatabasePath string `json:"analyticsDatabasePath"` // sqlite path (default data/analytics.db)

	AnalyticsRetentionDays int `json:"analyticsRetentionDays"` // default 365
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.AnalyticsRetentionDays == 0 {
		c.AnalyticsRetentionDays = 365
	}
}

// LoadConfigFile reads a HuJSON site config (comments and trailing commas
// allowed) and merges it over the defaults. A missing file is not an error;
// a malformed one is.
func LoadConfigFile(path string) (SiteConfig, error) {
	var cfg SiteConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.setDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := json.Unmarshal(std, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithWriteLimit overrides the per-IP admin mutation limit (default 60 per
// minute).
func WithWriteLimit(max int, window time.Duration) Option {
	return func(a *App) {
		a.writeLimiter = NewWriteLimiter(max, window)
	}
}

// EnvOr returns the value of the environment variable key, or fallback if
// empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally
// exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("photoengine: required environment variable %s is not set", key)
	}
	return v
}
