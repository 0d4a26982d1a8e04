package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the web service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Site      SiteConfig      `mapstructure:"site"`
	CMS       CMSConfig       `mapstructure:"cms"`
	Render    RenderConfig    `mapstructure:"render"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	Dev       bool   `mapstructure:"dev"`
	PublicDir string `mapstructure:"public_dir"`
}

// SiteConfig describes where the site lives. BaseURL anchors asset paths and
// the fallback detail page link.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Name    string `mapstructure:"name"`
	Email   string `mapstructure:"email"`
}

// CMSConfig selects where the content and tools documents come from. When
// BaseURL is empty the documents are read from DataDir.
type CMSConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	DataDir      string        `mapstructure:"data_dir"`
	ContentFile  string        `mapstructure:"content_file"`
	ToolsFile    string        `mapstructure:"tools_file"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// RenderConfig picks the page renderer.
type RenderConfig struct {
	Renderer     string `mapstructure:"renderer"` // "template" or "dom"
	TemplatesDir string `mapstructure:"templates_dir"`
}

// AnalyticsConfig holds client instrumentation surfaced to pages.
type AnalyticsConfig struct {
	GA4MeasurementID string `mapstructure:"ga4_measurement_id"`
	GTMContainerID   string `mapstructure:"gtm_container_id"`
	Debug            bool   `mapstructure:"debug"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

const envPrefix = "TAKO_WEB"

// Load reads config.yaml (or path when non-empty) with TAKO_WEB_* environment
// overrides. A missing default config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	// Cloud Run injects PORT; honour it unless an address was configured.
	if os.Getenv(envPrefix+"_SERVER_ADDR") == "" && !v.InConfig("server.addr") {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Server.Addr = ":" + port
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.dev", false)
	v.SetDefault("server.public_dir", "public")

	v.SetDefault("site.base_url", "/")
	v.SetDefault("site.name", "Tako")
	v.SetDefault("site.email", "hello@takotools.com")

	v.SetDefault("cms.base_url", "")
	v.SetDefault("cms.data_dir", "data")
	v.SetDefault("cms.content_file", "content.json")
	v.SetDefault("cms.tools_file", "tools.json")
	v.SetDefault("cms.fetch_timeout", 5*time.Second)
	v.SetDefault("cms.cache_ttl", time.Minute)

	v.SetDefault("render.renderer", "template")
	v.SetDefault("render.templates_dir", "")

	v.SetDefault("analytics.ga4_measurement_id", "")
	v.SetDefault("analytics.gtm_container_id", "")
	v.SetDefault("analytics.debug", false)

	v.SetDefault("log.level", "info")
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Render.Renderer) {
	case "template", "dom":
	default:
		return fmt.Errorf("config: unknown renderer %q", c.Render.Renderer)
	}
	if c.CMS.FetchTimeout <= 0 {
		return fmt.Errorf("config: cms.fetch_timeout must be positive")
	}
	if strings.TrimSpace(c.CMS.BaseURL) == "" && strings.TrimSpace(c.CMS.DataDir) == "" {
		return fmt.Errorf("config: one of cms.base_url or cms.data_dir is required")
	}
	return nil
}
