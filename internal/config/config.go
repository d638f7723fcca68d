package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Registered sites
	Sites []Site `mapstructure:"sites"`

	// Engine credentials
	Google     GoogleConfig     `mapstructure:"google"`
	Bing       BingConfig       `mapstructure:"bing"`
	Yandex     YandexConfig     `mapstructure:"yandex"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	IndexNow   IndexNowConfig   `mapstructure:"indexnow"`
	Serp       SerpConfig       `mapstructure:"serp"`

	// Audit tuning
	Audit AuditConfig `mapstructure:"audit"`

	// Monitor tuning
	Monitor MonitorConfig `mapstructure:"monitor"`
}

// Site is one managed website.
type Site struct {
	Name         string `mapstructure:"name"`
	URL          string `mapstructure:"url"`
	Sitemap      string `mapstructure:"sitemap"`
	GAPropertyID string `mapstructure:"ga_property_id"`
	Hosting      string `mapstructure:"hosting"`
}

// GoogleConfig holds Search Console / Indexing / GA4 credentials.
type GoogleConfig struct {
	ServiceAccountFile string `mapstructure:"service_account_file"`
}

// BingConfig holds the Bing Webmaster Tools API key.
type BingConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// YandexConfig holds the Yandex Webmaster OAuth token.
type YandexConfig struct {
	OAuthToken string `mapstructure:"oauth_token"`
}

// CloudflareConfig holds the Cloudflare analytics API token.
type CloudflareConfig struct {
	APIToken string `mapstructure:"api_token"`
}

// IndexNowConfig holds the IndexNow key. The key file must be hosted at
// {site}/{key}.txt on every submitted site.
type IndexNowConfig struct {
	Key string `mapstructure:"key"`
}

// SerpConfig holds SERP search endpoints and keys.
type SerpConfig struct {
	SearxngURL string `mapstructure:"searxng_url"`
	CSEKey     string `mapstructure:"cse_key"`
	CSECx      string `mapstructure:"cse_cx"`
}

// AuditConfig holds audit tuning knobs.
type AuditConfig struct {
	UserAgent    string        `mapstructure:"user_agent"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	LinkTimeout  time.Duration `mapstructure:"link_timeout"`
	MaxLinks     int           `mapstructure:"max_links"`
}

// MonitorConfig holds position-monitoring tuning knobs.
type MonitorConfig struct {
	PositionThreshold float64 `mapstructure:"position_threshold"`
	WindowDays        int     `mapstructure:"window_days"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.seosmith")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	loadFromEnv(&config)

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("audit.user_agent", "Mozilla/5.0 (compatible; seosmith/1.0)")
	v.SetDefault("audit.fetch_timeout", "15s")
	v.SetDefault("audit.link_timeout", "5s")
	v.SetDefault("audit.max_links", 20)

	v.SetDefault("monitor.position_threshold", 3.0)
	v.SetDefault("monitor.window_days", 28)

	v.SetDefault("serp.searxng_url", "http://localhost:8013")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("SEOSMITH")
	v.AutomaticEnv()

	v.BindEnv("google.service_account_file", "GOOGLE_SERVICE_ACCOUNT_FILE")
	v.BindEnv("bing.api_key", "BING_API_KEY")
	v.BindEnv("yandex.oauth_token", "YANDEX_OAUTH_TOKEN")
	v.BindEnv("cloudflare.api_token", "CLOUDFLARE_API_TOKEN")
	v.BindEnv("indexnow.key", "INDEXNOW_KEY")
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	if sa := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"); sa != "" {
		config.Google.ServiceAccountFile = sa
	}
	if key := os.Getenv("BING_API_KEY"); key != "" {
		config.Bing.APIKey = key
	}
	if token := os.Getenv("YANDEX_OAUTH_TOKEN"); token != "" {
		config.Yandex.OAuthToken = token
	}
	if token := os.Getenv("CLOUDFLARE_API_TOKEN"); token != "" {
		config.Cloudflare.APIToken = token
	}
	if key := os.Getenv("INDEXNOW_KEY"); key != "" {
		config.IndexNow.Key = key
	}
}

// HasGoogle reports whether the Google service account is usable.
func (c *Config) HasGoogle() bool {
	if c.Google.ServiceAccountFile == "" {
		return false
	}
	_, err := os.Stat(c.Google.ServiceAccountFile)
	return err == nil
}

// HasBing reports whether the Bing API key is set.
func (c *Config) HasBing() bool { return c.Bing.APIKey != "" }

// HasYandex reports whether the Yandex OAuth token is set.
func (c *Config) HasYandex() bool { return c.Yandex.OAuthToken != "" }

// HasCloudflare reports whether the Cloudflare API token is set.
func (c *Config) HasCloudflare() bool { return c.Cloudflare.APIToken != "" }

// HasIndexNow reports whether the IndexNow key is set.
func (c *Config) HasIndexNow() bool { return c.IndexNow.Key != "" }

// SiteByName returns the configured site with the given name.
func (c *Config) SiteByName(name string) (Site, bool) {
	for _, s := range c.Sites {
		if s.Name == name {
			return s, true
		}
	}
	return Site{}, false
}

// SiteForURL returns the configured site whose URL prefixes the given URL.
func (c *Config) SiteForURL(url string) (Site, bool) {
	for _, s := range c.Sites {
		if s.URL != "" && strings.HasPrefix(url, s.URL) {
			return s, true
		}
	}
	return Site{}, false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	for _, s := range c.Sites {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("every site needs name and url (got name=%q url=%q)", s.Name, s.URL)
		}
	}
	if c.Audit.MaxLinks <= 0 {
		return fmt.Errorf("audit.max_links must be positive")
	}
	if c.Monitor.WindowDays <= 0 {
		return fmt.Errorf("monitor.window_days must be positive")
	}
	return nil
}
