// Package config loads harvester settings from defaults, an optional config
// file, a .env file and HARVESTER_* environment variables, in rising order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const envPrefix = "HARVESTER"

// DefaultFeedURL lists every release PR Newswire publishes.
const DefaultFeedURL = "https://www.prnewswire.com/rss/news-releases-list.rss"

// Config holds runtime settings.
type Config struct {
	FeedURL     string        `mapstructure:"feed_url"`
	CacheDir    string        `mapstructure:"cache_dir"`
	StorePath   string        `mapstructure:"store_path"`
	UserAgent   string        `mapstructure:"user_agent"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	// RequestInterval is the minimum gap between release page requests.
	RequestInterval time.Duration `mapstructure:"request_interval"`
	Timezone        string        `mapstructure:"timezone"`
	PublishersFile  string        `mapstructure:"publishers_file"`
	Schedule        string        `mapstructure:"schedule"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feed_url", DefaultFeedURL)
	v.SetDefault("cache_dir", ".cache")
	v.SetDefault("store_path", "data/prnewswire.db")
	v.SetDefault("user_agent", "wire-harvester/1.0 (+https://github.com/Adda-Baaj/wire-harvester)")
	v.SetDefault("http_timeout", 15*time.Second)
	v.SetDefault("request_interval", 500*time.Millisecond)
	v.SetDefault("timezone", "Local")
	v.SetDefault("publishers_file", "")
	v.SetDefault("schedule", "@every 30m")
}

// Load reads configuration. path may be empty, in which case only defaults,
// .env and the environment apply. A missing .env file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.FeedURL = strings.TrimSpace(c.FeedURL)
	c.CacheDir = strings.TrimSpace(c.CacheDir)
	c.StorePath = strings.TrimSpace(c.StorePath)
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	c.Timezone = strings.TrimSpace(c.Timezone)
	c.PublishersFile = strings.TrimSpace(c.PublishersFile)
	c.Schedule = strings.TrimSpace(c.Schedule)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.FeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: feed_url %q must be an absolute http(s) url", c.FeedURL)
	}
	if c.CacheDir == "" {
		return errors.New("config: cache_dir is required")
	}
	if c.StorePath == "" {
		return errors.New("config: store_path is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.RequestInterval < 0 {
		return fmt.Errorf("config: request_interval must not be negative, got %s", c.RequestInterval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("config: schedule %q: %w", c.Schedule, err)
	}
	return nil
}

// Location resolves Timezone; release dates are midnight in this zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
