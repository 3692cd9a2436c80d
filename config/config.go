// Package config loads the YAML configuration of the statuspage command.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/castawaylabs/statuspage"
	"github.com/castawaylabs/statuspage/render"
	"github.com/castawaylabs/statuspage/watch"
	"github.com/castawaylabs/statuspage/webhook"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultListen    = ":8080"
	DefaultLogFormat = "text"
	DefaultLogLevel  = "info"
)

// Environment variables overriding the file.
const (
	EnvURL      = "STATUSPAGE_URL"
	EnvSlackURL = "STATUSPAGE_SLACK_URL"
)

type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	Insecure  bool          `mapstructure:"insecure"`
	CAFile    string        `mapstructure:"ca_file"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LogFormat string        `mapstructure:"log_format"`
	LogLevel  string        `mapstructure:"log_level"`
	// IP:port of the DNS server used by resolve, blank for the system one
	DNSServer string `mapstructure:"dns_server"`

	Watch     WatchConfig      `mapstructure:"watch"`
	Webhook   WebhookConfig    `mapstructure:"webhook"`
	Templates render.Templates `mapstructure:"templates"`
}

type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type WebhookConfig struct {
	Listen       string `mapstructure:"listen"`
	SlackURL     string `mapstructure:"slack_url"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

// Load reads the configuration from a file path or an http(s) URL, applies
// the environment overrides and fills in defaults. The result is not
// validated.
func Load(path string) (*Config, error) {
	data, err := read(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.ApplyEnv(os.LookupEnv)
	cfg.SetDefaults()

	return cfg, nil
}

func read(path string) ([]byte, error) {
	// test if its a url
	u, err := url.ParseRequestURI(path)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		response, err := http.Get(path)
		if err != nil {
			return nil, fmt.Errorf("config: downloading %s: %w", path, err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("config: downloading %s: %s", path, response.Status)
		}

		logrus.Infof("Downloaded network configuration from %s", path)
		return io.ReadAll(response.Body)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: file '%s' missing", path)
	}
	return data, err
}

// Parse decodes a YAML document. Durations are written as Go duration
// strings such as "30s".
func Parse(data []byte) (*Config, error) {
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyEnv overrides values with the STATUSPAGE_* environment variables
// found by lookup.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvURL); ok && len(v) > 0 {
		cfg.BaseURL = v
	}
	if v, ok := lookup(EnvSlackURL); ok && len(v) > 0 {
		cfg.Webhook.SlackURL = v
	}
}

func (cfg *Config) SetDefaults() {
	if len(cfg.LogFormat) == 0 {
		cfg.LogFormat = DefaultLogFormat
	}
	if len(cfg.LogLevel) == 0 {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Watch.Interval == 0 {
		cfg.Watch.Interval = watch.DefaultInterval
	}
	if len(cfg.Webhook.Listen) == 0 {
		cfg.Webhook.Listen = DefaultListen
	}
	if cfg.Webhook.MaxBodyBytes == 0 {
		cfg.Webhook.MaxBodyBytes = webhook.DefaultMaxBodyBytes
	}
}

// Validate lists every problem with the configuration. A blank base_url is
// allowed since only the commands talking to the API need it; see
// RequireBaseURL.
func (cfg *Config) Validate() []string {
	var errs []string

	if len(cfg.BaseURL) > 0 && !isHTTPURL(cfg.BaseURL) {
		errs = append(errs, fmt.Sprintf("base_url '%s' is not an http(s) url", cfg.BaseURL))
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("log_format '%s' must be text or json", cfg.LogFormat))
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("log_level: %v", err))
	}

	if cfg.Timeout < 0 {
		errs = append(errs, "timeout cannot be negative")
	}
	if cfg.Watch.Interval <= 0 {
		errs = append(errs, "watch.interval must be positive")
	}
	if cfg.Webhook.MaxBodyBytes < 0 {
		errs = append(errs, "webhook.max_body_bytes cannot be negative")
	}
	if len(cfg.Webhook.SlackURL) > 0 && !isHTTPURL(cfg.Webhook.SlackURL) {
		errs = append(errs, fmt.Sprintf("webhook.slack_url '%s' is not an http(s) url", cfg.Webhook.SlackURL))
	}

	if err := cfg.Templates.Compile(); err != nil {
		errs = append(errs, err.Error())
	}

	return errs
}

// RequireBaseURL fails when no page url is configured.
func (cfg *Config) RequireBaseURL() error {
	if len(cfg.BaseURL) == 0 {
		return errors.New("config: base_url is required (or set " + EnvURL + " or --url)")
	}
	return nil
}

// ClientOptions translates the transport settings into client options.
func (cfg *Config) ClientOptions(entry *logrus.Entry) []statuspage.Option {
	opts := []statuspage.Option{statuspage.WithLogger(entry)}

	if cfg.Insecure {
		opts = append(opts, statuspage.WithInsecure(true))
	}
	if len(cfg.CAFile) > 0 {
		opts = append(opts, statuspage.WithRootCAFile(cfg.CAFile))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, statuspage.WithTimeout(cfg.Timeout))
	}
	if len(cfg.UserAgent) > 0 {
		opts = append(opts, statuspage.WithUserAgent(cfg.UserAgent))
	}

	return opts
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && len(u.Host) > 0 && !strings.ContainsAny(u.Host, " ")
}
