package config

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/portal"
	"github.com/matheuskafuri/attendwatch/internal/update"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type PortalConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	Mock    bool   `yaml:"mock"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Dir    string `yaml:"dir"`
	DSN    string `yaml:"dsn"`
}

type EmailConfig struct {
	To     string `yaml:"to"`
	From   string `yaml:"from"`
	APIKey string `yaml:"api_key,omitempty"`
}

type NotifyConfig struct {
	Desktop bool        `yaml:"desktop"`
	Email   EmailConfig `yaml:"email"`
}

type UpdateConfig struct {
	Check   bool   `yaml:"check"`
	Channel string `yaml:"channel"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	CalendarOnly  bool          `yaml:"calendar_only"`
	Notifications bool          `yaml:"notifications"`
	Timezone      string        `yaml:"timezone"`
	AutoFetchHour int           `yaml:"auto_fetch_hour"`
	Weekend       []string      `yaml:"weekend"`
	Portal        PortalConfig  `yaml:"portal"`
	Storage       StorageConfig `yaml:"storage"`
	Notify        NotifyConfig  `yaml:"notify"`
	Server        ServerConfig  `yaml:"server"`
	Update        UpdateConfig  `yaml:"update"`
	RollbarToken  string        `yaml:"rollbar_token,omitempty"`
}

// Credentials returns the portal login, or a config error when either half
// is missing.
func (c *Config) Credentials() (portal.Credentials, error) {
	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return portal.Credentials{}, attendance.NewError(attendance.KindConfig, errors.New("username or password is not set"))
	}
	return portal.Credentials{Username: strings.TrimSpace(c.Username), Password: c.Password}, nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) PortalTimeout() time.Duration {
	d, err := time.ParseDuration(c.Portal.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

func (c *Config) WeekendDays() []time.Weekday {
	var out []time.Weekday
	for _, name := range c.Weekend {
		if wd, ok := weekdays[strings.ToLower(name)]; ok {
			out = append(out, wd)
		}
	}
	return out
}

// SendgridKey returns the API key from config or SENDGRID_API_KEY.
func (c *Config) SendgridKey() string {
	if c.Notify.Email.APIKey != "" {
		return c.Notify.Email.APIKey
	}
	return os.Getenv("SENDGRID_API_KEY")
}

// EmailEnabled is true when an address and key are both configured.
func (c *Config) EmailEnabled() bool {
	return c.Notify.Email.To != "" && c.Notify.Email.From != "" && c.SendgridKey() != ""
}

func (c *Config) DataDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(xdg.DataHome, "attendwatch")
}

func (c *Config) AttendancePath() string { return filepath.Join(c.DataDir(), "attendance.json") }
func (c *Config) ProgressPath() string   { return filepath.Join(c.DataDir(), "scrape-status.json") }
func (c *Config) HolidaysPath() string   { return filepath.Join(c.DataDir(), "holidays.json") }
func (c *Config) DBPath() string         { return filepath.Join(c.DataDir(), "attendwatch.db") }
func (c *Config) LockPath() string       { return filepath.Join(c.DataDir(), "ingest.lock") }

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "attendwatch", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads path over the embedded defaults, so keys missing from the file
// keep their default values. Environment variables override both.
func Load(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile returns the defaults overlaid with the file at path, without
// environment overrides.
func loadFile(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Non-fatal: keep embedded defaults
		_ = writeDefaults(path)
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ATTENDWATCH_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("ATTENDWATCH_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("ROLLBAR_TOKEN"); v != "" {
		cfg.RollbarToken = v
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o600)
}

// Save writes cfg to path as given; callers pass file values, not a config
// resolved with environment overrides. The file holds credentials, so it is
// private.
func Save(path string, cfg *Config) error {
	if err := validate(cfg); err != nil {
		return err
	}
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func validate(cfg *Config) error {
	validDrivers := map[string]bool{"json": true, "sqlite": true, "postgres": true, "memory": true}
	if !validDrivers[cfg.Storage.Driver] {
		return fmt.Errorf("storage: unknown driver %q (valid: json, sqlite, postgres)", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.DSN == "" {
		return fmt.Errorf("storage: postgres driver requires dsn")
	}

	u, err := url.Parse(cfg.Portal.BaseURL)
	if err != nil {
		return fmt.Errorf("portal: invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("portal: base_url scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.Portal.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Portal.Timeout); err != nil {
			return fmt.Errorf("portal: invalid timeout %q: %w", cfg.Portal.Timeout, err)
		}
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.AutoFetchHour < 0 || cfg.AutoFetchHour > 23 {
		return fmt.Errorf("auto_fetch_hour must be between 0 and 23, got %d", cfg.AutoFetchHour)
	}
	for _, name := range cfg.Weekend {
		if _, ok := weekdays[strings.ToLower(name)]; !ok {
			return fmt.Errorf("weekend: unknown day %q", name)
		}
	}
	if !update.ValidChannel(cfg.Update.Channel) {
		return fmt.Errorf("update: unknown channel %q (valid: %s, %s)", cfg.Update.Channel, update.ChannelStable, update.ChannelPrerelease)
	}
	return nil
}
