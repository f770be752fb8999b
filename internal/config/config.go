package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"tzcal/internal/model"
)

// EnvPrefix prefixes environment overrides, e.g. TZCAL_LISTEN.
const EnvPrefix = "TZCAL"

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone of the default calendar (e.g. "America/New_York").
	Timezone string `yaml:"timezone" json:"timezone"`

	// DefaultCalendar is created at startup and made active.
	DefaultCalendar string `yaml:"default_calendar" json:"default_calendar"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// AgendaCron is a standard five-field cron schedule for the daily
	// agenda digest. Empty disables the digest.
	AgendaCron string `yaml:"agenda_cron" json:"agenda_cron"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:8080",
		Timezone:        "UTC",
		DefaultCalendar: "default",
		LogLevel:        "info",
		AgendaCron:      "0 7 * * *",
		BasicAuth:       nil,
	}
}

// Normalize fills in missing values with defaults so partially-filled
// configs still behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	c.Listen = strings.TrimSpace(c.Listen)
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	c.DefaultCalendar = strings.TrimSpace(c.DefaultCalendar)
	if c.DefaultCalendar == "" {
		c.DefaultCalendar = def.DefaultCalendar
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	c.AgendaCron = strings.TrimSpace(c.AgendaCron)
	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Validate checks the zone and the agenda schedule.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", model.ErrValidation, c.Timezone, err)
	}
	if c.AgendaCron != "" {
		if _, err := cron.ParseStandard(c.AgendaCron); err != nil {
			return fmt.Errorf("%w: agenda_cron %q: %v", model.ErrValidation, c.AgendaCron, err)
		}
	}
	return nil
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist a default config is written with 0600
// permissions and returned. Environment variables with the TZCAL_ prefix
// override file values. The result is normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
	case err != nil:
		return nil, err
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: config %s: %v", model.ErrParse, path, err)
		}
	}

	applyEnv(cfg)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for _, key := range []string{
		"listen",
		"timezone",
		"default_calendar",
		"log_level",
		"agenda_cron",
		"basic_auth_username",
		"basic_auth_password",
	} {
		_ = v.BindEnv(key)
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setString("listen", &cfg.Listen)
	setString("timezone", &cfg.Timezone)
	setString("default_calendar", &cfg.DefaultCalendar)
	setString("log_level", &cfg.LogLevel)
	setString("agenda_cron", &cfg.AgendaCron)

	if v.IsSet("basic_auth_username") || v.IsSet("basic_auth_password") {
		if cfg.BasicAuth == nil {
			cfg.BasicAuth = &BasicAuthConfig{}
		}
		setString("basic_auth_username", &cfg.BasicAuth.Username)
		setString("basic_auth_password", &cfg.BasicAuth.Password)
	}
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) when needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tzcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
