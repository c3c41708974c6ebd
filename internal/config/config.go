// Package config loads meetplan settings from a YAML file and the environment.
//
// Precedence, lowest first: built-in defaults, the config file, MEETPLAN_*
// environment variables. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/drewfead/meetplan/internal/planner"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MEETPLAN_"

// Config is the full meetplan configuration.
type Config struct {
	API      APIConfig        `yaml:"api"`
	Calendar CalendarConfig   `yaml:"calendar"`
	Auth     AuthConfig       `yaml:"auth"`
	Planner  planner.Settings `yaml:"planner"`
}

// APIConfig points at the meeting-times API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// CalendarConfig selects the calendar invites go to.
type CalendarConfig struct {
	ID string `yaml:"id"`
	// Endpoint overrides the Google Calendar API endpoint, for testing.
	Endpoint string `yaml:"api_endpoint"`
}

// AuthConfig locates Google credentials.
type AuthConfig struct {
	CredentialsPath string `yaml:"credentials_path"`
	TokenPath       string `yaml:"token_path"`
	CallbackPort    string `yaml:"callback_port"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout: 10 * time.Second,
		},
		Calendar: CalendarConfig{
			ID: "primary",
		},
		Auth: AuthConfig{
			CallbackPort: "8080",
		},
		Planner: planner.DefaultSettings(),
	}
}

// Load reads the config file at path over the defaults and applies the
// environment. An empty path means the default location; a missing file at
// the default location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.fillPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"API_BASE_URL":          &c.API.BaseURL,
		"API_TOKEN":             &c.API.Token,
		"CALENDAR_ID":           &c.Calendar.ID,
		"CALENDAR_API_ENDPOINT": &c.Calendar.Endpoint,
		"AUTH_CREDENTIALS_PATH": &c.Auth.CredentialsPath,
		"AUTH_TOKEN_PATH":       &c.Auth.TokenPath,
		"AUTH_CALLBACK_PORT":    &c.Auth.CallbackPort,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "API_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sAPI_TIMEOUT: %w", EnvPrefix, err)
		}
		c.API.Timeout = d
	}
	return nil
}

func (c *Config) fillPaths() error {
	if c.Auth.CredentialsPath == "" {
		p, err := GetCredentialsPath()
		if err != nil {
			return err
		}
		c.Auth.CredentialsPath = p
	}
	if c.Auth.TokenPath == "" {
		p, err := GetTokenPath()
		if err != nil {
			return err
		}
		c.Auth.TokenPath = p
	}
	return nil
}
