package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ORGANISM_"

var validate = validator.New()

// Config is the process configuration. The shared secret is never compiled in:
// it comes from the config file or ORGANISM_INTERNAL_AUTH.
type Config struct {
	Addr            string        `yaml:"addr" validate:"required"`
	SiteURL         string        `yaml:"site_url" validate:"required,http_url"`
	HubBaseURL      string        `yaml:"hub_base_url" validate:"required,http_url"`
	ServiceBaseURL  string        `yaml:"service_base_url" validate:"required,http_url"`
	InternalAuth    string        `yaml:"internal_auth" validate:"required"`
	HubTimeout      time.Duration `yaml:"hub_timeout" validate:"gt=0"`
	DebateTimeout   time.Duration `yaml:"debate_timeout" validate:"gt=0"`
	DebateLimit     int           `yaml:"debate_limit" validate:"min=1,max=3"`
	CacheMaxAge     time.Duration `yaml:"cache_max_age" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	Debug           bool          `yaml:"debug"`
	JSONLogs        bool          `yaml:"json_logs"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Addr:            ":8080",
		SiteURL:         "https://ashwinphilips.com",
		HubBaseURL:      "https://noqnoq.emergenthq.net/noqnoq",
		ServiceBaseURL:  "https://fulqrum.emergenthq.net",
		HubTimeout:      2 * time.Second,
		DebateTimeout:   3 * time.Second,
		DebateLimit:     3,
		CacheMaxAge:     30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and ORGANISM_* environment variables, in that order, and validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("invalid config: %s fails %q", first.Field(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	strs := map[string]*string{
		"ADDR":             &cfg.Addr,
		"SITE_URL":         &cfg.SiteURL,
		"HUB_BASE_URL":     &cfg.HubBaseURL,
		"SERVICE_BASE_URL": &cfg.ServiceBaseURL,
		"INTERNAL_AUTH":    &cfg.InternalAuth,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"HUB_TIMEOUT":      &cfg.HubTimeout,
		"DEBATE_TIMEOUT":   &cfg.DebateTimeout,
		"CACHE_MAX_AGE":    &cfg.CacheMaxAge,
		"SHUTDOWN_TIMEOUT": &cfg.ShutdownTimeout,
	}
	for key, dst := range durations {
		v, ok := lookup(envPrefix + key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = d
	}

	if v, ok := lookup(envPrefix + "DEBATE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sDEBATE_LIMIT: %w", envPrefix, err)
		}
		cfg.DebateLimit = n
	}

	bools := map[string]*bool{
		"DEBUG":     &cfg.Debug,
		"JSON_LOGS": &cfg.JSONLogs,
	}
	for key, dst := range bools {
		v, ok := lookup(envPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = b
	}

	return nil
}
