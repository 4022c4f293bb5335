package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

type (
	Config struct {
		Addr           string  `toml:"addr"`
		Language       string  `toml:"language"`
		SchemaDir      string  `toml:"schema_dir"`
		RateLimitRPS   float64 `toml:"rate_limit_rps"`
		RateLimitBurst int     `toml:"rate_limit_burst"`
		Tags           Tags    `toml:"tags"`
	}

	// Tags names the cache tags invalidated after successful submissions.
	Tags struct {
		Admins string `toml:"admins"`
	}
)

const (
	LangEN = "en"
	LangES = "es"

	defaultAddr           = ":8080"
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10
	defaultAdminsTag      = "admins"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Addr:           defaultAddr,
		Language:       LangEN,
		RateLimitRPS:   defaultRateLimitRPS,
		RateLimitBurst: defaultRateLimitBurst,
		Tags: Tags{
			Admins: defaultAdminsTag,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file yields
// the defaults; an empty path does too.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr must not be empty")
	}
	switch c.Language {
	case LangEN, LangES:
	default:
		return fmt.Errorf("language %q is not supported", c.Language)
	}
	if c.RateLimitRPS < 0 {
		return errors.New("rate_limit_rps must not be negative")
	}
	if c.RateLimitBurst < 0 {
		return errors.New("rate_limit_burst must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst == 0 {
		return errors.New("rate_limit_burst must be positive when throttling is enabled")
	}
	if strings.TrimSpace(c.Tags.Admins) == "" {
		return errors.New("tags.admins must not be empty")
	}
	return nil
}
