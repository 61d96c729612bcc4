package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GSQ_CONFIG is set
//  3. env (prefix GSQ_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GSQ_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GSQ_ADDR, GSQ_QUEUE_SIZE, ...
	// Map env keys like GSQ_QUEUE_SIZE -> queue_size (flat keys), keeping
	// underscores to match the koanf tags on the struct.
	envProvider := env.Provider("GSQ_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "gsq_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.InstrumentForm != "full" && c.InstrumentForm != "short" {
		return fmt.Errorf("%w: instrument_form must be full or short, got %q", ErrInvalidConfig, c.InstrumentForm)
	}
	if c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite {
		return fmt.Errorf("%w: store_driver must be %s or %s, got %q", ErrInvalidConfig, StoreMemory, StoreSQLite, c.StoreDriver)
	}
	if c.EmergingThreshold <= 0 || c.EmergingThreshold > 100 {
		return fmt.Errorf("%w: emerging_threshold must be in (0,100], got %v", ErrInvalidConfig, c.EmergingThreshold)
	}
	return nil
}
