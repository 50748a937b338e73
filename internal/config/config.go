// Package config holds runtime constants and the typecore.yaml configuration.
//
// A configuration file looks like:
//
//	cache:
//	  strategy: expiring   # weak (default), strong or expiring
//	  ttl: 10m
//	  max_entries: 50000
//	decimal:
//	  precision: 34
//	log:
//	  level: debug
//	metrics:
//	  exporter: stdout     # none (default) or stdout
//	units:
//	  - name: acme.units.Length
//	    raw: Long
//	fqns:
//	  - acme.units.Length
//	  - acme.money.Money
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCacheTTL is the entry lifetime for the expiring cache strategy.
const DefaultCacheTTL = 10 * time.Minute

// Config represents the top-level typecore.yaml configuration.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Decimal DecimalConfig `yaml:"decimal"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`

	// Units declares unit-carrying types available to the evaluator.
	Units []UnitDecl `yaml:"units,omitempty"`

	// Fqns seeds the FQN cache for the `fqns` command.
	Fqns []string `yaml:"fqns,omitempty"`
}

// CacheConfig selects how cached payloads are held.
type CacheConfig struct {
	// Strategy is one of weak, strong or expiring. Defaults to weak.
	Strategy string `yaml:"strategy,omitempty"`

	// TTL bounds the lifetime of an entry. Only used by expiring.
	TTL time.Duration `yaml:"ttl,omitempty"`

	// MaxEntries bounds the number of live payloads. Only used by expiring.
	MaxEntries int64 `yaml:"max_entries,omitempty"`
}

// DecimalConfig controls arbitrary-precision decimal conversions.
type DecimalConfig struct {
	// Precision is the number of significant digits kept when a value
	// (e.g. a rational) cannot be represented exactly.
	Precision uint32 `yaml:"precision,omitempty"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// MetricsConfig selects where cache and evaluator counters are exported.
type MetricsConfig struct {
	// Exporter is none or stdout. Stdout writes the collected counters to
	// the log output when the command finishes.
	Exporter string `yaml:"exporter,omitempty"`
}

// UnitDecl declares a unit-carrying type and its raw numeric representation.
type UnitDecl struct {
	// Name is the fully-qualified type name (e.g. "acme.units.Length").
	Name string `yaml:"name"`

	// Raw is the builtin numeric type values are computed in (e.g. "Long").
	Raw string `yaml:"raw"`

	// Symbol is an optional display suffix (e.g. "m").
	Symbol string `yaml:"symbol,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses a typecore.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses typecore.yaml content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	switch c.Cache.Strategy {
	case StrategyWeak, StrategyStrong, StrategyExpiring:
	default:
		return fmt.Errorf("%s: cache.strategy: unknown strategy %q", path, c.Cache.Strategy)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%s: cache.ttl: must not be negative", path)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("%s: cache.max_entries: must not be negative", path)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%s: log.level: %w", path, err)
	}
	switch c.Metrics.Exporter {
	case MetricsNone, MetricsStdout:
	default:
		return fmt.Errorf("%s: metrics.exporter: unknown exporter %q", path, c.Metrics.Exporter)
	}

	seen := make(map[string]bool)
	for i, u := range c.Units {
		if u.Name == "" {
			return fmt.Errorf("%s: units[%d]: name is required", path, i)
		}
		if u.Raw == "" {
			return fmt.Errorf("%s: units[%d] (%s): raw is required", path, i, u.Name)
		}
		if seen[u.Name] {
			return fmt.Errorf("%s: units[%d]: duplicate unit %q", path, i, u.Name)
		}
		seen[u.Name] = true
	}

	for i, fqn := range c.Fqns {
		if fqn == "" {
			return fmt.Errorf("%s: fqns[%d]: empty name", path, i)
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Cache.Strategy == "" {
		c.Cache.Strategy = StrategyWeak
	}
	c.Cache.Strategy = strings.ToLower(c.Cache.Strategy)
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if c.Decimal.Precision == 0 {
		c.Decimal.Precision = DefaultDecimalPrecision
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Metrics.Exporter == "" {
		c.Metrics.Exporter = MetricsNone
	}
	c.Metrics.Exporter = strings.ToLower(c.Metrics.Exporter)
}

// ParseLevel maps a configured level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q", name)
}
