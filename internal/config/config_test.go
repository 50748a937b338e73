package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"), "typecore.yaml")
	require.NoError(t, err)

	assert.Equal(t, StrategyWeak, cfg.Cache.Strategy)
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
	assert.Equal(t, int64(DefaultCacheMaxEntries), cfg.Cache.MaxEntries)
	assert.Equal(t, uint32(DefaultDecimalPrecision), cfg.Decimal.Precision)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, MetricsNone, cfg.Metrics.Exporter)
}

func TestParseConfig_MetricsExporter(t *testing.T) {
	cfg, err := Parse([]byte("metrics:\n  exporter: Stdout\n"), "typecore.yaml")
	require.NoError(t, err)
	assert.Equal(t, MetricsStdout, cfg.Metrics.Exporter)
}

func TestParseConfig_Full(t *testing.T) {
	data := `
cache:
  strategy: Expiring
  ttl: 30s
  max_entries: 10
decimal:
  precision: 16
log:
  level: debug
units:
  - name: acme.units.Length
    raw: Long
    symbol: m
fqns:
  - acme.units.Length
  - acme.money.Money
`
	cfg, err := Parse([]byte(data), "typecore.yaml")
	require.NoError(t, err)

	assert.Equal(t, StrategyExpiring, cfg.Cache.Strategy)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, int64(10), cfg.Cache.MaxEntries)
	assert.Equal(t, uint32(16), cfg.Decimal.Precision)
	require.Len(t, cfg.Units, 1)
	assert.Equal(t, UnitDecl{Name: "acme.units.Length", Raw: "Long", Symbol: "m"}, cfg.Units[0])
	assert.Equal(t, []string{"acme.units.Length", "acme.money.Money"}, cfg.Fqns)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"unknown strategy", "cache:\n  strategy: lru\n", "unknown strategy"},
		{"negative ttl", "cache:\n  ttl: -1s\n", "cache.ttl"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"unknown exporter", "metrics:\n  exporter: zipkin\n", "metrics.exporter"},
		{"unit without name", "units:\n  - raw: Long\n", "name is required"},
		{"unit without raw", "units:\n  - name: a.B\n", "raw is required"},
		{"duplicate unit", "units:\n  - {name: a.B, raw: Int}\n  - {name: a.B, raw: Long}\n", "duplicate unit"},
		{"empty fqn", "fqns:\n  - ''\n", "empty name"},
		{"malformed yaml", "cache: [", "parsing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "typecore.yaml")
			require.Error(t, err)
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  strategy: strong\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StrategyStrong, cfg.Cache.Strategy)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}
