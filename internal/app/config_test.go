package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/policysim/internal/app"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestDefaultConfig(t *testing.T) {
	cfg := app.DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, app.DefaultDatasetPath, cfg.Dataset.Path)
	assert.True(t, cfg.Levers.AuditEffect && cfg.Levers.ASTEffect && cfg.Levers.TherapyAdjustment)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := app.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, app.DefaultConfig(), cfg)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policysim.yaml")
	yml := `
server:
  listen_addr: "127.0.0.1:9000"
  read_timeout: 5s
dataset:
  driver: sqlite
  dsn: results.db
  table: results
logging:
  level: debug
  format: console
levers:
  audit_effect: false
  ast_effect: true
  therapy_adjustment: true
charts:
  width: 640
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := app.LoadConfig(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Dataset.Driver)
	assert.Equal(t, "results", cfg.Dataset.Table)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Levers.AuditEffect)
	assert.Equal(t, 640, cfg.Charts.Width)
	assert.Equal(t, app.DefaultConfig().Charts.Height, cfg.Charts.Height)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("POLICYSIM_LISTEN_ADDR", ":9999")
	t.Setenv("POLICYSIM_DATASET_PATH", "other.csv")
	t.Setenv("POLICYSIM_DATASET_WATCH", "true")
	t.Setenv("POLICYSIM_LEVER_THERAPY", "false")
	t.Setenv("POLICYSIM_DATASET_DEBOUNCE", "2s")

	cfg, err := app.LoadConfig("", noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.ListenAddr)
	assert.Equal(t, "other.csv", cfg.Dataset.Path)
	assert.True(t, cfg.Dataset.Watch)
	assert.False(t, cfg.Levers.TherapyAdjustment)
	assert.Equal(t, 2*time.Second, cfg.Dataset.Debounce)
}

func TestLoadConfig_BadEnvValue(t *testing.T) {
	t.Setenv("POLICYSIM_LEVER_AUDIT", "maybe")

	_, err := app.LoadConfig("", noEnvFile(t))
	assert.ErrorContains(t, err, "POLICYSIM_LEVER_AUDIT")
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("# local overrides\nPOLICYSIM_LOG_LEVEL=warn\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("POLICYSIM_LOG_LEVEL") })

	cfg, err := app.LoadConfig("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*app.Config)
	}{
		{"empty listen addr", func(c *app.Config) { c.Server.ListenAddr = "" }},
		{"unknown driver", func(c *app.Config) { c.Dataset.Driver = "excel" }},
		{"csv without path", func(c *app.Config) { c.Dataset.Path = "" }},
		{"watch on sql", func(c *app.Config) {
			c.Dataset = app.DefaultConfig().Dataset
			c.Dataset.Driver, c.Dataset.DSN, c.Dataset.Table, c.Dataset.Watch = "sqlite", "x.db", "results", true
		}},
		{"bad log level", func(c *app.Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *app.Config) { c.Logging.Format = "xml" }},
		{"negative chart width", func(c *app.Config) { c.Charts.Width = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := app.DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policysim.yaml")
	cfg := app.DefaultConfig()
	cfg.Server.ListenAddr = ":7000"
	cfg.Levers.ASTEffect = false

	require.NoError(t, cfg.Save(path))

	loaded, err := app.LoadConfig(path, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
