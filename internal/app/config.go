package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/raysh454/policysim/internal/charts"
	"github.com/raysh454/policysim/internal/dataset"
	"github.com/raysh454/policysim/internal/logging"
	"github.com/raysh454/policysim/internal/model"
)

// DefaultDatasetPath is the file the dashboard reads when nothing else is
// configured.
const DefaultDatasetPath = "LMIC_Intervention_Simulation_Results.csv"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POLICYSIM_"

// Config is the runtime configuration shared by every command.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Dataset dataset.Config `yaml:"dataset"`
	Logging logging.Config `yaml:"logging"`

	// Levers is the lever state a new dashboard session starts with.
	Levers model.LeverState `yaml:"levers"`

	Charts charts.Options `yaml:"charts"`
	Report ReportConfig   `yaml:"report"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr  string        `yaml:"listen_addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// ReportConfig configures terminal rendering.
type ReportConfig struct {
	// MarkdownStyle is a glamour style name: auto, dark, light, notty.
	MarkdownStyle string `yaml:"markdown_style"`
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:  ":8080",
			ReadTimeout: 15 * time.Second,
		},
		Dataset: dataset.Config{
			Driver:   "csv",
			Path:     DefaultDatasetPath,
			Debounce: dataset.DefaultDebounce,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Levers: model.DefaultLevers(),
		Charts: charts.DefaultOptions(),
		Report: ReportConfig{MarkdownStyle: "auto"},
	}
}

// LoadConfig builds the configuration in layers: defaults, the YAML file at
// path (skipped when it does not exist), variables from envFiles (".env"
// when none are given; missing files are ignored), then POLICYSIM_*
// environment overrides. The result is validated.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"LISTEN_ADDR":      &c.Server.ListenAddr,
		"DATASET_DRIVER":   &c.Dataset.Driver,
		"DATASET_PATH":     &c.Dataset.Path,
		"DATASET_URL":      &c.Dataset.URL,
		"DATASET_DSN":      &c.Dataset.DSN,
		"DATASET_TABLE":    &c.Dataset.Table,
		"DATASET_ORDER_BY": &c.Dataset.OrderBy,
		"LOG_LEVEL":        &c.Logging.Level,
		"LOG_FORMAT":       &c.Logging.Format,
		"MARKDOWN_STYLE":   &c.Report.MarkdownStyle,
	}
	for name, dst := range strs {
		if v, ok := lookupEnv(name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"DATASET_WATCH": &c.Dataset.Watch,
		"LEVER_AUDIT":   &c.Levers.AuditEffect,
		"LEVER_AST":     &c.Levers.ASTEffect,
		"LEVER_THERAPY": &c.Levers.TherapyAdjustment,
	}
	for name, dst := range bools {
		if v, ok := lookupEnv(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}

	durations := map[string]*time.Duration{
		"READ_TIMEOUT":     &c.Server.ReadTimeout,
		"DATASET_DEBOUNCE": &c.Dataset.Debounce,
	}
	for name, dst := range durations {
		if v, ok := lookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return errors.New("server.listen_addr is required")
	}
	if c.Server.ReadTimeout < 0 {
		return errors.New("server.read_timeout must not be negative")
	}
	if c.Dataset.Debounce < 0 {
		return errors.New("dataset.debounce must not be negative")
	}
	if _, err := dataset.NewSource(c.Dataset); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if c.Dataset.Watch && !c.watchable() {
		return errors.New("dataset.watch requires the csv driver")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	switch c.Logging.Format {
	case "", "json", "console", "stdout":
	default:
		return fmt.Errorf("logging.format %q is not one of json, console, stdout", c.Logging.Format)
	}
	if c.Charts.Width < 0 || c.Charts.Height < 0 {
		return errors.New("charts.width and charts.height must not be negative")
	}
	return nil
}

func (c *Config) watchable() bool {
	switch strings.ToLower(c.Dataset.Driver) {
	case "", "csv", "tsv":
		return true
	}
	return false
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
