package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/memolab/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "memolab.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "memolab.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 7070

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "memolab"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "memolab"

	// DefaultExpensiveIterations is the size of the useMemo page's
	// expensive computation.
	DefaultExpensiveIterations = 10_000_000

	// DefaultEventLogCapacity bounds each page's event log.
	DefaultEventLogCapacity = 1000
)

// Environment variables that override file values.
const (
	EnvPort     = "MEMOLAB_PORT"
	EnvLogLevel = "MEMOLAB_LOG_LEVEL"
)

// Config represents the complete memolab configuration.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server" yaml:"server"`

	// Log contains logging configuration.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Demo contains settings of the tutorial pages.
	Demo DemoConfig `json:"demo" yaml:"demo"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// AllowedOrigins lists origins allowed to open the atom stream.
	// Empty means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics and attaches the metrics observer.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Subsystem is inserted between the namespace and each metric name.
	Subsystem string `json:"subsystem,omitempty" yaml:"subsystem,omitempty"`

	// ConstLabels are added to every metric.
	ConstLabels map[string]string `json:"constLabels,omitempty" yaml:"constLabels,omitempty"`

	// Buckets are the duration histogram buckets in seconds, in increasing
	// order. Empty means the Prometheus defaults.
	Buckets []float64 `json:"buckets,omitempty" yaml:"buckets,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName is the name of the tracer.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// DemoConfig contains settings of the tutorial pages.
type DemoConfig struct {
	// ExpensiveIterations is how many additions the useMemo page's
	// expensive computation performs.
	ExpensiveIterations int `json:"expensiveIterations,omitempty" yaml:"expensiveIterations,omitempty"`

	// EventLogCapacity is how many entries each page's event log keeps.
	EventLogCapacity int `json:"eventLogCapacity,omitempty" yaml:"eventLogCapacity,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	enabled := true
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   &enabled,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Demo: DemoConfig{
			ExpensiveIterations: DefaultExpensiveIterations,
			EventLogCapacity:    DefaultEventLogCapacity,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// memolab.json, then memolab.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "memolab.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E141").
		WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + dir).
		WithSuggestion("Create one, or run without --config to use the defaults")
}

// LoadFile reads configuration from the specified file path. The format
// follows the file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			le := errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
			var syntaxErr *json.SyntaxError
			if stderrors.As(err, &syntaxErr) {
				line, col := position(data, syntaxErr.Offset)
				le.WithLocation(path, line, col)
			}
			return nil, le
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			le := errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML")
			if line := yamlErrorLine(err); line > 0 {
				le.WithLocation(path, line, 0)
			}
			return nil, le
		}
	default:
		return nil, errors.New("E121").WithDetail("Unsupported extension " + ext)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

// yamlErrorLine extracts the line from errors like "yaml: line 3: ...".
func yamlErrorLine(err error) int {
	msg := err.Error()
	i := strings.Index(msg, "line ")
	if i < 0 {
		return 0
	}
	rest := msg[i+len("line "):]
	if j := strings.IndexByte(rest, ':'); j >= 0 {
		rest = rest[:j]
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(rest))
	if convErr != nil {
		return 0
	}
	return n
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Enabled == nil {
		enabled := true
		c.Metrics.Enabled = &enabled
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Demo.ExpensiveIterations == 0 {
		c.Demo.ExpensiveIterations = DefaultExpensiveIterations
	}
	if c.Demo.EventLogCapacity == 0 {
		c.Demo.EventLogCapacity = DefaultEventLogCapacity
	}
}

// ApplyEnv overrides file values with MEMOLAB_PORT and MEMOLAB_LOG_LEVEL
// when they are set. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E122").
				WithDetail(EnvPort + " must be a number, got " + strconv.Quote(v)).
				Wrap(err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("server.port must be between 0 and 65535")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E122").
			WithDetail("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}
	if c.Demo.ExpensiveIterations < 0 {
		return errors.New("E122").
			WithDetail("demo.expensiveIterations must not be negative")
	}
	if c.Demo.EventLogCapacity < 0 {
		return errors.New("E122").
			WithDetail("demo.eventLogCapacity must not be negative")
	}
	for i, b := range c.Metrics.Buckets {
		if i > 0 && b <= c.Metrics.Buckets[i-1] {
			return errors.New("E122").
				WithDetail("metrics.buckets must be in increasing order")
		}
	}
	for name := range c.Metrics.ConstLabels {
		if !validLabelName(name) {
			return errors.New("E122").
				WithDetail("metrics.constLabels has an invalid label name " + strconv.Quote(name))
		}
	}
	for _, origin := range c.Server.AllowedOrigins {
		if origin == "" {
			return errors.New("E122").
				WithDetail("server.allowedOrigins must not contain empty entries")
		}
	}
	return nil
}

// validLabelName reports whether name is a Prometheus label name that is
// not reserved.
func validLabelName(name string) bool {
	if name == "" || strings.HasPrefix(name, "__") {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// SlogLevel parses log.level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("E122").
			WithDetail(fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	return level, nil
}

// MetricsEnabled reports whether metrics are exposed.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// Address returns the address string for the server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "memolab.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// LoadOrDefault loads path when it is set, otherwise the config in the
// working directory if there is one, otherwise the defaults. Environment
// overrides are applied and the result validated.
func LoadOrDefault(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch {
	case path != "":
		cfg, err = LoadFile(path)
	case Exists("."):
		cfg, err = Load(".")
	default:
		cfg = New()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
