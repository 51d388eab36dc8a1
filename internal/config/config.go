package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/ironsheep/colony-counter-mcp/internal/annotation"
	"github.com/ironsheep/colony-counter-mcp/internal/detection"
	"github.com/ironsheep/colony-counter-mcp/internal/imaging"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfigPath = "COLONY_MCP_CONFIG"
	EnvLogLevel   = "COLONY_MCP_LOG_LEVEL"
	EnvWorkers    = "COLONY_MCP_WORKERS"
)

// Config holds runtime configuration for the colony server.
// Fields may be loaded from a JSON file and overridden by the environment.
type Config struct {
	LogLevel string `json:"log_level"`

	// Detection defaults used when a tool call supplies no parameters.
	Params detection.Params `json:"params"`

	// Tolerance is the reconciliation match distance in pixels.
	Tolerance float64 `json:"tolerance"`

	// Workers bounds the batch pool. Zero means one per CPU.
	Workers int `json:"workers"`

	// PreviewMaxSize is the longest edge of generated previews.
	PreviewMaxSize int `json:"preview_max_size"`

	// Overlay marker colours as hex strings.
	AutomaticColor string `json:"automatic_color"`
	ManualColor    string `json:"manual_color"`
	RemovedColor   string `json:"removed_color"`
	MarkerRadius   int    `json:"marker_radius"`

	// CacheSize is the number of decoded images kept in memory.
	CacheSize int `json:"cache_size"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	style := imaging.DefaultOverlayStyle()
	return &Config{
		LogLevel:       "info",
		Params:         detection.DefaultParams(),
		Tolerance:      annotation.DefaultTolerance,
		Workers:        0,
		PreviewMaxSize: 1024,
		AutomaticColor: style.AutomaticColor,
		ManualColor:    style.ManualColor,
		RemovedColor:   style.RemovedColor,
		MarkerRadius:   style.Radius,
		CacheSize:      32,
	}
}

// Validate reports the first invalid setting. Detection parameters are
// never clamped: a bad threshold or area range is an error.
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.PreviewMaxSize <= 0 {
		return fmt.Errorf("preview_max_size must be positive, got %d", c.PreviewMaxSize)
	}
	if c.MarkerRadius <= 0 {
		return fmt.Errorf("marker_radius must be positive, got %d", c.MarkerRadius)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	for name, hex := range map[string]string{
		"automatic_color": c.AutomaticColor,
		"manual_color":    c.ManualColor,
		"removed_color":   c.RemovedColor,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Level returns the zerolog level for LogLevel, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Load reads configuration from the given JSON file path. An empty path or a
// missing file yields DefaultConfig(). Fields absent from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	return c.Validate()
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
