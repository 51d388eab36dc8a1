package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/colony-counter-mcp/internal/annotation"
	"github.com/ironsheep/colony-counter-mcp/internal/detection"
	"github.com/ironsheep/colony-counter-mcp/internal/imaging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colony.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig should validate: %v", err)
	}
}

func TestDefaultConfig_MatchesPackageDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Tolerance != annotation.DefaultTolerance {
		t.Errorf("Tolerance: got %g, want %g", cfg.Tolerance, annotation.DefaultTolerance)
	}

	style := imaging.DefaultOverlayStyle()
	got := imaging.OverlayStyle{
		AutomaticColor: cfg.AutomaticColor,
		ManualColor:    cfg.ManualColor,
		RemovedColor:   cfg.RemovedColor,
		Radius:         cfg.MarkerRadius,
	}
	if got != style {
		t.Errorf("overlay defaults: got %+v, want %+v", got, style)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Params != detection.DefaultParams() {
		t.Errorf("Expected default params, got %+v", cfg.Params)
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	path := writeConfig(t, `{"params": {"threshold": 90, "min_area": 5, "max_area": 500}, "workers": 3}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Params.Threshold != 90 || cfg.Params.MinArea != 5 || cfg.Params.MaxArea != 500 {
		t.Errorf("Params not loaded: %+v", cfg.Params)
	}
	if cfg.Params.Connectivity != detection.Connectivity8 {
		t.Errorf("Connectivity default lost: %d", cfg.Params.Connectivity)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers: got %d, want 3", cfg.Workers)
	}
	if cfg.Tolerance != annotation.DefaultTolerance {
		t.Errorf("Tolerance default lost: %g", cfg.Tolerance)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"workers": `},
		{"unknown field", `{"wokers": 2}`},
		{"inverted area range", `{"params": {"threshold": 100, "min_area": 50, "max_area": 10}}`},
		{"threshold too high", `{"params": {"threshold": 300, "min_area": 1, "max_area": 10}}`},
		{"zero tolerance", `{"tolerance": 0}`},
		{"bad colour", `{"manual_color": "blue-ish"}`},
		{"bad level", `{"log_level": "loud"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Errorf("expected error for %s", tt.body)
			}
		})
	}
}

func TestLoad_ParamErrorIsConfigError(t *testing.T) {
	_, err := Load(writeConfig(t, `{"params": {"threshold": -1, "min_area": 1, "max_area": 10}}`))
	var ce *detection.ConfigError
	if !errors.As(err, &ce) || ce.Field != "threshold" {
		t.Errorf("expected threshold ConfigError, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvLogLevel: "debug", EnvWorkers: "6"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Level() != zerolog.DebugLevel {
		t.Errorf("Level: got %v, want debug", cfg.Level())
	}
	if cfg.Workers != 6 {
		t.Errorf("Workers: got %d, want 6", cfg.Workers)
	}

	env[EnvWorkers] = "many"
	if err := DefaultConfig().ApplyEnv(lookup); err == nil {
		t.Errorf("expected error for non-numeric workers")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Threshold = 77
	cfg.Params.DarkForeground = true
	cfg.MarkerRadius = 9

	path := filepath.Join(t.TempDir(), "saved.json")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Params != cfg.Params || got.MarkerRadius != 9 {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}
