package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	grid := cfg.Panel.Grid()
	if grid.Columns != 2 || grid.Rows != 2 || grid.Margin != 10 {
		t.Errorf("default grid = %+v, want 2x2 with margin 10", grid)
	}
	if cfg.Panel.Resolution != 100 {
		t.Errorf("Resolution = %v, want 100", cfg.Panel.Resolution)
	}
	if cfg.Preview.ThumbnailSize != 150 {
		t.Errorf("ThumbnailSize = %d, want 150", cfg.Preview.ThumbnailSize)
	}
	if cfg.Logging.Level != "normal" {
		t.Errorf("Logging.Level = %q, want normal", cfg.Logging.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
panel:
  columns: 4
  margin: 0
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Panel.Columns != 4 {
		t.Errorf("Columns = %d, want 4", cfg.Panel.Columns)
	}
	if cfg.Panel.Rows != 2 {
		t.Errorf("Rows = %d, want default 2", cfg.Panel.Rows)
	}
	if cfg.Panel.Margin != 0 {
		t.Errorf("Margin = %d, want 0", cfg.Panel.Margin)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfiguration_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "version: 1\npanel:\n  colums: 3\n"},
		{"zero columns", "version: 1\npanel:\n  columns: 0\n"},
		{"negative margin", "version: 1\npanel:\n  margin: -4\n"},
		{"bad version", "version: 2\n"},
		{"bad log level", "version: 1\nlogging:\n  level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := LoadConfiguration(configPath); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDump(t *testing.T) {
	data, err := Dump(Default())
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	cfg := &Config{}
	if _, err := unmarshalConfig(data, cfg, true); err != nil {
		t.Errorf("dumped config does not load back: %v", err)
	}
	if cfg.Panel.Columns != 2 {
		t.Errorf("Columns = %d, want 2", cfg.Panel.Columns)
	}
}

func TestPreviewConfig_Options(t *testing.T) {
	opts := Default().Preview.Options()
	if opts.CellWidth != 150 || opts.CellHeight != 150 {
		t.Errorf("cell = %dx%d, want 150x150", opts.CellWidth, opts.CellHeight)
	}
	if opts.Background != "#FFFFFF" {
		t.Errorf("Background = %q", opts.Background)
	}
}

func TestLoggingConfig_Prepare(t *testing.T) {
	var buf bytes.Buffer

	log, err := (&LoggingConfig{Level: "normal"}).PrepareTo(&buf)
	if err != nil {
		t.Fatalf("PrepareTo() error = %v", err)
	}
	log.Debug("hidden")
	log.Info("shown")
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered at normal level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info message should be written")
	}

	if _, err := (&LoggingConfig{Level: "none"}).PrepareTo(&buf); err != nil {
		t.Errorf("none level error = %v", err)
	}
	if _, err := (&LoggingConfig{Level: "loud"}).PrepareTo(&buf); err == nil {
		t.Error("unknown level should fail")
	}
}
