// Package config loads the server configuration.
//
// Defaults are embedded in the binary; an optional YAML file is laid over
// them, and only known fields are accepted.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"

	"github.com/ironsheep/image-panel-mcp/internal/imaging"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// PanelConfig holds the grid defaults used when a request omits them.
	PanelConfig struct {
		Columns    int     `yaml:"columns" validate:"min=1"`
		Rows       int     `yaml:"rows" validate:"min=1"`
		Margin     int     `yaml:"margin" validate:"gte=0"`
		Resolution float64 `yaml:"resolution" validate:"gt=0"`
		Workers    int     `yaml:"workers" validate:"gte=0"`
	}

	// PreviewConfig controls thumbnails, the preview sheet and the overlay.
	PreviewConfig struct {
		ThumbnailSize int    `yaml:"thumbnail_size" validate:"min=1"`
		Gutter        int    `yaml:"gutter" validate:"gte=0"`
		Background    string `yaml:"background" validate:"required"`
		OverlayColor  string `yaml:"overlay_color" validate:"required"`
	}

	// ServerConfig throttles the image-processing tools; a zero rate disables it.
	ServerConfig struct {
		RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
		Burst     int     `yaml:"burst" validate:"min=1"`
	}

	// Config is the complete program configuration.
	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Panel   PanelConfig   `yaml:"panel"`
		Preview PreviewConfig `yaml:"preview"`
		Server  ServerConfig  `yaml:"server"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

// Grid returns the default grid spec.
func (c *PanelConfig) Grid() imaging.GridSpec {
	return imaging.GridSpec{Columns: c.Columns, Rows: c.Rows, Margin: c.Margin}
}

// Options returns the preview options for the configured geometry.
func (c *PreviewConfig) Options() imaging.PreviewOptions {
	return imaging.PreviewOptions{
		CellWidth:  c.ThumbnailSize,
		CellHeight: c.ThumbnailSize,
		Gutter:     c.Gutter,
		Background: c.Background,
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Unknown fields are errors, so decode instead of yaml.Unmarshal
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the embedded defaults and validates the
// result. An empty path returns the defaults.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Default returns the embedded configuration. It panics if the embedded
// template is broken, which the tests rule out.
func Default() *Config {
	cfg, err := LoadConfiguration("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Dump renders cfg as YAML.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
