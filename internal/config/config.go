package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents a pyhint.yaml file.
type Config struct {
	// MaxUnifyDepth caps the recursion of type variable inference.
	MaxUnifyDepth int `yaml:"max_unify_depth,omitempty"`

	// TypingModules are the module names whose members resolve to the
	// typing special forms.
	TypingModules []string `yaml:"typing_modules,omitempty"`

	Diagnostics DiagnosticsConfig `yaml:"diagnostics,omitempty"`
	Service     ServiceConfig     `yaml:"service,omitempty"`
	Report      ReportConfig      `yaml:"report,omitempty"`
}

type DiagnosticsConfig struct {
	// Color is one of auto, always, never.
	Color string `yaml:"color,omitempty"`
	// Quiet suppresses warnings.
	Quiet bool `yaml:"quiet,omitempty"`
}

type ServiceConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

type ReportConfig struct {
	// Path of the SQLite database.
	Path string `yaml:"path,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a pyhint.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses pyhint.yaml content from bytes. Unknown keys are
// rejected. The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfig searches for a config file starting from dir and walking up
// to parent directories. It returns an empty path when none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	return c.validate("config")
}

func (c *Config) validate(path string) error {
	if c.MaxUnifyDepth < 1 {
		return fmt.Errorf("%s: max_unify_depth must be positive, got %d", path, c.MaxUnifyDepth)
	}
	for i, m := range c.TypingModules {
		if m == "" {
			return fmt.Errorf("%s: typing_modules[%d]: empty module name", path, i)
		}
	}
	switch c.Diagnostics.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%s: diagnostics.color must be auto, always or never, got %q", path, c.Diagnostics.Color)
	}
	if c.Service.Addr == "" {
		return fmt.Errorf("%s: service.addr is empty", path)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.MaxUnifyDepth == 0 {
		c.MaxUnifyDepth = DefaultMaxUnifyDepth
	}
	if len(c.TypingModules) == 0 {
		c.TypingModules = []string{TypingModule, TypingExtensionsModule}
	}
	if c.Diagnostics.Color == "" {
		c.Diagnostics.Color = "auto"
	}
	if c.Service.Addr == "" {
		c.Service.Addr = DefaultServiceAddr
	}
	if c.Report.Path == "" {
		c.Report.Path = DefaultReportPath
	}
}
