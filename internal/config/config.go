// Package config handles .archlens.yml project-level configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/archlens/archlens/internal/logging"
)

// DefaultExtensions lists every extension the built-in parsers handle.
var DefaultExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts",
	".py", ".pyw", ".pyi",
	".go",
	".java",
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// GroupingRule assigns modules matching a glob pattern to a named layer.
// Rules are ordered; the first matching rule wins and outranks built-ins.
type GroupingRule struct {
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`
	Color   string `yaml:"color,omitempty"`
}

// OutputConfig is passed through to the emitters; the analysis core does
// not consume it.
type OutputConfig struct {
	Directory string   `yaml:"directory"`
	Filename  string   `yaml:"filename"`
	Formats   []string `yaml:"formats"`
}

// ProjectConfig represents the .archlens.yml configuration file.
type ProjectConfig struct {
	Ignore     []string          `yaml:"ignore"`
	Grouping   []GroupingRule    `yaml:"grouping"`
	Styles     map[string]string `yaml:"styles"`
	Extensions []string          `yaml:"extensions"`
	Output     OutputConfig      `yaml:"output"`
}

// Default returns a ProjectConfig with every field at its default.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load reads project configuration from .archlens.yml or .archlens.yaml in
// dir. If explicitPath is provided (from --config), that file is loaded
// instead. A missing config file is not an error; defaults are returned.
func Load(dir string, explicitPath string) (*ProjectConfig, error) {
	var configPath string

	if explicitPath != "" {
		configPath = explicitPath
	} else {
		ymlPath := filepath.Join(dir, ".archlens.yml")
		yamlPath := filepath.Join(dir, ".archlens.yaml")

		if _, err := os.Stat(ymlPath); err == nil {
			configPath = ymlPath
		} else if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read project config %s: %w", configPath, err)
	}

	cfg := &ProjectConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", configPath, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Validate checks rule shape; invalid style colors are dropped with a
// warning rather than rejected.
func (c *ProjectConfig) Validate() error {
	for i, rule := range c.Grouping {
		if rule.Pattern == "" {
			return fmt.Errorf("grouping rule %d: pattern must not be empty", i)
		}
		if rule.Label == "" {
			return fmt.Errorf("grouping rule %d: label must not be empty", i)
		}
	}

	for layer, color := range c.Styles {
		if !hexColor.MatchString(color) {
			logging.Logger().Warnf("ignoring invalid style color %q for layer %q", color, layer)
			delete(c.Styles, layer)
		}
	}

	return nil
}

// applyDefaults fills unset fields and normalizes extensions to the
// dot-prefixed, lowercase form the scanner matches against.
func (c *ProjectConfig) applyDefaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = append(c.Extensions, DefaultExtensions...)
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}

	if c.Styles == nil {
		c.Styles = make(map[string]string)
	}

	if c.Output.Directory == "" {
		c.Output.Directory = "diagrams"
	}
	if c.Output.Filename == "" {
		c.Output.Filename = "architecture"
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{"drawio"}
	}
}

// ExtensionSet returns the configured extensions as a lookup set.
func (c *ProjectConfig) ExtensionSet() map[string]bool {
	set := make(map[string]bool, len(c.Extensions))
	for _, ext := range c.Extensions {
		if ext != "" {
			set[ext] = true
		}
	}
	return set
}
