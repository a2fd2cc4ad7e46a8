// Package config provides configuration management for the assetwrap CLI.
package config

import (
	"maps"
	"slices"

	"github.com/leapstack-labs/assetwrap/internal/plugin"
)

// Config holds all CLI configuration options.
type Config struct {
	// InputDir holds the emitted assets to rewrite.
	InputDir string `koanf:"input_dir"`
	// OutputDir receives the rewritten assets. Empty rewrites in place.
	OutputDir string `koanf:"output_dir"`
	// Context is the root used to shorten paths in diagnostics.
	Context string `koanf:"context"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
	Watch        bool   `koanf:"watch"`

	// Chunks maps a chunk name to the asset names it owns. Empty puts every
	// script in one chunk.
	Chunks map[string][]string `koanf:"chunks"`

	Plugin PluginConfig `koanf:"plugin"`

	// ProjectRoot is where relative paths are resolved from.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// PluginConfig configures the rewrite plugin.
type PluginConfig struct {
	Test    []string `koanf:"test"`
	Include []string `koanf:"include"`
	Exclude []string `koanf:"exclude"`

	Presets    []string `koanf:"presets"`
	Compact    bool     `koanf:"compact"`
	SourceMaps bool     `koanf:"source_maps"`

	// Options is passed to the transformer unchanged.
	Options map[string]any `koanf:"options"`
}

// PluginOptions converts the section into plugin options.
func (p PluginConfig) PluginOptions() plugin.Options {
	return plugin.Options{
		Test:       slices.Clone(p.Test),
		Include:    slices.Clone(p.Include),
		Exclude:    slices.Clone(p.Exclude),
		Presets:    slices.Clone(p.Presets),
		Compact:    p.Compact,
		SourceMaps: p.SourceMaps,
		Transform:  maps.Clone(p.Options),
	}
}

// Destination returns where rewritten assets are written.
func (c *Config) Destination() string {
	if c.OutputDir == "" {
		return c.InputDir
	}
	return c.OutputDir
}

// Default configuration values.
const (
	DefaultInputDir = "dist"
	DefaultOutput   = "auto" // TTY=text, otherwise markdown
	EnvPrefix       = "ASSETWRAP_"
)

// ConfigFileNames are searched, in order, when no config file is given.
var ConfigFileNames = []string{"assetwrap.yaml", "assetwrap.yml"}
