package plugin

import (
	"maps"
	"slices"

	"github.com/leapstack-labs/assetwrap/pkg/transform"
)

// DefaultPresets is used when Options.Presets is empty.
var DefaultPresets = []string{"es2015"}

// Options configures a Plugin.
type Options struct {
	// Test, Include and Exclude form the matching policy. See Matcher.
	Test    []string
	Include []string
	Exclude []string

	Presets    []string
	Compact    bool
	SourceMaps bool

	// Transform holds further transformer options, passed through as-is.
	Transform map[string]any
}

// matchingKeys never reach the transformer.
var matchingKeys = []string{"test", "include", "exclude"}

// TransformOptions builds the base options blob shared by every asset.
func (o Options) TransformOptions() transform.Options {
	blob := make(transform.Options, len(o.Transform)+3)
	maps.Copy(blob, o.Transform)
	for _, k := range matchingKeys {
		delete(blob, k)
	}

	presets := o.Presets
	if len(presets) == 0 {
		presets = DefaultPresets
	}
	blob["presets"] = slices.Clone(presets)
	blob["compact"] = o.Compact
	blob[transform.KeySourceMaps] = o.SourceMaps
	return blob
}
