package esbuild

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/assetwrap/pkg/transform"
)

// DefaultPreset is used when the options name no preset and no target.
const DefaultPreset = "es2015"

// Settings is the subset of the options blob this transformer understands.
// Parsed from transform.Options using mapstructure; unknown keys are ignored.
type Settings struct {
	// Presets name language levels; the oldest one wins.
	Presets []string `mapstructure:"presets"`

	// Target overrides Presets when set.
	Target string `mapstructure:"target"`

	// Compact strips whitespace only; Minify also rewrites syntax and names.
	Compact bool `mapstructure:"compact"`
	Minify  bool `mapstructure:"minify"`

	SourceMaps     bool   `mapstructure:"sourceMaps"`
	SourceRoot     string `mapstructure:"sourceRoot"`
	SourceFileName string `mapstructure:"sourceFileName"`

	// Loader is one of js, jsx, ts, tsx. Defaults to js.
	Loader string `mapstructure:"loader"`

	// Format is one of iife, cjs, esm. Empty keeps the input format.
	Format string `mapstructure:"format"`

	// Charset is utf8 or ascii.
	Charset string `mapstructure:"charset"`

	Define    map[string]string `mapstructure:"define"`
	Pure      []string          `mapstructure:"pure"`
	KeepNames bool              `mapstructure:"keepNames"`
}

// DecodeSettings reads Settings out of an options blob.
func DecodeSettings(opts transform.Options) (*Settings, error) {
	var s Settings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(map[string]any(opts)); err != nil {
		return nil, fmt.Errorf("invalid esbuild options: %w", err)
	}
	return &s, nil
}

// presetOrder lists known language levels from oldest to newest.
var presetOrder = []struct {
	name   string
	target api.Target
}{
	{"es5", api.ES5},
	{"es2015", api.ES2015},
	{"es2016", api.ES2016},
	{"es2017", api.ES2017},
	{"es2018", api.ES2018},
	{"es2019", api.ES2019},
	{"es2020", api.ES2020},
	{"es2021", api.ES2021},
	{"es2022", api.ES2022},
	{"es2023", api.ES2023},
	{"es2024", api.ES2024},
	{"esnext", api.ESNext},
}

var presetAliases = map[string]string{
	"es6":    "es2015",
	"env":    "esnext",
	"latest": "esnext",
}

func presetRank(name string) (int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := presetAliases[name]; ok {
		name = alias
	}
	for i, p := range presetOrder {
		if p.name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown preset %q", name)
}

// ResolveTarget returns the esbuild target for the settings.
func (s *Settings) ResolveTarget() (api.Target, error) {
	if s.Target != "" {
		i, err := presetRank(s.Target)
		if err != nil {
			return 0, err
		}
		return presetOrder[i].target, nil
	}

	presets := s.Presets
	if len(presets) == 0 {
		presets = []string{DefaultPreset}
	}

	lowest := len(presetOrder) - 1
	for _, p := range presets {
		i, err := presetRank(p)
		if err != nil {
			return 0, err
		}
		if i < lowest {
			lowest = i
		}
	}
	return presetOrder[lowest].target, nil
}

// TransformOptions converts the settings into esbuild options.
func (s *Settings) TransformOptions() (api.TransformOptions, error) {
	target, err := s.ResolveTarget()
	if err != nil {
		return api.TransformOptions{}, err
	}

	to := api.TransformOptions{
		Target:            target,
		Sourcefile:        s.SourceFileName,
		SourceRoot:        s.SourceRoot,
		MinifyWhitespace:  s.Compact || s.Minify,
		MinifySyntax:      s.Minify,
		MinifyIdentifiers: s.Minify,
		KeepNames:         s.KeepNames,
		Define:            s.Define,
		Pure:              s.Pure,
		LogLevel:          api.LogLevelSilent,
	}

	if s.SourceMaps {
		to.Sourcemap = api.SourceMapExternal
		to.SourcesContent = api.SourcesContentInclude
	}

	switch strings.ToLower(s.Loader) {
	case "", "js":
		to.Loader = api.LoaderJS
	case "jsx":
		to.Loader = api.LoaderJSX
	case "ts":
		to.Loader = api.LoaderTS
	case "tsx":
		to.Loader = api.LoaderTSX
	default:
		return api.TransformOptions{}, fmt.Errorf("unknown loader %q", s.Loader)
	}

	switch strings.ToLower(s.Format) {
	case "":
		to.Format = api.FormatDefault
	case "iife":
		to.Format = api.FormatIIFE
	case "cjs", "commonjs":
		to.Format = api.FormatCommonJS
	case "esm":
		to.Format = api.FormatESModule
	default:
		return api.TransformOptions{}, fmt.Errorf("unknown format %q", s.Format)
	}

	switch strings.ToLower(s.Charset) {
	case "":
		to.Charset = api.CharsetDefault
	case "utf8", "utf-8":
		to.Charset = api.CharsetUTF8
	case "ascii":
		to.Charset = api.CharsetASCII
	default:
		return api.TransformOptions{}, fmt.Errorf("unknown charset %q", s.Charset)
	}

	return to, nil
}
