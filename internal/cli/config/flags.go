package config

import "github.com/spf13/pflag"

// AddGlobalFlags registers the flags shared by every command.
func AddGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: assetwrap.yaml, searched upward)")
	fs.StringP("input-dir", "i", "", "Directory of emitted assets (default: dist)")
	fs.StringP("output-dir", "d", "", "Directory to write rewritten assets to (default: rewrite in place)")
	fs.String("context", "", "Root used to shorten paths in diagnostics (default: project root)")
	fs.BoolP("verbose", "v", false, "Verbose output")
	fs.StringP("output", "o", "", "Output format (auto|text|markdown|json)")
}

// AddBuildFlags registers the flags of the build command.
func AddBuildFlags(fs *pflag.FlagSet) {
	fs.BoolP("watch", "w", false, "Rebuild when the input directory changes")
	fs.Bool("source-maps", false, "Read input maps and write composed maps")
	fs.Bool("compact", false, "Strip whitespace from the output")
	fs.StringSlice("preset", nil, "Language level presets; the oldest wins (default: es2015)")
	fs.StringSlice("test", nil, `Asset name conditions to transform (default: /\.js($|\?)/i)`)
	fs.StringSlice("include", nil, "Asset name conditions that must also match")
	fs.StringSlice("exclude", nil, "Asset name conditions to skip")
}
