package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "markdown", "json"}

// ValidationError reports an unusable configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return &ValidationError{Field: "input_dir", Message: "is required"}
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return &ValidationError{
			Field:   "output",
			Message: fmt.Sprintf("%q is not one of %s", c.OutputFormat, strings.Join(OutputFormats, "|")),
		}
	}
	if c.Watch && within(c.Destination(), c.InputDir) {
		return &ValidationError{
			Field:   "output_dir",
			Message: "must be outside input_dir in watch mode\nHint: use --output-dir to write somewhere else",
		}
	}
	return nil
}

// within reports whether path is dir or below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
