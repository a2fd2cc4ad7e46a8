// Package transform defines the boundary to an external source-to-source
// transformer. Options are an opaque key-value blob; only the handful of keys
// declared here are read or written by callers.
package transform

import (
	"fmt"
	"maps"

	"github.com/leapstack-labs/assetwrap/pkg/sourcemap"
)

// Option keys understood outside of a transformer implementation.
const (
	KeySourceMaps     = "sourceMaps"
	KeySourceRoot     = "sourceRoot"
	KeySourceFileName = "sourceFileName"
)

// Options is the configuration blob handed to a Transformer.
type Options map[string]any

// Clone returns a shallow copy of the options.
func (o Options) Clone() Options {
	c := make(Options, len(o))
	maps.Copy(c, o)
	return c
}

// SourceMaps reports whether mapping generation is requested.
func (o Options) SourceMaps() bool {
	v, _ := o[KeySourceMaps].(bool)
	return v
}

// Output is a successful transformation.
type Output struct {
	Code string
	// Map is set only when source maps were requested.
	Map *sourcemap.Map
}

// Transformer rewrites code. Implementations must be synchronous and return
// a *Failure when the input is rejected.
type Transformer interface {
	Name() string
	Transform(code string, opts Options) (*Output, error)
}

// Func adapts a plain function to Transformer.
type Func struct {
	Label string
	Fn    func(code string, opts Options) (*Output, error)
}

// Name satisfies Transformer.
func (f Func) Name() string { return f.Label }

// Transform satisfies Transformer.
func (f Func) Transform(code string, opts Options) (*Output, error) { return f.Fn(code, opts) }

// Location is a position in the transformer input. Line is 1-based and
// Column 0-based.
type Location struct {
	Line   int
	Column int
}

// Failure is returned when the transformer rejects its input.
type Failure struct {
	Message string
	// Location is nil when the transformer did not report a position.
	Location *Location
}

func (e *Failure) Error() string {
	if e.Location == nil {
		return e.Message
	}
	return fmt.Sprintf("%s (%d:%d)", e.Message, e.Location.Line, e.Location.Column)
}
