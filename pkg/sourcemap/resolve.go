package sourcemap

import (
	"fmt"

	gosourcemap "github.com/go-sourcemap/sourcemap"
)

// Position is a location in an original source.
type Position struct {
	Source string
	Name   string
	Line   int
	Column int
}

// Resolver answers generated-to-original lookups for one map.
type Resolver struct {
	consumer *gosourcemap.Consumer
}

// NewResolver prepares m for lookups.
func NewResolver(m *Map) (*Resolver, error) {
	if _, err := m.Table(); err != nil {
		return nil, err
	}
	b, err := m.Bytes()
	if err != nil {
		return nil, err
	}
	c, err := gosourcemap.Parse("", b)
	if err != nil {
		return nil, fmt.Errorf("failed to load source map: %w", err)
	}
	return &Resolver{consumer: c}, nil
}

// Resolve returns the original position of the nearest record at or before
// (line, column). It reports false when nothing precedes the position or the
// matching record has no original source.
func (r *Resolver) Resolve(line, column int) (Position, bool) {
	source, name, origLine, origColumn, ok := r.consumer.Source(line, column)
	if !ok || source == "" {
		return Position{}, false
	}
	return Position{Source: source, Name: name, Line: origLine, Column: origColumn}, true
}
