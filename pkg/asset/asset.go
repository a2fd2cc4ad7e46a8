// Package asset defines the emitted-asset values a host pipeline hands to
// plugins, and the concrete kinds plugins produce.
package asset

import "github.com/leapstack-labs/assetwrap/pkg/sourcemap"

// Source is a named unit of emitted text.
type Source interface {
	Source() string
}

// Mapper is implemented by assets that can report a source map.
// Map returns nil when none is available.
type Mapper interface {
	Map() *sourcemap.Map
}

// SourceMapper is implemented by assets that compute text and map together.
type SourceMapper interface {
	SourceAndMap() (string, *sourcemap.Map)
}

// Marked is implemented by assets that can carry a de-duplication marker.
// Rewritten returns nil until the asset has been marked.
type Marked interface {
	Rewritten() Source
}

type markable interface {
	Marked
	mark(Source)
}

// marker is embedded by the kinds produced by plugins.
type marker struct {
	rewritten Source
}

func (m *marker) Rewritten() Source { return m.rewritten }

func (m *marker) mark(s Source) { m.rewritten = s }

// Mark stamps s with a marker pointing at itself and returns it. Kinds that
// cannot carry a marker are returned unchanged.
func Mark(s Source) Source {
	if m, ok := s.(markable); ok {
		m.mark(s)
	}
	return s
}

// Rewritten returns the marker target of s, or nil when s is unmarked.
func Rewritten(s Source) Source {
	if m, ok := s.(Marked); ok {
		return m.Rewritten()
	}
	return nil
}

// Read returns the text of s and, when withMap is set, its map. The
// combined SourceAndMap form is preferred when s provides it.
func Read(s Source, withMap bool) (string, *sourcemap.Map) {
	if !withMap {
		return s.Source(), nil
	}
	if sm, ok := s.(SourceMapper); ok {
		return sm.SourceAndMap()
	}
	var m *sourcemap.Map
	if mp, ok := s.(Mapper); ok {
		m = mp.Map()
	}
	return s.Source(), m
}

// RawSource is unnamed text with no map.
type RawSource struct {
	Text string
}

// Source satisfies Source.
func (r *RawSource) Source() string { return r.Text }

// OriginalSource is named text with no map, as produced when a rewrite
// did not request source maps.
type OriginalSource struct {
	marker
	Text string
	Name string
}

// NewOriginalSource creates an OriginalSource.
func NewOriginalSource(text, name string) *OriginalSource {
	return &OriginalSource{Text: text, Name: name}
}

// Source satisfies Source.
func (o *OriginalSource) Source() string { return o.Text }
