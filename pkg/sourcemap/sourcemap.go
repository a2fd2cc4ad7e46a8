// Package sourcemap holds the source-map v3 document and its decoded
// positional-mapping table.
//
// The JSON document is kept as-is; only the "mappings" field is ever decoded
// into a Table, shifted and re-encoded. Lookups against a document are done
// with github.com/go-sourcemap/sourcemap by the packages that need them.
package sourcemap

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Version is the only source-map revision understood by this package.
const Version = 3

// Map is a source-map v3 document.
type Map struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// Parse decodes a JSON source map.
func Parse(b []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to parse source map: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("unsupported source map version %d", m.Version)
	}
	return &m, nil
}

// Bytes encodes the map as JSON.
func (m *Map) Bytes() ([]byte, error) {
	out := *m
	if out.Version == 0 {
		out.Version = Version
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	if out.Names == nil {
		out.Names = []string{}
	}
	return json.Marshal(&out)
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := *m
	c.Sources = slices.Clone(m.Sources)
	c.Names = slices.Clone(m.Names)
	if m.SourcesContent != nil {
		c.SourcesContent = make([]*string, len(m.SourcesContent))
		for i, s := range m.SourcesContent {
			if s != nil {
				v := *s
				c.SourcesContent[i] = &v
			}
		}
	}
	return &c
}

// Table decodes the map's mappings field.
func (m *Map) Table() (Table, error) {
	t, err := Decode(m.Mappings)
	if err != nil {
		return nil, err
	}
	for i, rec := range t {
		if rec.Source >= len(m.Sources) {
			return nil, &DecodeError{Segment: i, Message: fmt.Sprintf("source index %d out of range", rec.Source)}
		}
		if rec.Name >= len(m.Names) {
			return nil, &DecodeError{Segment: i, Message: fmt.Sprintf("name index %d out of range", rec.Name)}
		}
	}
	return t, nil
}

// WithTable returns a copy of the map whose mappings field is t.
func (m *Map) WithTable(t Table) (*Map, error) {
	mappings, err := Encode(t)
	if err != nil {
		return nil, err
	}
	c := m.Clone()
	c.Mappings = mappings
	return c, nil
}

// SourceName returns the declared source for rec, or "" when rec has none.
func (m *Map) SourceName(rec Mapping) string {
	if rec.Source < 0 || rec.Source >= len(m.Sources) {
		return ""
	}
	return m.Sources[rec.Source]
}
