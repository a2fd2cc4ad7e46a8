package asset

import (
	"sync"

	"github.com/leapstack-labs/assetwrap/pkg/sourcemap"
)

// SourceMapSource is text carrying a map back to the text it was produced
// from, plus that text's own map when it had one. Map composes the two so
// callers always see positions in the earliest known sources.
type SourceMapSource struct {
	marker

	Code string
	Name string
	// SourceMap maps Code to OriginalCode.
	SourceMap *sourcemap.Map

	OriginalCode string
	// OriginalMap maps OriginalCode to its sources. May be nil.
	OriginalMap *sourcemap.Map

	once       sync.Once
	composed   *sourcemap.Map
	composeErr error
}

// NewSourceMapSource creates a SourceMapSource.
func NewSourceMapSource(code, name string, m *sourcemap.Map, originalCode string, originalMap *sourcemap.Map) *SourceMapSource {
	return &SourceMapSource{
		Code:         code,
		Name:         name,
		SourceMap:    m,
		OriginalCode: originalCode,
		OriginalMap:  originalMap,
	}
}

// Source satisfies Source.
func (s *SourceMapSource) Source() string { return s.Code }

// Map satisfies Mapper. After a failed Compose it returns SourceMap.
func (s *SourceMapSource) Map() *sourcemap.Map {
	if s.OriginalMap == nil || s.SourceMap == nil {
		return s.SourceMap
	}
	if s.ComposeMaps() != nil {
		return s.SourceMap
	}
	return s.composed
}

// ComposeMaps composes SourceMap through OriginalMap once and reports why
// that failed. It is a no-op when either map is missing.
func (s *SourceMapSource) ComposeMaps() error {
	if s.OriginalMap == nil || s.SourceMap == nil {
		return nil
	}
	s.once.Do(func() {
		s.composed, s.composeErr = Compose(s.SourceMap, s.OriginalMap)
	})
	return s.composeErr
}

// SourceAndMap satisfies SourceMapper.
func (s *SourceMapSource) SourceAndMap() (string, *sourcemap.Map) {
	return s.Code, s.Map()
}

// Compose maps every record of outer through inner. outer's original side
// must be inner's generated side. Records that inner cannot resolve keep
// their generated position with no original.
func Compose(outer, inner *sourcemap.Map) (*sourcemap.Map, error) {
	table, err := outer.Table()
	if err != nil {
		return nil, err
	}
	resolver, err := sourcemap.NewResolver(inner)
	if err != nil {
		return nil, err
	}

	out := &sourcemap.Map{
		Version: sourcemap.Version,
		File:    outer.File,
		Sources: []string{},
		Names:   []string{},
	}
	sourceIdx := map[string]int{}
	nameIdx := map[string]int{}
	intern := func(list *[]string, idx map[string]int, v string) int {
		if i, ok := idx[v]; ok {
			return i
		}
		idx[v] = len(*list)
		*list = append(*list, v)
		return idx[v]
	}

	composed := make(sourcemap.Table, 0, len(table))
	for _, rec := range table {
		next := sourcemap.Mapping{
			GeneratedLine:   rec.GeneratedLine,
			GeneratedColumn: rec.GeneratedColumn,
			Source:          sourcemap.NoIndex,
			Name:            sourcemap.NoIndex,
		}
		if rec.HasOriginal() {
			if pos, ok := resolver.Resolve(rec.OriginalLine, rec.OriginalColumn); ok {
				next.Source = intern(&out.Sources, sourceIdx, pos.Source)
				next.OriginalLine = pos.Line
				next.OriginalColumn = pos.Column
				name := pos.Name
				if name == "" && rec.Name != sourcemap.NoIndex {
					name = outer.Names[rec.Name]
				}
				if name != "" {
					next.Name = intern(&out.Names, nameIdx, name)
				}
			}
		}
		composed = append(composed, next)
	}

	mappings, err := sourcemap.Encode(composed)
	if err != nil {
		return nil, err
	}
	out.Mappings = mappings
	return out, nil
}
