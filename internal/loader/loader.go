// Package loader reads a directory of emitted assets into a host compilation
// and writes the compilation's assets back to disk.
//
// Every file except source maps becomes a module. A module emits its file as
// an asset when built; when the build hook asks for source maps and a sibling
// "<file>.map" exists, the asset carries that map.
package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/assetwrap/pkg/asset"
	"github.com/leapstack-labs/assetwrap/pkg/host"
	"github.com/leapstack-labs/assetwrap/pkg/sourcemap"
)

// DefaultChunk names the chunk that owns every script when no chunks are
// configured.
const DefaultChunk = "main"

// MapSuffix is appended to an asset name to find or write its source map.
const MapSuffix = ".map"

// sourceMappingURLPattern matches a trailing sourceMappingURL comment.
var sourceMappingURLPattern = regexp.MustCompile(`\n?//[#@] sourceMappingURL=[^\n]*\s*$`)

// Loader turns a directory into compilations.
type Loader struct {
	dir    string
	chunks map[string][]string
	logger *slog.Logger
}

// New creates a loader for dir. chunks maps a chunk name to the asset names
// it owns, relative to dir with forward slashes. Scripts not owned by any
// chunk fall into DefaultChunk when chunks is empty and are treated as
// additional assets otherwise.
func New(dir string, chunks map[string][]string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{dir: dir, chunks: chunks, logger: logger}
}

// Dir returns the directory the loader reads from.
func (l *Loader) Dir() string { return l.dir }

// Scan lists the asset names under the loader's directory in sorted order.
// Source maps are not listed.
func (l *Loader) Scan() ([]string, error) {
	var names []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, MapSuffix) {
			return nil
		}
		rel, err := filepath.Rel(l.dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", l.dir, err)
	}
	sort.Strings(names)
	return names, nil
}

// Load scans the directory and returns a compilation with one module per
// asset and the configured chunks.
func (l *Loader) Load() (*host.Compilation, error) {
	names, err := l.Scan()
	if err != nil {
		return nil, err
	}

	comp := host.NewCompilation()
	for _, name := range names {
		comp.Modules = append(comp.Modules, &host.Module{Name: name, Build: l.build})
	}
	comp.Chunks, comp.AdditionalChunkAssets = l.layout(names)

	l.logger.Debug("project loaded",
		slog.String("dir", l.dir),
		slog.String("compilation", comp.ID),
		slog.Int("assets", len(names)),
		slog.Int("chunks", len(comp.Chunks)))
	return comp, nil
}

// layout groups names into chunks. Configured chunks keep their configured
// file order; chunks are ordered by name.
func (l *Loader) layout(names []string) ([]*host.Chunk, []string) {
	if len(l.chunks) == 0 {
		var files, additional []string
		for _, name := range names {
			if isScript(name) {
				files = append(files, name)
			} else {
				additional = append(additional, name)
			}
		}
		if len(files) == 0 {
			return nil, additional
		}
		return []*host.Chunk{{Name: DefaultChunk, Files: files}}, additional
	}

	chunkNames := make([]string, 0, len(l.chunks))
	for name := range l.chunks {
		chunkNames = append(chunkNames, name)
	}
	sort.Strings(chunkNames)

	owned := make(map[string]struct{})
	chunks := make([]*host.Chunk, 0, len(chunkNames))
	for _, name := range chunkNames {
		files := l.chunks[name]
		for _, f := range files {
			owned[f] = struct{}{}
		}
		chunks = append(chunks, &host.Chunk{Name: name, Files: files})
	}

	var additional []string
	for _, name := range names {
		if _, ok := owned[name]; !ok {
			additional = append(additional, name)
		}
	}
	return chunks, additional
}

func (l *Loader) build(m *host.Module, comp *host.Compilation) error {
	path := filepath.Join(l.dir, filepath.FromSlash(m.Name))
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read asset: %w", err)
	}
	text := string(b)

	if !m.UseSourceMap {
		comp.Emit(m.Name, &asset.RawSource{Text: text})
		return nil
	}

	mb, err := os.ReadFile(path + MapSuffix)
	if os.IsNotExist(err) {
		comp.Emit(m.Name, asset.NewOriginalSource(text, m.Name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read source map: %w", err)
	}

	sm, err := sourcemap.Parse(mb)
	if err != nil {
		return fmt.Errorf("%s%s: %w", m.Name, MapSuffix, err)
	}

	// Dropping the trailing comment removes no mapped line.
	text = sourceMappingURLPattern.ReplaceAllString(text, "")
	comp.Emit(m.Name, asset.NewSourceMapSource(text, m.Name, sm, "", nil))
	return nil
}

func isScript(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".js", ".mjs", ".cjs":
		return true
	}
	return false
}
