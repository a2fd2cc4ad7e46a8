// Package host models the build orchestrator that plugins attach to: a
// Compiler that runs Compilations, each firing module-build and
// optimize-chunk-assets hooks over the assets it emitted.
package host

import (
	"sort"

	"github.com/google/uuid"

	"github.com/leapstack-labs/assetwrap/pkg/asset"
)

// Chunk is a named group of emitted files.
type Chunk struct {
	Name  string
	Files []string
}

// Module is one unit of input. Build emits the module's assets into the
// compilation.
type Module struct {
	Name string

	// UseSourceMap asks Build to attach source maps to what it emits.
	UseSourceMap bool

	Build func(m *Module, comp *Compilation) error
}

// BuildModuleFunc is called before each module is built.
type BuildModuleFunc func(m *Module)

// OptimizeChunkAssetsFunc receives the chunks of a pass and must call done
// exactly once, synchronously or not.
type OptimizeChunkAssetsFunc func(comp *Compilation, chunks []*Chunk, done func(error))

// Compilation is one build pass.
type Compilation struct {
	// ID correlates log lines of one pass.
	ID string

	Modules []*Module
	Chunks  []*Chunk

	// Assets is keyed by file name.
	Assets map[string]asset.Source

	// AdditionalChunkAssets are emitted files not owned by any chunk.
	AdditionalChunkAssets []string

	Errors   []error
	Warnings []error

	buildModule         []BuildModuleFunc
	optimizeChunkAssets []OptimizeChunkAssetsFunc
}

// NewCompilation creates an empty compilation.
func NewCompilation() *Compilation {
	return &Compilation{
		ID:     uuid.New().String(),
		Assets: make(map[string]asset.Source),
	}
}

// OnBuildModule registers fn for the module-build hook.
func (c *Compilation) OnBuildModule(fn BuildModuleFunc) {
	c.buildModule = append(c.buildModule, fn)
}

// OnOptimizeChunkAssets registers fn for the optimize-chunk-assets hook.
func (c *Compilation) OnOptimizeChunkAssets(fn OptimizeChunkAssetsFunc) {
	c.optimizeChunkAssets = append(c.optimizeChunkAssets, fn)
}

// Emit stores an asset under name, replacing any previous value.
func (c *Compilation) Emit(name string, src asset.Source) {
	c.Assets[name] = src
}

// AssetNames returns the asset names in sorted order.
func (c *Compilation) AssetNames() []string {
	names := make([]string, 0, len(c.Assets))
	for name := range c.Assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
