package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Plugin attaches hooks to a Compiler.
type Plugin interface {
	Apply(c *Compiler)
}

// ErrDoneCalledTwice is recorded as a warning when a hook reports completion
// more than once.
var ErrDoneCalledTwice = errors.New("optimize-chunk-assets callback called more than once")

// Compiler runs compilations through registered plugins.
type Compiler struct {
	// Context is the root directory used to shorten paths in messages.
	Context string

	logger *slog.Logger

	// mu serialises passes.
	mu           sync.Mutex
	compilations []func(*Compilation)
}

// NewCompiler creates a compiler rooted at context.
func NewCompiler(context string, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{Context: context, logger: logger}
}

// Use applies plugins in order.
func (c *Compiler) Use(plugins ...Plugin) {
	for _, p := range plugins {
		p.Apply(c)
	}
}

// OnCompilation registers fn to run when a compilation starts.
func (c *Compiler) OnCompilation(fn func(*Compilation)) {
	c.compilations = append(c.compilations, fn)
}

// Run executes one pass: compilation hooks, module builds, then the
// optimize-chunk-assets hooks in registration order. Errors from modules and
// hooks are collected on comp.Errors; Run only fails when a hook reports an
// error through its callback.
func (c *Compiler) Run(comp *Compilation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.With(slog.String("compilation", comp.ID))
	logger.Debug("compilation started", slog.Int("modules", len(comp.Modules)))

	for _, fn := range c.compilations {
		fn(comp)
	}

	for _, m := range comp.Modules {
		for _, fn := range comp.buildModule {
			fn(m)
		}
		if m.Build == nil {
			continue
		}
		if err := m.Build(m, comp); err != nil {
			comp.Errors = append(comp.Errors, fmt.Errorf("module %s: %w", m.Name, err))
		}
	}

	for i, fn := range comp.optimizeChunkAssets {
		if err := c.await(comp, fn); err != nil {
			return fmt.Errorf("optimize-chunk-assets hook %d: %w", i, err)
		}
	}

	logger.Debug("compilation finished",
		slog.Int("assets", len(comp.Assets)),
		slog.Int("errors", len(comp.Errors)),
		slog.Int("warnings", len(comp.Warnings)))
	return nil
}

// await runs fn and blocks until it calls done. Extra calls made before
// await returns are recorded as a warning; later ones are dropped.
func (c *Compiler) await(comp *Compilation, fn OptimizeChunkAssetsFunc) error {
	result := make(chan error, 1)
	var calls atomic.Int32

	fn(comp, comp.Chunks, func(err error) {
		if calls.Add(1) == 1 {
			result <- err
		}
	})

	err := <-result
	if calls.Load() > 1 {
		comp.Warnings = append(comp.Warnings, ErrDoneCalledTwice)
	}
	return err
}
