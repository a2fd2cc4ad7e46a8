// Package plugin rewrites emitted JavaScript assets through an external
// transformer after wrapping each one so that top-level `this` is the
// host's global object.
//
// Per pass the plugin selects eligible assets, skips those it already
// rewrote, transforms the rest one at a time and reports failures as
// compilation errors with original-source positions when input maps allow.
// A failing asset never stops the others.
package plugin

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/assetwrap/pkg/asset"
	"github.com/leapstack-labs/assetwrap/pkg/host"
	"github.com/leapstack-labs/assetwrap/pkg/transform"
)

// Plugin is a host.Plugin.
type Plugin struct {
	opts       Options
	base       transform.Options
	matcher    *Matcher
	invoker    *Invoker
	translator *Translator
	engine     string
	logger     *slog.Logger
}

// PassStats summarises one pass.
type PassStats struct {
	Selected  int
	Rewritten int
	Reused    int
	Failed    int
}

// New creates a plugin around t. A nil logger discards output.
func New(opts Options, t transform.Transformer, logger *slog.Logger) (*Plugin, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	matcher, err := NewMatcher(opts.Test, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	return &Plugin{
		opts:       opts,
		base:       opts.TransformOptions(),
		matcher:    matcher,
		invoker:    NewInvoker(t, logger),
		translator: NewTranslator(t.Name(), nil, logger),
		engine:     t.Name(),
		logger:     logger,
	}, nil
}

// Apply satisfies host.Plugin.
func (p *Plugin) Apply(c *host.Compiler) {
	p.translator = NewTranslator(p.engine, NewShortener(c.Context), p.logger)

	c.OnCompilation(func(comp *host.Compilation) {
		if p.opts.SourceMaps {
			comp.OnBuildModule(func(m *host.Module) {
				m.UseSourceMap = true
			})
		}
		comp.OnOptimizeChunkAssets(p.OptimizeChunkAssets)
	})
}

// OptimizeChunkAssets processes a pass and reports completion through done.
func (p *Plugin) OptimizeChunkAssets(comp *host.Compilation, chunks []*host.Chunk, done func(error)) {
	p.Process(comp, chunks)
	done(nil)
}

// Process runs one pass over the selected assets of comp, replacing each
// rewritten asset in comp.Assets and appending failures to comp.Errors.
func (p *Plugin) Process(comp *host.Compilation, chunks []*host.Chunk) PassStats {
	logger := p.logger.With(slog.String("compilation", comp.ID))
	names := p.matcher.Select(chunks, comp.AdditionalChunkAssets)
	stats := PassStats{Selected: len(names)}

	rewritten := make(map[string]asset.Source, len(names))
	for _, name := range names {
		src, ok := comp.Assets[name]
		if !ok {
			comp.Errors = append(comp.Errors, p.translator.Translate(name, fmt.Errorf("asset %s was selected but not emitted", name), nil))
			stats.Failed++
			continue
		}

		if prev, ok := rewritten[name]; ok {
			comp.Assets[name] = prev
			stats.Reused++
			continue
		}
		if prev := asset.Rewritten(src); prev != nil {
			comp.Assets[name] = prev
			rewritten[name] = prev
			stats.Reused++
			continue
		}

		out, diag := p.processAsset(comp, name, src)
		if diag != nil {
			logger.Debug("asset failed", slog.String("asset", name), slog.String("error", diag.Err.Error()))
			comp.Errors = append(comp.Errors, diag)
			stats.Failed++
			continue
		}
		comp.Assets[name] = out
		rewritten[name] = out
		stats.Rewritten++
	}

	logger.Info("assets transformed",
		slog.String("engine", p.engine),
		slog.Int("selected", stats.Selected),
		slog.Int("rewritten", stats.Rewritten),
		slog.Int("reused", stats.Reused),
		slog.Int("failed", stats.Failed))
	return stats
}

func (p *Plugin) processAsset(comp *host.Compilation, name string, src asset.Source) (asset.Source, *Diagnostic) {
	start := time.Now()

	prepared, err := p.invoker.Prepare(name, src, p.base)
	if err != nil {
		return nil, p.translator.Translate(name, err, nil)
	}

	res, err := p.invoker.Run(prepared)
	if err != nil {
		return nil, p.translator.Translate(name, err, prepared.InputMap)
	}

	out, err := Rewrite(name, res)
	if err != nil {
		p.logger.Warn("emitted source map points at the wrapped input",
			slog.String("compilation", comp.ID),
			slog.String("asset", name),
			slog.String("error", err.Error()))
		comp.Warnings = append(comp.Warnings, err)
	}
	p.logger.Debug("asset rewritten",
		slog.String("asset", name),
		slog.Bool("mapped", res.Map != nil),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}
