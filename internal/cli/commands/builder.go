package commands

import (
	"errors"
	"log/slog"
	"time"

	"github.com/leapstack-labs/assetwrap/internal/cli/config"
	"github.com/leapstack-labs/assetwrap/internal/cli/output"
	"github.com/leapstack-labs/assetwrap/internal/loader"
	"github.com/leapstack-labs/assetwrap/internal/plugin"
	"github.com/leapstack-labs/assetwrap/pkg/asset"
	"github.com/leapstack-labs/assetwrap/pkg/host"
	"github.com/leapstack-labs/assetwrap/pkg/transform"
)

// Builder runs load, rewrite and write for one configuration. Each Build is
// a fresh compilation.
type Builder struct {
	cfg      *config.Config
	loader   *loader.Loader
	compiler *host.Compiler
	logger   *slog.Logger
}

// NewBuilder wires the rewrite plugin around t into a compiler.
func NewBuilder(cfg *config.Config, t transform.Transformer, logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p, err := plugin.New(cfg.Plugin.PluginOptions(), t, logger)
	if err != nil {
		return nil, err
	}
	compiler := host.NewCompiler(cfg.Context, logger)
	compiler.Use(p)

	return &Builder{
		cfg:      cfg,
		loader:   loader.New(cfg.InputDir, cfg.Chunks, logger),
		compiler: compiler,
		logger:   logger,
	}, nil
}

// Build runs one pass and writes its assets.
func (b *Builder) Build() (*output.Report, error) {
	start := time.Now()

	comp, err := b.loader.Load()
	if err != nil {
		return nil, err
	}
	if err := b.compiler.Run(comp); err != nil {
		return nil, err
	}
	written, err := b.loader.Write(comp, b.cfg.Destination())
	if err != nil {
		return nil, err
	}

	rep := newReport(comp, written, time.Since(start))
	b.logger.Debug("build finished",
		slog.String("compilation", comp.ID),
		slog.String("destination", b.cfg.Destination()),
		slog.Int("assets", len(rep.Assets)),
		slog.Int("errors", len(rep.Errors)))
	return rep, nil
}

func newReport(comp *host.Compilation, written []loader.Written, elapsed time.Duration) *output.Report {
	failed := make(map[string]struct{})
	rep := &output.Report{Compilation: comp.ID, Duration: elapsed}
	for _, err := range comp.Errors {
		var diag *plugin.Diagnostic
		if errors.As(err, &diag) {
			failed[diag.Asset] = struct{}{}
		}
		rep.Errors = append(rep.Errors, err.Error())
	}
	for _, w := range comp.Warnings {
		rep.Warnings = append(rep.Warnings, w.Error())
	}

	for _, w := range written {
		status := output.StatusCopied
		if _, ok := failed[w.Name]; ok {
			status = output.StatusFailed
		} else if asset.Rewritten(comp.Assets[w.Name]) != nil {
			status = output.StatusRewritten
		}
		rep.Assets = append(rep.Assets, output.AssetRow{Name: w.Name, Status: status, Bytes: w.Bytes, Mapped: w.Mapped})
	}
	return rep
}
