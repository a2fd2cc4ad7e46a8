// Package esbuild implements transform.Transformer on top of the esbuild
// transform API.
package esbuild

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/leapstack-labs/assetwrap/pkg/sourcemap"
	"github.com/leapstack-labs/assetwrap/pkg/transform"
)

// Name identifies this transformer in diagnostics.
const Name = "esbuild"

// Transformer runs code through api.Transform.
type Transformer struct {
	logger *slog.Logger
}

// New creates a Transformer. A nil logger discards output.
func New(logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transformer{logger: logger}
}

// Name satisfies transform.Transformer.
func (t *Transformer) Name() string { return Name }

// Transform satisfies transform.Transformer.
func (t *Transformer) Transform(code string, opts transform.Options) (*transform.Output, error) {
	settings, err := DecodeSettings(opts)
	if err != nil {
		return nil, err
	}

	to, err := settings.TransformOptions()
	if err != nil {
		return nil, err
	}

	result := api.Transform(code, to)

	for _, w := range result.Warnings {
		attrs := []any{slog.String("file", settings.SourceFileName), slog.String("text", w.Text)}
		if w.Location != nil {
			attrs = append(attrs, slog.Int("line", w.Location.Line), slog.Int("column", w.Location.Column))
		}
		t.logger.Warn("esbuild warning", attrs...)
	}

	if len(result.Errors) > 0 {
		return nil, failureFromMessages(result.Errors)
	}

	out := &transform.Output{Code: string(result.Code)}
	if settings.SourceMaps && len(result.Map) > 0 {
		m, err := sourcemap.Parse(result.Map)
		if err != nil {
			return nil, fmt.Errorf("esbuild produced an unreadable source map: %w", err)
		}
		out.Map = m
	}

	t.logger.Debug("transformed",
		slog.String("file", settings.SourceFileName),
		slog.Int("in_bytes", len(code)),
		slog.Int("out_bytes", len(out.Code)),
		slog.Bool("mapped", out.Map != nil))

	return out, nil
}

// failureFromMessages reports the first error; esbuild sorts them by position.
func failureFromMessages(msgs []api.Message) *transform.Failure {
	first := msgs[0]
	text := first.Text
	if extra := len(msgs) - 1; extra > 0 {
		suffix := "error"
		if extra > 1 {
			suffix = "errors"
		}
		text = fmt.Sprintf("%s (and %d more %s)", text, extra, suffix)
	}

	f := &transform.Failure{Message: strings.TrimSpace(text)}
	if first.Location != nil {
		f.Location = &transform.Location{
			Line:   first.Location.Line,
			Column: first.Location.Column,
		}
	}
	return f
}
