package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/assetwrap/pkg/sourcemap"
	"github.com/leapstack-labs/assetwrap/pkg/transform"
)

// Diagnostic is a per-asset failure reported on the compilation. Its text
// is meant for people; nothing downstream parses fields out of it.
type Diagnostic struct {
	Asset string
	Text  string
	Err   error
}

func (d *Diagnostic) Error() string { return d.Text }

func (d *Diagnostic) Unwrap() error { return d.Err }

// Shortener rewrites paths under a context directory to "./"-relative form.
type Shortener struct {
	context string
}

// NewShortener creates a Shortener for context. An empty context leaves
// paths untouched.
func NewShortener(context string) *Shortener {
	if context == "" {
		return &Shortener{}
	}
	return &Shortener{context: strings.TrimSuffix(filepath.ToSlash(filepath.Clean(context)), "/")}
}

// Shorten returns the display form of p.
func (s *Shortener) Shorten(p string) string {
	p = filepath.ToSlash(p)
	if s.context == "" {
		return p
	}
	if p == s.context {
		return "."
	}
	if strings.HasPrefix(p, s.context+"/") {
		return "." + p[len(s.context):]
	}
	return p
}

// Translator turns transformer errors into diagnostics, resolving reported
// positions to original sources where the input map allows.
type Translator struct {
	engine    string
	shortener *Shortener
	logger    *slog.Logger
}

// NewTranslator creates a Translator. engine names the transformer in
// messages.
func NewTranslator(engine string, shortener *Shortener, logger *slog.Logger) *Translator {
	if shortener == nil {
		shortener = NewShortener("")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Translator{engine: engine, shortener: shortener, logger: logger}
}

// Translate formats err for asset file. inputMap is the asset's map in
// wrapped-text coordinates and may be nil.
//
// Message shapes:
//
//	<file> from <engine>\n<message> [<source>:<line>,<col>][<file>:<line>,<col>]
//	<file> from <engine>\n<message> [<file>:<line>,<col>]
//	<file> from <engine>\n<message>
func (tr *Translator) Translate(file string, err error, inputMap *sourcemap.Map) *Diagnostic {
	var b strings.Builder
	b.WriteString(file)
	b.WriteString(" from ")
	b.WriteString(tr.engine)
	b.WriteByte('\n')

	var failure *transform.Failure
	if !errors.As(err, &failure) {
		b.WriteString(err.Error())
		return &Diagnostic{Asset: file, Text: b.String(), Err: err}
	}

	b.WriteString(failure.Message)
	if loc := failure.Location; loc != nil {
		if pos, ok := tr.resolve(file, loc, inputMap); ok {
			fmt.Fprintf(&b, " [%s:%d,%d]", tr.shortener.Shorten(pos.Source), pos.Line, pos.Column)
			fmt.Fprintf(&b, "[%s:%d,%d]", file, loc.Line, loc.Column)
		} else {
			fmt.Fprintf(&b, " [%s:%d,%d]", file, loc.Line, loc.Column)
		}
	}

	return &Diagnostic{Asset: file, Text: b.String(), Err: err}
}

// resolve looks loc up in inputMap. Positions on the wrapper preamble have
// no original counterpart.
func (tr *Translator) resolve(file string, loc *transform.Location, inputMap *sourcemap.Map) (sourcemap.Position, bool) {
	if inputMap == nil || loc.Line <= WrapperLines {
		return sourcemap.Position{}, false
	}
	resolver, err := sourcemap.NewResolver(inputMap)
	if err != nil {
		tr.logger.Debug("input source map unusable for diagnostics",
			slog.String("asset", file), slog.String("error", err.Error()))
		return sourcemap.Position{}, false
	}
	return resolver.Resolve(loc.Line, loc.Column)
}
