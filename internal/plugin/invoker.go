package plugin

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/assetwrap/pkg/asset"
	"github.com/leapstack-labs/assetwrap/pkg/sourcemap"
	"github.com/leapstack-labs/assetwrap/pkg/transform"
)

// Prepared is an asset ready to be handed to the transformer.
type Prepared struct {
	Name string

	// Input is the wrapped asset text.
	Input string

	// InputMap is the asset's own map shifted to Input coordinates, or nil
	// when source maps are off or the asset has none.
	InputMap *sourcemap.Map

	Options transform.Options
}

// Result is a successful transformation of one asset.
type Result struct {
	Code string
	// Map is nil unless source maps were requested.
	Map *sourcemap.Map

	Input    string
	InputMap *sourcemap.Map
}

// Invoker wraps assets and runs them through a transformer.
type Invoker struct {
	transformer transform.Transformer
	logger      *slog.Logger
}

// NewInvoker creates an Invoker. A nil logger discards output.
func NewInvoker(t transform.Transformer, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Invoker{transformer: t, logger: logger}
}

// Prepare reads src, shifts its map past the wrapper preamble, wraps its
// text and derives per-file options from base.
func (iv *Invoker) Prepare(name string, src asset.Source, base transform.Options) (*Prepared, error) {
	text, inputMap := asset.Read(src, base.SourceMaps())

	p := &Prepared{Name: name, Input: Wrap(text)}

	if inputMap != nil {
		table, err := inputMap.Table()
		if err != nil {
			return nil, fmt.Errorf("input source map of %s: %w", name, err)
		}
		shifted, err := inputMap.WithTable(sourcemap.Shift(table, WrapperLines))
		if err != nil {
			return nil, fmt.Errorf("input source map of %s: %w", name, err)
		}
		p.InputMap = shifted
	} else if base.SourceMaps() {
		iv.logger.Debug("no input source map", slog.String("asset", name))
	}

	opts := base.Clone()
	opts[transform.KeySourceRoot] = ""
	opts[transform.KeySourceFileName] = name
	p.Options = opts

	return p, nil
}

// Run transforms a prepared asset. Rejections are returned as the
// transformer reported them, normally a *transform.Failure.
func (iv *Invoker) Run(p *Prepared) (*Result, error) {
	out, err := iv.transformer.Transform(p.Input, p.Options)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Code:     out.Code,
		Input:    p.Input,
		InputMap: p.InputMap,
	}
	if p.Options.SourceMaps() {
		res.Map = out.Map
	}
	return res, nil
}

// Invoke prepares and runs src in one step.
func (iv *Invoker) Invoke(name string, src asset.Source, base transform.Options) (*Result, error) {
	p, err := iv.Prepare(name, src, base)
	if err != nil {
		return nil, err
	}
	return iv.Run(p)
}
