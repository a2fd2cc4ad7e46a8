package plugin

import (
	"fmt"

	"github.com/leapstack-labs/assetwrap/pkg/asset"
)

// Rewrite builds the asset that replaces name after a successful
// transformation. Mapped results keep the wrapped input and its shifted map,
// and the emitted map is composed back to the original sources here. When
// that fails the asset is still returned, carrying the uncomposed map, along
// with the error. The returned asset is marked as its own rewrite.
func Rewrite(name string, res *Result) (asset.Source, error) {
	if res.Map == nil {
		return asset.Mark(asset.NewOriginalSource(res.Code, name)), nil
	}
	src := asset.NewSourceMapSource(res.Code, name, res.Map, res.Input, res.InputMap)
	if err := src.ComposeMaps(); err != nil {
		return asset.Mark(src), fmt.Errorf("%s: source map not composed with its input map: %w", name, err)
	}
	return asset.Mark(src), nil
}
