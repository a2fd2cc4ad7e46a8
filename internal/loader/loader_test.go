package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/assetwrap/internal/testutil"
	"github.com/leapstack-labs/assetwrap/pkg/asset"
	"github.com/leapstack-labs/assetwrap/pkg/host"
	"github.com/leapstack-labs/assetwrap/pkg/sourcemap"
)

const inputMap = `{"version":3,"sources":["src/app.js"],"names":[],"mappings":"AAAA"}`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return dir
}

type sourceMaps bool

func (s sourceMaps) Apply(c *host.Compiler) {
	c.OnCompilation(func(comp *host.Compilation) {
		comp.OnBuildModule(func(m *host.Module) { m.UseSourceMap = bool(s) })
	})
}

func run(t *testing.T, l *Loader, withMaps bool) *host.Compilation {
	t.Helper()
	comp, err := l.Load()
	require.NoError(t, err)
	c := host.NewCompiler(l.Dir(), testutil.NewTestLogger(t))
	c.Use(sourceMaps(withMaps))
	require.NoError(t, c.Run(comp))
	return comp
}

func TestLoader_Scan(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.js":        "a",
		"main.js.map":    inputMap,
		"vendor/lib.js":  "b",
		"style.css":      "c",
		".cache/skip.js": "d",
	})

	names, err := New(dir, nil, nil).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"main.js", "style.css", "vendor/lib.js"}, names)
}

func TestLoader_DefaultLayout(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.js":       "a",
		"vendor/lib.js": "b",
		"style.css":     "c",
	})

	comp, err := New(dir, nil, nil).Load()
	require.NoError(t, err)

	require.Len(t, comp.Chunks, 1)
	assert.Equal(t, DefaultChunk, comp.Chunks[0].Name)
	assert.Equal(t, []string{"main.js", "vendor/lib.js"}, comp.Chunks[0].Files)
	assert.Equal(t, []string{"style.css"}, comp.AdditionalChunkAssets)
	assert.Len(t, comp.Modules, 3)
}

func TestLoader_ConfiguredChunks(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js":      "a",
		"b.js":      "b",
		"shared.js": "s",
		"extra.js":  "e",
	})

	chunks := map[string][]string{
		"b": {"shared.js", "b.js"},
		"a": {"a.js", "shared.js"},
	}
	comp, err := New(dir, chunks, nil).Load()
	require.NoError(t, err)

	require.Len(t, comp.Chunks, 2)
	assert.Equal(t, "a", comp.Chunks[0].Name)
	assert.Equal(t, []string{"shared.js", "b.js"}, comp.Chunks[1].Files)
	assert.Equal(t, []string{"extra.js"}, comp.AdditionalChunkAssets)
}

func TestLoader_BuildWithoutSourceMaps(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.js": "var x;", "main.js.map": inputMap})

	comp := run(t, New(dir, nil, nil), false)

	require.Empty(t, comp.Errors)
	assert.IsType(t, &asset.RawSource{}, comp.Assets["main.js"])
}

func TestLoader_BuildWithSourceMaps(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.js":     "var x;\n//# sourceMappingURL=main.js.map\n",
		"main.js.map": inputMap,
		"other.js":    "var y;",
	})

	comp := run(t, New(dir, nil, nil), true)
	require.Empty(t, comp.Errors)

	mapped, ok := comp.Assets["main.js"].(*asset.SourceMapSource)
	require.True(t, ok)
	assert.Equal(t, "var x;", mapped.Source())
	assert.Equal(t, []string{"src/app.js"}, mapped.Map().Sources)

	_, m := asset.Read(comp.Assets["other.js"], true)
	assert.Nil(t, m, "asset without a map file has no map")
}

func TestLoader_BadMapIsModuleError(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.js": "var x;", "main.js.map": `{"version":2}`})

	comp := run(t, New(dir, nil, nil), true)

	require.Len(t, comp.Errors, 1)
	assert.Contains(t, comp.Errors[0].Error(), "main.js.map")
	assert.NotContains(t, comp.Assets, "main.js")
}

func TestLoader_Write(t *testing.T) {
	out := t.TempDir()
	comp := host.NewCompilation()
	comp.Emit("main.js", asset.NewSourceMapSource("var x;", "main.js",
		&sourcemap.Map{Version: sourcemap.Version, Sources: []string{"src/app.js"}, Mappings: "AAAA"}, "", nil))
	comp.Emit("lib/plain.js", asset.NewOriginalSource("var y;", "lib/plain.js"))

	written, err := New("", nil, nil).Write(comp, out)
	require.NoError(t, err)

	assert.Equal(t, []Written{
		{Name: "lib/plain.js", Bytes: 6, Mapped: false},
		{Name: "main.js", Bytes: len("var x;\n//# sourceMappingURL=main.js.map"), Mapped: true},
	}, written)

	b, err := os.ReadFile(filepath.Join(out, "main.js"))
	require.NoError(t, err)
	assert.Equal(t, "var x;\n//# sourceMappingURL=main.js.map", string(b))

	mb, err := os.ReadFile(filepath.Join(out, "main.js.map"))
	require.NoError(t, err)
	m, err := sourcemap.Parse(mb)
	require.NoError(t, err)
	assert.Equal(t, "main.js", m.File)
	assert.Equal(t, []string{"src/app.js"}, m.Sources)

	_, err = os.Stat(filepath.Join(out, "lib", "plain.js.map"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoader_WriteCopiesMapsOfUntouchedAssets(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"styles.css":        "body{}\n/*# sourceMappingURL=styles.css.map */",
		"styles.css.map":    inputMap,
		"main.js":           "var a;\n//# sourceMappingURL=main.js.map",
		"main.js.map":       inputMap,
		"vendor/lib.js":     "var v;\n//# sourceMappingURL=lib.js.map",
		"vendor/lib.js.map": inputMap,
	})
	l := New(dir, nil, nil)
	comp := run(t, l, false)
	// A rewrite without maps makes the input map stale.
	comp.Assets["main.js"] = asset.Mark(asset.NewOriginalSource("VAR A;", "main.js"))

	out := t.TempDir()
	written, err := l.Write(comp, out)
	require.NoError(t, err)

	mapped := map[string]bool{}
	for _, w := range written {
		mapped[w.Name] = w.Mapped
	}
	assert.Equal(t, map[string]bool{"main.js": false, "styles.css": true, "vendor/lib.js": true}, mapped)

	for _, name := range []string{"styles.css.map", "vendor/lib.js.map"} {
		b, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.JSONEq(t, inputMap, string(b))
	}
	_, err = os.Stat(filepath.Join(out, "main.js.map"))
	assert.True(t, os.IsNotExist(err), "stale map of a rewritten asset is not copied")

	info, err := os.Stat(filepath.Join(out, "styles.css"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLoader_WriteInPlaceKeepsMaps(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"styles.css":     "body{}",
		"styles.css.map": inputMap,
	})
	l := New(dir, nil, nil)
	comp := run(t, l, false)

	written, err := l.Write(comp, dir)
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.False(t, written[0].Mapped)

	b, err := os.ReadFile(filepath.Join(dir, "styles.css.map"))
	require.NoError(t, err)
	assert.Equal(t, inputMap, string(b))
}
