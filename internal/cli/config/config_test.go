package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/assetwrap/internal/testutil"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddGlobalFlags(fs)
	AddBuildFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "assetwrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultInputDir), cfg.InputDir)
	assert.Equal(t, "", cfg.OutputDir)
	assert.Equal(t, cfg.InputDir, cfg.Destination())
	assert.Equal(t, dir, cfg.Context)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Plugin.SourceMaps)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
input_dir: build
output_dir: out
chunks:
  app: [app.js, shared.js]
plugin:
  source_maps: true
  presets: [es5]
  exclude: [vendor/]
  options:
    minify: true
`)
	sub := filepath.Join(dir, "src", "nested")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "assetwrap.yaml"), cfg.ConfigFile)
	assert.Equal(t, filepath.Join(dir, "build"), cfg.InputDir)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	assert.Equal(t, map[string][]string{"app": {"app.js", "shared.js"}}, cfg.Chunks)

	opts := cfg.Plugin.PluginOptions()
	assert.True(t, opts.SourceMaps)
	assert.Equal(t, []string{"es5"}, opts.Presets)
	assert.Equal(t, []string{"vendor/"}, opts.Exclude)
	assert.Equal(t, true, opts.Transform["minify"])
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, `
output: text
plugin:
  compact: false
  presets: [es2020]
`)
	t.Chdir(t.TempDir())
	t.Setenv("ASSETWRAP_OUTPUT", "markdown")
	t.Setenv("ASSETWRAP_PLUGIN__COMPACT", "true")

	cfg, err := LoadConfig(cfgFile, newFlags(t, "--output", "json", "--preset", "es5,es2017"))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat, "flag beats env and file")
	assert.True(t, cfg.Plugin.Compact, "env beats file")
	assert.Equal(t, []string{"es5", "es2017"}, cfg.Plugin.Presets)
	assert.Equal(t, dir, cfg.ProjectRoot, "explicit config file anchors the project")
}

func TestLoadConfig_PathFlagsResolveAgainstWorkingDirectory(t *testing.T) {
	project := t.TempDir()
	cfgFile := writeConfig(t, project, "input_dir: dist\n")
	cwd := t.TempDir()
	t.Chdir(cwd)

	cfg, err := LoadConfig(cfgFile, newFlags(t, "-i", "assets", "--source-maps"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "assets"), cfg.InputDir)
	assert.True(t, cfg.Plugin.SourceMaps)
	assert.Equal(t, project, cfg.Context)
}

func TestLoadConfig_UnsetFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "plugin:\n  source_maps: true\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("", newFlags(t))
	require.NoError(t, err)
	assert.True(t, cfg.Plugin.SourceMaps)
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, "input_dir: [unterminated\n")
	t.Chdir(dir)

	_, err := LoadConfig(cfgFile, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{
			name: "valid",
			cfg:  Config{InputDir: "/p/dist", OutputFormat: "auto"},
		},
		{
			name:      "missing input",
			cfg:       Config{OutputFormat: "auto"},
			wantField: "input_dir",
		},
		{
			name:      "unknown output format",
			cfg:       Config{InputDir: "/p/dist", OutputFormat: "xml"},
			wantField: "output",
		},
		{
			name:      "watch in place",
			cfg:       Config{InputDir: "/p/dist", OutputFormat: "auto", Watch: true},
			wantField: "output_dir",
		},
		{
			name:      "watch into input subdirectory",
			cfg:       Config{InputDir: "/p/dist", OutputDir: "/p/dist/out", OutputFormat: "auto", Watch: true},
			wantField: "output_dir",
		},
		{
			name: "watch into sibling",
			cfg:  Config{InputDir: "/p/dist", OutputDir: "/p/dist-out", OutputFormat: "auto", Watch: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetConfig(ctx))
	assert.NotNil(t, GetLogger(ctx), "falls back to a discard logger")

	cfg := &Config{InputDir: "dist"}
	logger := testutil.NewTestLogger(t)
	ctx = WithConfig(ctx, cfg)
	ctx = context.WithValue(ctx, LoggerKey(), logger)

	assert.Same(t, cfg, GetConfig(ctx))
	assert.Same(t, logger, GetLogger(ctx))
}
