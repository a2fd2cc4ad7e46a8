package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/assetwrap/internal/cli/config"
	"github.com/leapstack-labs/assetwrap/internal/cli/output"
	"github.com/leapstack-labs/assetwrap/pkg/transform/esbuild"
)

// ErrBuildFailed is returned when a pass reports errors.
var ErrBuildFailed = errors.New("build finished with errors")

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rewrite emitted assets",
		Long: `Wrap every matching asset in the input directory so that top-level "this"
is the global object, transform it with esbuild and write the result.

With --source-maps, sibling .map files are read and the written maps point
back at the original sources. Transformation errors are reported per asset
with original positions where a map allows; other assets are still written.`,
		Example: `  # Rewrite dist/ in place
  assetwrap build

  # Write to another directory with source maps
  assetwrap build -i dist -d dist-wrapped --source-maps

  # Keep rebuilding on change
  assetwrap build -d out --watch

  # Target ES5 and skip vendor bundles
  assetwrap build --preset es5 --exclude vendor/`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd)
		},
	}

	config.AddBuildFlags(cmd.Flags())
	return cmd
}

func runBuild(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	logger := config.GetLogger(ctx)
	r := output.GetRenderer(ctx)

	b, err := NewBuilder(cfg, esbuild.New(logger), logger)
	if err != nil {
		return err
	}

	if cfg.Watch {
		return Watch(ctx, b, r)
	}

	rep, err := b.Build()
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if err := r.RenderReport(rep); err != nil {
		return err
	}
	if rep.Failed() {
		return ErrBuildFailed
	}
	return nil
}
