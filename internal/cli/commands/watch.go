package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/assetwrap/internal/cli/output"
)

// debounceDelay groups bursts of file events into one rebuild.
const debounceDelay = 100 * time.Millisecond

// Watch builds once, then rebuilds whenever the input directory changes
// until ctx is cancelled or the process is interrupted. Failed passes are
// reported and watching continues.
func Watch(ctx context.Context, b *Builder, r *output.Renderer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, b.cfg.InputDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", b.cfg.InputDir, err)
	}

	b.buildAndReport(r)
	r.Println("Watching %s for changes (Ctrl+C to stop)", b.cfg.InputDir)

	eg, egctx := errgroup.WithContext(ctx)
	triggers := make(chan string, 1)

	eg.Go(func() error {
		return watchLoop(egctx, watcher, triggers, b.logger)
	})
	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case name := <-triggers:
				b.logger.Info("change detected", slog.String("file", name))
				b.buildAndReport(r)
			}
		}
	})

	return eg.Wait()
}

func (b *Builder) buildAndReport(r *output.Renderer) {
	rep, err := b.Build()
	if err != nil {
		r.Errorln("Rebuild error: %v", err)
		return
	}
	if err := r.RenderReport(rep); err != nil {
		b.logger.Warn("failed to render report", slog.String("error", err.Error()))
	}
}

// watchDir recursively adds a directory to the watcher.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// watchLoop forwards debounced changes to triggers. The channel holds at
// most one pending rebuild.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, triggers chan<- string, logger *slog.Logger) error {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDir(watcher, event.Name); err != nil {
						logger.Warn("failed to watch new directory", slog.String("dir", event.Name), slog.String("error", err.Error()))
					}
				}
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				select {
				case triggers <- name:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}
