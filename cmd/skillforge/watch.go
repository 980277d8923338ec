package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillforge/pkg/logger"
	"github.com/jingkaihe/skillforge/pkg/output"
	"github.com/jingkaihe/skillforge/pkg/presenter"
	"github.com/jingkaihe/skillforge/pkg/validator"
)

// fileEvent is a debounced file system event.
type fileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and re-validate SKILL.md files on change",
	Long: `Monitors the given directory (default: the output directory) for
SKILL.md changes and re-runs the quality gates on every save, with
debouncing of rapid successive writes.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		dir := outputDir(cmd)
		if len(args) > 0 {
			dir = args[0]
		}
		debounceMs, _ := cmd.Flags().GetInt("debounce")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			presenter.Warning("Cancellation requested, shutting down...")
			cancel()
		}()

		if err := runWatch(ctx, dir, time.Duration(debounceMs)*time.Millisecond); err != nil {
			presenter.Error(err, "Watch failed")
			os.Exit(1)
		}
	},
}

func init() {
	watchCmd.Flags().Int("debounce", 500, "Debounce time in milliseconds for file change events")
	addOutputDirFlag(watchCmd.Flags(), "Directory to watch when no argument is given")
}

func runWatch(ctx context.Context, dir string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	events := make(chan fileEvent)
	debouncedEvents := make(chan fileEvent)
	go debounceFileEvents(ctx, events, debouncedEvents, debounce)

	go func() {
		for {
			select {
			case event, ok := <-debouncedEvents:
				if !ok {
					return
				}
				presenter.Info(fmt.Sprintf("Change detected: %s (%s)", event.Path, event.Op))
				validateChangedSkill(ctx, event.Path)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if event.Op&fsnotify.Create != 0 {
					// new artifact directories need their own watch
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						watcher.Add(event.Name)
						continue
					}
				}
				if filepath.Base(event.Name) != output.SkillFileName {
					continue
				}
				events <- fileEvent{Path: event.Name, Op: event.Op, Time: time.Now()}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				presenter.Error(err, "File watcher error")
				logger.G(ctx).WithError(err).Error("error watching files")
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := addWatchDirs(ctx, watcher, dir); err != nil {
		return err
	}

	presenter.Info(fmt.Sprintf("Watching %s for SKILL.md changes... Press Ctrl+C to stop", dir))
	logger.G(ctx).WithField("dir", dir).Info("file watcher initialized")

	<-ctx.Done()
	return nil
}

func addWatchDirs(ctx context.Context, watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			logger.G(ctx).WithField("directory", path).Debug("adding directory to watcher")
			return watcher.Add(path)
		}
		return nil
	})
}

func validateChangedSkill(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		presenter.Error(err, "Failed to read changed skill")
		return
	}

	report := validator.Validate(string(content), nil, nil)
	if report.Passed {
		presenter.Success(fmt.Sprintf("%s: all gates passed", path))
	} else {
		presenter.Warning(fmt.Sprintf("%s: %d gate failures", path, len(report.Errors)))
		for _, msg := range report.Errors {
			presenter.Warning(fmt.Sprintf("  ✗ %s", msg))
		}
	}
	for _, msg := range report.Warnings {
		presenter.Info(fmt.Sprintf("  ⚠ %s", msg))
	}
	logger.G(ctx).WithField("file", path).WithField("passed", report.Passed).Info("re-validated skill")
}

// debounceFileEvents coalesces rapid successive events for the same path
// into one event after the delay elapses.
func debounceFileEvents(ctx context.Context, input <-chan fileEvent, out chan<- fileEvent, delay time.Duration) {
	pending := make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-input:
			if !ok {
				for _, timer := range pending {
					timer.Stop()
				}
				return
			}
			if timer, exists := pending[event.Path]; exists {
				timer.Stop()
			}
			pending[event.Path] = time.AfterFunc(delay, func() {
				select {
				case out <- event:
				case <-ctx.Done():
				}
			})
		case <-ctx.Done():
			for _, timer := range pending {
				timer.Stop()
			}
			return
		}
	}
}
