package configloader

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl/internal/constants"
	"github.com/hyp3rd/lndl/internal/utils"
	"github.com/hyp3rd/lndl/pkg/config"
)

// ReloadFunc receives the outcome of every reload triggered by Watch.
type ReloadFunc func(report config.Report, err error)

// Watch reloads the document at path into storage whenever the file is
// written, created or replaced, until ctx is done. Bursts of events are
// collapsed into a single reload. The parent directory is watched so editors
// that save by rename keep triggering reloads.
func Watch(ctx context.Context, path string, storage *config.Storage, onReload ReloadFunc) error {
	return watch(ctx, path, storage, onReload, constants.DefaultReloadDebounce)
}

func watch(ctx context.Context, path string, storage *config.Storage, onReload ReloadFunc, debounce time.Duration) error {
	cleaned, err := utils.CleanPath(path)
	if err != nil {
		return ewrap.Wrap(err, "invalid configuration path").WithMetadata("path", path)
	}

	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return ewrap.Wrap(err, "failed to resolve configuration path").WithMetadata("path", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ewrap.Wrap(err, "failed to create file watcher")
	}

	defer watcher.Close() //nolint:errcheck

	err = watcher.Add(filepath.Dir(absolute))
	if err != nil {
		return ewrap.Wrap(err, "failed to watch configuration directory").
			WithMetadata("path", absolute)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != absolute {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case <-timer.C:
			report, err := Load(storage, absolute)
			if onReload != nil {
				onReload(report, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			storage.Diagnostics().Errorf("configuration watcher: %v", err)
		}
	}
}
