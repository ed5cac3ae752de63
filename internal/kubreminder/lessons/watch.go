package lessons

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// WatchFile reloads store each time the lesson file at path is written or replaced,
// until ctx is done. The directory is watched so that rename-based writes are seen.
func WatchFile(ctx context.Context, path string, store *Store) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("cannot watch %q: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				log.WithField("event", ev.String()).Debug("Lesson file changed, reloading")
				err := store.Reload(ctx)
				switch {
				case errors.Is(err, ErrBlankStorage):
					log.WithField("file", abs).Info("Lesson file is blank, waiting for the write to finish")
				case err != nil:
					log.WithFields(log.Fields{"err": err, "file": abs}).Error("Could not reload lessons, keeping current list")
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WithField("err", err).Error("File watcher error")
			}
		}
	}()
	return nil
}
