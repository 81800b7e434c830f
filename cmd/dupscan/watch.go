package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/e4c5/dupscan/internal/config"
)

// addWatchDirs registers root and every subdirectory with watcher:
// fsnotify watches are not recursive.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// watchDebouncer batches filesystem change events and fires onFlush once
// the configured quiet period elapses with no new events, following the
// teacher's indexing.eventDebouncer shape (internal/indexing/watcher.go):
// a single map of pending paths, reset by an AfterFunc timer.
type watchDebouncer struct {
	mu      sync.Mutex
	pending map[string]bool
	period  time.Duration
	timer   *time.Timer
	onFlush func(paths []string)
}

func newWatchDebouncer(period time.Duration, onFlush func(paths []string)) *watchDebouncer {
	return &watchDebouncer{pending: make(map[string]bool), period: period, onFlush: onFlush}
}

func (d *watchDebouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[path] = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.period, d.flush)
}

func (d *watchDebouncer) flush() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]bool)
	d.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	d.onFlush(paths)
}

// watchAndRescan watches root for changes to files cfg would select and
// calls rescan after each debounced batch, until stop is closed.
func watchAndRescan(root string, cfg config.Settings, stop <-chan struct{}, rescan func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	debounce := newWatchDebouncer(time.Duration(cfg.Performance.WatchDebounceMs)*time.Millisecond, func(paths []string) {
		log.Printf("dupscan: %d file(s) changed, re-scanning", len(paths))
		rescan()
	})

	if err := addWatchDirs(watcher, root); err != nil {
		return err
	}

	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if _, isSource := parsersByExt[strings.ToLower(filepath.Ext(ev.Name))]; !isSource {
				continue
			}
			debounce.add(ev.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("dupscan: watch error: %v", err)
		}
	}
}
