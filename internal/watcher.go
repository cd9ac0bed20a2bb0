package internal

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of filesystem event
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventDelete
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventDelete:
		return "delete"
	default:
		return "rename"
	}
}

// WatchEvent represents a filesystem event on a media file or sidecar.
type WatchEvent struct {
	Type EventType
	Path string
}

// Watcher wraps an fsnotify watcher over whole directory trees and keeps
// only the paths accepted by match.
type Watcher struct {
	watcher *fsnotify.Watcher
	match   func(path string) bool
	events  chan *WatchEvent
	errors  chan error
	done    chan struct{}
}

// NewWatcher watches every directory below roots. Hidden directories, such
// as the rename journals, are skipped.
func NewWatcher(roots []string, match func(path string) bool) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fsWatcher,
		match:   match,
		events:  make(chan *WatchEvent, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}

	seen := make(map[string]bool)
	for _, root := range roots {
		if seen[root] {
			continue
		}
		seen[root] = true
		if err := w.addRecursive(root); err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}

	go w.processEvents()

	return w, nil
}

func hiddenDir(root, path string) bool {
	return path != root && strings.HasPrefix(filepath.Base(path), ".")
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if hiddenDir(root, path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// new folders are watched too, and files moved in with them reported
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if !hiddenDir("", event.Name) {
						w.addNewDir(event.Name)
					}
					continue
				}
			}

			if !w.match(event.Name) {
				continue
			}

			watchEvent := &WatchEvent{Path: event.Name}
			switch {
			case event.Has(fsnotify.Create):
				watchEvent.Type = EventCreate
			case event.Has(fsnotify.Write):
				watchEvent.Type = EventWrite
			case event.Has(fsnotify.Remove):
				watchEvent.Type = EventDelete
			case event.Has(fsnotify.Rename):
				// fsnotify only reports the old name; the new one arrives as Create
				watchEvent.Type = EventRename
			default:
				continue
			}
			w.send(watchEvent)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Error channel is full, drop error
			}

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) addNewDir(dir string) {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if hiddenDir(dir, path) {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		if w.match(path) {
			w.send(&WatchEvent{Type: EventCreate, Path: path})
		}
		return nil
	})
	if err != nil {
		select {
		case w.errors <- err:
		default:
		}
	}
}

func (w *Watcher) send(ev *WatchEvent) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// Events returns the channel of filtered watch events
func (w *Watcher) Events() <-chan *WatchEvent {
	return w.events
}

// Errors returns the channel of watcher errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and cleans up resources
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
