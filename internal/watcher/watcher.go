// Package watcher reports document file changes in a watched directory.
// It translates raw filesystem notifications into ingestion-relevant
// change events: hidden files and metadata-only changes are ignored.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ChangeType classifies a file change.
type ChangeType int

// Change types.
const (
	// ChangeCreated is a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated is a content change to an existing file.
	ChangeUpdated

	// ChangeDeleted is a removed or renamed-away file.
	ChangeDeleted
)

// String returns the string representation.
func (t ChangeType) String() string {
	switch t {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is one file change.
type Event struct {
	// Path is the absolute file path.
	Path string

	// Type classifies the change.
	Type ChangeType
}

// Watcher watches one directory (non-recursive) for document changes.
type Watcher struct {
	dir    string
	fsw    *fsnotify.Watcher
	events chan Event
	errs   chan error
}

// New creates a watcher for the given directory.
func New(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:    dir,
		fsw:    fsw,
		events: make(chan Event),
		errs:   make(chan error, 1),
	}, nil
}

// Events returns the change event channel. Closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run pumps filesystem notifications into Events until the context is
// cancelled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			change, relevant := Classify(ev.Op, ev.Name)
			if !relevant {
				continue
			}
			select {
			case w.events <- change:
			case <-ctx.Done():
				return ctx.Err()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.dir, err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Classify maps a filesystem notification to a change event.
// Returns false for events that do not affect indexed content: hidden
// files and permission-only changes.
func Classify(op fsnotify.Op, path string) (Event, bool) {
	if isHidden(path) {
		return Event{}, false
	}

	switch {
	case op.Has(fsnotify.Create):
		return Event{Path: path, Type: ChangeCreated}, true
	case op.Has(fsnotify.Write):
		return Event{Path: path, Type: ChangeUpdated}, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		// A rename looks like removal at the old path; the new path
		// arrives as a separate create event.
		return Event{Path: path, Type: ChangeDeleted}, true
	default:
		// Chmod and friends do not change content.
		return Event{}, false
	}
}

// isHidden reports whether the file name starts with a dot.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
