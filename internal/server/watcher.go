package server

import (
	"errors"
	"log"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/labnotes/internal/notes"
)

// Change reports a modified file in the notes directory. ID is empty when
// the file is not a note, and All is set when the watcher lost track of
// events and every page must be considered stale.
type Change struct {
	ID   notes.NoteID
	Path string
	All  bool

	// Listing is set when a note was created, removed or renamed.
	Listing bool
}

// Watcher watches the notes directory and reports changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	book     *notes.LabBook
	onChange func(Change)
	logger   *log.Logger
	done     chan struct{}
	stopped  chan struct{}
	started  atomic.Bool
}

// NewWatcher watches the directory of book. Only the directory itself is
// watched: notes live at its top level.
func NewWatcher(book *notes.LabBook, logger *log.Logger, onChange func(Change)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(book.Dir()); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  fsWatcher,
		book:     book,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Start begins delivering changes on a goroutine.
func (w *Watcher) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(w.stopped)
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if change, ok := w.classify(event); ok {
					w.onChange(change)
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Printf("[Watch] Error: %v", err)
				if errors.Is(err, fsnotify.ErrEventOverflow) {
					w.onChange(Change{All: true})
				}

			case <-w.done:
				return
			}
		}
	}()
}

// classify turns an event into a Change. Attribute-only events are
// dropped.
func (w *Watcher) classify(event fsnotify.Event) (Change, bool) {
	if event.Op == fsnotify.Chmod {
		return Change{}, false
	}

	rel, err := filepath.Rel(w.book.Dir(), event.Name)
	if err != nil {
		rel = event.Name
	}
	change := Change{Path: rel}

	if id, ok := w.book.IDFromPath(event.Name); ok {
		change.ID = id
		change.Listing = event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
		w.logger.Printf("[Watch] Note changed: %s (%s)", id, event.Op)
	} else {
		w.logger.Printf("[Watch] File changed: %s (%s)", rel, event.Op)
	}
	return change, true
}

// Stop stops the watcher and waits for the delivery goroutine to exit.
func (w *Watcher) Stop() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.watcher.Close()
	if w.started.Load() {
		<-w.stopped
	}
	return err
}
