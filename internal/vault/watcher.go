package vault

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/farmergreg/rfsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/fsnotify.v1"

	"github.com/vaulthook/vaulthook/internal/excluder"
)

// DefaultRenameWindow is how long a RENAME waits for its matching
// CREATE before it degrades to a delete.
const DefaultRenameWindow = 500 * time.Millisecond

// Watcher turns raw filesystem notifications for the vault root into
// typed lifecycle events on its embedded Host.
//
// The notify layer reports a rename as RENAME(oldpath) followed by
// CREATE(newpath). The watcher holds the old path for a short window
// and pairs it with the next create into a single rename event. A
// RENAME that never sees its create means the file left the watched
// tree, which is reported as a delete.
type Watcher struct {
	Host

	root   string
	ex     *excluder.Excluder
	rw     *rfsnotify.RWatcher
	window time.Duration

	pendingOld string
	timer      *time.Timer
}

// Open starts watching root recursively. Patterns are glob excludes
// matched against vault-relative paths. A non-positive window uses
// DefaultRenameWindow.
func Open(root string, patterns []string, window time.Duration) (*Watcher, error) {
	ex, err := excluder.New(patterns)
	if err != nil {
		return nil, err
	}

	rw, err := rfsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := rw.AddRecursive(root); err != nil {
		rw.Close()
		return nil, err
	}

	if window <= 0 {
		window = DefaultRenameWindow
	}

	return &Watcher{
		root:   root,
		ex:     ex,
		rw:     rw,
		window: window,
	}, nil
}

// Run processes notifications until the watcher is closed. It blocks;
// run it on its own goroutine.
func (w *Watcher) Run() {
	for {
		select {
		case ev, ok := <-w.rw.Events:
			if !ok {
				w.flushPending()
				return
			}
			w.step(ev)
		case <-w.timerC():
			w.flushPending()
		case err, ok := <-w.rw.Errors:
			if !ok {
				return
			}
			log.Errorf("Watch error: %v", err)
		}
	}
}

// Close stops the underlying watcher, which ends Run.
func (w *Watcher) Close() error {
	return w.rw.Close()
}

// step maps one raw notification onto the event model.
func (w *Watcher) step(ev fsnotify.Event) {
	rel, ok := w.relPath(ev.Name)
	if !ok {
		return
	}
	if w.ex.IsExcluded(rel) {
		log.Debugf("Excluded: %s", rel)
		return
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		if w.isDir(ev.Name) {
			return
		}
		if w.pendingOld != "" {
			old := w.pendingOld
			w.clearPending()
			w.Dispatch(Event{Kind: KindRename, Path: rel, OldPath: old})
			return
		}
		w.Dispatch(Event{Kind: KindCreate, Path: rel})
	case ev.Op&fsnotify.Write != 0:
		if w.isDir(ev.Name) {
			return
		}
		w.Dispatch(Event{Kind: KindModify, Path: rel})
	case ev.Op&fsnotify.Remove != 0:
		w.flushPending()
		w.Dispatch(Event{Kind: KindDelete, Path: rel})
	case ev.Op&fsnotify.Rename != 0:
		w.flushPending()
		w.pendingOld = rel
		w.timer = time.NewTimer(w.window)
	}
}

// flushPending reports an expired rename as a delete.
func (w *Watcher) flushPending() {
	if w.pendingOld != "" {
		old := w.pendingOld
		w.clearPending()
		w.Dispatch(Event{Kind: KindDelete, Path: old})
		return
	}
	w.clearPending()
}

func (w *Watcher) clearPending() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = nil
	w.pendingOld = ""
}

func (w *Watcher) timerC() <-chan time.Time {
	if w.timer == nil {
		return nil
	}
	return w.timer.C
}

// relPath converts an absolute notification path into a slash-separated
// vault-relative path. Paths outside the root are dropped.
func (w *Watcher) relPath(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == "." {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

func (w *Watcher) isDir(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.IsDir()
}
