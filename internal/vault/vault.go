package vault

import "sync"

// Kind identifies a lifecycle or focus event.
type Kind string

const (
	KindCreate     Kind = "create"
	KindModify     Kind = "modify"
	KindDelete     Kind = "delete"
	KindRename     Kind = "rename"
	KindFileOpen   Kind = "file-open"
	KindPaneChange Kind = "pane-change"
)

// Automatic reports whether the kind is one of the four vault lifecycle
// events, as opposed to a UI-focus event.
func (k Kind) Automatic() bool {
	switch k {
	case KindCreate, KindModify, KindDelete, KindRename:
		return true
	}
	return false
}

// Event is one occurrence delivered to listeners. Paths are
// vault-relative and slash-separated. OldPath is set for renames only.
type Event struct {
	Kind    Kind
	Path    string
	OldPath string
}

// Listener receives events, one invocation at a time.
type Listener func(Event)

// Host is the event source listeners subscribe to. The filesystem
// watcher embeds it; embedding applications can also drive it directly
// to inject UI-focus events.
type Host struct {
	mu        sync.Mutex
	listeners []Listener
}

// Subscribe registers a listener for all events.
func (h *Host) Subscribe(fn Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Dispatch delivers the event to every listener. Invocations never
// overlap; listeners run on the caller's goroutine in subscription order.
func (h *Host) Dispatch(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, fn := range h.listeners {
		fn(ev)
	}
}

// EmitFileOpen injects an active-document-changed focus event.
func (h *Host) EmitFileOpen(path string) {
	h.Dispatch(Event{Kind: KindFileOpen, Path: path})
}

// EmitPaneChange injects an active-view-changed focus event.
func (h *Host) EmitPaneChange(path string) {
	h.Dispatch(Event{Kind: KindPaneChange, Path: path})
}
