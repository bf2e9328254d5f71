package payload

import (
	"path"
	"strings"
	"time"
)

// File describes a single lifecycle event for one document.
// Paths are vault-relative and slash-separated.
type File struct {
	Event     string    `json:"event"`
	Vault     string    `json:"vault"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Extension string    `json:"extension,omitempty"`
	Size      *int64    `json:"size,omitempty"`
}

// Rename describes one rename occurrence with both the old and
// new identifiers.
type Rename struct {
	Event     string    `json:"event"`
	Vault     string    `json:"vault"`
	Timestamp time.Time `json:"timestamp"`
	OldPath   string    `json:"oldPath"`
	NewPath   string    `json:"newPath"`
	OldName   string    `json:"oldName"`
	NewName   string    `json:"newName"`
}

// Test is the fixed payload sent by the manual test action. The Test
// field marks it apart from file payloads.
type Test struct {
	Event     string    `json:"event"`
	Vault     string    `json:"vault"`
	Timestamp time.Time `json:"timestamp"`
	Test      bool      `json:"test"`
}

// NewFile builds a file payload for the given event kind. Size may be
// nil when the file could not be statted (e.g. it was already deleted).
func NewFile(vault, event, relPath string, size *int64) File {
	name := path.Base(relPath)
	return File{
		Event:     event,
		Vault:     vault,
		Timestamp: time.Now().UTC(),
		Path:      relPath,
		Name:      name,
		Extension: extensionOf(name),
		Size:      size,
	}
}

// NewRename builds a rename payload from the old and new vault-relative paths.
func NewRename(vault, oldPath, newPath string) Rename {
	return Rename{
		Event:     "rename",
		Vault:     vault,
		Timestamp: time.Now().UTC(),
		OldPath:   oldPath,
		NewPath:   newPath,
		OldName:   path.Base(oldPath),
		NewName:   path.Base(newPath),
	}
}

// NewTest builds the test payload.
func NewTest(vault string) Test {
	return Test{
		Event:     "test",
		Vault:     vault,
		Timestamp: time.Now().UTC(),
		Test:      true,
	}
}

// extensionOf returns the name's extension without the leading dot, or
// "" when there is none.
func extensionOf(name string) string {
	return strings.TrimPrefix(path.Ext(name), ".")
}
