// Package editor places reference text into a document.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// Sink inserts text at the current selection, replacing it.
type Sink interface {
	InsertAtSelection(ctx context.Context, text string) error
}

// Selection is a byte range [Start, End) in a document. A negative Start
// means "append at the end".
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// EndOfDocument appends.
var EndOfDocument = Selection{Start: -1, End: -1}

// Cursor is an empty selection at offset.
func Cursor(offset int) Selection {
	return Selection{Start: offset, End: offset}
}

// DocumentStore is the slice of storage.Provider a Document edits through.
type DocumentStore interface {
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
}

// Document edits a vault file in place.
type Document struct {
	Store     DocumentStore
	Path      string
	Selection Selection
}

// InsertAtSelection splices text into the document and writes it back
// atomically. A missing document is created.
func (d *Document) InsertAtSelection(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := d.Store.Read(d.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("editor: read %s: %w", d.Path, err)
	}
	updated := Splice(content, d.Selection, text)
	if err := d.Store.Write(d.Path, updated); err != nil {
		return fmt.Errorf("editor: write %s: %w", d.Path, err)
	}
	return nil
}

// Appender adds each text on a line of its own at the end of a vault
// document. A missing document is created.
type Appender struct {
	Store DocumentStore
	Path  string
}

// InsertAtSelection appends text followed by a newline.
func (a *Appender) InsertAtSelection(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := a.Store.Read(a.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("editor: read %s: %w", a.Path, err)
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		content = append(content, '\n')
	}
	content = append(content, text...)
	content = append(content, '\n')
	if err := a.Store.Write(a.Path, content); err != nil {
		return fmt.Errorf("editor: write %s: %w", a.Path, err)
	}
	return nil
}

// Splice replaces sel in content with text. Out-of-range offsets are
// clamped.
func Splice(content []byte, sel Selection, text string) []byte {
	n := len(content)
	start, end := sel.Start, sel.End
	if start < 0 || start > n {
		start = n
	}
	if end < start {
		end = start
	}
	if end > n {
		end = n
	}
	out := make([]byte, 0, n-(end-start)+len(text))
	out = append(out, content[:start]...)
	out = append(out, text...)
	out = append(out, content[end:]...)
	return out
}

// Capture records inserted text for callers that edit the document
// themselves.
type Capture struct {
	mu    sync.Mutex
	texts []string
}

// InsertAtSelection records text.
func (c *Capture) InsertAtSelection(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

// Text returns the last inserted text, or "".
func (c *Capture) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.texts) == 0 {
		return ""
	}
	return c.texts[len(c.texts)-1]
}

// Count returns how many insertions were recorded.
func (c *Capture) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.texts)
}
