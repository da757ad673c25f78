// Package compiler defines the request surface of the document compiler
// collaborator. The compiler itself runs outside this layer; previewd only
// produces fire-and-forget requests for it and consumes the events it pushes
// back through the editor actor's mailbox.
package compiler

import "github.com/typlive/previewd/internal/doc"

// Request is one fire-and-forget request to the compiler.
type Request interface {
	isRequest()
}

// ChangeCursorPosition reports the editor cursor so the compiler can track
// the active source location.
type ChangeCursorPosition struct {
	Filepath  string
	Line      int
	Character int
}

// ResolveSrcToDoc asks the compiler to resolve a source location to a
// document position (the preview panel follows the result).
type ResolveSrcToDoc struct {
	Filepath  string
	Line      int
	Character int
}

// ResolveDocToSrc asks the compiler to resolve a span range back to a source
// location; the result comes back through the editor actor's mailbox as a
// jump event.
type ResolveDocToSrc struct {
	From doc.SpanOffset
	To   doc.SpanOffset
}

// SyncMemoryFiles replaces the compiler's whole shadow set of unsaved
// buffers.
type SyncMemoryFiles struct {
	Files MemoryFiles
}

// UpdateMemoryFiles merges updated unsaved buffers into the shadow set.
type UpdateMemoryFiles struct {
	Files MemoryFiles
}

// RemoveMemoryFiles drops paths from the shadow set.
type RemoveMemoryFiles struct {
	Files MemoryFilesShort
}

// MemoryFiles maps source paths to full unsaved buffer content.
type MemoryFiles struct {
	Files map[string]string `json:"files"`
}

// MemoryFilesShort lists source paths without content.
type MemoryFilesShort struct {
	Files []string `json:"files"`
}

func (ChangeCursorPosition) isRequest() {}
func (ResolveSrcToDoc) isRequest()      {}
func (ResolveDocToSrc) isRequest()      {}
func (SyncMemoryFiles) isRequest()      {}
func (UpdateMemoryFiles) isRequest()    {}
func (RemoveMemoryFiles) isRequest()    {}
