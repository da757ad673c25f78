package actor

import "github.com/typlive/previewd/internal/doc"

// Request is one internal event pushed into the editor actor's mailbox by the
// compiler integration.
type Request interface {
	isMailboxRequest()
}

// JumpToSource carries a resolved document-to-source jump for the editor.
type JumpToSource struct {
	Info doc.JumpInfo
}

// ResolveSpan asks the actor to resolve an interned span token and forward
// the resolution to the compiler. No frame is sent to the editor.
type ResolveSpan struct {
	Span string
}

// StatusChanged reports compile progress for forwarding to the editor.
type StatusChanged struct {
	Status doc.CompileStatus
}

// OutlineChanged carries a fresh document outline for the editor.
type OutlineChanged struct {
	Outline doc.Outline
}

func (JumpToSource) isMailboxRequest()   {}
func (ResolveSpan) isMailboxRequest()    {}
func (StatusChanged) isMailboxRequest()  {}
func (OutlineChanged) isMailboxRequest() {}
