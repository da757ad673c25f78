// Package doc defines the location and status value types shared between the
// editor control plane, the compiler collaborator, and the render component.
// All types are immutable value objects: the synchronization layer forwards
// them verbatim and never rewrites their contents.
package doc

// Span is an opaque source-span identifier assigned by the document compiler.
// The synchronization layer never inspects its bits; it only interns spans and
// hands them back to the compiler.
type Span uint64

// SpanOffset is a span plus a byte offset into it, the unit the compiler
// accepts for document-to-source resolution.
type SpanOffset struct {
	Span   Span `json:"span"`
	Offset int  `json:"offset"`
}

// LineColumn is a zero-based line/column pair within a source file.
type LineColumn struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// JumpInfo describes a resolved document-to-source jump target. Start and End
// are optional; the compiler omits them when only the file is known.
type JumpInfo struct {
	Filepath string      `json:"filepath"`
	Start    *LineColumn `json:"start,omitempty"`
	End      *LineColumn `json:"end,omitempty"`
}

// DocumentPosition is a physical position in the rendered document.
type DocumentPosition struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// CompileStatus reports the compiler's progress on the current document.
type CompileStatus string

const (
	Compiling      CompileStatus = "Compiling"
	CompileSuccess CompileStatus = "CompileSuccess"
	CompileError   CompileStatus = "CompileError"
)

// OutlineItem is one entry of the document outline. Span, when present, is an
// interned span token in hex form, resolvable via sourceScrollBySpan.
type OutlineItem struct {
	Title    string            `json:"title"`
	Span     string            `json:"span,omitempty"`
	Position *DocumentPosition `json:"position,omitempty"`
	Children []OutlineItem     `json:"children,omitempty"`
}

// Outline is the document outline tree produced by the compiler.
type Outline struct {
	Items []OutlineItem `json:"items"`
}
