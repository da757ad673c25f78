package control

import (
	"encoding/json"

	"github.com/typlive/previewd/internal/doc"
)

// Outbound event discriminators (previewd -> editor).
const (
	EventSyncEditorChanges = "syncEditorChanges"
	EventEditorScrollTo    = "editorScrollTo"
	EventCompileStatus     = "compileStatus"
	EventOutline           = "outline"
)

// EncodeSyncEditorChanges builds the empty acknowledgment frame sent once,
// immediately after the connection is established.
func EncodeSyncEditorChanges() ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
	}{EventSyncEditorChanges})
}

// EncodeEditorScrollTo builds the frame asking the editor to scroll to a
// resolved source location.
func EncodeEditorScrollTo(info doc.JumpInfo) ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
		doc.JumpInfo
	}{EventEditorScrollTo, info})
}

// EncodeCompileStatus builds the compile progress frame.
func EncodeCompileStatus(status doc.CompileStatus) ([]byte, error) {
	return json.Marshal(struct {
		Event string            `json:"event"`
		Kind  doc.CompileStatus `json:"kind"`
	}{EventCompileStatus, status})
}

// EncodeOutline builds the document outline frame.
func EncodeOutline(outline doc.Outline) ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
		doc.Outline
	}{EventOutline, outline})
}
