// Package control implements the JSON control-plane protocol spoken with the
// text editor. Every frame is a JSON object tagged by an "event" discriminator
// field. The discriminator strings are a compatibility contract with the
// editor-side plugin and must remain stable.
package control

import (
	"encoding/json"
	"fmt"

	"github.com/typlive/previewd/internal/doc"
)

// Inbound event discriminators (editor -> previewd).
const (
	EventChangeCursorPosition  = "changeCursorPosition"
	EventPanelScrollTo         = "panelScrollTo"
	EventPanelScrollByPosition = "panelScrollByPosition"
	EventSourceScrollBySpan    = "sourceScrollBySpan"
	EventSyncMemoryFiles       = "syncMemoryFiles"
	EventUpdateMemoryFiles     = "updateMemoryFiles"
	EventRemoveMemoryFiles     = "removeMemoryFiles"
)

// Message is an inbound control-plane frame. The concrete type is one of the
// structs below; Event returns the frame's discriminator.
type Message interface {
	Event() string
}

// ChangeCursorPosition reports the editor cursor moving within a source file.
type ChangeCursorPosition struct {
	Filepath  string `json:"filepath"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
}

func (ChangeCursorPosition) Event() string { return EventChangeCursorPosition }

// PanelScrollTo asks for the preview panel to scroll to the document position
// corresponding to a source location.
type PanelScrollTo struct {
	Filepath  string `json:"filepath"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
}

func (PanelScrollTo) Event() string { return EventPanelScrollTo }

// PanelScrollByPosition asks for the preview panel to scroll to an absolute
// document position. This never involves the compiler.
type PanelScrollByPosition struct {
	Position doc.DocumentPosition `json:"position"`
}

func (PanelScrollByPosition) Event() string { return EventPanelScrollByPosition }

// SourceScrollBySpan asks for the editor to be scrolled to the source range
// behind an interned span token (hex form).
type SourceScrollBySpan struct {
	Span string `json:"span"`
}

func (SourceScrollBySpan) Event() string { return EventSourceScrollBySpan }

// SyncMemoryFiles replaces the whole set of editor-held unsaved buffers.
type SyncMemoryFiles struct {
	Files map[string]string `json:"files"`
}

func (SyncMemoryFiles) Event() string { return EventSyncMemoryFiles }

// UpdateMemoryFiles merges updated unsaved buffers into the current set.
type UpdateMemoryFiles struct {
	Files map[string]string `json:"files"`
}

func (UpdateMemoryFiles) Event() string { return EventUpdateMemoryFiles }

// RemoveMemoryFiles drops unsaved buffers, falling back to on-disk content.
type RemoveMemoryFiles struct {
	Files []string `json:"files"`
}

func (RemoveMemoryFiles) Event() string { return EventRemoveMemoryFiles }

// Decode parses one inbound frame. It returns an error for malformed JSON,
// a missing discriminator, or an unrecognized event; the caller is expected
// to log and skip such frames rather than close the connection.
func Decode(data []byte) (Message, error) {
	var probe struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse control frame: %w", err)
	}

	var (
		msg Message
		err error
	)
	switch probe.Event {
	case EventChangeCursorPosition:
		var m ChangeCursorPosition
		err = json.Unmarshal(data, &m)
		msg = m
	case EventPanelScrollTo:
		var m PanelScrollTo
		err = json.Unmarshal(data, &m)
		msg = m
	case EventPanelScrollByPosition:
		var m PanelScrollByPosition
		err = json.Unmarshal(data, &m)
		msg = m
	case EventSourceScrollBySpan:
		var m SourceScrollBySpan
		err = json.Unmarshal(data, &m)
		msg = m
	case EventSyncMemoryFiles:
		var m SyncMemoryFiles
		err = json.Unmarshal(data, &m)
		msg = m
	case EventUpdateMemoryFiles:
		var m UpdateMemoryFiles
		err = json.Unmarshal(data, &m)
		msg = m
	case EventRemoveMemoryFiles:
		var m RemoveMemoryFiles
		err = json.Unmarshal(data, &m)
		msg = m
	case "":
		return nil, fmt.Errorf("control frame without event field")
	default:
		return nil, fmt.Errorf("unrecognized control event %q", probe.Event)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s frame: %w", probe.Event, err)
	}
	return msg, nil
}
