// Package actor implements the editor actor: the sole owner of the one
// control-plane connection held with the text editor. It translates between
// the JSON wire protocol and the internal request types of the compiler and
// render collaborators, and resolves interned span tokens on both paths.
package actor

import (
	"os"

	"github.com/typlive/previewd/internal/compiler"
	"github.com/typlive/previewd/internal/control"
	"github.com/typlive/previewd/internal/doc"
	"github.com/typlive/previewd/internal/intern"
	"github.com/typlive/previewd/internal/logging"
	"github.com/typlive/previewd/internal/render"
)

// Conn is the duplex editor connection. Frames are whole JSON texts; any read
// or write error means the connection is dead.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(data []byte) error
	Close() error
}

// FrameRecorder receives a copy of every frame crossing the connection.
// Implementations must be best-effort and non-blocking.
type FrameRecorder interface {
	RecordFrame(dir, event string, payload []byte)
}

// Editor runs the protocol state machine for one editor session. It lives for
// exactly one connection; when the connection dies the hosting process
// terminates (fail fast, no reconnection).
type Editor struct {
	conn     Conn
	mailbox  <-chan Request
	compiler *compiler.Client
	renderer *render.Hub
	interner *intern.Interner

	recorder FrameRecorder
	exit     func(code int)
}

// Option configures an Editor.
type Option func(*Editor)

// WithRecorder attaches a frame recorder to the session.
func WithRecorder(r FrameRecorder) Option {
	return func(e *Editor) { e.recorder = r }
}

// WithExitFunc overrides the process-termination call. Tests use this to
// observe the fail-fast shutdown without exiting.
func WithExitFunc(exit func(code int)) Option {
	return func(e *Editor) { e.exit = exit }
}

// New creates the editor actor for one connection. The interner is shared
// with the compiler integration, which interns spans and reclaims epochs; the
// actor only reads it.
func New(conn Conn, mailbox <-chan Request, comp *compiler.Client, renderer *render.Hub, interner *intern.Interner, opts ...Option) *Editor {
	e := &Editor{
		conn:     conn,
		mailbox:  mailbox,
		compiler: comp,
		renderer: renderer,
		interner: interner,
		exit:     os.Exit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run drives the session until the connection dies, then terminates the
// hosting process. It immediately acknowledges the connection with
// syncEditorChanges, then serves the mailbox and the inbound stream with no
// fixed priority between the two.
func (e *Editor) Run() {
	if !e.sendSyncEditorChanges() {
		e.shutdown()
		return
	}

	frames := make(chan []byte, 1)
	go e.readPump(frames)

loop:
	for {
		select {
		case req, ok := <-e.mailbox:
			if !ok {
				logging.Info("editor actor mailbox closed")
				break loop
			}
			if !e.handleMailbox(req) {
				break loop
			}
		case frame, ok := <-frames:
			if !ok {
				break loop
			}
			e.handleFrame(frame)
		}
	}
	e.shutdown()
}

func (e *Editor) shutdown() {
	logging.Info("editor connection closed, shutting down")
	_ = e.conn.Close()
	e.exit(0)
}

// readPump feeds inbound frames to the main loop. It closes the channel on
// the first read error, which the main loop treats as connection death.
func (e *Editor) readPump(frames chan<- []byte) {
	defer close(frames)
	for {
		data, err := e.conn.ReadFrame()
		if err != nil {
			logging.Warn("editor connection read failed", "error", err)
			return
		}
		frames <- data
	}
}

// handleMailbox translates one internal event into an outbound frame. It
// reports false when the frame could not be written.
func (e *Editor) handleMailbox(req Request) bool {
	switch req := req.(type) {
	case JumpToSource:
		frame, err := control.EncodeEditorScrollTo(req.Info)
		if err != nil {
			logging.Error("encode editorScrollTo frame", "error", err)
			return true
		}
		return e.send(control.EventEditorScrollTo, frame)
	case ResolveSpan:
		e.resolveSpan(req.Span)
		return true
	case StatusChanged:
		frame, err := control.EncodeCompileStatus(req.Status)
		if err != nil {
			logging.Error("encode compileStatus frame", "error", err)
			return true
		}
		return e.send(control.EventCompileStatus, frame)
	case OutlineChanged:
		frame, err := control.EncodeOutline(req.Outline)
		if err != nil {
			logging.Error("encode outline frame", "error", err)
			return true
		}
		return e.send(control.EventOutline, frame)
	default:
		logging.Error("editor actor received unknown mailbox request", "request", req)
		return true
	}
}

// handleFrame translates one inbound frame into collaborator requests. A
// malformed or unrecognized frame is logged and skipped; the connection stays
// open.
func (e *Editor) handleFrame(data []byte) {
	msg, err := control.Decode(data)
	if err != nil {
		logging.Warn("dropping unparsable control frame", "error", err)
		return
	}
	logging.ControlPlaneEvent("in", msg.Event())
	if e.recorder != nil {
		e.recorder.RecordFrame("in", msg.Event(), data)
	}

	switch msg := msg.(type) {
	case control.ChangeCursorPosition:
		e.compiler.Send(compiler.ChangeCursorPosition{
			Filepath:  msg.Filepath,
			Line:      msg.Line,
			Character: msg.Character,
		})
	case control.PanelScrollTo:
		e.compiler.Send(compiler.ResolveSrcToDoc{
			Filepath:  msg.Filepath,
			Line:      msg.Line,
			Character: msg.Character,
		})
	case control.PanelScrollByPosition:
		// Viewport updates go to render subscribers only, never the compiler.
		e.renderer.Publish(msg.Position)
	case control.SourceScrollBySpan:
		e.resolveSpan(msg.Span)
	case control.SyncMemoryFiles:
		e.compiler.Send(compiler.SyncMemoryFiles{
			Files: compiler.MemoryFiles{Files: msg.Files},
		})
	case control.UpdateMemoryFiles:
		e.compiler.Send(compiler.UpdateMemoryFiles{
			Files: compiler.MemoryFiles{Files: msg.Files},
		})
	case control.RemoveMemoryFiles:
		e.compiler.Send(compiler.RemoveMemoryFiles{
			Files: compiler.MemoryFilesShort{Files: msg.Files},
		})
	}
}

// resolveSpan decodes a hex span token under shared interner access and, when
// the token still resolves, forwards a span-and-offset resolution request to
// the compiler. Stale and unknown tokens are dropped without any response;
// the editor treats tokens as ephemeral.
func (e *Editor) resolveSpan(token string) {
	span, q, err := e.interner.LookupHex(token)
	if err != nil {
		logging.Warn("dropping malformed span token", "span", token, "error", err)
		return
	}
	switch q {
	case intern.Stale:
		logging.Warn("dropping out of date span token", "span", token)
		return
	case intern.Missing:
		return
	}

	at := doc.SpanOffset{Span: span}
	e.compiler.Send(compiler.ResolveDocToSrc{From: at, To: at})
}

func (e *Editor) sendSyncEditorChanges() bool {
	frame, err := control.EncodeSyncEditorChanges()
	if err != nil {
		logging.Error("encode syncEditorChanges frame", "error", err)
		return false
	}
	return e.send(control.EventSyncEditorChanges, frame)
}

// send writes one outbound frame. It reports false on write failure, which
// ends the session.
func (e *Editor) send(event string, frame []byte) bool {
	if err := e.conn.WriteFrame(frame); err != nil {
		logging.Warn("failed to send frame to editor", "event", event, "error", err)
		return false
	}
	logging.ControlPlaneEvent("out", event)
	if e.recorder != nil {
		e.recorder.RecordFrame("out", event, frame)
	}
	return true
}
