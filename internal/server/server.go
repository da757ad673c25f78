// Package server exposes the control-plane websocket endpoint. It accepts
// the single editor session the process serves, builds the editor actor for
// it, and wires the actor to the shared interner and the collaborator
// channels.
package server

import (
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/typlive/previewd/internal/actor"
	"github.com/typlive/previewd/internal/compiler"
	"github.com/typlive/previewd/internal/config"
	"github.com/typlive/previewd/internal/intern"
	"github.com/typlive/previewd/internal/logging"
	"github.com/typlive/previewd/internal/render"
	"github.com/typlive/previewd/internal/trace"
)

// Server owns the HTTP listener and the one-session-per-process gate.
type Server struct {
	cfg      config.Config
	mailbox  chan actor.Request
	compiler *compiler.Client
	renderer *render.Hub
	interner *intern.Interner

	upgrader  websocket.Upgrader
	active    atomic.Bool
	actorOpts []actor.Option
}

// New builds a server around the shared collaborator plumbing. Extra actor
// options apply to every session actor; tests use this to intercept the
// fail-fast process exit.
func New(cfg config.Config, mailbox chan actor.Request, comp *compiler.Client, renderer *render.Hub, interner *intern.Interner, actorOpts ...actor.Option) *Server {
	s := &Server{
		cfg:       cfg,
		mailbox:   mailbox,
		compiler:  comp,
		renderer:  renderer,
		interner:  interner,
		actorOpts: actorOpts,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
	}
	return s
}

// Mailbox returns the channel the compiler integration pushes events into.
func (s *Server) Mailbox() chan<- actor.Request {
	return s.mailbox
}

// Handler returns the HTTP handler serving the control plane and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleControlPlane)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return logging.RequestLogger(mux)
}

// ListenAndServe runs the HTTP listener until it fails. The editor actor
// terminates the process on disconnect, so this normally never returns.
func (s *Server) ListenAndServe() error {
	if len(s.cfg.AllowedOrigins) == 0 {
		logging.Warn("no allowed origins configured, accepting any origin")
	}
	logging.ServerStartup("control_plane", "ws", s.cfg.Port, "path", s.cfg.Path)
	return http.ListenAndServe(s.cfg.Addr(), s.Handler())
}

// handleControlPlane upgrades the editor connection and runs its actor. The
// process serves exactly one editor session; concurrent attempts get 409.
func (s *Server) handleControlPlane(w http.ResponseWriter, r *http.Request) {
	if !s.active.CompareAndSwap(false, true) {
		http.Error(w, "an editor session is already active", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.active.Store(false)
		logging.Error("websocket upgrade failed", "error", err)
		return
	}

	sessionID := uuid.New().String()
	logging.SessionEvent("editor_connected", sessionID, "remote", conn.RemoteAddr().String())

	opts := append([]actor.Option{}, s.actorOpts...)
	if s.cfg.TraceDB != "" {
		rec, err := trace.Open(s.cfg.TraceDB, conn.RemoteAddr().String())
		if err != nil {
			logging.Warn("trace recording disabled", "error", err)
		} else {
			logging.Info("recording control-plane trace",
				"db", s.cfg.TraceDB, "trace_session", rec.SessionID())
			opts = append(opts, actor.WithRecorder(rec))
		}
	}

	ed := actor.New(&wsConn{conn: conn}, s.mailbox, s.compiler, s.renderer, s.interner, opts...)
	// The actor owns the connection from here on and exits the process when
	// it dies; run it on this handler goroutine.
	ed.Run()
}

// checkOrigin builds the upgrader origin policy: an empty allow-list accepts
// everything, otherwise the Origin header must match exactly.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, a := range allowed {
			if origin == a {
				return true
			}
		}
		logging.Warn("rejected control-plane origin", "origin", origin)
		return false
	}
}
