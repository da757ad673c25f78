// Package trace records control-plane sessions to a SQLite database for
// debugging editor integrations. Recording is strictly best-effort: every
// failure is logged and swallowed so tracing can never disturb the control
// plane. Memory-file payloads are stored as blake3 fingerprints, never as
// content.
package trace

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"

	"github.com/typlive/previewd/internal/logging"
)

// maxDetailBytes bounds the stored payload of non-fingerprinted frames.
const maxDetailBytes = 4096

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	remote     TEXT,
	started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS frames (
	session_id TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	dir        TEXT NOT NULL,
	event      TEXT NOT NULL,
	detail     TEXT,
	at         TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// fingerprinted lists the events whose payloads carry unsaved buffer content.
var fingerprinted = map[string]bool{
	"syncMemoryFiles":   true,
	"updateMemoryFiles": true,
}

// Recorder writes one session's frames to the trace database.
type Recorder struct {
	db        *sql.DB
	sessionID string

	mu  sync.Mutex
	seq int64
}

// Open opens (creating if needed) the trace database at path and starts a new
// session. remote identifies the editor connection for the session row.
func Open(path, remote string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open trace database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create trace schema: %w", err)
	}

	r := &Recorder{
		db:        db,
		sessionID: uuid.New().String(),
	}
	_, err = db.Exec(
		`INSERT INTO sessions (id, remote, started_at) VALUES (?, ?, ?)`,
		r.sessionID, remote, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("record trace session: %w", err)
	}
	return r, nil
}

// SessionID returns the id of the session being recorded.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// RecordFrame stores one frame. Failures are logged and swallowed.
func (r *Recorder) RecordFrame(dir, event string, payload []byte) {
	detail := detailFor(event, payload)

	r.mu.Lock()
	seq := r.seq
	r.seq++
	r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO frames (session_id, seq, dir, event, detail, at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.sessionID, seq, dir, event, detail, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		logging.Warn("trace frame not recorded", "event", event, "error", err)
	}
}

// FrameCount returns the number of frames recorded for this session.
func (r *Recorder) FrameCount() (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM frames WHERE session_id = ?`, r.sessionID,
	).Scan(&n)
	return n, err
}

// Close closes the trace database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// detailFor renders the stored form of a frame payload. Frames carrying
// unsaved buffer content are reduced to a blake3 fingerprint so traces stay
// small and never leak document text.
func detailFor(event string, payload []byte) string {
	if fingerprinted[event] {
		sum := blake3.Sum256(payload)
		return "blake3:" + hex.EncodeToString(sum[:])
	}
	if len(payload) > maxDetailBytes {
		payload = payload[:maxDetailBytes]
	}
	return string(payload)
}
