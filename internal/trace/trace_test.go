package trace

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

func openTestRecorder(t *testing.T) (*Recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.db")
	r, err := Open(path, "127.0.0.1:34567")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, path
}

func TestRecorderWritesFrames(t *testing.T) {
	r, _ := openTestRecorder(t)

	if r.SessionID() == "" {
		t.Fatal("empty session id")
	}

	r.RecordFrame("out", "syncEditorChanges", []byte(`{"event":"syncEditorChanges"}`))
	r.RecordFrame("in", "changeCursorPosition", []byte(`{"event":"changeCursorPosition","line":1}`))

	n, err := r.FrameCount()
	if err != nil {
		t.Fatalf("FrameCount: %v", err)
	}
	if n != 2 {
		t.Errorf("FrameCount = %d, want 2", n)
	}
}

func TestRecorderFingerprintsMemoryFiles(t *testing.T) {
	r, _ := openTestRecorder(t)

	secret := `{"event":"syncMemoryFiles","files":{"/w/a.doc":"do not store this"}}`
	r.RecordFrame("in", "syncMemoryFiles", []byte(secret))

	var detail string
	err := r.db.QueryRow(
		`SELECT detail FROM frames WHERE session_id = ? AND event = 'syncMemoryFiles'`,
		r.sessionID,
	).Scan(&detail)
	if err != nil {
		t.Fatalf("query detail: %v", err)
	}
	if !strings.HasPrefix(detail, "blake3:") {
		t.Errorf("detail = %q, want a blake3 fingerprint", detail)
	}
	if strings.Contains(detail, "do not store this") {
		t.Error("buffer content leaked into the trace")
	}
}

func TestRecorderSurvivesClosedDatabase(t *testing.T) {
	r, _ := openTestRecorder(t)
	r.Close()

	// Must log and swallow, not panic or propagate.
	r.RecordFrame("in", "changeCursorPosition", []byte(`{}`))
}

func TestSessionsAreDistinct(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	a, err := Open(path, "editor-a")
	if err != nil {
		t.Fatalf("Open a: %v", err)
	}
	defer a.Close()
	b, err := Open(path, "editor-b")
	if err != nil {
		t.Fatalf("Open b: %v", err)
	}
	defer b.Close()

	if a.SessionID() == b.SessionID() {
		t.Error("two sessions share an id")
	}
}

func TestExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "trace.db")
	content := []byte("pretend this is a sqlite file with enough bytes to compress")
	if err := os.WriteFile(dbPath, content, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	outPath := dbPath + ".xz"
	if err := Export(dbPath, outPath); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	xr, err := xz.NewReader(f)
	if err != nil {
		t.Fatalf("xz reader: %v", err)
	}
	got, err := io.ReadAll(xr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("round trip mismatch: got %q", got)
	}
}

func TestExportMissingInput(t *testing.T) {
	if err := Export(filepath.Join(t.TempDir(), "nope.db"), "out.xz"); err == nil {
		t.Error("Export with missing input succeeded")
	}
}
