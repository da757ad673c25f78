// Package intern maps compiler-produced source spans to compact wire-safe
// tokens and back. Entries are tagged with the epoch (recompilation generation)
// they were interned under and reclaimed generationally: once an epoch falls
// out of the retention window its tokens are reported as stale rather than
// silently resolving to nothing, so the editor can tell "outdated" apart from
// "never existed".
package intern

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/typlive/previewd/internal/doc"
)

// DefaultThreshold is the number of epochs a span stays resolvable after the
// epoch it was interned under. One epoch corresponds to one recompilation.
const DefaultThreshold = 30

// ID identifies an interned span: the epoch it was interned under and its
// position in the append-only table. Indices are never reused, so an ID is
// valid for the whole process lifetime and merely goes stale once its epoch
// leaves the retention window.
type ID struct {
	Epoch uint32
	Index uint32
}

// Hex renders the ID as the lowercase hexadecimal of epoch<<32|index. This is
// the wire form exchanged with the editor.
func (id ID) Hex() string {
	return strconv.FormatUint(uint64(id.Epoch)<<32|uint64(id.Index), 16)
}

// ParseID decodes the wire form produced by Hex.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return ID{}, fmt.Errorf("parse span token %q: %w", s, err)
	}
	return ID{Epoch: uint32(v >> 32), Index: uint32(v)}, nil
}

// Query is the outcome of a lookup.
type Query int

const (
	// Found means the token's epoch is retained and its index is populated.
	Found Query = iota
	// Missing means the token's epoch is retained but the index is unknown.
	// The table is append-only, so this only happens for tokens this process
	// never produced.
	Missing
	// Stale means the token's epoch has been reclaimed.
	Stale
)

func (q Query) String() string {
	switch q {
	case Found:
		return "found"
	case Missing:
		return "missing"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

type entry struct {
	epoch uint32
	span  doc.Span
}

// Interner is the epoch-tagged span table. Intern and Reclaim take the write
// lock; Lookup takes the read lock, so concurrent readers never block each
// other.
type Interner struct {
	mu        sync.RWMutex
	threshold uint32
	epoch     uint32
	next      uint32
	byIndex   map[uint32]entry
	byEntry   map[entry]uint32
}

// New creates an interner with the default retention threshold.
func New() *Interner {
	return NewWithThreshold(DefaultThreshold)
}

// NewWithThreshold creates an interner retaining the given number of epochs.
// A threshold below 1 is treated as the default.
func NewWithThreshold(threshold int) *Interner {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Interner{
		threshold: uint32(threshold),
		epoch:     1,
		byIndex:   make(map[uint32]entry),
		byEntry:   make(map[entry]uint32),
	}
}

// Epoch returns the current epoch. Starts at 1 and advances once per Reclaim.
func (in *Interner) Epoch() uint32 {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.epoch
}

// Len returns the number of retained entries.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byIndex)
}

// Intern inserts span under the current epoch and returns its ID. Interning
// the same span twice within one epoch returns the same ID.
func (in *Interner) Intern(span doc.Span) ID {
	in.mu.Lock()
	defer in.mu.Unlock()

	e := entry{epoch: in.epoch, span: span}
	if idx, ok := in.byEntry[e]; ok {
		return ID{Epoch: in.epoch, Index: idx}
	}
	idx := in.next
	in.next++
	in.byIndex[idx] = e
	in.byEntry[e] = idx
	return ID{Epoch: in.epoch, Index: idx}
}

// Lookup resolves an ID. It reports Stale when the ID's epoch has rolled out
// of the retention window, and otherwise returns the span stored at the ID's
// index, if any.
func (in *Interner) Lookup(id ID) (doc.Span, Query) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if id.Epoch+in.threshold <= in.epoch {
		return 0, Stale
	}
	e, ok := in.byIndex[id.Index]
	if !ok {
		return 0, Missing
	}
	return e.span, Found
}

// LookupHex decodes a wire token and resolves it. A malformed token is a
// parse error, not a table state.
func (in *Interner) LookupHex(token string) (doc.Span, Query, error) {
	id, err := ParseID(token)
	if err != nil {
		return 0, Missing, err
	}
	span, q := in.Lookup(id)
	return span, q, nil
}

// Reclaim advances the epoch and discards every entry whose epoch has left
// the retention window. The compiler integration calls this exactly once per
// recompilation.
func (in *Interner) Reclaim() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.epoch++
	for idx, e := range in.byIndex {
		if in.epoch-e.epoch >= in.threshold {
			delete(in.byIndex, idx)
			delete(in.byEntry, e)
		}
	}
}
