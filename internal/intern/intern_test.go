package intern

import (
	"sync"
	"testing"

	"github.com/typlive/previewd/internal/doc"
)

func TestInternIdempotent(t *testing.T) {
	in := New()

	a := in.Intern(doc.Span(42))
	b := in.Intern(doc.Span(42))
	if a != b {
		t.Errorf("interning the same span twice: got %v and %v", a, b)
	}
	if in.Len() != 1 {
		t.Errorf("Len = %d, want 1", in.Len())
	}

	c := in.Intern(doc.Span(43))
	if c == a {
		t.Error("distinct spans produced the same ID")
	}
	if c.Index != a.Index+1 {
		t.Errorf("indices not sequential: %d then %d", a.Index, c.Index)
	}
}

func TestInternNewEpochNewEntry(t *testing.T) {
	in := New()

	a := in.Intern(doc.Span(42))
	in.Reclaim()
	b := in.Intern(doc.Span(42))

	if a == b {
		t.Error("same span in different epochs must get distinct IDs")
	}
	if b.Epoch != a.Epoch+1 {
		t.Errorf("epoch after one Reclaim: got %d, want %d", b.Epoch, a.Epoch+1)
	}
}

func TestHexRoundTrip(t *testing.T) {
	ids := []ID{
		{Epoch: 1, Index: 0},
		{Epoch: 1, Index: 1},
		{Epoch: 30, Index: 7},
		{Epoch: 0xffffffff, Index: 0xffffffff},
		{Epoch: 0, Index: 0},
	}
	for _, id := range ids {
		got, err := ParseID(id.Hex())
		if err != nil {
			t.Fatalf("ParseID(%q): %v", id.Hex(), err)
		}
		if got != id {
			t.Errorf("round trip %v -> %q -> %v", id, id.Hex(), got)
		}
	}
}

func TestParseIDMalformed(t *testing.T) {
	for _, s := range []string{"", "zz", "0x10", "-1", "123456789012345678901"} {
		if _, err := ParseID(s); err == nil {
			t.Errorf("ParseID(%q) succeeded, want error", s)
		}
	}
}

func TestLookupRetentionWindow(t *testing.T) {
	in := New()

	id := in.Intern(doc.Span(7)) // epoch 1

	// Epochs 1..30 are within a 30-epoch window for an epoch-1 entry.
	for epoch := 1; epoch <= DefaultThreshold; epoch++ {
		span, q := in.Lookup(id)
		if q != Found || span != doc.Span(7) {
			t.Fatalf("epoch %d: Lookup = (%v, %v), want (7, found)", epoch, span, q)
		}
		in.Reclaim()
	}

	// Epoch is now 31; the entry fell out of the window.
	if got := in.Epoch(); got != DefaultThreshold+1 {
		t.Fatalf("Epoch = %d, want %d", got, DefaultThreshold+1)
	}
	if _, q := in.Lookup(id); q != Stale {
		t.Errorf("Lookup after window: %v, want stale", q)
	}
}

func TestReclaimDiscardsOnlyOutsideWindow(t *testing.T) {
	in := NewWithThreshold(2)

	a := in.Intern(doc.Span(1)) // epoch 1
	in.Reclaim()                // epoch 2
	b := in.Intern(doc.Span(2)) // epoch 2

	if _, q := in.Lookup(a); q != Found {
		t.Errorf("epoch-1 entry at epoch 2: %v, want found", q)
	}

	in.Reclaim() // epoch 3: epoch-1 entries reclaimed, epoch-2 retained

	if _, q := in.Lookup(a); q != Stale {
		t.Errorf("epoch-1 entry at epoch 3: %v, want stale", q)
	}
	if span, q := in.Lookup(b); q != Found || span != doc.Span(2) {
		t.Errorf("epoch-2 entry at epoch 3: (%v, %v), want (2, found)", span, q)
	}
	if in.Len() != 1 {
		t.Errorf("Len after reclaim = %d, want 1", in.Len())
	}
}

func TestLookupUnknownIndex(t *testing.T) {
	in := New()
	if _, q := in.Lookup(ID{Epoch: 1, Index: 99}); q != Missing {
		t.Errorf("unknown index: %v, want missing", q)
	}
}

func TestLookupHex(t *testing.T) {
	in := New()
	id := in.Intern(doc.Span(99))

	span, q, err := in.LookupHex(id.Hex())
	if err != nil || q != Found || span != doc.Span(99) {
		t.Errorf("LookupHex(%q) = (%v, %v, %v)", id.Hex(), span, q, err)
	}

	if _, _, err := in.LookupHex("not hex"); err == nil {
		t.Error("LookupHex with garbage token: want error")
	}
}

func TestConcurrentLookups(t *testing.T) {
	in := New()
	id := in.Intern(doc.Span(5))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if span, q := in.Lookup(id); q != Found || span != doc.Span(5) {
					t.Errorf("concurrent Lookup = (%v, %v)", span, q)
					return
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		in.Intern(doc.Span(uint64(i + 1000)))
	}
	wg.Wait()
}
