package compiler

import (
	"testing"
	"time"
)

func TestClientPreservesOrder(t *testing.T) {
	c := NewClient()
	defer c.Close()

	const n = 100
	for i := 0; i < n; i++ {
		c.Send(ChangeCursorPosition{Line: i})
	}

	for i := 0; i < n; i++ {
		select {
		case req := <-c.Requests():
			got, ok := req.(ChangeCursorPosition)
			if !ok || got.Line != i {
				t.Fatalf("request %d = %#v", i, req)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for request %d", i)
		}
	}
}

func TestClientSendNeverBlocks(t *testing.T) {
	c := NewClient()
	defer c.Close()

	done := make(chan struct{})
	go func() {
		// Nobody drains Requests here; every send must still return.
		for i := 0; i < 10_000; i++ {
			c.Send(ResolveSrcToDoc{Line: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Send blocked with no consumer")
	}
}

func TestClientCloseDeliversQueued(t *testing.T) {
	c := NewClient()

	c.Send(SyncMemoryFiles{Files: MemoryFiles{Files: map[string]string{"/w/a.doc": "x"}}})
	c.Send(RemoveMemoryFiles{Files: MemoryFilesShort{Files: []string{"/w/a.doc"}}})
	c.Close()

	var got []Request
	for req := range c.Requests() {
		got = append(got, req)
	}
	if len(got) != 2 {
		t.Fatalf("drained %d requests, want 2", len(got))
	}
	if _, ok := got[0].(SyncMemoryFiles); !ok {
		t.Errorf("first request = %#v", got[0])
	}
	if _, ok := got[1].(RemoveMemoryFiles); !ok {
		t.Errorf("second request = %#v", got[1])
	}
}

func TestClientSendAfterClosePanics(t *testing.T) {
	c := NewClient()
	go func() {
		for range c.Requests() {
		}
	}()
	c.Close()

	defer func() {
		if recover() == nil {
			t.Error("Send after Close did not panic")
		}
	}()
	c.Send(ChangeCursorPosition{})
}
