package compiler

import "sync"

// Client is the actor-facing handle to the compiler. Sends are queued without
// bound so the editor actor never blocks on a stalled compiler; this favors
// editor responsiveness over strict memory bounding. Requests drain in send
// order on the integration side.
type Client struct {
	mu     sync.Mutex
	queue  []Request
	closed bool

	wake chan struct{}
	out  chan Request
}

// NewClient creates a client and starts its delivery goroutine.
func NewClient() *Client {
	c := &Client{
		wake: make(chan struct{}, 1),
		out:  make(chan Request),
	}
	go c.pump()
	return c
}

// Send queues a request for the compiler. It never blocks. The compiler
// integration is assumed alive for the process lifetime; sending after Close
// is a programming error and panics.
func (c *Client) Send(req Request) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		panic("compiler: Send on closed client")
	}
	c.queue = append(c.queue, req)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Requests returns the channel the compiler integration drains. The channel
// is closed after Close once all queued requests have been delivered.
func (c *Client) Requests() <-chan Request {
	return c.out
}

// Pending returns the number of queued, not yet delivered requests.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Close stops accepting sends. Queued requests are still delivered before the
// requests channel closes.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.wake)
}

func (c *Client) pump() {
	defer close(c.out)
	for {
		_, open := <-c.wake
		c.flush()
		if !open {
			return
		}
	}
}

func (c *Client) flush() {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return
		}
		req := c.queue[0]
		c.queue = c.queue[1:]
		if len(c.queue) == 0 {
			c.queue = nil
		}
		c.mu.Unlock()

		c.out <- req
	}
}
