// Package channel provides the bounded, closable FIFO queues used for
// task-to-task communication, and the registry that owns them.
package channel

import (
	"context"
	"errors"
	"sync"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/specialistvlad/wdlgo/internal/value"
)

// ErrClosed is returned when sending on a closed channel.
var ErrClosed = errors.New("cannot send on closed channel")

// Channel is a bounded FIFO of values. Send blocks while the buffer is full
// and Receive blocks while it is empty; both give up when ctx is done.
type Channel struct {
	mu       sync.Mutex
	buf      *doublylinkedlist.List
	capacity int
	closed   bool
	// changed is closed and replaced whenever the buffer or the closed flag
	// changes, waking every blocked sender and receiver.
	changed chan struct{}
}

// New returns an open channel with the given capacity. Capacities below
// one are raised to one.
func New(capacity int) *Channel {
	if capacity < 1 {
		capacity = 1
	}
	return &Channel{
		buf:      doublylinkedlist.New(),
		capacity: capacity,
		changed:  make(chan struct{}),
	}
}

func (c *Channel) notify() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Send appends v, waiting for free capacity.
func (c *Channel) Send(ctx context.Context, v value.Value) error {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		if c.buf.Size() < c.capacity {
			c.buf.Add(v)
			c.notify()
			c.mu.Unlock()
			return nil
		}
		wait := c.changed
		c.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Receive takes the oldest value, waiting for one to arrive. ok is false
// once the channel is closed and drained.
func (c *Channel) Receive(ctx context.Context) (v value.Value, ok bool, err error) {
	for {
		c.mu.Lock()
		if c.buf.Size() > 0 {
			head, _ := c.buf.Get(0)
			c.buf.Remove(0)
			c.notify()
			c.mu.Unlock()
			return head.(value.Value), true, nil
		}
		if c.closed {
			c.mu.Unlock()
			return nil, false, nil
		}
		wait := c.changed
		c.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// Close marks the channel closed. Buffered values can still be received.
// Closing twice is a no-op.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.notify()
}

// Len returns the number of buffered values.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Size()
}

// Cap returns the buffer capacity.
func (c *Channel) Cap() int {
	return c.capacity
}

// Closed reports whether Close was called.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
