package app

import (
	"fmt"
	"io"
	"sync"

	"weighttrack/internal/domain"
)

// NopNotifier discards notifications.
type NopNotifier struct{}

// Notify implements domain.Notifier.
func (NopNotifier) Notify(domain.Notification) {}

// ChanNotifier delivers notifications on a buffered channel. When the buffer
// is full the oldest pending notification is dropped so senders never block.
type ChanNotifier struct {
	mu sync.Mutex
	ch chan domain.Notification
}

// NewChanNotifier creates a ChanNotifier with the given buffer size.
func NewChanNotifier(size int) *ChanNotifier {
	if size < 1 {
		size = 1
	}
	return &ChanNotifier{ch: make(chan domain.Notification, size)}
}

// Notify implements domain.Notifier.
func (c *ChanNotifier) Notify(n domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		select {
		case c.ch <- n:
			return
		default:
		}
		select {
		case <-c.ch:
		default:
		}
	}
}

// C returns the receive side of the channel.
func (c *ChanNotifier) C() <-chan domain.Notification {
	return c.ch
}

// WriterNotifier prints one line per notification.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a WriterNotifier writing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify implements domain.Notifier.
func (n *WriterNotifier) Notify(note domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	mark := "✓"
	if note.Kind == domain.NotifyError {
		mark = "✗"
	}
	_, _ = fmt.Fprintf(n.w, "%s %s\n", mark, note.Message)
}
