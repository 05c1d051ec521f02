package progress

import "sync"

// Mailbox is an unbounded FIFO of functions. Post never blocks,
// which makes it usable from the goroutine that drains it.
type Mailbox struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
	closed bool
}

func NewMailbox() *Mailbox {
	return &Mailbox{
		signal: make(chan struct{}, 1),
	}
}

// Post queues f. Posting to a closed mailbox is a no-op.
func (m *Mailbox) Post(f func()) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.queue = append(m.queue, f)
	m.mu.Unlock()

	m.wake()
}

// Close makes Next return false once the queue is drained.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wake()
}

func (m *Mailbox) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
		// already signaled
	}
}

// Next blocks until a function is queued, and returns it. It returns
// false when the mailbox is closed and empty.
func (m *Mailbox) Next() (func(), bool) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			f := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return f, true
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return nil, false
		}
		<-m.signal
	}
}

// Run drains the mailbox on the calling goroutine until Close.
// Functions already queued when Close is called still run.
func (m *Mailbox) Run() {
	for {
		f, ok := m.Next()
		if !ok {
			return
		}
		f()
	}
}
