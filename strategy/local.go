package strategy

import (
	"context"
	"sync"
	"time"

	"orbitalcoms/comserr"
	"orbitalcoms/message"
)

// pollInterval is how often an idle Local read checks its FIFO, approximating
// the ~5Hz poll the contract calls for.
const pollInterval = 200 * time.Millisecond

// Local is an in-process loopback strategy: two or more instances can be
// peered with Link so that a Write on one appears as a Read on the others.
// It needs no real I/O and is the transport used by tests and by the
// in-process factory constructors.
type Local struct {
	mu     sync.Mutex
	fifo   []string
	peers  []*Local
	closed bool
}

// NewLocal returns an unpeered Local strategy. Use Link to pair two
// instances before use.
func NewLocal() *Local {
	return &Local{}
}

// Link makes a and b peers of one another: a Write on either appears in the
// other's FIFO.
func Link(a, b *Local) {
	a.mu.Lock()
	a.peers = append(a.peers, b)
	a.mu.Unlock()

	b.mu.Lock()
	b.peers = append(b.peers, a)
	b.mu.Unlock()
}

// Write appends the encoded message to every peer's FIFO.
func (l *Local) Write(m *message.Message) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return comserr.WriteError("Local.Write", "strategy closed", nil)
	}
	peers := make([]*Local, len(l.peers))
	copy(peers, l.peers)
	l.mu.Unlock()

	encoded := m.ToString()
	for _, p := range peers {
		p.push(encoded)
	}
	return nil
}

func (l *Local) push(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.fifo = append(l.fifo, s)
}

// Read polls the FIFO until it is non-empty, the strategy is closed, or ctx
// is cancelled.
func (l *Local) Read(ctx context.Context) (*message.Message, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if s, ok := l.pop(); ok {
			return message.FromString(s)
		}
		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return nil, comserr.ReadError("Local.Read", "strategy closed", nil)
		}
		select {
		case <-ctx.Done():
			return nil, comserr.ReadError("Local.Read", "context cancelled", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Local) pop() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.fifo) == 0 {
		return "", false
	}
	head := l.fifo[0]
	l.fifo = l.fifo[1:]
	return head, true
}

// Close marks the strategy closed; a blocked Read returns promptly with an
// error on its next poll tick.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
