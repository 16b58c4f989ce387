package transport

import (
	"context"
	"sync"
)

// Mock is an in-process Transport for delivery engine tests. Events
// are injected with Emit; sent bytes are captured for assertions.
type Mock struct {
	// SendFunc overrides Send's result. Send records every call, with or
	// without SendFunc; if SendFunc is nil, Send always succeeds.
	SendFunc func(ctx context.Context, peer string, data []byte) error

	mu      sync.Mutex
	sent    []SentCall
	events  chan Event
	closed  bool
}

// SentCall records one Send invocation, whether or not it succeeded.
type SentCall struct {
	Peer string
	Data []byte
}

// NewMock returns a ready-to-use Mock with a buffered event channel.
func NewMock() *Mock {
	return &Mock{events: make(chan Event, 64)}
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Send(ctx context.Context, peer string, data []byte) error {
	m.mu.Lock()
	m.sent = append(m.sent, SentCall{Peer: peer, Data: data})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, peer, data)
	}
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Emit injects an event into the mock's stream, as if the network
// had produced it.
func (m *Mock) Emit(e Event) {
	m.events <- e
}

// SentMessages returns every Send call so far, in order, including
// calls whose SendFunc returned an error.
func (m *Mock) SentMessages() []SentCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentCall, len(m.sent))
	copy(out, m.sent)
	return out
}

// Reset clears captured sends (useful between test cases).
func (m *Mock) Reset() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}
