package mocks

import (
	"sync"

	"github.com/taskflow/taskflow-api/internal/mailer"
)

// MockMailQueue implements mailer.Queue for testing
type MockMailQueue struct {
	// EnqueueFn allows test cases to mock the Enqueue behavior
	EnqueueFn func(msg mailer.Message) error

	// Err is returned by the default implementation when set
	Err error

	mu sync.Mutex

	// Enqueued records every message accepted by the default implementation
	Enqueued []mailer.Message
}

// Enqueue implements the mailer.Queue interface
func (m *MockMailQueue) Enqueue(msg mailer.Message) error {
	if m.EnqueueFn != nil {
		return m.EnqueueFn(msg)
	}

	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Enqueued = append(m.Enqueued, msg)
	return nil
}

// Messages returns a copy of the enqueued messages.
func (m *MockMailQueue) Messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mailer.Message, len(m.Enqueued))
	copy(out, m.Enqueued)
	return out
}
