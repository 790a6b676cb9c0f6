package speech

import (
	"context"
	"sync"
)

// Mock implements Recognizer for tests and keyboard-driven development.
// Transcript events are injected with Say.
type Mock struct {
	mu           sync.Mutex
	running      bool
	onTranscript func(text string, isFinal bool)
	onError      func(err error)
}

// NewMockRecognizer creates an idle mock.
func NewMockRecognizer() *Mock {
	return &Mock{}
}

// Say injects a transcript event as if the gateway produced it.
func (m *Mock) Say(text string, isFinal bool) {
	m.mu.Lock()
	fn := m.onTranscript
	running := m.running
	m.mu.Unlock()
	if running && fn != nil {
		fn(text, isFinal)
	}
}

// Fail injects an error event.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	fn := m.onError
	m.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Start implements Recognizer.
func (m *Mock) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrAlreadyStarted
	}
	m.running = true
	return nil
}

// Stop implements Recognizer.
func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return ErrNotStarted
	}
	m.running = false
	return nil
}

// OnTranscript implements Recognizer.
func (m *Mock) OnTranscript(fn func(text string, isFinal bool)) {
	m.mu.Lock()
	m.onTranscript = fn
	m.mu.Unlock()
}

// OnError implements Recognizer.
func (m *Mock) OnError(fn func(err error)) {
	m.mu.Lock()
	m.onError = fn
	m.mu.Unlock()
}

// Ensure Mock implements Recognizer
var _ Recognizer = (*Mock)(nil)
