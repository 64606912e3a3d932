package line

import (
	"context"
	"errors"
	"sync"
)

type MockCall struct {
	To   string
	Text string
}

// MockClient is a configurable in-memory Client used by tests and by
// environments without LINE credentials.
type MockClient struct {
	mu    sync.Mutex
	Calls []MockCall

	// FailNext makes the next call return a mock error, then resets.
	FailNext bool
	// FailAll makes every call fail until cleared.
	FailAll bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls: make([]MockCall, 0),
	}
}

func (m *MockClient) Push(ctx context.Context, to, text string) (*PushResult, error) {
	if to == "" {
		return nil, ErrEmptyRecipient
	}
	if text == "" {
		return nil, ErrEmptyMessage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{To: to, Text: text})

	if m.FailAll || m.FailNext {
		m.FailNext = false
		return nil, errors.New("mock line push failure")
	}

	return &PushResult{
		StatusCode: 200,
		RequestID:  "mock-request-id",
		Body:       "{}",
	}, nil
}

func (m *MockClient) Multicast(ctx context.Context, to []string, text string) (*PushResult, error) {
	if len(to) == 0 {
		return nil, ErrEmptyRecipient
	}
	if len(to) > multicastLimit {
		return nil, ErrTooManyRecipients
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, uid := range to {
		m.Calls = append(m.Calls, MockCall{To: uid, Text: text})
	}

	if m.FailAll || m.FailNext {
		m.FailNext = false
		return nil, errors.New("mock line multicast failure")
	}

	return &PushResult{
		StatusCode: 200,
		RequestID:  "mock-request-id",
		Body:       "{}",
	}, nil
}

// CallCount reports how many deliveries the mock has seen.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
