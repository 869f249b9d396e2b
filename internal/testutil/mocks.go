package testutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/livinlefevreloca/stockroom/internal/gateway"
	"github.com/livinlefevreloca/stockroom/internal/ops"
)

// ErrOffline is the transport error used by MockGateway failures
var ErrOffline = errors.New("dial tcp: connect: network is unreachable")

// MockGateway provides a scripted gateway for testing
type MockGateway struct {
	mu        sync.Mutex
	calls     []ops.Operation
	responses map[string]ops.Response
	failFrom  int // calls with index >= failFrom fail; -1 disables
	failing   map[string]bool
	malformed map[string]bool
	onCall    func(n int)
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		calls:     make([]ops.Operation, 0),
		responses: make(map[string]ops.Response),
		failFrom:  -1,
		failing:   make(map[string]bool),
		malformed: make(map[string]bool),
	}
}

// SetResponse sets the response returned for an action
func (m *MockGateway) SetResponse(action string, resp ops.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[action] = resp
}

// SetOffline makes every call fail with a network error
func (m *MockGateway) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offline {
		m.failFrom = 0
	} else {
		m.failFrom = -1
	}
}

// FailFromCall makes the n-th call (0-based) and every later call fail
func (m *MockGateway) FailFromCall(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFrom = n
}

// FailAction makes calls for action fail with a network error
func (m *MockGateway) FailAction(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[action] = true
}

// MalformAction makes calls for action fail with a malformed response error
func (m *MockGateway) MalformAction(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformed[action] = true
}

// Do behaves like the HTTP client: a context cancelled before the reply
// arrives fails the call with a network error.
func (m *MockGateway) Do(ctx context.Context, action string, params ops.Params) (ops.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.calls)
	m.calls = append(m.calls, ops.Operation{Action: action, Params: params})

	if m.onCall != nil {
		m.onCall(n)
	}
	if err := ctx.Err(); err != nil {
		return nil, &gateway.NetworkError{Action: action, Err: err}
	}

	if (m.failFrom >= 0 && n >= m.failFrom) || m.failing[action] {
		return nil, &gateway.NetworkError{Action: action, Err: ErrOffline}
	}
	if m.malformed[action] {
		return nil, &gateway.MalformedResponseError{Action: action, Err: fmt.Errorf("invalid character '<' looking for beginning of value")}
	}

	resp, ok := m.responses[action]
	if !ok {
		resp = ops.Response{"status": "OK"}
	}
	return resp, nil
}

// OnCall runs fn with the 0-based call index while each call is in flight
func (m *MockGateway) OnCall(fn func(n int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCall = fn
}

// Calls returns a copy of every call received, in order
func (m *MockGateway) Calls() []ops.Operation {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]ops.Operation, len(m.calls))
	copy(result, m.calls)
	return result
}

func (m *MockGateway) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// TestLogger provides a logger that captures logs for testing
type TestLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

func NewTestLogger() *TestLogger {
	return &TestLogger{
		entries: make([]LogEntry, 0),
	}
}

func (l *TestLogger) log(level, msg string, fields ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Level:   level,
		Message: msg,
		Fields:  make(map[string]interface{}),
	}

	for i := 0; i+1 < len(fields); i += 2 {
		entry.Fields[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}

	l.entries = append(l.entries, entry)
}

func (l *TestLogger) GetEntriesByLevel(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]LogEntry, 0)
	for _, entry := range l.entries {
		if entry.Level == level {
			result = append(result, entry)
		}
	}
	return result
}

func (l *TestLogger) HasError() bool {
	return len(l.GetEntriesByLevel("ERROR")) > 0
}

func (l *TestLogger) HasWarning() bool {
	return len(l.GetEntriesByLevel("WARN")) > 0
}

// Logger returns a *slog.Logger that writes to this TestLogger
func (l *TestLogger) Logger() *slog.Logger {
	return slog.New(&testLogHandler{logger: l})
}

// testLogHandler implements slog.Handler for TestLogger
type testLogHandler struct {
	logger *TestLogger
	attrs  []slog.Attr
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]interface{}, 0, (r.NumAttrs()+len(h.attrs))*2)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, a.Key, a.Value.Any())
		return true
	})
	for _, attr := range h.attrs {
		fields = append(fields, attr.Key, attr.Value.Any())
	}

	h.logger.log(r.Level.String(), r.Message, fields...)
	return nil
}

func (h *testLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &testLogHandler{logger: h.logger, attrs: newAttrs}
}

// Groups are flattened; tests only match on keys
func (h *testLogHandler) WithGroup(_ string) slog.Handler {
	return h
}
