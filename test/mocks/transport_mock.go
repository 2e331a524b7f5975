// Package mocks provides mock implementations of port interfaces for testing.
// In hexagonal architecture, ports define the contracts between the core domain
// and external adapters. Mocks implement these interfaces to enable isolated testing.
package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

// MockTransport implements ports.Transport for testing.
// Responses and errors are stubbed per operation name; every request is
// recorded so tests can assert on the exact wire shape the gateways build.
type MockTransport struct {
	mu sync.RWMutex

	// Call tracking for verification
	Requests []ports.Request

	responses map[string]*ports.Response
	errors    map[string]error
}

// Ensure MockTransport implements ports.Transport at compile time.
var _ ports.Transport = (*MockTransport)(nil)

func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[string]*ports.Response),
		errors:    make(map[string]error),
	}
}

// RespondJSON stubs a JSON answer for an operation.
func (m *MockTransport) RespondJSON(operation string, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("mocks: marshal stub for %s: %v", operation, err))
	}
	m.RespondRaw(operation, status, http.Header{"Content-Type": {"application/json"}}, data)
}

// RespondRaw stubs an arbitrary answer for an operation.
func (m *MockTransport) RespondRaw(operation string, status int, header http.Header, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[operation] = &ports.Response{Status: status, Header: header, Body: body}
}

// Fail makes an operation return err.
func (m *MockTransport) Fail(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[operation] = err
}

func (m *MockTransport) Do(ctx context.Context, req *ports.Request) (*ports.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, *req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.errors[req.Operation]; ok {
		return nil, err
	}
	resp, ok := m.responses[req.Operation]
	if !ok {
		return nil, fmt.Errorf("mocks: no response stubbed for %s", req.Operation)
	}
	return resp, nil
}

// LastRequest returns the most recent request.
func (m *MockTransport) LastRequest() (ports.Request, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Requests) == 0 {
		return ports.Request{}, false
	}
	return m.Requests[len(m.Requests)-1], true
}

// CallCount returns how many requests named operation were made.
func (m *MockTransport) CallCount(operation string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.Requests {
		if r.Operation == operation {
			n++
		}
	}
	return n
}

// Reset clears all stubs and call tracking.
// Use this between tests to ensure isolation.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = nil
	m.responses = make(map[string]*ports.Response)
	m.errors = make(map[string]error)
}
