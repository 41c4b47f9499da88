// Package testutil provides testing utilities for the YUDL client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock page response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockYUDL is a configurable mock YUDL API server for testing. Each path
// serves a scripted list of pages indexed by the page query parameter;
// pages past the end of the script answer with an empty JSON array.
type MockYUDL struct {
	server *httptest.Server
	mu     sync.RWMutex
	pages  map[string][]MockResponse

	// Tracking
	RequestCount int
	requested    map[string][]int
	lastUser     string
	lastPassword string
}

// NewMockYUDL creates a new mock YUDL server.
func NewMockYUDL() *MockYUDL {
	mock := &MockYUDL{
		pages:     make(map[string][]MockResponse),
		requested: make(map[string][]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))

	return mock
}

func (m *MockYUDL) handle(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = -1
	}

	m.mu.Lock()
	m.RequestCount++
	m.requested[r.URL.Path] = append(m.requested[r.URL.Path], page)
	m.lastUser, m.lastPassword, _ = r.BasicAuth()
	script := m.pages[r.URL.Path]
	m.mu.Unlock()

	if page < 0 || page >= len(script) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[]`))
		return
	}

	resp := script[page]
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// URL returns the mock server URL.
func (m *MockYUDL) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockYUDL) Close() {
	m.server.Close()
}

// SetPages scripts the responses for path, one per page starting at page 0.
func (m *MockYUDL) SetPages(path string, pages ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[path] = pages
}

// RequestedPages returns the page indices requested for path, in order.
func (m *MockYUDL) RequestedPages(path string) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.requested[path]...)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockYUDL) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// LastBasicAuth returns the basic auth credentials of the last request.
func (m *MockYUDL) LastBasicAuth() (string, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUser, m.lastPassword
}

// NewJSONResponse creates a standard 200 OK response with a JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewStatusResponse creates a response with the given status and no body.
func NewStatusResponse(statusCode int) MockResponse {
	return MockResponse{StatusCode: statusCode}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
