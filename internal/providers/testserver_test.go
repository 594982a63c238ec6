package providers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type capturedRequest struct {
	Method  string
	Path    string
	Query   string
	Header  http.Header
	Payload map[string]any
}

type fakeVendor struct {
	mu       sync.Mutex
	requests []capturedRequest
}

func (f *fakeVendor) last(t *testing.T) capturedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no request reached the fake vendor")
	}
	return f.requests[len(f.requests)-1]
}

// newFakeVendor answers every request with status and body and records what it received.
func newFakeVendor(t *testing.T, status int, body string) (*httptest.Server, *fakeVendor) {
	t.Helper()
	f := &fakeVendor{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(buf, &payload)
		f.mu.Lock()
		f.requests = append(f.requests, capturedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Header:  r.Header.Clone(),
			Payload: payload,
		})
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, f
}

func dig(t *testing.T, v any, keys ...any) any {
	t.Helper()
	cur := v
	for _, key := range keys {
		switch k := key.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				t.Fatalf("expected object at %v, got %T", k, cur)
			}
			cur = m[k]
		case int:
			list, ok := cur.([]any)
			if !ok || k >= len(list) {
				t.Fatalf("expected list with index %d, got %#v", k, cur)
			}
			cur = list[k]
		}
	}
	return cur
}
