package licensesdk_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/licensing/pkg/licensesdk"
	"github.com/aussiebroadwan/licensing/pkg/slogx"
)

// call records one transport invocation.
type call struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string
}

// fakeTransport replays canned responses and records every call.
type fakeTransport struct {
	mu        sync.Mutex
	calls     []call
	responses []*licensesdk.Response
	err       error
}

func respond(status int, body string) *fakeTransport {
	return &fakeTransport{responses: []*licensesdk.Response{{Status: status, Body: body}}}
}

func (f *fakeTransport) then(status int, body string) *fakeTransport {
	f.responses = append(f.responses, &licensesdk.Response{Status: status, Body: body})
	return f
}

func (f *fakeTransport) record(method, path string, body any, headers map[string]string) (*licensesdk.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call{Method: method, Path: path, Body: body, Headers: headers})
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, errors.New("fake transport: no response queued")
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeTransport) Get(_ context.Context, path string, headers map[string]string) (*licensesdk.Response, error) {
	return f.record(http.MethodGet, path, nil, headers)
}

func (f *fakeTransport) Post(_ context.Context, path string, body any, headers map[string]string) (*licensesdk.Response, error) {
	return f.record(http.MethodPost, path, body, headers)
}

func (f *fakeTransport) Put(_ context.Context, path string, body any, headers map[string]string) (*licensesdk.Response, error) {
	return f.record(http.MethodPut, path, body, headers)
}

func (f *fakeTransport) Delete(_ context.Context, path string, headers map[string]string) (*licensesdk.Response, error) {
	return f.record(http.MethodDelete, path, nil, headers)
}

func (f *fakeTransport) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeTransport) Last() call {
	calls := f.Calls()
	return calls[len(calls)-1]
}

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// newClient returns a client on tr with a fixed clock, authenticated with
// token "T" unless tr is used for the login itself.
func newClient(t *testing.T, tr licensesdk.Transport, authenticated bool) *licensesdk.Client {
	t.Helper()
	c := licensesdk.NewClient("https://licenses.example.com",
		licensesdk.WithTransport(tr),
		licensesdk.WithClock(func() time.Time { return epoch }),
		licensesdk.WithLogger(slogx.Discard()),
	)
	if authenticated {
		c.SetToken("T", nil)
	}
	return c
}
