package fetchtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/drewfead/meetplan/pkg/fetch"
)

// Call captures a single Fetch issued through a Fake.
type Call struct {
	URL string
}

// Fake is a fetch.Fetcher that returns programmed responses and records calls.
// It never performs network I/O.
type Fake struct {
	mu     sync.Mutex
	status int
	body   []byte
	err    error
	calls  []Call
}

var _ fetch.Fetcher = (*Fake)(nil)

// New creates an unprogrammed Fake. Until programmed it resolves to an empty
// JSON object with status 200.
func New() *Fake {
	f := &Fake{}
	f.Reset()
	return f
}

// Resolve programs every later Fetch to succeed with the JSON encoding of v.
// It panics if v cannot be encoded, which is a bug in the test.
func (f *Fake) Resolve(v any) *Fake {
	return f.ResolveStatus(http.StatusOK, v)
}

// ResolveStatus is like Resolve with an explicit HTTP status code.
func (f *Fake) ResolveStatus(status int, v any) *Fake {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("fetchtest: cannot encode response: %v", err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.status = status
	f.body = b
	f.err = nil
	return f
}

// ResolveRaw programs a literal body, for malformed-payload tests.
func (f *Fake) ResolveRaw(status int, body []byte) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.status = status
	f.body = bytes.Clone(body)
	f.err = nil
	return f
}

// Reject programs every later Fetch to fail with err.
func (f *Fake) Reject(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.err = err
	return f
}

// Fetch records the call and returns the programmed response.
func (f *Fake) Fetch(ctx context.Context, url string) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{URL: url})

	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := http.Header{"Content-Type": []string{"application/json"}}
	return fetch.NewResponse(f.status, header, io.NopCloser(bytes.NewReader(f.body))), nil
}

// Calls returns a copy of the recorded calls in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	calls := make([]Call, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// CallCount returns how many times Fetch was called.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Reset discards recorded calls and programming.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.status = http.StatusOK
	f.body = []byte("{}")
	f.err = nil
	f.calls = nil
}
