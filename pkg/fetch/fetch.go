package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	// ErrFetch wraps transport failures.
	ErrFetch = errors.New("fetch failed")
	// ErrBodyConsumed is returned when a response body is decoded twice.
	ErrBodyConsumed = errors.New("response body already consumed")
)

// Fetcher retrieves the resource at a URL. The returned Response has not been
// decoded yet; callers decode it with JSON or Decode.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// Response is the pending result of a Fetch.
type Response struct {
	StatusCode int
	Header     http.Header

	mu       sync.Mutex
	body     io.ReadCloser
	consumed bool
}

// NewResponse wraps a status code, header and body. A nil body reads as empty.
func NewResponse(statusCode int, header http.Header, body io.ReadCloser) *Response {
	if header == nil {
		header = make(http.Header)
	}
	if body == nil {
		body = http.NoBody
	}
	return &Response{
		StatusCode: statusCode,
		Header:     header,
		body:       body,
	}
}

// JSON decodes the body as a JSON object into generic structured data.
func (r *Response) JSON() (*structpb.Struct, error) {
	b, err := r.readBody()
	if err != nil {
		return nil, err
	}

	data := &structpb.Struct{}
	if err := protojson.Unmarshal(b, data); err != nil {
		return nil, fmt.Errorf("unable to decode JSON body: %w", err)
	}
	return data, nil
}

// Decode decodes the JSON body into v.
func (r *Response) Decode(v any) error {
	b, err := r.readBody()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unable to decode JSON body: %w", err)
	}
	return nil
}

// Close releases the body without reading it.
func (r *Response) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumed {
		return nil
	}
	r.consumed = true
	return r.body.Close()
}

func (r *Response) readBody() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumed {
		return nil, ErrBodyConsumed
	}
	r.consumed = true
	defer r.body.Close()

	b, err := io.ReadAll(r.body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	return b, nil
}
