package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const defaultTimeout = 10 * time.Second

// HTTPFetcher fetches URLs over HTTP. Relative URLs are resolved against the
// base URL it was created with.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
}

type httpOptions struct {
	client  *http.Client
	token   string
	timeout time.Duration
}

// Option configures an HTTPFetcher.
type Option func(*httpOptions)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *httpOptions) { o.client = c }
}

// WithBearerToken authenticates every request with a static bearer token.
func WithBearerToken(token string) Option {
	return func(o *httpOptions) { o.token = token }
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(o *httpOptions) { o.timeout = d }
}

// NewHTTPFetcher creates a fetcher rooted at baseURL. An empty baseURL means
// only absolute URLs can be fetched.
func NewHTTPFetcher(ctx context.Context, baseURL string, opts ...Option) (*HTTPFetcher, error) {
	o := httpOptions{
		client:  http.DefaultClient,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var base *url.URL
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
		if !u.IsAbs() {
			return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
		}
		base = u
	}

	client := o.client
	if o.token != "" {
		// oauth2.NewClient layers the token transport over the client in ctx.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: o.token,
			TokenType:   "Bearer",
		}))
	}
	if o.timeout > 0 {
		c := *client
		c.Timeout = o.timeout
		client = &c
	}

	return &HTTPFetcher{
		base:   base,
		client: client,
	}, nil
}

// Fetch issues a GET request for rawURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	target, err := f.resolve(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("fetching", "url", target)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	return NewResponse(resp.StatusCode, resp.Header, resp.Body), nil
}

func (f *HTTPFetcher) resolve(rawURL string) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL %q: %w", ErrFetch, rawURL, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if f.base == nil {
		return "", fmt.Errorf("%w: relative URL %q without a base URL", ErrFetch, rawURL)
	}
	return f.base.ResolveReference(ref).String(), nil
}
