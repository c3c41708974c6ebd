package meetings

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/drewfead/meetplan/pkg/fetch"
)

// FindMeetingTimesPath is the endpoint that lists candidate meeting times.
const FindMeetingTimesPath = "/api/findMeetingTimes"

var (
	// ErrUnexpectedStatus is returned when the endpoint answers with anything but 200.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMalformedResponse is returned when the body is not a {"slots": [...]} object.
	ErrMalformedResponse = errors.New("malformed response")
)

// Times is the body returned by the find-meeting-times endpoint.
type Times struct {
	Slots []string `json:"slots" yaml:"slots"`
}

// Client reads meeting times through an injected fetcher.
type Client struct {
	fetcher fetch.Fetcher
}

// NewClient creates a client that issues requests through f.
func NewClient(f fetch.Fetcher) *Client {
	return &Client{fetcher: f}
}

// FindMeetingTimes fetches the candidate slots. Labels are returned exactly
// as the endpoint sent them.
func (c *Client) FindMeetingTimes(ctx context.Context) (*Times, error) {
	res, err := c.fetcher.Fetch(ctx, FindMeetingTimesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch meeting times: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		res.Close()
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, res.StatusCode, FindMeetingTimesPath)
	}

	var body struct {
		Slots *[]string `json:"slots"`
	}
	if err := res.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if body.Slots == nil {
		return nil, fmt.Errorf("%w: missing slots", ErrMalformedResponse)
	}

	return &Times{Slots: *body.Slots}, nil
}
