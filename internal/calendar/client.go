package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// PrimaryCalendar is used when no calendar ID is configured.
const PrimaryCalendar = "primary"

// Client wraps the Google Calendar API service
type Client struct {
	service *calendar.Service
}

// NewClient creates a new Google Calendar API client.
// Optionally accepts an endpoint URL for testing with mock servers.
func NewClient(ctx context.Context, httpClient *http.Client, endpoint ...string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}

	if len(endpoint) > 0 && endpoint[0] != "" {
		opts = append(opts, option.WithEndpoint(endpoint[0]))
	}

	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	return &Client{
		service: srv,
	}, nil
}

func calendarOrPrimary(calendarID string) string {
	if calendarID == "" {
		return PrimaryCalendar
	}
	return calendarID
}

// CreateEvent inserts event into the calendar and returns the stored event.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	created, err := c.service.Events.Insert(calendarOrPrimary(calendarID), event).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create event: %w", err)
	}
	return created, nil
}

// GetEvent returns a single event.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	event, err := c.service.Events.Get(calendarOrPrimary(calendarID), eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get event: %w", err)
	}
	return event, nil
}

// DeleteEvent cancels an event and notifies its attendees.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.service.Events.Delete(calendarOrPrimary(calendarID), eventID).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to delete event: %w", err)
	}
	return nil
}

// ListEvents streams the single events of a calendar that end after `after`
// and start before `before`, ordered by start time. Zero times leave that
// side open.
func (c *Client) ListEvents(ctx context.Context, calendarID string, after, before time.Time) (<-chan *calendar.Event, <-chan error) {
	eventsChan := make(chan *calendar.Event)
	errChan := make(chan error, 1)

	go func() {
		defer close(eventsChan)
		defer close(errChan)

		call := c.service.Events.List(calendarOrPrimary(calendarID)).Context(ctx).SingleEvents(true).OrderBy("startTime")
		if !after.IsZero() {
			call = call.TimeMin(after.Format(time.RFC3339))
		}
		if !before.IsZero() {
			call = call.TimeMax(before.Format(time.RFC3339))
		}

		pageToken := ""
		for {
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}

			events, err := call.Do()
			if err != nil {
				errChan <- fmt.Errorf("unable to retrieve events: %w", err)
				return
			}

			for _, event := range events.Items {
				select {
				case <-ctx.Done():
					errChan <- ctx.Err()
					return
				case eventsChan <- event:
				}
			}

			pageToken = events.NextPageToken
			if pageToken == "" {
				return
			}
		}
	}()

	return eventsChan, errChan
}

// Conflicts returns the events already booked in the calendar that overlap
// [start, end). All-day events cover their whole date range, read in the
// location of start.
func (c *Client) Conflicts(ctx context.Context, calendarID string, start, end time.Time) ([]*calendar.Event, error) {
	eventsChan, errChan := c.ListEvents(ctx, calendarID, start, end)

	var conflicts []*calendar.Event
	for event := range eventsChan {
		evStart, evEnd, ok := eventBounds(event, start.Location())
		if !ok {
			continue
		}
		if evStart.Before(end) && evEnd.After(start) {
			conflicts = append(conflicts, event)
		}
	}
	if err := <-errChan; err != nil {
		return nil, err
	}
	return conflicts, nil
}

// eventBounds returns when event starts and ends. Date-only bounds (all-day
// events, end exclusive) are midnight in loc.
func eventBounds(event *calendar.Event, loc *time.Location) (time.Time, time.Time, bool) {
	start, ok := parseEventTime(event.Start, loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok := parseEventTime(event.End, loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseEventTime(t *calendar.EventDateTime, loc *time.Location) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	if t.DateTime != "" {
		v, err := time.Parse(time.RFC3339, t.DateTime)
		return v, err == nil
	}
	if t.Date != "" {
		v, err := time.ParseInLocation(time.DateOnly, t.Date, loc)
		return v, err == nil
	}
	return time.Time{}, false
}
