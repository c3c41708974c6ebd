package caltest

import (
	"context"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func newService(t *testing.T, server *Server) *calendar.Service {
	t.Helper()

	svc, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(&http.Client{}),
		option.WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("failed to create calendar service: %v", err)
	}
	return svc
}

func timedEvent(summary string, start time.Time, d time.Duration) *calendar.Event {
	return &calendar.Event{
		Summary: summary,
		Start:   &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:     &calendar.EventDateTime{DateTime: start.Add(d).Format(time.RFC3339)},
	}
}

func TestServer_InsertAndGet(t *testing.T) {
	server := NewServer()
	defer server.Close()
	svc := newService(t, server)

	created, err := svc.Events.Insert("primary", timedEvent("Standup", time.Now(), 15*time.Minute)).Do()
	if err != nil {
		t.Fatalf("failed to insert event: %v", err)
	}
	if created.Id != "event1" {
		t.Errorf("expected ID event1, got %q", created.Id)
	}
	if created.Status != "confirmed" {
		t.Errorf("expected status 'confirmed', got %q", created.Status)
	}
	if created.HtmlLink == "" {
		t.Error("expected HtmlLink to be set")
	}

	fetched, err := svc.Events.Get("primary", created.Id).Do()
	if err != nil {
		t.Fatalf("failed to get event: %v", err)
	}
	if fetched.Summary != "Standup" {
		t.Errorf("expected summary 'Standup', got %q", fetched.Summary)
	}
}

func TestServer_ListFiltersAndOrders(t *testing.T) {
	server := NewServer()
	defer server.Close()
	svc := newService(t, server)

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	server.AddEvent("primary", timedEvent("late", base.Add(3*time.Hour), time.Hour))
	server.AddEvent("primary", timedEvent("early", base.Add(-2*time.Hour), time.Hour))
	server.AddEvent("primary", timedEvent("overlapping", base.Add(-30*time.Minute), time.Hour))
	server.AddEvent("primary", timedEvent("inside", base.Add(time.Hour), time.Hour))
	server.AddEvent("other", timedEvent("elsewhere", base, time.Hour))

	events, err := svc.Events.List("primary").
		TimeMin(base.Format(time.RFC3339)).
		TimeMax(base.Add(3 * time.Hour).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}

	var got []string
	for _, e := range events.Items {
		got = append(got, e.Summary)
	}
	want := []string{"overlapping", "inside"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestServer_ListPagination(t *testing.T) {
	server := NewServer()
	defer server.Close()
	svc := newService(t, server)

	base := time.Now()
	for i := 0; i < 7; i++ {
		server.AddEvent("primary", timedEvent("event", base.Add(time.Duration(i)*time.Hour), time.Hour))
	}

	var all []*calendar.Event
	pageToken := ""
	pages := 0
	for {
		call := svc.Events.List("primary").MaxResults(3)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		events, err := call.Do()
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		pages++
		all = append(all, events.Items...)
		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}

	if len(all) != 7 {
		t.Errorf("expected 7 events, got %d", len(all))
	}
	if pages != 3 {
		t.Errorf("expected 3 pages, got %d", pages)
	}
}

func TestServer_DeleteAndReset(t *testing.T) {
	server := NewServer()
	defer server.Close()
	svc := newService(t, server)

	created, err := svc.Events.Insert("primary", timedEvent("Review", time.Now(), time.Hour)).Do()
	if err != nil {
		t.Fatalf("failed to insert event: %v", err)
	}

	if err := svc.Events.Delete("primary", created.Id).Do(); err != nil {
		t.Fatalf("failed to delete event: %v", err)
	}
	if _, err := svc.Events.Get("primary", created.Id).Do(); err == nil {
		t.Error("expected error when getting deleted event")
	}
	if err := svc.Events.Delete("primary", created.Id).Do(); err == nil {
		t.Error("expected error when deleting twice")
	}

	server.AddEvent("primary", timedEvent("Seeded", time.Now(), time.Hour))
	server.Reset()

	if n := len(server.Events("primary")); n != 0 {
		t.Errorf("expected 0 events after reset, got %d", n)
	}
}

func TestServer_DefaultPageSize(t *testing.T) {
	server := NewServer()
	defer server.Close()
	svc := newService(t, server)

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := range 3 {
		server.AddEvent("primary", timedEvent("e", base.Add(time.Duration(i)*time.Hour), time.Hour))
	}
	server.SetPageSize(2)

	first, err := svc.Events.List("primary").Do()
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(first.Items) != 2 || first.NextPageToken == "" {
		t.Fatalf("expected a 2-event page with a next token, got %d items, token %q", len(first.Items), first.NextPageToken)
	}

	second, err := svc.Events.List("primary").PageToken(first.NextPageToken).Do()
	if err != nil {
		t.Fatalf("failed to list second page: %v", err)
	}
	if len(second.Items) != 1 || second.NextPageToken != "" {
		t.Errorf("expected a final 1-event page, got %d items, token %q", len(second.Items), second.NextPageToken)
	}

	// maxResults wins over the configured page size.
	all, err := svc.Events.List("primary").MaxResults(3).Do()
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(all.Items) != 3 {
		t.Errorf("expected 3 events with maxResults=3, got %d", len(all.Items))
	}
}

func TestServer_ListAllDayEvents(t *testing.T) {
	server := NewServer()
	defer server.Close()
	svc := newService(t, server)

	server.AddEvent("primary", &calendar.Event{
		Summary: "holiday",
		Start:   &calendar.EventDateTime{Date: "2025-01-01"},
		End:     &calendar.EventDateTime{Date: "2025-01-02"},
	})

	inside, err := svc.Events.List("primary").
		TimeMin("2025-01-01T09:00:00Z").TimeMax("2025-01-01T10:00:00Z").Do()
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(inside.Items) != 1 {
		t.Errorf("expected the all-day event inside its date, got %d", len(inside.Items))
	}

	outside, err := svc.Events.List("primary").
		TimeMin("2025-01-02T09:00:00Z").TimeMax("2025-01-02T10:00:00Z").Do()
	if err != nil {
		t.Fatalf("failed to list events: %v", err)
	}
	if len(outside.Items) != 0 {
		t.Errorf("expected no events the next day, got %d", len(outside.Items))
	}
}
