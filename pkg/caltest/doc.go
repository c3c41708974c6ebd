// Package caltest provides a fake Google Calendar API v3 server for tests.
//
// Only the Events endpoints used by meetplan are served:
//
//   - Insert: POST /calendars/{calendarId}/events
//   - List:   GET /calendars/{calendarId}/events (timeMin, timeMax, orderBy, maxResults, pageToken)
//   - Get:    GET /calendars/{calendarId}/events/{eventId}
//   - Delete: DELETE /calendars/{calendarId}/events/{eventId}
//
// Point a calendar client at it with option.WithEndpoint:
//
//	server := caltest.NewServer()
//	defer server.Close()
//
//	svc, err := calendar.NewService(ctx,
//	    option.WithHTTPClient(&http.Client{}),
//	    option.WithEndpoint(server.URL))
//
// Seed and inspect state with AddEvent and Events; clear it with Reset.
package caltest
