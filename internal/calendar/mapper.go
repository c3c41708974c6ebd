package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/drewfead/meetplan/internal/meetings"
	"github.com/drewfead/meetplan/internal/planner"
	"google.golang.org/api/calendar/v3"
)

// DefaultTimeZone applies when a meeting names no time zone.
const DefaultTimeZone = "Europe/Warsaw"

// MeetingStart resolves when m begins. If m has no start time the first slot
// label is used instead.
func MeetingStart(m planner.Meeting, slots ...string) (time.Time, error) {
	tz := m.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown time zone %q: %w", tz, err)
	}

	label := m.StartTime
	if label == "" && len(slots) > 0 {
		label = slots[0]
	}
	if label == "" {
		return time.Time{}, fmt.Errorf("meeting %q has no start time", m.Title)
	}

	return meetings.ParseSlot(m.Date, label, loc)
}

// MapMeetingToEvent converts a planned meeting into a Google Calendar event.
func MapMeetingToEvent(m planner.Meeting, sum planner.Summary, start time.Time) *calendar.Event {
	summary := m.Title
	if summary == "" {
		summary = "Meeting"
	}
	end := start.Add(time.Duration(m.DurationMinutes) * time.Minute)

	event := &calendar.Event{
		Summary:     summary,
		Location:    m.Location,
		Description: planner.SummaryLine(m, sum) + "\n" + planner.SuggestionLine(sum),
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: start.Location().String(),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: end.Location().String(),
		},
	}

	for _, a := range m.Attendees {
		email := strings.TrimSpace(a.Email)
		if email == "" {
			continue
		}
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email:       email,
			DisplayName: a.Name,
		})
	}

	return event
}
