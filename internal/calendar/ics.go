package calendar

import (
	"fmt"
	"os"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
)

// ICSFile is the default name of the invite file written by WriteICS.
const ICSFile = "meeting_invite.ics"

const icsProductID = "-//meetplan//meeting planner//EN"

// EncodeICS renders event as an iCalendar invite. Events without an ID get a
// random UID.
func EncodeICS(event *calendar.Event) (*ics.Calendar, error) {
	start, end, ok := eventBounds(event, time.UTC)
	if !ok {
		return nil, fmt.Errorf("event %q has no start and end time", event.Summary)
	}

	uid := event.Id
	if uid == "" {
		uid = uuid.NewString()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId(icsProductID)

	vevent := cal.AddEvent(uid)
	vevent.SetDtStampTime(time.Now())
	vevent.SetStartAt(start)
	vevent.SetEndAt(end)
	vevent.SetSummary(event.Summary)
	if event.Location != "" {
		vevent.SetLocation(event.Location)
	}
	if event.Description != "" {
		vevent.SetDescription(event.Description)
	}
	for _, a := range event.Attendees {
		params := []ics.PropertyParameter{
			ics.ParticipationRoleReqParticipant,
			ics.WithRSVP(true),
		}
		if a.DisplayName != "" {
			params = append(params, ics.WithCN(a.DisplayName))
		}
		vevent.AddAttendee(a.Email, params...)
	}
	return cal, nil
}

// WriteICS writes event as an iCalendar invite to path.
func WriteICS(path string, event *calendar.Event) error {
	cal, err := EncodeICS(event)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("unable to create invite file: %w", err)
	}
	defer f.Close()

	if err := cal.SerializeTo(f); err != nil {
		return fmt.Errorf("unable to write invite file: %w", err)
	}
	return f.Close()
}
