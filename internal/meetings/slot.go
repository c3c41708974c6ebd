package meetings

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	slotLayout = "15:04"
)

// ParseSlot combines a YYYY-MM-DD date and an HH:MM slot label into a time in loc.
func ParseSlot(date, label string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	t, err := time.ParseInLocation(dateLayout+" "+slotLayout, date+" "+label, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot %q on %q: %w", label, date, err)
	}
	return t, nil
}
