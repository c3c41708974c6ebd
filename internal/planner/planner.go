// Package planner estimates what a meeting costs and whether it is worth holding.
package planner

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MaxAttendees is the largest attendee list a plan accepts.
const MaxAttendees = 10

var (
	// ErrTooManyAttendees is returned when a meeting lists more than MaxAttendees.
	ErrTooManyAttendees = errors.New("too many attendees")
	// ErrInvalidDuration is returned for a zero or negative duration.
	ErrInvalidDuration = errors.New("duration must be positive")
	// ErrInvalidType is returned when the type is not Decision, Coordination or Info.
	ErrInvalidType = errors.New("invalid meeting type")
)

// Meeting types.
const (
	TypeDecision     = "Decision"
	TypeCoordination = "Coordination"
	TypeInfo         = "Info"
)

// Suggestions, from least to most worth meeting.
const (
	SuggestAsync   = "Do async memo"
	SuggestHuddle  = "15–30 min huddle (cap 5)"
	SuggestProceed = "Proceed; cap attendees (≤6)"
)

// Settings holds the rates used to cost a meeting.
type Settings struct {
	HoursPerYear         float64 `yaml:"hours_per_year"`
	InterpreterHourlyUSD float64 `yaml:"interpreter_hourly_usd"`
	USDToPLN             float64 `yaml:"usd_to_pln"`
	// Grades maps a grade to its annual cost in USD. Zero means not yet set.
	Grades map[string]float64 `yaml:"grades"`
}

// DefaultSettings returns the stock rates.
func DefaultSettings() Settings {
	return Settings{
		HoursPerYear:         1760,
		InterpreterHourlyUSD: 40,
		USDToPLN:             4.0,
		Grades: map[string]float64{
			"P5": 220000,
			"G7": 77000,
			"P4": 0,
			"P3": 0,
			"G6": 0,
			"G5": 0,
		},
	}
}

// HourlyRate returns the hourly USD cost of a grade. Unknown grades report false.
func (s Settings) HourlyRate(grade string) (float64, bool) {
	annual, ok := s.Grades[grade]
	if !ok {
		return 0, false
	}
	if s.HoursPerYear <= 0 {
		return 0, true
	}
	return annual / s.HoursPerYear, true
}

// Attendee is one row of the attendee list. Role is one of A/D/R/C.
type Attendee struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Grade string `json:"grade" yaml:"grade"`
	Role  string `json:"role" yaml:"role"`
}

// Meeting describes a proposed meeting.
type Meeting struct {
	Title             string     `json:"title" yaml:"title"`
	Type              string     `json:"type" yaml:"type"`
	DecisionNeeded    bool       `json:"decision_needed" yaml:"decision_needed"`
	PreRead           bool       `json:"pre_read" yaml:"pre_read"`
	DurationMinutes   int        `json:"duration_minutes" yaml:"duration_minutes"`
	Location          string     `json:"location" yaml:"location"`
	InterpreterNeeded bool       `json:"interpreter_needed" yaml:"interpreter_needed"`
	Date              string     `json:"date" yaml:"date"`
	StartTime         string     `json:"start_time" yaml:"start_time"`
	TimeZone          string     `json:"time_zone" yaml:"time_zone"`
	Attendees         []Attendee `json:"attendees" yaml:"attendees"`
}

// DefaultMeeting returns the template meeting.
func DefaultMeeting() Meeting {
	return Meeting{
		Type:              TypeDecision,
		DecisionNeeded:    true,
		PreRead:           true,
		DurationMinutes:   25,
		Location:          "Warsaw",
		InterpreterNeeded: false,
		Date:              "2025-01-01",
		StartTime:         "09:00",
		TimeZone:          "Europe/Warsaw",
	}
}

// Validate reports the first problem with m.
func (m Meeting) Validate() error {
	if m.DurationMinutes <= 0 {
		return fmt.Errorf("%w: %d minutes", ErrInvalidDuration, m.DurationMinutes)
	}
	switch m.Type {
	case TypeDecision, TypeCoordination, TypeInfo:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, m.Type)
	}
	if len(m.Attendees) > MaxAttendees {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyAttendees, len(m.Attendees), MaxAttendees)
	}
	return nil
}

// Summary is the outcome of evaluating a meeting.
type Summary struct {
	Attendees              int       `json:"attendees" yaml:"attendees"`
	AttendeeCostsUSD       []float64 `json:"attendee_costs_usd" yaml:"attendee_costs_usd"`
	CostUSD                float64   `json:"cost_usd" yaml:"cost_usd"`
	CostWithInterpreterUSD float64   `json:"cost_with_interpreter_usd" yaml:"cost_with_interpreter_usd"`
	CostPLN                float64   `json:"cost_pln" yaml:"cost_pln"`
	Score                  int       `json:"score" yaml:"score"`
	Suggestion             string    `json:"suggestion" yaml:"suggestion"`
	Warnings               []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Evaluate costs and scores m.
func Evaluate(s Settings, m Meeting) (Summary, error) {
	if err := m.Validate(); err != nil {
		return Summary{}, err
	}

	var sum Summary
	hours := float64(m.DurationMinutes) / 60

	for _, a := range m.Attendees {
		if strings.TrimSpace(a.Name) != "" {
			sum.Attendees++
		}

		rate, ok := s.HourlyRate(a.Grade)
		if !ok && a.Grade != "" {
			sum.Warnings = append(sum.Warnings, fmt.Sprintf("unknown grade %q for %s", a.Grade, a.Name))
		}
		cost := rate * hours
		sum.AttendeeCostsUSD = append(sum.AttendeeCostsUSD, cost)
		sum.CostUSD += cost
	}

	sum.CostWithInterpreterUSD = sum.CostUSD
	if m.InterpreterNeeded {
		sum.CostWithInterpreterUSD += s.InterpreterHourlyUSD * hours
	}
	sum.CostPLN = round2(sum.CostWithInterpreterUSD * s.USDToPLN)

	sum.Score = NecessityScore(m, sum.Attendees)
	sum.Suggestion = Suggest(sum.Score)
	return sum, nil
}

// NecessityScore rates from 0 to 100 how much m needs to be a meeting.
func NecessityScore(m Meeting, attendees int) int {
	score := 20
	if m.DecisionNeeded {
		score = 50
	}
	if m.PreRead {
		score += 15
	}
	score -= max(0, (attendees-5)*5)
	if m.DurationMinutes > 50 {
		score -= 10
	}
	return min(100, max(0, score))
}

// Suggest maps a necessity score to a recommendation.
func Suggest(score int) string {
	switch {
	case score < 40:
		return SuggestAsync
	case score < 70:
		return SuggestHuddle
	default:
		return SuggestProceed
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
