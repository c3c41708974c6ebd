package planner

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SummaryLine renders a one-line summary for invites and reports.
func SummaryLine(m Meeting, sum Summary) string {
	return fmt.Sprintf("Title: %s | Type: %s | Duration: %d min | Location: %s | Attendees: %d | Cost: $%s (%s PLN)",
		m.Title, m.Type, m.DurationMinutes, m.Location, sum.Attendees,
		thousands(sum.CostWithInterpreterUSD), thousands(sum.CostPLN))
}

// SuggestionLine renders the suggestion and the score behind it.
func SuggestionLine(sum Summary) string {
	return fmt.Sprintf("Suggestion: %s | Score: %d", sum.Suggestion, sum.Score)
}

// thousands rounds v to a whole number and groups digits by three.
func thousands(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}

	digits := strconv.FormatInt(n, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}

// LoadMeeting reads a meeting from a YAML file. Fields missing from the file
// keep their DefaultMeeting values.
func LoadMeeting(path string) (Meeting, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Meeting{}, fmt.Errorf("unable to read meeting file: %w", err)
	}

	m := DefaultMeeting()
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Meeting{}, fmt.Errorf("unable to parse meeting file: %w", err)
	}
	return m, nil
}
