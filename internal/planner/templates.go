package planner

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Template file names written by WriteTemplates.
const (
	DirectoryTemplate   = "directory_template.csv"
	RosterTemplate      = "roster_template.csv"
	DecisionLogTemplate = "decision_log.csv"
)

var decisionLogHeader = []string{"date", "title", "decision", "owner", "attendees", "cost_usd", "score", "suggestion"}

var templates = []struct {
	name string
	rows [][]string
}{
	{
		name: DirectoryTemplate,
		rows: [][]string{
			{"name", "email", "unit", "location", "grade_band", "role_tags", "manager_email"},
			{"", "", "", "", "P5", "", ""},
			{"", "", "", "", "G7", "", ""},
		},
	},
	{
		name: RosterTemplate,
		rows: [][]string{
			{"email", "workdays", "start_local", "end_local", "timezone", "exceptions", "travel_windows"},
			{"", "Mon-Fri", "09:00", "17:00", "Europe/Warsaw", "", ""},
			{"", "Mon-Fri", "09:00", "17:00", "Europe/Warsaw", "", ""},
		},
	},
	{
		name: DecisionLogTemplate,
		rows: [][]string{
			decisionLogHeader,
			{"", "", "", "", "", "", "", ""},
		},
	},
}

// WriteTemplates writes the CSV templates into dir and returns their paths.
func WriteTemplates(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create template directory: %w", err)
	}

	paths := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		path := filepath.Join(dir, tmpl.name)
		if err := writeCSV(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, tmpl.rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Decision is one row of the decision log.
type Decision struct {
	Date     time.Time
	Title    string
	Decision string
	Owner    string
	Summary  Summary
}

// AppendDecision appends d to the decision log at path, writing the header
// first when the file does not exist yet.
func AppendDecision(path string, d Decision) error {
	var rows [][]string
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		rows = append(rows, decisionLogHeader)
	} else if err != nil {
		return fmt.Errorf("unable to stat decision log: %w", err)
	}

	rows = append(rows, []string{
		d.Date.Format("2006-01-02"),
		d.Title,
		d.Decision,
		d.Owner,
		strconv.Itoa(d.Summary.Attendees),
		strconv.FormatFloat(d.Summary.CostWithInterpreterUSD, 'f', 2, 64),
		strconv.Itoa(d.Summary.Score),
		d.Summary.Suggestion,
	})

	return writeCSV(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, rows)
}

func writeCSV(path string, flag int, rows [][]string) error {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return f.Close()
}
