package planner

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/xuri/excelize/v2"
)

// WorkbookFile is the name of the planning workbook written by WriteWorkbook.
const WorkbookFile = "meeting_planner_template.xlsx"

// Workbook sheet names.
const (
	SettingsSheet = "Settings"
	MeetingSheet  = "Meeting"
	ExportsSheet  = "Exports"
)

// stockGrades fixes the order of the grades every workbook starts with.
var stockGrades = []string{"P5", "G7", "P4", "P3", "G6", "G5"}

const (
	gradeFirstRow    = 7
	attendeeFirstRow = 16
)

// WriteWorkbook writes the planning workbook for m into dir and returns its
// path. The workbook recomputes cost, score and suggestion with spreadsheet
// formulas, so it stays live when edited.
func WriteWorkbook(dir string, s Settings, m Meeting) (string, error) {
	if len(m.Attendees) > MaxAttendees {
		return "", fmt.Errorf("%w: %d (max %d)", ErrTooManyAttendees, len(m.Attendees), MaxAttendees)
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &workbookWriter{f: f}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("unable to create workbook style: %w", err)
	}
	w.bold = bold
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return "", fmt.Errorf("unable to create workbook style: %w", err)
	}
	w.title = title

	if err := f.SetSheetName("Sheet1", SettingsSheet); err != nil {
		return "", fmt.Errorf("unable to name settings sheet: %w", err)
	}
	for _, name := range []string{MeetingSheet, ExportsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("unable to add %s sheet: %w", name, err)
		}
	}

	lastGradeRow := w.settings(s)
	w.meeting(m, lastGradeRow)
	w.exports()
	if w.err != nil {
		return "", fmt.Errorf("unable to build workbook: %w", w.err)
	}

	path := filepath.Join(dir, WorkbookFile)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("unable to save workbook: %w", err)
	}
	return path, nil
}

// gradeOrder lists the stock grades first, then any others alphabetically.
func gradeOrder(grades map[string]float64) []string {
	order := slices.Clone(stockGrades)
	for _, g := range slices.Sorted(maps.Keys(grades)) {
		if !slices.Contains(order, g) {
			order = append(order, g)
		}
	}
	return order
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// workbookWriter keeps the first error so sheet layout reads top to bottom.
type workbookWriter struct {
	f     *excelize.File
	bold  int
	title int
	err   error
}

func (w *workbookWriter) value(sheet, cell string, v any) {
	if w.err == nil {
		w.err = w.f.SetCellValue(sheet, cell, v)
	}
}

func (w *workbookWriter) formula(sheet, cell, formula string) {
	if w.err == nil {
		w.err = w.f.SetCellFormula(sheet, cell, formula)
	}
}

func (w *workbookWriter) label(sheet, cell, text string) {
	w.value(sheet, cell, text)
	w.style(sheet, cell, cell, w.bold)
}

func (w *workbookWriter) style(sheet, from, to string, style int) {
	if w.err == nil {
		w.err = w.f.SetCellStyle(sheet, from, to, style)
	}
}

func (w *workbookWriter) width(sheet, col string, width float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(sheet, col, col, width)
	}
}

func (w *workbookWriter) settings(s Settings) int {
	const sheet = SettingsSheet

	w.label(sheet, "A1", "Parameter")
	w.label(sheet, "B1", "Value")
	w.value(sheet, "A2", "Hours_per_year (editable)")
	w.value(sheet, "B2", s.HoursPerYear)
	w.value(sheet, "A3", "Interpreter_hourly_USD (edit)")
	w.value(sheet, "B3", s.InterpreterHourlyUSD)
	w.value(sheet, "A4", "USD_to_PLN (edit)")
	w.value(sheet, "B4", s.USDToPLN)

	w.label(sheet, "A6", "Grade")
	w.label(sheet, "B6", "Annual_USD (editable)")
	w.label(sheet, "C6", "Hourly_USD (auto)")

	row := gradeFirstRow
	for _, grade := range gradeOrder(s.Grades) {
		w.value(sheet, fmt.Sprintf("A%d", row), grade)
		if annual := s.Grades[grade]; annual > 0 {
			w.value(sheet, fmt.Sprintf("B%d", row), annual)
		}
		w.formula(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf(`IFERROR(B%d/$B$2,"")`, row))
		row++
	}
	lastGradeRow := row - 1

	w.width(sheet, "A", 18)
	w.width(sheet, "B", 24)
	w.width(sheet, "C", 18)

	notes := max(14, lastGradeRow+2)
	w.value(sheet, fmt.Sprintf("A%d", notes), "Notes")
	w.value(sheet, fmt.Sprintf("A%d", notes+1), "• Edit Hours_per_year and Annual_USD. Hourly calculates automatically.")
	w.value(sheet, fmt.Sprintf("A%d", notes+2), "• Set Interpreter_hourly_USD and USD_to_PLN as needed.")

	return lastGradeRow
}

func (w *workbookWriter) meeting(m Meeting, lastGradeRow int) {
	const sheet = MeetingSheet

	w.value(sheet, "A1", "Meeting Planner (Lite)")
	w.style(sheet, "A1", "A1", w.title)

	inputs := []struct {
		row   int
		label string
		value any
	}{
		{3, "Title:", m.Title},
		{4, "Type (Decision/Coordination/Info):", m.Type},
		{5, "Decision needed (Yes/No):", yesNo(m.DecisionNeeded)},
		{6, "Pre-read attached (Yes/No):", yesNo(m.PreRead)},
		{7, "Duration (minutes):", m.DurationMinutes},
		{8, "Location (city):", m.Location},
		{9, "Interpreter needed (Yes/No):", yesNo(m.InterpreterNeeded)},
		{10, "Meeting date (YYYY-MM-DD):", m.Date},
		{11, "Start time (HH:MM):", m.StartTime},
	}
	for _, in := range inputs {
		w.label(sheet, fmt.Sprintf("A%d", in.row), in.label)
		w.value(sheet, fmt.Sprintf("B%d", in.row), in.value)
	}

	w.label(sheet, "E3", "Summary")
	summary := []struct{ label, formula string }{
		{"Total attendees:", "F26"},
		{"Total cost (USD):", "F28"},
		{"Total cost (PLN):", "F29"},
		{"Necessity score (0–100):", "F31"},
		{"Suggestion:", "F32"},
	}
	for i, line := range summary {
		w.label(sheet, fmt.Sprintf("E%d", 4+i), line.label)
		w.formula(sheet, fmt.Sprintf("F%d", 4+i), line.formula)
	}

	w.label(sheet, "A13", "Attendees (up to 10 rows)")
	for col, header := range []string{"Name", "Email", "Grade", "Role (A/D/R/C)", "Hourly (USD)", "Cost for this meeting (USD)"} {
		w.label(sheet, fmt.Sprintf("%c15", 'A'+col), header)
	}

	lookup := fmt.Sprintf("Settings!$A$%d:$C$%d", gradeFirstRow, max(20, lastGradeRow))
	for i := range MaxAttendees {
		r := attendeeFirstRow + i
		if i < len(m.Attendees) {
			a := m.Attendees[i]
			w.value(sheet, fmt.Sprintf("A%d", r), a.Name)
			w.value(sheet, fmt.Sprintf("B%d", r), a.Email)
			w.value(sheet, fmt.Sprintf("C%d", r), a.Grade)
			w.value(sheet, fmt.Sprintf("D%d", r), a.Role)
		}
		w.formula(sheet, fmt.Sprintf("E%d", r), fmt.Sprintf(`IFERROR(VLOOKUP(C%d,%s,3,FALSE),"")`, r, lookup))
		w.formula(sheet, fmt.Sprintf("F%d", r), fmt.Sprintf(`IFERROR(E%d*$B$7/60,"")`, r))
	}

	w.label(sheet, "E26", "Totals:")
	w.formula(sheet, "F26", "COUNTA(A16:A25)")
	w.label(sheet, "E27", "Total cost (USD):")
	w.formula(sheet, "F27", "IFERROR(SUM(F16:F25),0)")
	w.label(sheet, "E28", "With interpreter (USD):")
	w.formula(sheet, "F28", `IFERROR(F27 + IF($B$9="Yes",Settings!$B$3*$B$7/60,0),0)`)
	w.label(sheet, "E29", "Total cost (PLN):")
	w.formula(sheet, "F29", "ROUND(F28*Settings!$B$4,2)")

	w.label(sheet, "E31", "Necessity score:")
	w.formula(sheet, "F31", `MAX(0, MIN(100, IF(B5="Yes",50,20) + IF(B6="Yes",15,0) - MAX(0,(F26-5)*5) - IF(B7>50,10,0) ))`)
	w.label(sheet, "E32", "Suggestion:")
	w.formula(sheet, "F32", fmt.Sprintf(`IF(F31<40,"%s", IF(F31<70,"%s","%s"))`, SuggestAsync, SuggestHuddle, SuggestProceed))

	for col, width := range []float64{24, 32, 10, 16, 18, 24} {
		w.width(sheet, string(rune('A'+col)), width)
	}

	w.label(sheet, "A32", "How to use (quick):")
	w.value(sheet, "A33", "1) In Settings sheet, set Hours_per_year, Annual_USD, interpreter rate and exchange rate.")
	w.value(sheet, "A34", "2) On Meeting sheet, fill title, yes/no fields, duration, location, date/time and attendees.")
	w.value(sheet, "A35", "3) Interpreter cost is added if needed and PLN totals are calculated.")
	w.value(sheet, "A36", "4) Use the suggestion to decide async vs. meeting.")
}

func (w *workbookWriter) exports() {
	const sheet = ExportsSheet

	w.label(sheet, "A1", "Copy the rows below into invites or reports as needed.")
	w.value(sheet, "A3", "Summary line")
	w.formula(sheet, "B3", `CONCAT("Title: ", IFERROR(Meeting!B3,""), " | Type: ", IFERROR(Meeting!B4,""), " | Duration: ", IFERROR(Meeting!B7,""), " min | Location: ", IFERROR(Meeting!B8,""), " | Attendees: ", IFERROR(Meeting!F26,0), " | Cost: $", TEXT(IFERROR(Meeting!F28,0),"#,##0"), " (", TEXT(IFERROR(Meeting!F29,0),"#,##0"), " PLN)")`)
	w.value(sheet, "A5", "Suggestion line")
	w.formula(sheet, "B5", `CONCAT("Suggestion: ", IFERROR(Meeting!F32,""), " | Score: ", IFERROR(Meeting!F31,0))`)

	w.width(sheet, "A", 24)
	w.width(sheet, "B", 120)
}
