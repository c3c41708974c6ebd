package planner

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()

	v, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellValue(%s!%s) failed: %v", sheet, cell, err)
	}
	return v
}

func cellFormula(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()

	v, err := f.GetCellFormula(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellFormula(%s!%s) failed: %v", sheet, cell, err)
	}
	return v
}

func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteWorkbook(dir, DefaultSettings(), twoAttendeeMeeting())
	if err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}
	if want := filepath.Join(dir, WorkbookFile); path != want {
		t.Errorf("expected path %s, got %s", want, path)
	}

	f := openWorkbook(t, path)

	if diff := cmp.Diff([]string{SettingsSheet, MeetingSheet, ExportsSheet}, f.GetSheetList()); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}

	values := []struct {
		sheet, cell, want string
	}{
		{SettingsSheet, "B2", "1760"},
		{SettingsSheet, "B3", "40"},
		{SettingsSheet, "B4", "4"},
		{SettingsSheet, "A7", "P5"},
		{SettingsSheet, "B7", "220000"},
		{SettingsSheet, "A8", "G7"},
		{SettingsSheet, "B8", "77000"},
		{SettingsSheet, "A9", "P4"},
		{SettingsSheet, "B9", ""},
		{MeetingSheet, "B3", "Q3 budget"},
		{MeetingSheet, "B4", TypeDecision},
		{MeetingSheet, "B5", "Yes"},
		{MeetingSheet, "B7", "25"},
		{MeetingSheet, "B9", "No"},
		{MeetingSheet, "B11", "09:00"},
		{MeetingSheet, "A16", "Alice"},
		{MeetingSheet, "B17", "bob@example.org"},
		{MeetingSheet, "C17", "G7"},
		{MeetingSheet, "A18", ""},
	}
	for _, tt := range values {
		if got := cellValue(t, f, tt.sheet, tt.cell); got != tt.want {
			t.Errorf("%s!%s = %q, want %q", tt.sheet, tt.cell, got, tt.want)
		}
	}

	formulas := []struct {
		sheet, cell, want string
	}{
		{SettingsSheet, "C7", `IFERROR(B7/$B$2,"")`},
		{MeetingSheet, "E16", `IFERROR(VLOOKUP(C16,Settings!$A$7:$C$20,3,FALSE),"")`},
		{MeetingSheet, "F25", `IFERROR(E25*$B$7/60,"")`},
		{MeetingSheet, "F26", "COUNTA(A16:A25)"},
		{MeetingSheet, "F29", "ROUND(F28*Settings!$B$4,2)"},
		{MeetingSheet, "F31", `MAX(0, MIN(100, IF(B5="Yes",50,20) + IF(B6="Yes",15,0) - MAX(0,(F26-5)*5) - IF(B7>50,10,0) ))`},
	}
	for _, tt := range formulas {
		if got := cellFormula(t, f, tt.sheet, tt.cell); got != tt.want {
			t.Errorf("%s!%s formula = %q, want %q", tt.sheet, tt.cell, got, tt.want)
		}
	}

	if got := cellFormula(t, f, MeetingSheet, "F32"); !strings.Contains(got, SuggestHuddle) {
		t.Errorf("suggestion formula missing %q: %s", SuggestHuddle, got)
	}
	if got := cellFormula(t, f, ExportsSheet, "B3"); !strings.HasPrefix(got, `CONCAT("Title: "`) {
		t.Errorf("unexpected summary line formula: %s", got)
	}

	count, err := f.CalcCellValue(MeetingSheet, "F26")
	if err != nil {
		t.Fatalf("CalcCellValue failed: %v", err)
	}
	if count != "2" {
		t.Errorf("expected 2 attendees counted, got %q", count)
	}
}

func TestWriteWorkbook_ExtraGrades(t *testing.T) {
	s := DefaultSettings()
	s.Grades["D1"] = 250000

	path, err := WriteWorkbook(t.TempDir(), s, DefaultMeeting())
	if err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}
	f := openWorkbook(t, path)

	if got := cellValue(t, f, SettingsSheet, "A13"); got != "D1" {
		t.Errorf("expected extra grade after the stock grades, got %q", got)
	}
	if got := cellValue(t, f, SettingsSheet, "A15"); got != "Notes" {
		t.Errorf("expected notes moved below the grade table, got %q", got)
	}
}

func TestWriteWorkbook_TooManyAttendees(t *testing.T) {
	m := DefaultMeeting()
	m.Attendees = make([]Attendee, MaxAttendees+1)

	_, err := WriteWorkbook(t.TempDir(), DefaultSettings(), m)
	if !errors.Is(err, ErrTooManyAttendees) {
		t.Fatalf("expected ErrTooManyAttendees, got %v", err)
	}
}

func TestGradeOrder(t *testing.T) {
	got := gradeOrder(map[string]float64{"G7": 1, "Z1": 1, "A2": 1})
	want := []string{"P5", "G7", "P4", "P3", "G6", "G5", "A2", "Z1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("grade order mismatch (-want +got):\n%s", diff)
	}
}
