package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/attendwatch/internal/attendance"
	"github.com/matheuskafuri/attendwatch/internal/holiday"
	"github.com/matheuskafuri/attendwatch/internal/progress"
)

func TestParseMonth(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  string
		err   bool
	}{
		{"", "2025-03", false},
		{"2024-12", "2024-12", false},
		{"2024-13", "", true},
		{"2024-1", "", true},
		{"march", "", true},
	}

	for _, tt := range tests {
		got, err := parseMonth(tt.input, now)
		if tt.err {
			if err == nil {
				t.Errorf("parseMonth(%q): expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseMonth(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMonth(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatEntry(t *testing.T) {
	ok := attendance.Entry{
		Date:             "2025-03-04",
		DayStatus:        attendance.Present,
		Counters:         &attendance.Counters{WorkingDays: 40, Present: 35, Absent: 3, Leave: 2},
		NotificationSent: true,
	}
	got := formatEntry(ok)
	for _, want := range []string{"2025-03-04", "Present", "P 35", "A 3", "L 2", "of 40", "notified"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEntry = %q, missing %q", got, want)
		}
	}

	failed := attendance.Entry{Date: "2025-03-05", DayStatus: attendance.Error, Error: attendance.KindAuth.Message()}
	got = formatEntry(failed)
	if !strings.Contains(got, attendance.KindAuth.Message()) {
		t.Errorf("formatEntry = %q, missing error message", got)
	}
	if strings.Contains(got, "P ") {
		t.Errorf("error entry should not print counters: %q", got)
	}
}

func TestFormatProgress(t *testing.T) {
	tests := []struct {
		state progress.State
		want  string
	}{
		{progress.State{Message: "Fetching attendance data...", Progress: 25}, " 25%"},
		{progress.State{Message: "Error: boom", Progress: progress.Failed}, "failed"},
		{progress.State{Message: "Done", Progress: progress.Done, Timestamp: time.Now()}, "just now"},
	}
	for _, tt := range tests {
		got := formatProgress(tt.state)
		if !strings.Contains(got, tt.want) {
			t.Errorf("formatProgress(%+v) = %q, want it to contain %q", tt.state, got, tt.want)
		}
	}
}

func TestFormatHoliday(t *testing.T) {
	got := formatHoliday(holiday.Holiday{Date: "2025-03-26", Name: "Independence Day"})
	if got != "2025-03-26  Independence Day" {
		t.Errorf("formatHoliday = %q", got)
	}
	got = formatHoliday(holiday.Holiday{Date: "2025-03-30", Name: "Eid", IsRange: true, TotalDays: 5})
	if !strings.Contains(got, "5-day range") {
		t.Errorf("formatHoliday(range) = %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
