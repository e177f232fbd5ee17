package google

import (
	"testing"
)

func TestParseTaskRow(t *testing.T) {
	cols := toStrings([]interface{}{"1735732800000", "Email", "inbox zero", 90.0, "2025-01-02"})

	task, ok := parseTaskRow(cols)
	if !ok {
		t.Fatal("expected row to parse")
	}
	if task.ID != "1735732800000" {
		t.Errorf("ID = %q", task.ID)
	}
	if task.Name != "Email" {
		t.Errorf("Name = %q", task.Name)
	}
	if task.Description != "inbox zero" {
		t.Errorf("Description = %q", task.Description)
	}
	if task.TimeSpent != 1.5 {
		t.Errorf("TimeSpent = %v, want 1.5", task.TimeSpent)
	}
	if task.Date.Format("2006-01-02") != "2025-01-02" {
		t.Errorf("Date = %v", task.Date)
	}
}

func TestParseTaskRow_Skips(t *testing.T) {
	tests := []struct {
		name string
		row  []interface{}
	}{
		{"header row", []interface{}{"ID", "Name", "Description", "Minutes", "Date"}},
		{"short row", []interface{}{"123", "Email"}},
		{"blank id", []interface{}{"", "Email", "", 60, "2025-01-02"}},
		{"bad minutes", []interface{}{"123", "Email", "", "ninety", "2025-01-02"}},
		{"bad date", []interface{}{"123", "Email", "", 60, "02/01/2025"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseTaskRow(toStrings(tt.row)); ok {
				t.Error("expected row to be skipped")
			}
		})
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"90", 90, true},
		{"90.0", 90, true},
		{"90,5", 91, true},
		{" 45 ", 45, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseMinutes(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseMinutes(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTaskRowRoundTrip(t *testing.T) {
	task, ok := parseTaskRow(toStrings([]interface{}{"42", "Review", "PR queue", 125, "2025-03-10"}))
	if !ok {
		t.Fatal("expected row to parse")
	}
	row := taskRow(task)
	if row[0] != "42" || row[1] != "Review" || row[2] != "PR queue" {
		t.Errorf("unexpected row %v", row)
	}
	if row[3] != int64(125) {
		t.Errorf("minutes = %v, want 125", row[3])
	}
	if row[4] != "2025-03-10" {
		t.Errorf("date = %v", row[4])
	}
}
