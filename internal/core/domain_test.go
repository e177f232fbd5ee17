package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-02")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !d.Equal(NewDate(2025, 1, 2).Time) {
		t.Fatalf("ParseDate = %v", d)
	}
	for _, bad := range []string{"", "02/01/2025", "2025-13-01", "today"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 3, 9)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-09"` {
		t.Fatalf("unexpected encoding %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip %v != %v", back, d)
	}
}

func TestTaskValidate(t *testing.T) {
	good := Task{
		ID:        "1",
		Name:      "Email",
		TimeSpent: 1.5,
		Date:      NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	long := good
	long.Name = strings.Repeat("a", 500)
	if err := long.Validate(); err != nil {
		t.Fatalf("long names are not a domain concern, got %v", err)
	}

	bads := []struct {
		task Task
		want error
	}{
		{Task{Name: "", TimeSpent: 1, Date: NewDate(2025, 1, 1)}, ErrEmptyName},
		{Task{Name: "   ", TimeSpent: 1, Date: NewDate(2025, 1, 1)}, ErrEmptyName},
		{Task{Name: "Meeting", TimeSpent: 0, Date: NewDate(2025, 1, 1)}, ErrInvalidTimeSpent},
		{Task{Name: "Meeting", TimeSpent: -0.5, Date: NewDate(2025, 1, 1)}, ErrInvalidTimeSpent},
		{Task{Name: "Meeting", TimeSpent: 1}, nil}, // zero date
	}
	for i, tc := range bads {
		err := tc.task.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestTaskDraftIsEmpty(t *testing.T) {
	if !(TaskDraft{}).IsEmpty() {
		t.Fatalf("zero draft should be empty")
	}
	if (TaskDraft{Name: "x"}).IsEmpty() {
		t.Fatalf("draft with name should not be empty")
	}
	if (TaskDraft{Minutes: 5}).IsEmpty() {
		t.Fatalf("draft with minutes should not be empty")
	}
}
