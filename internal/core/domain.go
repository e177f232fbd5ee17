package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	// Task is one logged unit of work. TimeSpent is expressed in
	// fractional hours (1.25 = 1h15m); use Clock for exact form arithmetic.
	Task struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		TimeSpent   float64 `json:"timeSpent"`
		Date        Date    `json:"date"`
	}

	// TaskDraft is in-progress form state, persisted so a reload does
	// not lose a half-typed entry.
	TaskDraft struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Hours       int    `json:"hours"`
		Minutes     int    `json:"minutes"`
	}
)

// DefaultWorkHours is the daily budget used when none has been saved.
const DefaultWorkHours = 8.0

// Budget selector bounds. Enforcement is a presentation concern; the
// store itself accepts any value.
const (
	MinWorkHours  = 1.0
	MaxWorkHours  = 12.0
	WorkHoursStep = 0.5
)

var (
	ErrEmptyName        = errors.New("empty task name")
	ErrInvalidTimeSpent = errors.New("invalid time spent")
	ErrTaskNotFound     = errors.New("task not found")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the persisted "YYYY-MM-DD" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date at day precision.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String renders the date in the persisted YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON encodes the date as a plain "YYYY-MM-DD" string, matching
// the persisted task format.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD"; empty and null are left zero.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (t Task) Validate() error {
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if t.TimeSpent <= 0 {
		return ErrInvalidTimeSpent
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// IsEmpty reports whether the draft carries no user input.
func (d TaskDraft) IsEmpty() bool {
	return strings.TrimSpace(d.Name) == "" &&
		strings.TrimSpace(d.Description) == "" &&
		d.Hours == 0 && d.Minutes == 0
}
