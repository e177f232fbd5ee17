// Package core provides the task domain model and duration handling.
//
// This file contains conversions between fractional-hour values and the
// (hours, minutes) pair shown in the entry form, plus the stepper and
// snapping rules for manual input.
package core

import (
	"fmt"
	"math"
)

// Clock is a duration as displayed in the entry form: whole hours plus
// minutes in 5-minute steps.
type Clock struct {
	Hours   int
	Minutes int
}

// Form input bounds.
const (
	MaxClockHours = 12
	MinuteStep    = 5
)

// Decompose splits a fractional-hour value into whole hours and rounded
// minutes. Rounding that lands on 60 minutes carries into the hour, so
// Decompose(1.999) is (2, 0) and never (1, 60).
func Decompose(timeInHours float64) Clock {
	if timeInHours < 0 {
		return Clock{}
	}
	h := int(math.Floor(timeInHours))
	m := int(math.Round((timeInHours - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	return Clock{Hours: h, Minutes: m}
}

// TimeSpent composes the clock back into fractional hours.
func (c Clock) TimeSpent() float64 {
	return float64(c.Hours) + float64(c.Minutes)/60
}

// IsZero reports whether the clock marks no time at all.
func (c Clock) IsZero() bool {
	return c.Hours == 0 && c.Minutes == 0
}

// IncrementHours adds an hour, capped at MaxClockHours.
func (c Clock) IncrementHours() Clock {
	if c.Hours < MaxClockHours {
		c.Hours++
	}
	return c
}

// DecrementHours removes an hour, floored at zero.
func (c Clock) DecrementHours() Clock {
	if c.Hours > 0 {
		c.Hours--
	}
	return c
}

// IncrementMinutes steps the minutes up by five. Past 55 it rolls over to
// 0 and carries into the hours; once the hour cap is reached at 55m the
// step is a no-op rather than wrapping.
func (c Clock) IncrementMinutes() Clock {
	if c.Minutes < 55 {
		c.Minutes += MinuteStep
		return c
	}
	if c.Hours >= MaxClockHours {
		return c
	}
	c.Minutes = 0
	c.Hours++
	return c
}

// DecrementMinutes steps the minutes down by five, borrowing an hour when
// minutes are already zero. At 0h 0m the step is a no-op.
func (c Clock) DecrementMinutes() Clock {
	if c.Minutes > 0 {
		c.Minutes -= MinuteStep
		return c
	}
	if c.Hours == 0 {
		return c
	}
	c.Hours--
	c.Minutes = 55
	return c
}

// SnapMinutes clamps a manually typed minute value to [0,59] and snaps it
// to the nearest multiple of five. Values that would round up to 60 settle
// on 55 so the form never holds a sixty-minute field.
func SnapMinutes(v int) int {
	if v < 0 {
		v = 0
	}
	if v > 59 {
		v = 59
	}
	m := int(math.Round(float64(v)/MinuteStep)) * MinuteStep
	if m > 55 {
		m = 55
	}
	return m
}

// ClampHours clamps a manually typed hour value to [0,MaxClockHours].
func ClampHours(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxClockHours {
		return MaxClockHours
	}
	return v
}

// ClampWorkHours snaps a budget value into the selector range [1,12] in
// half-hour steps.
func ClampWorkHours(h float64) float64 {
	if h < MinWorkHours {
		return MinWorkHours
	}
	if h > MaxWorkHours {
		return MaxWorkHours
	}
	return math.Round(h/WorkHoursStep) * WorkHoursStep
}

// FormatHours renders a fractional-hour value as "1h 30m" for display.
func FormatHours(timeInHours float64) string {
	c := Decompose(timeInHours)
	return fmt.Sprintf("%dh %dm", c.Hours, c.Minutes)
}
