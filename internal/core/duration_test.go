package core

import (
	"math"
	"testing"
)

func TestDecompose(t *testing.T) {
	cases := []struct {
		in      float64
		hours   int
		minutes int
	}{
		{0, 0, 0},
		{1.25, 1, 15},
		{1.5, 1, 30},
		{2.75, 2, 45},
		{0.0833, 0, 5},
		{1.999, 2, 0}, // rounding must carry, never 1h 60m
		{11.999, 12, 0},
		{-1, 0, 0},
	}
	for _, tc := range cases {
		got := Decompose(tc.in)
		if got.Hours != tc.hours || got.Minutes != tc.minutes {
			t.Fatalf("Decompose(%v) = %dh %dm, want %dh %dm", tc.in, got.Hours, got.Minutes, tc.hours, tc.minutes)
		}
	}
}

func TestDecomposeNeverReturnsSixtyMinutes(t *testing.T) {
	for v := 0.0; v < 13; v += 0.001 {
		if c := Decompose(v); c.Minutes >= 60 {
			t.Fatalf("Decompose(%v) returned %d minutes", v, c.Minutes)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	// Composing a decomposed value must recover it to within one minute.
	for v := 0.0; v <= 12; v += 0.01 {
		back := Decompose(v).TimeSpent()
		if diff := math.Abs(back - v); diff > 1.0/60+1e-9 {
			t.Fatalf("round trip %v -> %v drifted by %v", v, back, diff)
		}
	}
}

func TestClockSteppers(t *testing.T) {
	cases := []struct {
		name string
		in   Clock
		step func(Clock) Clock
		out  Clock
	}{
		{"minutes step up", Clock{1, 20}, Clock.IncrementMinutes, Clock{1, 25}},
		{"minutes roll into hours", Clock{1, 55}, Clock.IncrementMinutes, Clock{2, 0}},
		{"minutes clamp at cap", Clock{12, 55}, Clock.IncrementMinutes, Clock{12, 55}},
		{"minutes step down", Clock{1, 20}, Clock.DecrementMinutes, Clock{1, 15}},
		{"minutes borrow an hour", Clock{2, 0}, Clock.DecrementMinutes, Clock{1, 55}},
		{"decrement noop at zero", Clock{0, 0}, Clock.DecrementMinutes, Clock{0, 0}},
		{"hours step up", Clock{3, 10}, Clock.IncrementHours, Clock{4, 10}},
		{"hours cap", Clock{12, 10}, Clock.IncrementHours, Clock{12, 10}},
		{"hours step down", Clock{3, 10}, Clock.DecrementHours, Clock{2, 10}},
		{"hours floor", Clock{0, 10}, Clock.DecrementHours, Clock{0, 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.step(tc.in); got != tc.out {
				t.Fatalf("got %+v, want %+v", got, tc.out)
			}
		})
	}
}

func TestSnapMinutes(t *testing.T) {
	cases := []struct{ in, out int }{
		{0, 0},
		{2, 0},
		{3, 5},
		{12, 10},
		{13, 15},
		{57, 55},
		{59, 55}, // would round to 60; settles on 55 instead
		{-5, 0},
		{120, 55},
	}
	for _, tc := range cases {
		if got := SnapMinutes(tc.in); got != tc.out {
			t.Fatalf("SnapMinutes(%d) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestClampHours(t *testing.T) {
	cases := []struct{ in, out int }{
		{-1, 0}, {0, 0}, {7, 7}, {12, 12}, {13, 12},
	}
	for _, tc := range cases {
		if got := ClampHours(tc.in); got != tc.out {
			t.Fatalf("ClampHours(%d) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestClampWorkHours(t *testing.T) {
	cases := []struct{ in, out float64 }{
		{0, 1},
		{0.4, 1},
		{8, 8},
		{7.3, 7.5},
		{7.2, 7},
		{12, 12},
		{15, 12},
	}
	for _, tc := range cases {
		if got := ClampWorkHours(tc.in); got != tc.out {
			t.Fatalf("ClampWorkHours(%v) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestFormatHours(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{0, "0h 0m"},
		{1.5, "1h 30m"},
		{2.25, "2h 15m"},
		{1.999, "2h 0m"},
	}
	for _, tc := range cases {
		if got := FormatHours(tc.in); got != tc.out {
			t.Fatalf("FormatHours(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
