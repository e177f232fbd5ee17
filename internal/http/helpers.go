package http

import (
	"fmt"
	"strconv"
	"strings"

	"timerito/internal/core"
)

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	return core.ParseDate(dateStr)
}

// parseDuration converts separate hours and minutes form fields into
// fractional hours. Minutes are snapped to the selector step.
func parseDuration(hoursStr, minutesStr string) (float64, error) {
	hours := 0
	if hoursStr != "" {
		h, err := strconv.Atoi(hoursStr)
		if err != nil {
			return 0, fmt.Errorf("invalid hours value %q", hoursStr)
		}
		hours = h
	}
	minutes := 0
	if minutesStr != "" {
		m, err := strconv.Atoi(minutesStr)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes value %q", minutesStr)
		}
		minutes = m
	}
	c := core.Clock{Hours: core.ClampHours(hours), Minutes: core.SnapMinutes(minutes)}
	return c.TimeSpent(), nil
}

// parseTimeSpent accepts either a decimal hours value ("1.5") or the
// hours/minutes pair, preferring the explicit pair when present.
func parseTimeSpent(parser *RequestBodyParser) (float64, error) {
	if parser.Has("hours") || parser.Has("minutes") {
		return parseDuration(parser.Get("hours"), parser.Get("minutes"))
	}
	raw := parser.Get("timeSpent")
	if raw == "" {
		return 0, fmt.Errorf("missing time spent")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time spent %q", raw)
	}
	return v, nil
}

// formatPercent renders a share of the total as "42.5%".
func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
