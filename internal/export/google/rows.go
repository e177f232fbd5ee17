package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"timerito/internal/core"
)

// taskRow converts a task to the A:E row layout:
// ID, Name, Description, Minutes, Date.
func taskRow(t core.Task) []any {
	minutes := int64(math.Round(t.TimeSpent * 60))
	return []any{t.ID, t.Name, t.Description, minutes, t.Date.Format("2006-01-02")}
}

// parseTaskRow converts a sheet row back into a task. Returns false for
// header rows, blank rows, and anything that does not parse.
func parseTaskRow(cols []string) (core.Task, bool) {
	if len(cols) < 5 {
		return core.Task{}, false
	}
	id := strings.TrimSpace(cols[0])
	if id == "" {
		return core.Task{}, false
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		// header or stray text row
		return core.Task{}, false
	}
	minutes, ok := parseMinutes(cols[3])
	if !ok {
		return core.Task{}, false
	}
	date, err := core.ParseDate(strings.TrimSpace(cols[4]))
	if err != nil {
		return core.Task{}, false
	}
	return core.Task{
		ID:          id,
		Name:        strings.TrimSpace(cols[1]),
		Description: strings.TrimSpace(cols[2]),
		TimeSpent:   float64(minutes) / 60.0,
		Date:        date,
	}, true
}

// parseMinutes accepts plain integers plus the float renderings Sheets
// sometimes hands back ("90", "90.0", "90,0").
func parseMinutes(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if m, err := strconv.ParseInt(s, 10, 64); err == nil {
		return m, true
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
