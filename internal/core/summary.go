package core

import "sort"

// TaskSummaryItem aggregates every task sharing one exact name.
type TaskSummaryItem struct {
	Name      string  `json:"name"`
	TotalTime float64 `json:"totalTime"`
	Count     int     `json:"count"`
}

// TotalTime sums the time spent across all tasks.
func TotalTime(tasks []Task) float64 {
	var total float64
	for _, t := range tasks {
		total += t.TimeSpent
	}
	return total
}

// RemainingHours returns the unspent share of the daily budget, floored
// at zero.
func RemainingHours(workHours float64, tasks []Task) float64 {
	remaining := workHours - TotalTime(tasks)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GroupByName partitions tasks by exact name match and aggregates total
// time and occurrence count per group. Groups are ordered by total time
// descending; ties keep first-encountered insertion order.
func GroupByName(tasks []Task) []TaskSummaryItem {
	index := make(map[string]int, len(tasks))
	var groups []TaskSummaryItem
	for _, t := range tasks {
		i, ok := index[t.Name]
		if !ok {
			i = len(groups)
			index[t.Name] = i
			groups = append(groups, TaskSummaryItem{Name: t.Name})
		}
		groups[i].TotalTime += t.TimeSpent
		groups[i].Count++
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].TotalTime > groups[b].TotalTime
	})
	return groups
}

// PercentOfTotal returns the item's share of the grand total as a
// percentage. An empty total yields 0 rather than dividing by zero.
// Callers round for display; independently rounded shares are not
// guaranteed to sum to exactly 100.
func PercentOfTotal(item TaskSummaryItem, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return item.TotalTime / total * 100
}
