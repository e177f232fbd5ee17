package core

import (
	"math"
	"testing"
)

func task(name string, timeSpent float64) Task {
	return Task{Name: name, TimeSpent: timeSpent, Date: NewDate(2025, 1, 1)}
}

func TestRemainingHours(t *testing.T) {
	cases := []struct {
		budget float64
		tasks  []Task
		want   float64
	}{
		{8, nil, 8},
		{8, []Task{task("Email", 1.5)}, 6.5},
		{8, []Task{task("Email", 1.5), task("Email", 0.5)}, 6},
		{8, []Task{task("Email", 10)}, 0}, // never negative
	}
	for i, tc := range cases {
		if got := RemainingHours(tc.budget, tc.tasks); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("case %d: RemainingHours = %v, want %v", i, got, tc.want)
		}
	}
}

func TestGroupByName(t *testing.T) {
	tasks := []Task{
		task("Email", 1.5),
		task("Meeting", 2),
		task("Email", 0.5),
		task("Review", 3),
	}
	groups := GroupByName(tasks)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	// Ordered by total time descending: Review 3, Email 2, Meeting 2.
	// Email and Meeting tie at 2; Email was encountered first.
	if groups[0].Name != "Review" || groups[0].TotalTime != 3 || groups[0].Count != 1 {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if groups[1].Name != "Email" || groups[1].TotalTime != 2 || groups[1].Count != 2 {
		t.Fatalf("tie should keep first-encountered order, got %+v", groups[1])
	}
	if groups[2].Name != "Meeting" {
		t.Fatalf("unexpected last group %q", groups[2].Name)
	}
}

func TestGroupByNameIsCaseSensitive(t *testing.T) {
	groups := GroupByName([]Task{task("email", 1), task("Email", 1)})
	if len(groups) != 2 {
		t.Fatalf("names differing in case must not merge, got %d groups", len(groups))
	}
}

func TestGroupTotalsMatchFlatSum(t *testing.T) {
	tasks := []Task{
		task("a", 0.25), task("b", 1.75), task("a", 2.5), task("c", 0.0833), task("b", 4),
	}
	var grouped float64
	for _, g := range GroupByName(tasks) {
		grouped += g.TotalTime
	}
	if flat := TotalTime(tasks); math.Abs(grouped-flat) > 1e-9 {
		t.Fatalf("group totals %v != flat sum %v", grouped, flat)
	}
}

func TestPercentOfTotal(t *testing.T) {
	tasks := []Task{task("a", 3), task("b", 2), task("c", 1)}
	groups := GroupByName(tasks)
	total := TotalTime(tasks)

	wantOrder := []float64{50.0, 33.3, 16.7}
	for i, g := range groups {
		got := math.Round(PercentOfTotal(g, total)*10) / 10
		if got != wantOrder[i] {
			t.Fatalf("group %d percent = %v, want %v", i, got, wantOrder[i])
		}
	}
}

func TestPercentOfTotalEmptyStore(t *testing.T) {
	if got := PercentOfTotal(TaskSummaryItem{Name: "x", TotalTime: 1}, TotalTime(nil)); got != 0 {
		t.Fatalf("empty store should yield 0, got %v", got)
	}
}

func TestScenarioEmailAdds(t *testing.T) {
	budget := 8.0
	tasks := []Task{task("Email", 1.5)}
	if got := RemainingHours(budget, tasks); got != 6.5 {
		t.Fatalf("after first add remaining = %v, want 6.5", got)
	}
	tasks = append(tasks, task("Email", 0.5))
	if got := RemainingHours(budget, tasks); got != 6.0 {
		t.Fatalf("after second add remaining = %v, want 6.0", got)
	}
	groups := GroupByName(tasks)
	if len(groups) != 1 || groups[0].Name != "Email" || groups[0].TotalTime != 2.0 || groups[0].Count != 2 {
		t.Fatalf("unexpected grouping %+v", groups)
	}
}
