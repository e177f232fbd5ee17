package http

import (
	"log/slog"
	"net/http"

	"timerito/internal/core"
	applog "timerito/internal/log"
)

// taskRowView is a single task formatted for display.
type taskRowView struct {
	ID          string
	Name        string
	Description string
	Duration    string
	Date        string
}

// summaryRowView aggregates one task name for the summary partial.
type summaryRowView struct {
	Name     string
	Duration string
	Count    int
	Percent  string
	Width    string
}

// summaryView backs the summary partial.
type summaryView struct {
	Rows       []summaryRowView
	HasTasks   bool
	Total      string
	WorkHours  string
	Remaining  string
	OverBudget bool
}

// indexView backs the full page template.
type indexView struct {
	WorkHours      float64
	WorkHoursLabel string
	MinWorkHours   float64
	MaxWorkHours   float64
	WorkHoursStep  float64
	Draft          core.TaskDraft
	Tasks          []taskRowView
	Summary        summaryView
}

func taskRows(tasks []core.Task) []taskRowView {
	rows := make([]taskRowView, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, taskRowView{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Duration:    core.FormatHours(t.TimeSpent),
			Date:        t.Date.String(),
		})
	}
	return rows
}

func buildSummaryView(items []core.TaskSummaryItem, tasks []core.Task, workHours float64) summaryView {
	total := core.TotalTime(tasks)
	remaining := core.RemainingHours(workHours, tasks)

	rows := make([]summaryRowView, 0, len(items))
	for _, item := range items {
		pct := core.PercentOfTotal(item, total)
		rows = append(rows, summaryRowView{
			Name:     item.Name,
			Duration: core.FormatHours(item.TotalTime),
			Count:    item.Count,
			Percent:  formatPercent(pct),
			Width:    formatPercent(pct),
		})
	}

	return summaryView{
		Rows:       rows,
		HasTasks:   len(tasks) > 0,
		Total:      core.FormatHours(total),
		WorkHours:  core.FormatHours(workHours),
		Remaining:  core.FormatHours(remaining),
		OverBudget: total > workHours,
	}
}

// workHoursOrDefault reads the saved budget, falling back to the default
// when nothing has been stored yet or the store is unavailable.
func (s *Server) workHoursOrDefault(r *http.Request) float64 {
	hours, err := s.budget.WorkHours(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "Failed to read work hours, using default",
			"error", err, "default", core.DefaultWorkHours)
		return core.DefaultWorkHours
	}
	return core.ClampWorkHours(hours)
}

// handleIndex renders the main page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	summary, tasks, err := s.getSummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list tasks",
			"error", err, applog.FieldComponent, applog.ComponentHTTP, applog.FieldOperation, applog.OpRender)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}

	workHours := s.workHoursOrDefault(r)

	draft, err := s.drafts.Draft(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "Failed to load draft", "error", err)
		draft = core.TaskDraft{}
	}

	data := indexView{
		WorkHours:      workHours,
		WorkHoursLabel: core.FormatHours(workHours),
		MinWorkHours:   core.MinWorkHours,
		MaxWorkHours:   core.MaxWorkHours,
		WorkHoursStep:  core.WorkHoursStep,
		Draft:          draft,
		Tasks:          taskRows(tasks),
		Summary:        buildSummaryView(summary, tasks, workHours),
	}

	if err := s.templates.ExecuteTemplate(w, "index_page", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleTaskList returns the task list partial.
func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	tasks, err := s.getTasks(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list tasks",
			"error", err, applog.FieldComponent, applog.ComponentHTTP, applog.FieldOperation, applog.OpList)
		InternalServerError("Error loading tasks").Write(w)
		return
	}

	data := struct {
		Tasks []taskRowView
	}{Tasks: taskRows(tasks)}

	if err := s.templates.ExecuteTemplate(w, "task_list", data); err != nil {
		slog.ErrorContext(r.Context(), "Task list template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleSummary returns the grouped summary partial.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	summary, tasks, err := s.getSummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build summary",
			"error", err, applog.FieldComponent, applog.ComponentHTTP, applog.FieldOperation, applog.OpRender)
		InternalServerError("Error loading summary").Write(w)
		return
	}

	data := buildSummaryView(summary, tasks, s.workHoursOrDefault(r))

	if err := s.templates.ExecuteTemplate(w, "summary", data); err != nil {
		slog.ErrorContext(r.Context(), "Summary template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
