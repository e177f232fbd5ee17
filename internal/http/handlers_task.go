package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"timerito/internal/core"
	applog "timerito/internal/log"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if !RequirePOST(w, r) {
		return
	}
	parser := ParseFormOrFail(w, r)
	if parser == nil {
		return
	}

	name := parser.Get("name")
	description := parser.Get("description")

	timeSpent, err := parseTimeSpent(parser)
	if err != nil {
		UnprocessableEntityError("Invalid duration").Write(w)
		return
	}

	task := core.Task{
		Name:        name,
		Description: description,
		TimeSpent:   timeSpent,
		Date:        core.Today(),
	}
	if dateStr := parser.Get("date"); dateStr != "" {
		d, err := parseDate(dateStr)
		if err != nil {
			UnprocessableEntityError("Invalid date").Write(w)
			return
		}
		task.Date = d
	}

	if err := task.Validate(); err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	saved, err := s.writer.Append(r.Context(), task)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save task",
			"error", err,
			applog.FieldTaskName, task.Name,
			applog.FieldMinutes, int64(task.TimeSpent*60),
			applog.FieldComponent, applog.ComponentTask,
			applog.FieldOperation, applog.OpCreate)
		InternalServerError("Error saving task").Write(w)
		return
	}

	s.invalidateCaches()

	slog.InfoContext(r.Context(), "Task created",
		applog.FieldTaskID, saved.ID,
		applog.FieldTaskName, saved.Name,
		applog.FieldMinutes, int64(saved.TimeSpent*60),
		applog.FieldComponent, applog.ComponentTask,
		applog.FieldOperation, applog.OpCreate)

	successMsg := fmt.Sprintf("Logged %s: %s",
		core.FormatHours(saved.TimeSpent),
		template.HTMLEscapeString(saved.Name))

	NewHTMXResponse().
		TriggerTaskCreated(saved.ID).
		TriggerFormReset().
		TriggerSummaryRefresh().
		TriggerSuccessNotification(successMsg).
		Write(w)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, http.MethodPut) {
		return
	}
	parser := ParseFormOrFail(w, r)
	if parser == nil {
		return
	}

	id := parser.Get("id")
	if id == "" {
		BadRequestError("Missing task id").Write(w)
		return
	}

	timeSpent, err := parseTimeSpent(parser)
	if err != nil {
		UnprocessableEntityError("Invalid duration").Write(w)
		return
	}

	fields := core.Task{
		Name:        parser.Get("name"),
		Description: parser.Get("description"),
		TimeSpent:   timeSpent,
		// The stored date is kept on update; Today only satisfies validation.
		Date: core.Today(),
	}
	if err := fields.Validate(); err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	updated, err := s.updater.Update(r.Context(), id, fields)
	if errors.Is(err, core.ErrTaskNotFound) {
		NotFoundError("Task not found").Write(w)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to update task",
			"error", err,
			applog.FieldTaskID, id,
			applog.FieldComponent, applog.ComponentTask,
			applog.FieldOperation, applog.OpUpdate)
		InternalServerError("Error updating task").Write(w)
		return
	}

	s.invalidateCaches()

	slog.InfoContext(r.Context(), "Task updated",
		applog.FieldTaskID, updated.ID,
		applog.FieldTaskName, updated.Name,
		applog.FieldMinutes, int64(updated.TimeSpent*60),
		applog.FieldComponent, applog.ComponentTask,
		applog.FieldOperation, applog.OpUpdate)

	NewHTMXResponse().
		TriggerTaskUpdated(updated.ID).
		TriggerSummaryRefresh().
		TriggerSuccessNotification("Task updated").
		Write(w)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if !RequireDeleteOrPOST(w, r) {
		return
	}
	parser := ParseFormOrFail(w, r)
	if parser == nil {
		return
	}

	id := parser.Get("id")
	if id == "" {
		BadRequestError("Missing task id").Write(w)
		return
	}

	removed, err := s.deleter.Delete(r.Context(), id)
	if errors.Is(err, core.ErrTaskNotFound) {
		NotFoundError("Task not found").Write(w)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete task",
			"error", err,
			applog.FieldTaskID, id,
			applog.FieldComponent, applog.ComponentTask,
			applog.FieldOperation, applog.OpDelete)
		InternalServerError("Error deleting task").Write(w)
		return
	}

	s.invalidateCaches()

	slog.InfoContext(r.Context(), "Task deleted",
		applog.FieldTaskID, removed.ID,
		applog.FieldTaskName, removed.Name,
		applog.FieldComponent, applog.ComponentTask,
		applog.FieldOperation, applog.OpDelete)

	NewHTMXResponse().
		TriggerTaskDeleted(removed.ID).
		TriggerSummaryRefresh().
		TriggerSuccessNotification("Removed " + template.HTMLEscapeString(removed.Name)).
		Write(w)
}

func (s *Server) handleClearTasks(w http.ResponseWriter, r *http.Request) {
	if !RequireDeleteOrPOST(w, r) {
		return
	}

	count, err := s.clearer.Clear(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to clear tasks",
			"error", err,
			applog.FieldComponent, applog.ComponentTask,
			applog.FieldOperation, applog.OpClear)
		InternalServerError("Error clearing tasks").Write(w)
		return
	}

	s.invalidateCaches()

	slog.InfoContext(r.Context(), "Tasks cleared",
		"count", count,
		applog.FieldComponent, applog.ComponentTask,
		applog.FieldOperation, applog.OpClear)

	NewHTMXResponse().
		TriggerTasksCleared(count).
		TriggerSummaryRefresh().
		TriggerSuccessNotification(fmt.Sprintf("Cleared %d tasks", count)).
		Write(w)
}
