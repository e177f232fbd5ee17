package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"timerito/internal/core"
	applog "timerito/internal/log"
)

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if !RequirePOST(w, r) {
		return
	}
	parser := ParseFormOrFail(w, r)
	if parser == nil {
		return
	}

	raw := parser.Get("workHours")
	if raw == "" {
		raw = parser.Get("hours")
	}
	hours, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		UnprocessableEntityError("Invalid work hours").Write(w)
		return
	}
	hours = core.ClampWorkHours(hours)

	if err := s.budget.SetWorkHours(r.Context(), hours); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save work hours",
			"error", err,
			applog.FieldWorkHours, hours,
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, "set_budget")
		InternalServerError("Error saving work hours").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Work hours updated",
		applog.FieldWorkHours, hours,
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldOperation, "set_budget")

	NewHTMXResponse().
		TriggerBudgetChanged(hours).
		TriggerSummaryRefresh().
		BodyString(core.FormatHours(hours)).
		Write(w)
}

// handleSaveDraft persists partial form state so a page reload does not
// lose a half-typed entry. Called by the frontend on input changes.
func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	if !RequirePOST(w, r) {
		return
	}
	parser := ParseFormOrFail(w, r)
	if parser == nil {
		return
	}

	draft := core.TaskDraft{
		Name:        parser.Get("name"),
		Description: parser.Get("description"),
	}
	if v := parser.Get("hours"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			draft.Hours = core.ClampHours(h)
		}
	}
	if v := parser.Get("minutes"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			draft.Minutes = core.SnapMinutes(m)
		}
	}

	if err := s.drafts.SaveDraft(r.Context(), draft); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save draft",
			"error", err,
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, "save_draft")
		InternalServerError("Error saving draft").Write(w)
		return
	}

	NewHTMXResponse().Status(http.StatusNoContent).Write(w)
}
