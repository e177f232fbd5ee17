package store

import (
	"context"

	"timerito/internal/core"
)

// Ports for outbound adapters.
type (
	TaskWriter interface {
		// Append validates, assigns id and date, stores the task and
		// returns it as stored.
		Append(ctx context.Context, t core.Task) (core.Task, error)
	}

	TaskUpdater interface {
		// Update replaces name, description and time spent of the task
		// with the given id. Returns core.ErrTaskNotFound if absent.
		Update(ctx context.Context, id string, fields core.Task) (core.Task, error)
	}

	TaskDeleter interface {
		// Delete removes the task and returns it for user feedback.
		// Returns core.ErrTaskNotFound if absent.
		Delete(ctx context.Context, id string) (core.Task, error)
	}

	TaskClearer interface {
		// Clear removes every task and reports how many were dropped.
		Clear(ctx context.Context) (int, error)
	}

	// TaskLister returns the full ordered task collection.
	TaskLister interface {
		ListTasks(ctx context.Context) ([]core.Task, error)
	}

	// BudgetStore reads and writes the daily work-hour budget.
	BudgetStore interface {
		WorkHours(ctx context.Context) (float64, error)
		SetWorkHours(ctx context.Context, hours float64) error
	}

	// DraftStore persists in-progress form state across reloads.
	DraftStore interface {
		Draft(ctx context.Context) (core.TaskDraft, error)
		SaveDraft(ctx context.Context, d core.TaskDraft) error
	}
)
