package adapters

import (
	"context"

	"timerito/internal/core"
	"timerito/internal/services"
	"timerito/internal/storage"
)

// SQLiteAdapter adapts SQLiteRepository and TaskService to implement the
// store.* interfaces. Mutations route through the service so sync
// messages get published, reads hit the repository directly.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.TaskService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.TaskService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements store.TaskWriter
func (a *SQLiteAdapter) Append(ctx context.Context, t core.Task) (core.Task, error) {
	return a.service.Append(ctx, t)
}

// Update implements store.TaskUpdater
func (a *SQLiteAdapter) Update(ctx context.Context, id string, fields core.Task) (core.Task, error) {
	return a.service.Update(ctx, id, fields)
}

// Delete implements store.TaskDeleter
func (a *SQLiteAdapter) Delete(ctx context.Context, id string) (core.Task, error) {
	return a.service.Delete(ctx, id)
}

// Clear implements store.TaskClearer
func (a *SQLiteAdapter) Clear(ctx context.Context) (int, error) {
	return a.service.Clear(ctx)
}

// ListTasks implements store.TaskLister
func (a *SQLiteAdapter) ListTasks(ctx context.Context) ([]core.Task, error) {
	return a.storage.ListTasks(ctx)
}

// WorkHours implements store.BudgetStore
func (a *SQLiteAdapter) WorkHours(ctx context.Context) (float64, error) {
	return a.storage.WorkHours(ctx)
}

// SetWorkHours implements store.BudgetStore
func (a *SQLiteAdapter) SetWorkHours(ctx context.Context, hours float64) error {
	return a.storage.SetWorkHours(ctx, hours)
}

// Draft implements store.DraftStore
func (a *SQLiteAdapter) Draft(ctx context.Context) (core.TaskDraft, error) {
	return a.storage.Draft(ctx)
}

// SaveDraft implements store.DraftStore
func (a *SQLiteAdapter) SaveDraft(ctx context.Context, d core.TaskDraft) error {
	return a.storage.SaveDraft(ctx, d)
}
