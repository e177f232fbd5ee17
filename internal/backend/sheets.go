package backend

import (
	"context"
	"fmt"
	"os"

	"timerito/internal/core"
	gsheet "timerito/internal/export/google"
	"timerito/internal/store/local"
)

// sheetsBackend pairs the spreadsheet task rows with a local file store
// for budget and draft settings.
type sheetsBackend struct {
	tasks    *gsheet.Client
	settings *local.Store
}

var _ Backend = (*sheetsBackend)(nil)

func (b *sheetsBackend) Append(ctx context.Context, t core.Task) (core.Task, error) {
	return b.tasks.Append(ctx, t)
}

func (b *sheetsBackend) Update(ctx context.Context, id string, fields core.Task) (core.Task, error) {
	return b.tasks.Update(ctx, id, fields)
}

func (b *sheetsBackend) Delete(ctx context.Context, id string) (core.Task, error) {
	return b.tasks.Delete(ctx, id)
}

func (b *sheetsBackend) Clear(ctx context.Context) (int, error) {
	return b.tasks.Clear(ctx)
}

func (b *sheetsBackend) ListTasks(ctx context.Context) ([]core.Task, error) {
	return b.tasks.ListTasks(ctx)
}

func (b *sheetsBackend) WorkHours(ctx context.Context) (float64, error) {
	return b.settings.WorkHours(ctx)
}

func (b *sheetsBackend) SetWorkHours(ctx context.Context, hours float64) error {
	return b.settings.SetWorkHours(ctx, hours)
}

func (b *sheetsBackend) Draft(ctx context.Context) (core.TaskDraft, error) {
	return b.settings.Draft(ctx)
}

func (b *sheetsBackend) SaveDraft(ctx context.Context, d core.TaskDraft) error {
	return b.settings.SaveDraft(ctx, d)
}

func readCredentialsFile(path string) ([]byte, error) {
	creds, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return creds, nil
}
