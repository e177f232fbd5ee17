package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"timerito/internal/amqp"
	"timerito/internal/core"
	applog "timerito/internal/log"
	"timerito/internal/storage"
)

// TaskExporter mirrors task rows into the external timesheet.
type TaskExporter interface {
	UpsertTask(ctx context.Context, t core.Task) error
	RemoveTask(ctx context.Context, id string) error
}

// SyncWorker handles synchronization of tasks from SQLite to the
// timesheet export
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	export    TaskExporter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, export TaskExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		export:    export,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single task sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TaskSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	return w.syncTask(ctx, msg.ID)
}

// HandleDeleteMessage processes a single task delete message from AMQP
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TaskDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"id", msg.ID,
		"name", msg.Name)

	if w.export == nil {
		slog.WarnContext(ctx, "No task exporter configured, skipping timesheet deletion",
			"id", msg.ID)
		return nil
	}

	id := strconv.FormatInt(msg.ID, 10)
	if err := w.export.RemoveTask(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete task from timesheet",
			"id", msg.ID,
			"error", err,
			"timestamp", msg.Timestamp)
		return fmt.Errorf("delete task from timesheet: %w", err)
	}

	slog.InfoContext(ctx, "Successfully deleted task from timesheet",
		"id", msg.ID,
		"timestamp", msg.Timestamp)

	return nil
}

// ProcessPendingTasks processes any tasks that haven't been synced yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTasks(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTasks(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending tasks: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending tasks", "count", len(pending))

	for _, p := range pending {
		if err := w.syncTask(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync task", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck verifies and syncs any pending tasks at worker startup.
// This recovers from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.storage.GetPendingSyncTasks(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending tasks for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending tasks found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending tasks on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.syncTask(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync task during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncTask(ctx context.Context, id int64) error {
	if w.export == nil {
		slog.WarnContext(ctx, "No task exporter configured, skipping sync", "id", id)
		return nil
	}

	task, err := w.storage.GetTask(ctx, id)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("get task from storage: %w", err)
	}

	if err := w.export.UpsertTask(ctx, task); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("upsert task in timesheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// The export itself worked, don't fail the message
	}

	fields := applog.NewFields().
		WithTask(task.ID, task.Name, int64(task.TimeSpent*60)).
		WithComponent(applog.ComponentWorker).
		WithOperation(applog.OpSync)
	slog.InfoContext(ctx, "Successfully synced task", fields.ToSlice()...)

	return nil
}
