package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"timerito/internal/amqp"
	"timerito/internal/core"
	"timerito/internal/storage"
)

// TaskService orchestrates task operations across SQLite and AMQP
type TaskService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTaskService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TaskService {
	return &TaskService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Append saves a task locally and publishes a sync message for the
// timesheet export. The export is best-effort: a publish failure never
// fails the request.
func (s *TaskService) Append(ctx context.Context, t core.Task) (core.Task, error) {
	saved, err := s.storage.Append(ctx, t)
	if err != nil {
		return core.Task{}, fmt.Errorf("save task: %w", err)
	}

	id, err := strconv.ParseInt(saved.ID, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse task ID", "id", saved.ID, "error", err)
		return saved, nil // SQLite save succeeded
	}

	// New tasks always start at version 1
	if err := s.publishSyncMessage(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return saved, nil
}

// Update rewrites a task in place and publishes a sync message with the
// bumped version so the export picks up the edit.
func (s *TaskService) Update(ctx context.Context, id string, fields core.Task) (core.Task, error) {
	updated, err := s.storage.Update(ctx, id, fields)
	if err != nil {
		return core.Task{}, err
	}

	numID, err := strconv.ParseInt(updated.ID, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse task ID", "id", updated.ID, "error", err)
		return updated, nil
	}

	version, err := s.storage.SyncVersion(ctx, numID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read sync version", "id", numID, "error", err)
		return updated, nil
	}

	if err := s.publishSyncMessage(ctx, numID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", numID, "error", err)
	}

	return updated, nil
}

// Delete removes a task locally and publishes a delete message carrying
// enough data for the export to find the matching row.
func (s *TaskService) Delete(ctx context.Context, id string) (core.Task, error) {
	removed, err := s.storage.Delete(ctx, id)
	if err != nil {
		return core.Task{}, err
	}

	if err := s.publishDeleteMessage(ctx, removed); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", removed.ID, "error", err)
	}

	return removed, nil
}

// Clear removes every task and publishes a delete message per removed row.
func (s *TaskService) Clear(ctx context.Context) (int, error) {
	tasks, err := s.storage.ListTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tasks before clear: %w", err)
	}

	count, err := s.storage.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear tasks: %w", err)
	}

	for _, t := range tasks {
		if err := s.publishDeleteMessage(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message",
				"id", t.ID, "error", err)
		}
	}

	return count, nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]core.Task, error) {
	return s.storage.ListTasks(ctx)
}

func (s *TaskService) WorkHours(ctx context.Context) (float64, error) {
	return s.storage.WorkHours(ctx)
}

func (s *TaskService) SetWorkHours(ctx context.Context, hours float64) error {
	return s.storage.SetWorkHours(ctx, hours)
}

func (s *TaskService) Draft(ctx context.Context) (core.TaskDraft, error) {
	return s.storage.Draft(ctx)
}

func (s *TaskService) SaveDraft(ctx context.Context, d core.TaskDraft) error {
	return s.storage.SaveDraft(ctx, d)
}

func (s *TaskService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishTaskSync(ctx, id, version)
}

func (s *TaskService) publishDeleteMessage(ctx context.Context, t core.Task) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}

	id, err := strconv.ParseInt(t.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse task ID %q: %w", t.ID, err)
	}
	minutes := int64(math.Round(t.TimeSpent * 60))
	msg := amqp.NewTaskDeleteMessage(id, t.Name, minutes, t.Date.Format("2006-01-02"))

	return s.amqpClient.PublishTaskDelete(ctx, msg)
}

// Close closes both storage and AMQP connections
func (s *TaskService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close task service: %v", errs)
	}

	return nil
}
