package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"timerito/internal/core"

	_ "modernc.org/sqlite"
)

// Settings keys in the settings table.
const (
	settingWorkHours = "workHours"
	settingTaskForm  = "taskForm"
)

type SQLiteRepository struct {
	db *sql.DB
}

// PendingSyncTask is the minimal data needed for sync queue messages.
type PendingSyncTask struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// minutesFromHours converts fractional hours to whole minutes, the unit
// durations are stored in. One-minute precision matches the entry form.
func minutesFromHours(h float64) int64 {
	return int64(math.Round(h * 60))
}

func hoursFromMinutes(m int64) float64 {
	return float64(m) / 60
}

// Append implements store.TaskWriter.
func (r *SQLiteRepository) Append(ctx context.Context, t core.Task) (core.Task, error) {
	if t.Date.IsZero() {
		t.Date = core.Today()
	}
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (name, description, minutes, date) VALUES (?, ?, ?, ?)`,
		t.Name, t.Description, minutesFromHours(t.TimeSpent), t.Date.String())
	if err != nil {
		return core.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Task{}, fmt.Errorf("task insert id: %w", err)
	}
	t.ID = strconv.FormatInt(id, 10)

	slog.InfoContext(ctx, "Task saved to SQLite",
		"id", t.ID,
		"name", t.Name,
		"minutes", minutesFromHours(t.TimeSpent),
		"date", t.Date.String())

	return t, nil
}

// Update implements store.TaskUpdater. Id and date stay untouched; the
// sync flag is reset so the worker pushes the new version.
func (r *SQLiteRepository) Update(ctx context.Context, id string, fields core.Task) (core.Task, error) {
	current, err := r.getByStringID(ctx, id)
	if err != nil {
		return core.Task{}, err
	}

	next := current
	next.Name = fields.Name
	next.Description = fields.Description
	next.TimeSpent = fields.TimeSpent
	if err := next.Validate(); err != nil {
		return core.Task{}, err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, description = ?, minutes = ?, version = version + 1, synced = 0, sync_error = 0 WHERE id = ?`,
		next.Name, next.Description, minutesFromHours(next.TimeSpent), id)
	if err != nil {
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	return next, nil
}

// Delete implements store.TaskDeleter, returning the removed task.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) (core.Task, error) {
	t, err := r.getByStringID(ctx, id)
	if err != nil {
		return core.Task{}, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return core.Task{}, fmt.Errorf("delete task: %w", err)
	}
	return t, nil
}

// Clear implements store.TaskClearer.
func (r *SQLiteRepository) Clear(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks`)
	if err != nil {
		return 0, fmt.Errorf("clear tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear tasks rows affected: %w", err)
	}
	return int(n), nil
}

// ListTasks implements store.TaskLister; insertion order is id order.
func (r *SQLiteRepository) ListTasks(ctx context.Context) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, minutes, date FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks rows: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves a single task by database id, for the sync worker.
func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (core.Task, error) {
	return r.getByStringID(ctx, strconv.FormatInt(id, 10))
}

func (r *SQLiteRepository) getByStringID(ctx context.Context, id string) (core.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, minutes, date FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Task{}, core.ErrTaskNotFound
	}
	if err != nil {
		return core.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (core.Task, error) {
	var (
		id      int64
		t       core.Task
		minutes int64
		date    string
	)
	if err := row.Scan(&id, &t.Name, &t.Description, &minutes, &date); err != nil {
		return core.Task{}, err
	}
	t.ID = strconv.FormatInt(id, 10)
	t.TimeSpent = hoursFromMinutes(minutes)
	if parsed, err := time.Parse("2006-01-02", date); err == nil {
		t.Date = core.Date{Time: parsed}
	}
	return t, nil
}

// WorkHours implements store.BudgetStore.
func (r *SQLiteRepository) WorkHours(ctx context.Context) (float64, error) {
	raw, ok, err := r.setting(ctx, settingWorkHours)
	if err != nil {
		return 0, err
	}
	if !ok {
		return core.DefaultWorkHours, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.WarnContext(ctx, "Malformed saved work hours, using default",
			"value", raw, "default", core.DefaultWorkHours)
		return core.DefaultWorkHours, nil
	}
	return v, nil
}

// SetWorkHours implements store.BudgetStore.
func (r *SQLiteRepository) SetWorkHours(ctx context.Context, hours float64) error {
	return r.saveSetting(ctx, settingWorkHours, strconv.FormatFloat(hours, 'f', -1, 64))
}

// Draft implements store.DraftStore.
func (r *SQLiteRepository) Draft(ctx context.Context) (core.TaskDraft, error) {
	raw, ok, err := r.setting(ctx, settingTaskForm)
	if err != nil || !ok {
		return core.TaskDraft{}, err
	}
	var d core.TaskDraft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		slog.WarnContext(ctx, "Malformed saved draft, discarding", "error", err)
		return core.TaskDraft{}, nil
	}
	return d, nil
}

// SaveDraft implements store.DraftStore.
func (r *SQLiteRepository) SaveDraft(ctx context.Context, d core.TaskDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	return r.saveSetting(ctx, settingTaskForm, string(data))
}

func (r *SQLiteRepository) setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) saveSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// GetPendingSyncTasks returns tasks that still need to be pushed to the
// timesheet export.
func (r *SQLiteRepository) GetPendingSyncTasks(ctx context.Context, limit int) ([]PendingSyncTask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM tasks WHERE synced = 0 AND sync_error = 0 ORDER BY id LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync tasks: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncTask
	for rows.Next() {
		var p PendingSyncTask
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync task: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending sync rows: %w", err)
	}
	return pending, nil
}

// SyncVersion returns the current sync version of a task.
func (r *SQLiteRepository) SyncVersion(ctx context.Context, id int64) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM tasks WHERE id = ?`, id).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, core.ErrTaskNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get sync version: %w", err)
	}
	return version, nil
}

// MarkSynced marks a task as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE tasks SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark task synced: %w", err)
	}
	slog.InfoContext(ctx, "Task marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a task as having failed export so the periodic
// backstop stops retrying it every tick.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE tasks SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark task sync error: %w", err)
	}
	slog.WarnContext(ctx, "Task marked with sync error", "id", id)
	return nil
}
