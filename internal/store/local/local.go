// Package local implements the default task backend: an in-memory store
// that writes its whole state through a small key-value gateway after
// every mutation, localStorage style. The in-memory state stays
// authoritative when a write fails.
package local

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"timerito/internal/core"
)

// Persisted keys. Values are plain text for the budget and JSON blobs for
// tasks and the form draft.
const (
	KeyWorkHours = "workHours"
	KeyTasks     = "tasks"
	KeyTaskForm  = "taskForm"
)

// Gateway is the durable key-value medium state is written to. A missing
// key reports ok=false and is treated as "no saved value".
type Gateway interface {
	Load(key string) (value string, ok bool)
	Save(key, value string) error
}

// FileGateway keeps one file per key under a base directory.
type FileGateway struct {
	dir string
}

func NewFileGateway(dir string) *FileGateway {
	return &FileGateway{dir: dir}
}

func (g *FileGateway) path(key string) string {
	return filepath.Join(g.dir, key+".json")
}

func (g *FileGateway) Load(key string) (string, bool) {
	data, err := os.ReadFile(g.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (g *FileGateway) Save(key, value string) error {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(g.path(key), []byte(value), 0644)
}

// Store holds the ordered task collection and the work-hour budget.
type Store struct {
	mu        sync.Mutex
	gw        Gateway
	tasks     []core.Task
	workHours float64
	draft     core.TaskDraft
	lastID    int64
	warnOnce  sync.Once
}

// New rehydrates a store from the gateway. Missing keys fall back to
// defaults (budget 8, no tasks, empty draft); malformed blobs do the same
// with a warning instead of propagating a parse failure.
func New(gw Gateway) *Store {
	s := &Store{gw: gw, workHours: core.DefaultWorkHours}

	if raw, ok := gw.Load(KeyWorkHours); ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			s.workHours = v
		} else {
			slog.Warn("Malformed saved work hours, using default",
				"value", raw, "default", core.DefaultWorkHours)
		}
	}

	if raw, ok := gw.Load(KeyTasks); ok {
		var tasks []core.Task
		if err := json.Unmarshal([]byte(raw), &tasks); err == nil {
			s.tasks = tasks
			for _, t := range tasks {
				if id, err := strconv.ParseInt(t.ID, 10, 64); err == nil && id > s.lastID {
					s.lastID = id
				}
			}
		} else {
			slog.Warn("Malformed saved tasks, starting empty", "error", err)
		}
	}

	if raw, ok := gw.Load(KeyTaskForm); ok {
		var d core.TaskDraft
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			s.draft = d
		} else {
			slog.Warn("Malformed saved draft, discarding", "error", err)
		}
	}

	return s
}

// NewFromDir is a convenience constructor over a FileGateway.
func NewFromDir(dir string) *Store {
	return New(NewFileGateway(dir))
}

// nextID returns a fresh millisecond-based id, bumped past the last one
// so rapid adds stay unique.
func (s *Store) nextID() string {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// persistTasks writes the whole collection back. A failed write keeps the
// in-memory state authoritative; the first failure logs a warning.
func (s *Store) persistTasks(ctx context.Context) {
	data, err := json.Marshal(s.tasks)
	if err != nil {
		s.warnPersist(ctx, err)
		return
	}
	if err := s.gw.Save(KeyTasks, string(data)); err != nil {
		s.warnPersist(ctx, err)
	}
}

func (s *Store) warnPersist(ctx context.Context, err error) {
	s.warnOnce.Do(func() {
		slog.WarnContext(ctx, "Persisting state failed, in-memory state remains authoritative",
			"error", err)
	})
}

// Append implements store.TaskWriter.
func (s *Store) Append(ctx context.Context, t core.Task) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID()
	if t.Date.IsZero() {
		t.Date = core.Today()
	}
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	s.tasks = append(s.tasks, t)
	s.persistTasks(ctx)
	return t, nil
}

// Update implements store.TaskUpdater. Id and date are immutable.
func (s *Store) Update(ctx context.Context, id string, fields core.Task) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID != id {
			continue
		}
		next := t
		next.Name = fields.Name
		next.Description = fields.Description
		next.TimeSpent = fields.TimeSpent
		if err := next.Validate(); err != nil {
			return core.Task{}, err
		}
		s.tasks[i] = next
		s.persistTasks(ctx)
		return next, nil
	}
	return core.Task{}, core.ErrTaskNotFound
}

// Delete implements store.TaskDeleter.
func (s *Store) Delete(ctx context.Context, id string) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID != id {
			continue
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		s.persistTasks(ctx)
		return t, nil
	}
	return core.Task{}, core.ErrTaskNotFound
}

// Clear implements store.TaskClearer.
func (s *Store) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tasks)
	s.tasks = nil
	s.persistTasks(ctx)
	return n, nil
}

// ListTasks implements store.TaskLister.
func (s *Store) ListTasks(_ context.Context) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

// WorkHours implements store.BudgetStore.
func (s *Store) WorkHours(_ context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workHours, nil
}

// SetWorkHours implements store.BudgetStore. Range clamping is the
// caller's concern; any value is accepted here.
func (s *Store) SetWorkHours(ctx context.Context, hours float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workHours = hours
	if err := s.gw.Save(KeyWorkHours, strconv.FormatFloat(hours, 'f', -1, 64)); err != nil {
		s.warnPersist(ctx, err)
	}
	return nil
}

// Draft implements store.DraftStore.
func (s *Store) Draft(_ context.Context) (core.TaskDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, nil
}

// SaveDraft implements store.DraftStore.
func (s *Store) SaveDraft(ctx context.Context, d core.TaskDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = d
	data, err := json.Marshal(d)
	if err != nil {
		s.warnPersist(ctx, err)
		return nil
	}
	if err := s.gw.Save(KeyTaskForm, string(data)); err != nil {
		s.warnPersist(ctx, err)
	}
	return nil
}
