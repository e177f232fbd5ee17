package local

import (
	"context"
	"errors"
	"testing"

	"timerito/internal/core"
)

type mapGateway struct {
	values map[string]string
	fail   bool
}

func newMapGateway() *mapGateway {
	return &mapGateway{values: map[string]string{}}
}

func (g *mapGateway) Load(key string) (string, bool) {
	v, ok := g.values[key]
	return v, ok
}

func (g *mapGateway) Save(key, value string) error {
	if g.fail {
		return errors.New("quota exceeded")
	}
	g.values[key] = value
	return nil
}

func TestAppendAssignsIDAndDate(t *testing.T) {
	s := New(newMapGateway())
	ctx := context.Background()

	stored, err := s.Append(ctx, core.Task{Name: "Email", TimeSpent: 1.5})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stored.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if stored.Date.IsZero() {
		t.Fatalf("expected assigned date")
	}

	second, err := s.Append(ctx, core.Task{Name: "Email", TimeSpent: 0.5})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.ID == stored.ID {
		t.Fatalf("ids must be unique, both %q", second.ID)
	}
}

func TestAppendRejectsInvalidTasks(t *testing.T) {
	s := New(newMapGateway())
	ctx := context.Background()

	if _, err := s.Append(ctx, core.Task{Name: "", TimeSpent: 1}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := s.Append(ctx, core.Task{Name: "Meeting", TimeSpent: 0}); !errors.Is(err, core.ErrInvalidTimeSpent) {
		t.Fatalf("expected ErrInvalidTimeSpent, got %v", err)
	}

	tasks, _ := s.ListTasks(ctx)
	if len(tasks) != 0 {
		t.Fatalf("rejected adds must not be stored, have %d", len(tasks))
	}
}

func TestUpdateReplacesFieldsKeepsIDAndDate(t *testing.T) {
	s := New(newMapGateway())
	ctx := context.Background()

	stored, _ := s.Append(ctx, core.Task{Name: "Email", TimeSpent: 1})
	updated, err := s.Update(ctx, stored.ID, core.Task{Name: "Inbox", Description: "triage", TimeSpent: 2})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != stored.ID {
		t.Fatalf("id must be immutable")
	}
	if !updated.Date.Equal(stored.Date.Time) {
		t.Fatalf("date must be immutable")
	}
	if updated.Name != "Inbox" || updated.TimeSpent != 2 {
		t.Fatalf("fields not replaced: %+v", updated)
	}

	tasks, _ := s.ListTasks(ctx)
	if len(tasks) != 1 || tasks[0].Name != "Inbox" {
		t.Fatalf("update must happen in place, got %+v", tasks)
	}
}

func TestUpdateMissingIDIsNotFound(t *testing.T) {
	s := New(newMapGateway())
	if _, err := s.Update(context.Background(), "nope", core.Task{Name: "x", TimeSpent: 1}); !errors.Is(err, core.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotentNotFound(t *testing.T) {
	s := New(newMapGateway())
	ctx := context.Background()

	stored, _ := s.Append(ctx, core.Task{Name: "Email", TimeSpent: 1})
	removed, err := s.Delete(ctx, stored.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.Name != "Email" {
		t.Fatalf("delete must return the removed task, got %+v", removed)
	}

	// Second delete of the same id: NotFound, store unchanged.
	if _, err := s.Delete(ctx, stored.ID); !errors.Is(err, core.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	tasks, _ := s.ListTasks(ctx)
	if len(tasks) != 0 {
		t.Fatalf("store should stay empty, got %d tasks", len(tasks))
	}
}

func TestClear(t *testing.T) {
	s := New(newMapGateway())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := s.Append(ctx, core.Task{Name: "t", TimeSpent: 1}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	n, err := s.Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Clear = (%d, %v), want (3, nil)", n, err)
	}
	tasks, _ := s.ListTasks(ctx)
	if len(tasks) != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestStateSurvivesReload(t *testing.T) {
	gw := newMapGateway()
	ctx := context.Background()

	s := New(gw)
	stored, _ := s.Append(ctx, core.Task{Name: "Email", TimeSpent: 1.5})
	_ = s.SetWorkHours(ctx, 7.5)
	_ = s.SaveDraft(ctx, core.TaskDraft{Name: "wip", Hours: 1, Minutes: 30})

	reloaded := New(gw)
	tasks, _ := reloaded.ListTasks(ctx)
	if len(tasks) != 1 || tasks[0].ID != stored.ID {
		t.Fatalf("tasks did not survive reload: %+v", tasks)
	}
	if wh, _ := reloaded.WorkHours(ctx); wh != 7.5 {
		t.Fatalf("work hours did not survive reload, got %v", wh)
	}
	if d, _ := reloaded.Draft(ctx); d.Name != "wip" || d.Minutes != 30 {
		t.Fatalf("draft did not survive reload: %+v", d)
	}
}

func TestMalformedStateFallsBackToDefaults(t *testing.T) {
	gw := newMapGateway()
	gw.values[KeyWorkHours] = "not-a-number"
	gw.values[KeyTasks] = "{corrupted"
	gw.values[KeyTaskForm] = "[]"

	s := New(gw)
	ctx := context.Background()
	if wh, _ := s.WorkHours(ctx); wh != core.DefaultWorkHours {
		t.Fatalf("expected default budget, got %v", wh)
	}
	tasks, _ := s.ListTasks(ctx)
	if len(tasks) != 0 {
		t.Fatalf("expected empty tasks")
	}
}

func TestPersistenceFailureKeepsMemoryAuthoritative(t *testing.T) {
	gw := newMapGateway()
	gw.fail = true
	s := New(gw)
	ctx := context.Background()

	stored, err := s.Append(ctx, core.Task{Name: "Email", TimeSpent: 1})
	if err != nil {
		t.Fatalf("append must not fail on persistence error, got %v", err)
	}
	tasks, _ := s.ListTasks(ctx)
	if len(tasks) != 1 || tasks[0].ID != stored.ID {
		t.Fatalf("in-memory state must remain authoritative")
	}
}

func TestFileGatewayRoundTrip(t *testing.T) {
	gw := NewFileGateway(t.TempDir())
	if _, ok := gw.Load(KeyTasks); ok {
		t.Fatalf("missing key must report ok=false")
	}
	if err := gw.Save(KeyTasks, `[]`); err != nil {
		t.Fatalf("save: %v", err)
	}
	v, ok := gw.Load(KeyTasks)
	if !ok || v != `[]` {
		t.Fatalf("Load = (%q, %v)", v, ok)
	}
}
