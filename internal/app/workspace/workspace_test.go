package workspace

import (
	"fmt"
	"testing"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/agenda"
	"github.com/Morgan5/digital-planner/internal/app/navigation"
	"github.com/Morgan5/digital-planner/internal/app/notes"
	"github.com/Morgan5/digital-planner/internal/app/todo"
)

func TestNew_StartsEmptyOnDashboard(t *testing.T) {
	w := New(Options{})
	if w.Navigator.Active() != navigation.Dashboard {
		t.Fatalf("expected dashboard, got %q", w.Navigator.Active())
	}
	if s := w.Summary(); s != (Summary{}) {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestNew_SharesIDSource(t *testing.T) {
	next := 0
	w := New(Options{
		NewID: func() string {
			next++
			return fmt.Sprintf("id-%d", next)
		},
		Now: func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) },
	})

	task, _ := w.Todo.Add(todo.Draft{Text: "a"})
	note, _ := w.Notes.Add(notes.Draft{Title: "t", Content: "c"})
	event, _ := w.Agenda.Add(agenda.Draft{Title: "e", StartDate: "2026-01-02", EndDate: "2026-01-02", StartTime: "10:00", EndTime: "11:00"})

	if task.ID != "id-1" || note.ID != "id-2" || event.ID != "id-3" {
		t.Fatalf("unexpected ids: %s %s %s", task.ID, note.ID, event.ID)
	}
	if note.CreatedAt != "02/01/2026" {
		t.Fatalf("unexpected created_at: %q", note.CreatedAt)
	}
}

func TestSummary(t *testing.T) {
	w := New(Options{})
	a, _ := w.Todo.Add(todo.Draft{Text: "a"})
	w.Todo.Add(todo.Draft{Text: "b"})
	w.Todo.Toggle(a.ID)
	w.Notes.Add(notes.Draft{Title: "t", Content: "c"})
	w.Agenda.Add(agenda.Draft{Title: "e", StartDate: "d", EndDate: "d", StartTime: "t", EndTime: "t"})

	s := w.Summary()
	want := Summary{Events: 1, PendingTasks: 1, CompletedTasks: 1, Completion: 0.5, Notes: 1}
	if s != want {
		t.Fatalf("unexpected summary: got %+v want %+v", s, want)
	}
}
