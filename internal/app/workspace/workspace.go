package workspace

import (
	"time"

	"github.com/Morgan5/digital-planner/internal/app/agenda"
	"github.com/Morgan5/digital-planner/internal/app/navigation"
	"github.com/Morgan5/digital-planner/internal/app/notes"
	"github.com/Morgan5/digital-planner/internal/app/todo"
	"github.com/nats-io/nuid"
)

// Workspace is everything a single session can see and change. It is created
// empty at login and dropped at logout.
type Workspace struct {
	Agenda    *agenda.Service
	Todo      *todo.Service
	Notes     *notes.Service
	Navigator *navigation.Navigator
}

type Summary struct {
	Events         int     `json:"events"`
	PendingTasks   int     `json:"pending_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	Completion     float64 `json:"completion"`
	Notes          int     `json:"notes"`
}

// Options lets callers swap id and clock sources, mostly for tests.
type Options struct {
	NewID func() string
	Now   func() time.Time
}

func New(opts Options) *Workspace {
	if opts.NewID == nil {
		opts.NewID = nuid.Next
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ag := agenda.NewService()
	ag.NewID = opts.NewID
	td := todo.NewService()
	td.NewID = opts.NewID
	nt := notes.NewService()
	nt.NewID = opts.NewID
	nt.Now = opts.Now

	return &Workspace{
		Agenda:    ag,
		Todo:      td,
		Notes:     nt,
		Navigator: navigation.NewNavigator(),
	}
}

func (w *Workspace) Summary() Summary {
	progress := w.Todo.Progress()
	return Summary{
		Events:         w.Agenda.Events.Len(),
		PendingTasks:   len(progress.Pending),
		CompletedTasks: len(progress.Completed),
		Completion:     progress.Ratio,
		Notes:          w.Notes.Notes.Len(),
	}
}
