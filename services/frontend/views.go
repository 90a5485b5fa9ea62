package frontend

import (
	"strconv"

	"github.com/Morgan5/digital-planner/internal/app/agenda"
	"github.com/Morgan5/digital-planner/internal/app/navigation"
	"github.com/Morgan5/digital-planner/internal/app/notes"
	"github.com/Morgan5/digital-planner/internal/app/todo"
	"github.com/Morgan5/digital-planner/internal/app/workspace"
	"github.com/Morgan5/digital-planner/internal/contracts"
	"github.com/a-h/templ"
)

//go:generate templ generate

// LoginForm is what the login page needs to re-render after a failed attempt.
type LoginForm struct {
	Username string
	Error    string
}

// Page carries everything the workspace layout renders for one request.
type Page struct {
	User   contracts.User
	Active navigation.Section
	Error  string
	Fields []string

	Dashboard DashboardData
	Agenda    AgendaData
	Todo      TodoData
	Notes     NotesData
	Guides    GuidesData
}

type DashboardData struct {
	Summary workspace.Summary
}

type AgendaData struct {
	Events []contracts.Event
	Draft  agenda.Draft
}

type TodoData struct {
	Progress todo.Progress
	Draft    todo.Draft
}

// NotesData holds the list plus the note being edited, if any. Draft is the
// create form, or the edit form when Editing is set.
type NotesData struct {
	Notes   []contracts.Note
	Stats   notes.Stats
	Editing *contracts.Note
	Draft   notes.Draft
}

type GuidesData struct {
	Guides   []contracts.Guide
	Selected *contracts.Guide
}

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func sectionURL(s navigation.Section) templ.SafeURL {
	return templ.URL("/app?section=" + string(s))
}

func eventWhen(e contracts.Event) string {
	if e.SingleDay() {
		return e.StartDate + " " + e.StartTime + " - " + e.EndTime
	}
	return e.StartDate + " " + e.StartTime + " - " + e.EndDate + " " + e.EndTime
}

func percentLabel(ratio float64) string {
	return strconv.Itoa(int(ratio*100+0.5)) + "%"
}

func progressWidth(p todo.Progress) string {
	return "width: " + strconv.Itoa(p.Percent()) + "%"
}

func toggleLabel(t contracts.Task) string {
	if t.Completed {
		return "Rouvrir"
	}
	return "Terminer"
}
