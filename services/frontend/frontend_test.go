package frontend

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Morgan5/digital-planner/internal/app/navigation"
	"github.com/Morgan5/digital-planner/internal/app/todo"
	"github.com/Morgan5/digital-planner/internal/contracts"
	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	return buf.String()
}

func TestLoginPage_EscapesInput(t *testing.T) {
	out := render(t, LoginPage(LoginForm{Username: `<b>"x"`, Error: "username and password are required"}))
	if strings.Contains(out, "<b>") {
		t.Fatalf("username was not escaped: %s", out)
	}
	if !strings.Contains(out, `action="/login"`) || !strings.Contains(out, "username and password are required") {
		t.Fatalf("unexpected login page: %s", out)
	}
}

func TestWorkspacePage_MarksActiveSection(t *testing.T) {
	out := render(t, WorkspacePage(Page{
		User:   contracts.User{Username: "alice", IsAuthenticated: true},
		Active: navigation.Todo,
		Todo: TodoData{Progress: todo.Progress{
			Pending:   []contracts.Task{{ID: "t1", Text: "Buy milk"}},
			Completed: []contracts.Task{{ID: "t2", Text: "Walk dog", Completed: true}},
			Total:     2,
			Ratio:     0.5,
		}},
	}))

	for _, want := range []string{
		`href="/app?section=todo" class="active"`,
		`id="task-t1"`,
		`class="task done" id="task-t2"`,
		`style="width: 50%;"`,
		"Buy milk",
		"Guide rapide",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestWorkspacePage_DashboardHasNoTips(t *testing.T) {
	out := render(t, WorkspacePage(Page{User: contracts.User{Username: "alice"}, Active: navigation.Dashboard}))
	if strings.Contains(out, "Guide rapide") {
		t.Fatalf("dashboard should not render tips")
	}
	if strings.Count(out, `class="card"`) != len(navigation.Cards()) {
		t.Fatalf("expected one card per section")
	}
}

func TestWorkspacePage_ValidationErrorFlagsFields(t *testing.T) {
	out := render(t, WorkspacePage(Page{
		Active: navigation.Notes,
		Error:  "required field is blank",
		Fields: []string{"content"},
	}))
	if !strings.Contains(out, `role="alert"`) {
		t.Fatalf("expected alert in output")
	}
	if !strings.Contains(out, `<textarea name="content" rows="4" class="invalid"`) {
		t.Fatalf("expected content field to be flagged: %s", out)
	}
	if strings.Contains(out, `name="title" value="" class="invalid"`) {
		t.Fatalf("title field should not be flagged")
	}
}

func TestWorkspacePage_GuideDetail(t *testing.T) {
	guide := contracts.Guide{ID: "2", Title: "Astuces", Category: "Productivité", Content: "Travaillez par blocs."}
	out := render(t, WorkspacePage(Page{Active: navigation.Guides, Guides: GuidesData{Selected: &guide}}))
	if !strings.Contains(out, "Travaillez par blocs.") || !strings.Contains(out, "Tous les guides") {
		t.Fatalf("unexpected guide detail: %s", out)
	}
}

func TestWorkspacePage_EscapesUserContent(t *testing.T) {
	out := render(t, WorkspacePage(Page{
		User:   contracts.User{Username: "alice"},
		Active: navigation.Todo,
		Todo: TodoData{Progress: todo.Progress{
			Pending: []contracts.Task{{ID: `t1" onclick="x`, Text: "<script>alert(1)</script>"}},
			Total:   1,
		}},
	}))
	if strings.Contains(out, "<script>") {
		t.Fatalf("task text was not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("expected escaped task text in output")
	}
	if strings.Contains(out, `onclick="x"`) {
		t.Fatalf("task id broke out of its attribute: %s", out)
	}
}

func TestWorkspacePage_NoteEditFormTargetsNote(t *testing.T) {
	note := contracts.Note{ID: "n1", Title: "Idées", Content: "a & b"}
	out := render(t, WorkspacePage(Page{
		Active: navigation.Notes,
		Notes:  NotesData{Notes: []contracts.Note{note}, Editing: &note},
	}))
	for _, want := range []string{
		`action="/app/notes/n1"`,
		`href="/app?section=notes&amp;edit=n1"`,
		"a &amp; b",
		"Enregistrer",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output: %s", want, out)
		}
	}
}

func TestWorkspacePage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := WorkspacePage(Page{Active: navigation.Dashboard}).Render(ctx, &buf)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStatic_ServesStylesheet(t *testing.T) {
	rec := httptest.NewRecorder()
	Static("/static/").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/styles.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".layout") {
		t.Fatalf("unexpected stylesheet body")
	}
}
