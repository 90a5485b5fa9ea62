package plannerapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/guides"
	"github.com/Morgan5/digital-planner/internal/app/identity"
	"github.com/Morgan5/digital-planner/internal/app/workspace"
	"github.com/Morgan5/digital-planner/internal/contracts"
	platformauth "github.com/Morgan5/digital-planner/internal/platform/auth"
	"github.com/Morgan5/digital-planner/internal/platform/metrics"
	"golang.org/x/time/rate"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc := identity.NewService(platformauth.NewManager("test-secret", time.Hour))
	next := 0
	svc.NewWorkspace = func() *workspace.Workspace {
		return workspace.New(workspace.Options{
			NewID: func() string {
				next++
				return fmt.Sprintf("id-%d", next)
			},
			Now: func() time.Time { return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC) },
		})
	}
	reg := metrics.NewRegistry()
	reg.SessionsGauge(svc.Active)
	return NewHandler(svc, guides.Default(), reg, nil, "http://localhost:8080", nil)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func login(t *testing.T, router http.Handler, username string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	resp := decodeBody[struct {
		Token   string         `json:"token"`
		User    contracts.User `json:"user"`
		Section string         `json:"section"`
	}](t, rec)
	if resp.Token == "" || resp.User.Username != username || !resp.User.IsAuthenticated || resp.Section != "dashboard" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	return resp.Token
}

type taskList struct {
	Tasks     []contracts.Task `json:"tasks"`
	Pending   []contracts.Task `json:"pending"`
	Completed []contracts.Task `json:"completed"`
	Total     int              `json:"total"`
	Ratio     float64          `json:"ratio"`
}

func TestRoutesRequireSession(t *testing.T) {
	router := newTestHandler(t).Router()

	for _, path := range []string{"/api/v1/dashboard", "/api/v1/tasks", "/api/v1/guides"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/tasks", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestLoginRejectsBlankCredentials(t *testing.T) {
	router := newTestHandler(t).Router()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "  "})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeBody[map[string]string](t, rec); body["error"] != identity.ErrInvalidCredentials.Error() {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestLoginThrottled(t *testing.T) {
	h := newTestHandler(t)
	h.LoginLimiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	router := h.Router()

	login(t, router, "alice")
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "pw"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestTodoFlowAcrossSessions(t *testing.T) {
	router := newTestHandler(t).Router()
	token := login(t, router, "alice")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	dash := decodeBody[struct {
		Summary workspace.Summary `json:"summary"`
		Cards   []json.RawMessage `json:"cards"`
	}](t, rec)
	if dash.Summary != (workspace.Summary{}) || len(dash.Cards) != 4 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/section", token, map[string]string{"section": "todo"})
	if got := decodeBody[map[string]any](t, rec)["section"]; got != "todo" {
		t.Fatalf("expected todo section, got %v", got)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/tasks", token, map[string]string{"text": "Buy milk"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add task: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	task := decodeBody[contracts.Task](t, rec)
	if task.Text != "Buy milk" || task.Completed || task.ID == "" {
		t.Fatalf("unexpected task: %+v", task)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/tasks/"+task.ID+"/toggle", token, nil)
	if rec.Code != http.StatusOK || !decodeBody[contracts.Task](t, rec).Completed {
		t.Fatalf("toggle: unexpected response %d %s", rec.Code, rec.Body.String())
	}

	list := decodeBody[taskList](t, doJSON(t, router, http.MethodGet, "/api/v1/tasks", token, nil))
	if list.Total != 1 || len(list.Completed) != 1 || len(list.Pending) != 0 || list.Ratio != 1 {
		t.Fatalf("unexpected task list: %+v", list)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/tasks", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old token must be rejected after logout, got %d", rec.Code)
	}

	token = login(t, router, "alice")
	list = decodeBody[taskList](t, doJSON(t, router, http.MethodGet, "/api/v1/tasks", token, nil))
	if list.Total != 0 || len(list.Tasks) != 0 || list.Ratio != 0 {
		t.Fatalf("new session should start empty: %+v", list)
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	router := newTestHandler(t).Router()
	token := login(t, router, "alice")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/notes", token, map[string]string{"title": "Idea", "content": " "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody[struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}](t, rec)
	if len(body.Fields) != 1 || body.Fields[0] != "content" {
		t.Fatalf("unexpected fields: %+v", body)
	}

	notes := decodeBody[struct {
		Notes []contracts.Note `json:"notes"`
	}](t, doJSON(t, router, http.MethodGet, "/api/v1/notes", token, nil))
	if len(notes.Notes) != 0 {
		t.Fatalf("rejected note must not be stored")
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/tasks", token, "not an object")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad payload, got %d", rec.Code)
	}
}

func TestNotFoundAndIdempotentDelete(t *testing.T) {
	router := newTestHandler(t).Router()
	token := login(t, router, "alice")

	if rec := doJSON(t, router, http.MethodPost, "/api/v1/tasks/missing/toggle", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("toggle missing: expected 404, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPut, "/api/v1/notes/missing", token, map[string]string{"title": "a", "content": "b"}); rec.Code != http.StatusNotFound {
		t.Fatalf("update missing: expected 404, got %d", rec.Code)
	}
	for _, path := range []string{"/api/v1/tasks/missing", "/api/v1/notes/missing", "/api/v1/events/missing"} {
		for i := 0; i < 2; i++ {
			if rec := doJSON(t, router, http.MethodDelete, path, token, nil); rec.Code != http.StatusNoContent {
				t.Fatalf("DELETE %s: expected 204, got %d", path, rec.Code)
			}
		}
	}
}

func TestNoteUpdateKeepsCreatedAt(t *testing.T) {
	router := newTestHandler(t).Router()
	token := login(t, router, "alice")

	created := decodeBody[contracts.Note](t, doJSON(t, router, http.MethodPost, "/api/v1/notes", token, map[string]string{"title": "Idea", "content": "one two"}))
	if created.CreatedAt != "10/02/2026" {
		t.Fatalf("unexpected created_at %q", created.CreatedAt)
	}
	rec := doJSON(t, router, http.MethodPut, "/api/v1/notes/"+created.ID, token, map[string]string{"title": "Idea 2", "content": "one two three"})
	updated := decodeBody[contracts.Note](t, rec)
	if rec.Code != http.StatusOK || updated.Title != "Idea 2" || updated.CreatedAt != created.CreatedAt || updated.ID != created.ID {
		t.Fatalf("unexpected update: %d %+v", rec.Code, updated)
	}
}

func TestEventsRangeFilter(t *testing.T) {
	router := newTestHandler(t).Router()
	token := login(t, router, "alice")

	for _, e := range []map[string]string{
		{"title": "Standup", "start_date": "2026-02-10", "end_date": "2026-02-10", "start_time": "09:00", "end_time": "09:15"},
		{"title": "Trip", "start_date": "2026-02-12", "end_date": "2026-02-14", "start_time": "08:00", "end_time": "18:00"},
	} {
		if rec := doJSON(t, router, http.MethodPost, "/api/v1/events", token, e); rec.Code != http.StatusCreated {
			t.Fatalf("add event: expected 201, got %d (%s)", rec.Code, rec.Body.String())
		}
	}

	type events struct {
		Events []contracts.Event `json:"events"`
	}
	all := decodeBody[events](t, doJSON(t, router, http.MethodGet, "/api/v1/events", token, nil))
	if len(all.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all.Events))
	}
	day := decodeBody[events](t, doJSON(t, router, http.MethodGet, "/api/v1/events?from=2026-02-10&to=2026-02-10", token, nil))
	if len(day.Events) != 1 || day.Events[0].Title != "Standup" {
		t.Fatalf("unexpected events for 2026-02-10: %+v", day.Events)
	}
	later := decodeBody[events](t, doJSON(t, router, http.MethodGet, "/api/v1/events?from=2026-02-13&to=2026-02-20", token, nil))
	if len(later.Events) != 1 || later.Events[0].Title != "Trip" {
		t.Fatalf("unexpected events after 2026-02-13: %+v", later.Events)
	}

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/events?from=2026-02-10", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for half range, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/events?from=10/02/2026&to=2026-02-11", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestGuides(t *testing.T) {
	router := newTestHandler(t).Router()
	token := login(t, router, "alice")

	list := decodeBody[struct {
		Guides []contracts.Guide `json:"guides"`
	}](t, doJSON(t, router, http.MethodGet, "/api/v1/guides", token, nil))
	if len(list.Guides) != 3 {
		t.Fatalf("expected 3 guides, got %d", len(list.Guides))
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/guides/2", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for guide 2, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/guides/42", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown guide, got %d", rec.Code)
	}
}

func TestSectionFallsBackToDashboard(t *testing.T) {
	router := newTestHandler(t).Router()
	token := login(t, router, "alice")

	rec := doJSON(t, router, http.MethodPut, "/api/v1/section", token, map[string]string{"section": "settings"})
	if got := decodeBody[map[string]any](t, rec)["section"]; got != "dashboard" {
		t.Fatalf("expected dashboard fallback, got %v", got)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/session", token, nil)
	body := decodeBody[struct {
		User    contracts.User `json:"user"`
		Section string         `json:"section"`
	}](t, rec)
	if body.User.Username != "alice" || body.Section != "dashboard" {
		t.Fatalf("unexpected session: %+v", body)
	}
}

func TestCORSPreflightAllowsUIOrigin(t *testing.T) {
	router := newTestHandler(t).Router()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Headers", "X-Anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8080" {
		t.Fatalf("unexpected allowed origin %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials to be allowed, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Fatalf("request headers must not be echoed, got %q", got)
	}
}

func TestCORSRejectsOtherOrigins(t *testing.T) {
	router := newTestHandler(t).Router()
	for _, origin := range []string{"http://127.0.0.1:8080", "https://evil.example"} {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("%s: expected no allowed origin, got %q", origin, got)
		}
	}
}

func TestCORSNotAppliedToPages(t *testing.T) {
	router := newTestHandler(t).Router()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("pages should not carry CORS headers, got %q", got)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestHandler(t).Router()
	login(t, router, "alice")

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Fatalf("%s: unexpected response %d %q", path, rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"planner_sessions_active 1", `planner_http_requests_total{method="POST",route="/api/v1/auth/login",status="200"} 1`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}
