package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRegistry_Exposition(t *testing.T) {
	r := NewRegistry()
	r.SessionsGauge(func() int { return 3 })
	r.ObserveRequest(http.MethodGet, "/api/v1/tasks", http.StatusOK, 15*time.Millisecond)
	r.Mutation("task", "add")
	r.Mutation("task", "add")

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	body := rr.Body.String()
	for _, want := range []string{
		`planner_sessions_active 3`,
		`planner_entity_mutations_total{entity="task",op="add"} 2`,
		`planner_http_requests_total{method="GET",route="/api/v1/tasks",status="200"} 1`,
		`planner_http_request_duration_seconds_count{method="GET",route="/api/v1/tasks"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry
	r.Mutation("task", "add")
	r.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}
