package agenda

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/store"
)

func newTestService() *Service {
	svc := NewService()
	next := 0
	svc.NewID = func() string {
		next++
		return fmt.Sprintf("evt-%d", next)
	}
	return svc
}

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAdd_PreservesFields(t *testing.T) {
	svc := newTestService()
	d := Draft{
		Title:       "Dentist",
		StartDate:   "2026-03-10",
		EndDate:     "2026-03-10",
		StartTime:   "09:00",
		EndTime:     "09:30",
		Description: "bring card",
	}

	event, err := svc.Add(d)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if event.ID != "evt-1" || event.Title != d.Title || event.StartDate != d.StartDate || event.EndDate != d.EndDate ||
		event.StartTime != d.StartTime || event.EndTime != d.EndTime || event.Description != d.Description {
		t.Fatalf("unexpected event: %+v", event)
	}
	if !event.SingleDay() {
		t.Fatalf("expected single-day event")
	}
	if got := svc.List(); len(got) != 1 || got[0] != event {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestAdd_DescriptionOptional(t *testing.T) {
	svc := newTestService()
	_, err := svc.Add(Draft{Title: "x", StartDate: "a", EndDate: "b", StartTime: "c", EndTime: "d"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
}

func TestAdd_RequiredFields(t *testing.T) {
	svc := newTestService()
	_, err := svc.Add(Draft{Title: "Meeting", StartDate: "2026-03-10", StartTime: "10:00"})

	var verr *store.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *store.ValidationError, got %v", err)
	}
	want := []string{"end_date", "end_time"}
	if len(verr.Fields) != len(want) || verr.Fields[0] != want[0] || verr.Fields[1] != want[1] {
		t.Fatalf("unexpected fields: %v", verr.Fields)
	}
	if len(svc.List()) != 0 {
		t.Fatalf("collection changed on validation failure")
	}
}

func TestRemove_IdempotentAndUnindexes(t *testing.T) {
	svc := newTestService()
	a, _ := svc.Add(Draft{Title: "a", StartDate: "2026-03-10", EndDate: "2026-03-10", StartTime: "09:00", EndTime: "10:00"})
	b, _ := svc.Add(Draft{Title: "b", StartDate: "2026-03-10", EndDate: "2026-03-10", StartTime: "09:00", EndTime: "10:00"})

	if !svc.Remove(a.ID) {
		t.Fatalf("expected removal")
	}
	if svc.Remove(a.ID) {
		t.Fatalf("second remove should be a no-op")
	}

	got := svc.Between(day("2026-03-10"), day("2026-03-11"))
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("unexpected range result after remove: %+v", got)
	}

	svc.Remove(b.ID)
	if got := svc.Between(day("2026-03-10"), day("2026-03-11")); len(got) != 0 {
		t.Fatalf("expected empty range result, got %+v", got)
	}
}

func TestBetween(t *testing.T) {
	svc := newTestService()
	svc.Add(Draft{Title: "trip", StartDate: "2026-03-01", EndDate: "2026-03-05", StartTime: "08:00", EndTime: "20:00"})
	svc.Add(Draft{Title: "lunch", StartDate: "2026-03-04", EndDate: "2026-03-04", StartTime: "12:00", EndTime: "13:00"})
	svc.Add(Draft{Title: "later", StartDate: "2026-04-01", EndDate: "2026-04-01", StartTime: "12:00", EndTime: "13:00"})
	svc.Add(Draft{Title: "fuzzy", StartDate: "next week", EndDate: "soon", StartTime: "?", EndTime: "?"})
	svc.Add(Draft{Title: "reminder", StartDate: "2026-03-03", EndDate: "2026-03-03", StartTime: "09:00", EndTime: "09:00"})

	tests := []struct {
		name     string
		from, to time.Time
		want     []string
	}{
		{name: "overlap both", from: day("2026-03-04"), to: day("2026-03-05"), want: []string{"trip", "lunch"}},
		{name: "trip and reminder", from: day("2026-03-02"), to: day("2026-03-04"), want: []string{"trip", "reminder"}},
		{name: "trip only", from: day("2026-03-02"), to: day("2026-03-02"), want: []string{"trip"}},
		{name: "reversed bounds", from: day("2026-04-02"), to: day("2026-03-31"), want: []string{"later"}},
		{name: "nothing", from: day("2026-05-01"), to: day("2026-05-31"), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Between(tt.from, tt.to)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i].Title != tt.want[i] {
					t.Fatalf("event %d: got %q want %q", i, got[i].Title, tt.want[i])
				}
			}
		})
	}
}

func TestSpan_RejectsEndBeforeStart(t *testing.T) {
	svc := newTestService()
	event, err := svc.Add(Draft{Title: "odd", StartDate: "2026-03-02", EndDate: "2026-03-01", StartTime: "10:00", EndTime: "09:00"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if _, _, ok := Span(event); ok {
		t.Fatalf("expected span to be rejected")
	}
	if len(svc.List()) != 1 {
		t.Fatalf("event should still be stored")
	}
}

func TestBetween_PointEvent(t *testing.T) {
	svc := newTestService()
	reminder, err := svc.Add(Draft{Title: "call", StartDate: "2024-05-01", EndDate: "2024-05-01", StartTime: "09:00", EndTime: "09:00"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if _, _, ok := Span(reminder); !ok {
		t.Fatalf("zero-length span should be valid")
	}

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	if got := svc.Between(from, to); len(got) != 1 || got[0].ID != reminder.ID {
		t.Fatalf("expected the point event in range, got %+v", got)
	}
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if got := svc.Between(at, at); len(got) != 1 {
		t.Fatalf("expected the point event at its own instant, got %d", len(got))
	}

	svc.Remove(reminder.ID)
	if got := svc.Between(from, to); len(got) != 0 {
		t.Fatalf("removed point event still indexed: %+v", got)
	}
}
