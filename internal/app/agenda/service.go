package agenda

import (
	"fmt"
	"sync"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/store"
	"github.com/Morgan5/digital-planner/internal/contracts"
	"github.com/nats-io/nuid"
	"github.com/rdleal/intervalst/interval"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	dateTimeLayout = DateLayout + " " + TimeLayout
)

type Draft struct {
	Title       string `json:"title" validate:"notblank"`
	StartDate   string `json:"start_date" validate:"notblank"`
	EndDate     string `json:"end_date" validate:"notblank"`
	StartTime   string `json:"start_time" validate:"notblank"`
	EndTime     string `json:"end_time" validate:"notblank"`
	Description string `json:"description"`
}

type span struct {
	start, end time.Time
}

// Service stores agenda events. Events are never edited: callers delete and
// add again. Events with parseable dates are also kept in an interval tree so
// Between can answer range queries. Point events (start == end) are indexed too.
type Service struct {
	Events *store.Collection[contracts.Event]
	NewID  func() string

	mu    sync.Mutex
	index *interval.MultiValueSearchTree[string, time.Time]
	spans map[string]span
}

func NewService() *Service {
	return &Service{
		Events: store.NewCollection[contracts.Event](),
		NewID:  nuid.Next,
		index: interval.NewMultiValueSearchTreeWithOptions[string](
			func(x, y time.Time) int { return x.Compare(y) },
			interval.TreeWithIntervalPoint(),
		),
		spans: map[string]span{},
	}
}

func (s *Service) Add(d Draft) (contracts.Event, error) {
	if err := store.Validate(d); err != nil {
		return contracts.Event{}, err
	}
	event := contracts.Event{
		ID:          s.NewID(),
		Title:       d.Title,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Description: d.Description,
	}
	if err := s.indexEvent(event); err != nil {
		return contracts.Event{}, fmt.Errorf("index event: %w", err)
	}
	return s.Events.Append(event), nil
}

func (s *Service) Remove(id string) bool {
	if _, removed := s.Events.Remove(id); !removed {
		return false
	}
	s.unindexEvent(id)
	return true
}

func (s *Service) List() []contracts.Event {
	return s.Events.List()
}

// Between returns the events overlapping [from, to], in insertion order.
// Events whose dates could not be parsed never match.
func (s *Service) Between(from, to time.Time) []contracts.Event {
	if to.Before(from) {
		from, to = to, from
	}

	s.mu.Lock()
	ids, ok := s.index.AllIntersections(from, to)
	s.mu.Unlock()
	if !ok {
		return []contracts.Event{}
	}

	matched := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		matched[id] = struct{}{}
	}

	out := make([]contracts.Event, 0, len(matched))
	for _, event := range s.Events.List() {
		if _, ok := matched[event.ID]; ok {
			out = append(out, event)
		}
	}
	return out
}

// Span parses the start and end instants of an event.
func Span(e contracts.Event) (time.Time, time.Time, bool) {
	start, err := time.Parse(dateTimeLayout, e.StartDate+" "+e.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(dateTimeLayout, e.EndDate+" "+e.EndTime)
	if err != nil || end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// indexEvent adds the event to the interval tree. Events without a valid
// span are skipped.
func (s *Service) indexEvent(e contracts.Event) error {
	start, end, ok := Span(e)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.index.Insert(start, end, e.ID); err != nil {
		return err
	}
	s.spans[e.ID] = span{start: start, end: end}
	return nil
}

func (s *Service) unindexEvent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.spans[id]
	if !ok {
		return
	}
	delete(s.spans, id)

	ids, _ := s.index.Find(sp.start, sp.end)
	remaining := make([]string, 0, len(ids))
	for _, other := range ids {
		if other != id {
			remaining = append(remaining, other)
		}
	}
	if len(remaining) == 0 {
		_ = s.index.Delete(sp.start, sp.end)
		return
	}
	_ = s.index.Upsert(sp.start, sp.end, remaining...)
}
