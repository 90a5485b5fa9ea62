package todo

import (
	"strings"

	"github.com/Morgan5/digital-planner/internal/app/store"
	"github.com/Morgan5/digital-planner/internal/contracts"
	"github.com/nats-io/nuid"
)

type Draft struct {
	Text string `json:"text" validate:"notblank"`
}

// Progress partitions the task list by completion.
type Progress struct {
	Pending   []contracts.Task `json:"pending"`
	Completed []contracts.Task `json:"completed"`
	Total     int              `json:"total"`
	Ratio     float64          `json:"ratio"`
}

type Service struct {
	Tasks *store.Collection[contracts.Task]
	NewID func() string
}

func NewService() *Service {
	return &Service{
		Tasks: store.NewCollection[contracts.Task](),
		NewID: nuid.Next,
	}
}

func (s *Service) Add(d Draft) (contracts.Task, error) {
	if err := store.Validate(d); err != nil {
		return contracts.Task{}, err
	}
	return s.Tasks.Append(contracts.Task{
		ID:   s.NewID(),
		Text: strings.TrimSpace(d.Text),
	}), nil
}

func (s *Service) Toggle(id string) (contracts.Task, error) {
	return s.Tasks.Replace(id, func(t contracts.Task) (contracts.Task, error) {
		t.Completed = !t.Completed
		return t, nil
	})
}

func (s *Service) Remove(id string) bool {
	_, removed := s.Tasks.Remove(id)
	return removed
}

func (s *Service) List() []contracts.Task {
	return s.Tasks.List()
}

func (s *Service) Progress() Progress {
	tasks := s.Tasks.List()
	p := Progress{
		Pending:   make([]contracts.Task, 0, len(tasks)),
		Completed: make([]contracts.Task, 0, len(tasks)),
		Total:     len(tasks),
	}
	for _, t := range tasks {
		if t.Completed {
			p.Completed = append(p.Completed, t)
		} else {
			p.Pending = append(p.Pending, t)
		}
	}
	if p.Total > 0 {
		p.Ratio = float64(len(p.Completed)) / float64(p.Total)
	}
	return p
}

// Percent is the completion ratio scaled to 0..100 and rounded down.
func (p Progress) Percent() int {
	return int(p.Ratio * 100)
}
