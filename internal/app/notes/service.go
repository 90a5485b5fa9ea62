package notes

import (
	"math"
	"strings"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/store"
	"github.com/Morgan5/digital-planner/internal/contracts"
	"github.com/nats-io/nuid"
)

// CreatedAtLayout renders the creation date as dd/mm/yyyy.
const CreatedAtLayout = "02/01/2006"

type Draft struct {
	Title   string `json:"title" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
}

type Stats struct {
	Total        int `json:"total"`
	AverageWords int `json:"average_words"`
}

type Service struct {
	Notes *store.Collection[contracts.Note]
	NewID func() string
	Now   func() time.Time
}

func NewService() *Service {
	return &Service{
		Notes: store.NewCollection[contracts.Note](),
		NewID: nuid.Next,
		Now:   time.Now,
	}
}

func (s *Service) Add(d Draft) (contracts.Note, error) {
	if err := store.Validate(d); err != nil {
		return contracts.Note{}, err
	}
	return s.Notes.Append(contracts.Note{
		ID:        s.NewID(),
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: s.Now().Format(CreatedAtLayout),
	}), nil
}

// Update replaces title and content of an existing note. CreatedAt is kept.
func (s *Service) Update(id string, d Draft) (contracts.Note, error) {
	if err := store.Validate(d); err != nil {
		return contracts.Note{}, err
	}
	return s.Notes.Replace(id, func(n contracts.Note) (contracts.Note, error) {
		n.Title = d.Title
		n.Content = d.Content
		return n, nil
	})
}

func (s *Service) Get(id string) (contracts.Note, error) {
	return s.Notes.Get(id)
}

func (s *Service) Remove(id string) bool {
	_, removed := s.Notes.Remove(id)
	return removed
}

func (s *Service) List() []contracts.Note {
	return s.Notes.List()
}

func (s *Service) Stats() Stats {
	notes := s.Notes.List()
	st := Stats{Total: len(notes)}
	if st.Total == 0 {
		return st
	}
	words := 0
	for _, n := range notes {
		words += len(strings.Fields(n.Content))
	}
	st.AverageWords = int(math.Round(float64(words) / float64(st.Total)))
	return st
}
