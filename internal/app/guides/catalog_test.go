package guides

import (
	"errors"
	"testing"
)

func TestList_AlwaysThreeGuides(t *testing.T) {
	c := Default()
	first := c.List()
	if len(first) != 3 {
		t.Fatalf("expected 3 guides, got %d", len(first))
	}

	first[0].Title = "changed"

	again := c.List()
	if len(again) != 3 || again[0].Title != "Bien organiser son planning" {
		t.Fatalf("catalog changed through a returned slice: %+v", again)
	}
}

func TestGet(t *testing.T) {
	c := Default()
	g, err := c.Get("2")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if g.Category != "Productivité" {
		t.Fatalf("unexpected guide: %+v", g)
	}

	if _, err := c.Get("42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
