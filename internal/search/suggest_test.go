package search

import (
	"context"
	"testing"
)

type fakeRecents struct{ items []string }

func (f *fakeRecents) List(_ context.Context, _ string) ([]string, error) {
	return f.items, nil
}

func TestSuggester_PrefixBeforeSubstring(t *testing.T) {
	s := NewSuggester(nil, 8)

	got := s.Suggest(context.Background(), "", "ma")
	if len(got) == 0 {
		t.Fatal("expected suggestions for prefix \"ma\"")
	}
	if got[0] != "Maun" && got[0] != "Mahalapye" {
		t.Errorf("prefix matches should rank first, got %v", got)
	}
}

func TestSuggester_RecentsFirstAndDeduplicated(t *testing.T) {
	s := NewSuggester(&fakeRecents{items: []string{"maun farms", "gaborone"}}, 8)

	got := s.Suggest(context.Background(), "device-1", "maun")
	if len(got) < 2 {
		t.Fatalf("got %v, want recent plus location", got)
	}
	if got[0] != "maun farms" {
		t.Errorf("recents should rank first, got %v", got)
	}
	seen := map[string]bool{}
	for _, g := range got {
		if seen[g] {
			t.Errorf("duplicate suggestion %q", g)
		}
		seen[g] = true
	}
}

func TestSuggester_LimitRespected(t *testing.T) {
	s := NewSuggester(nil, 3)
	if got := s.Suggest(context.Background(), "", "a"); len(got) > 3 {
		t.Errorf("limit exceeded: %v", got)
	}
}

func TestSuggester_EmptyQueryWithoutRecents(t *testing.T) {
	s := NewSuggester(nil, 8)
	if got := s.Suggest(context.Background(), "", ""); len(got) != 0 {
		t.Errorf("empty query without recents should return nothing, got %v", got)
	}
}
