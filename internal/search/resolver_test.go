package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"propertybw/internal/model"
)

type fakeInterpreter struct {
	calls   int
	payload *model.AIFilterPayload
	err     error
}

func (f *fakeInterpreter) Interpret(_ context.Context, _ string) (*model.AIFilterPayload, error) {
	f.calls++
	return f.payload, f.err
}

func TestResolver_RejectsShortQueries(t *testing.T) {
	interp := &fakeInterpreter{}
	r := NewResolver(interp, 2, zap.NewNop())

	for _, q := range []string{"", " ", "a", " a "} {
		_, err := r.Resolve(context.Background(), q, model.DefaultFilters(), sampleProperties())
		if !errors.Is(err, ErrQueryTooShort) {
			t.Errorf("query %q: err = %v, want ErrQueryTooShort", q, err)
		}
	}
	if interp.calls != 0 {
		t.Errorf("short queries must not reach the interpreter, got %d calls", interp.calls)
	}
}

func TestResolver_FallsBackOnInterpreterFailure(t *testing.T) {
	interp := &fakeInterpreter{err: errors.New("upstream 500")}
	r := NewResolver(interp, 2, zap.NewNop())

	res, err := r.Resolve(context.Background(), "houses in Maun", model.DefaultFilters(), sampleProperties())
	if err != nil {
		t.Fatalf("fallback path must not surface a hard error, got %v", err)
	}
	if !res.Degraded {
		t.Error("expected degraded resolution")
	}
	if len(res.Results) != 1 || res.Results[0].ID != 3 {
		t.Fatalf("fallback results = %v, want the Maun farm", ids(res.Results))
	}
}

func TestResolver_MergesInterpretedFilters(t *testing.T) {
	maxPrice := 500000.0
	beds := 2
	interp := &fakeInterpreter{payload: &model.AIFilterPayload{
		MaxPrice:    &maxPrice,
		MinBedrooms: &beds,
		Explanation: "Up to P500,000 with at least two bedrooms",
		Confidence:  0.9,
	}}
	r := NewResolver(interp, 2, zap.NewNop())

	current := model.DefaultFilters()
	current.ListingType = model.ListingAgent

	res, err := r.Resolve(context.Background(), "cheap two bed", current, sampleProperties())
	if err != nil {
		t.Fatal(err)
	}
	if res.Degraded {
		t.Fatal("expected primary path resolution")
	}
	if res.Filters.PriceRange[1] != maxPrice {
		t.Errorf("max price not applied: %v", res.Filters.PriceRange)
	}
	if res.Filters.Bedrooms != "2" {
		t.Errorf("bedrooms = %q, want \"2\"", res.Filters.Bedrooms)
	}
	// Unspecified fields retain the caller's current values.
	if res.Filters.ListingType != model.ListingAgent {
		t.Errorf("listing type lost in merge: %q", res.Filters.ListingType)
	}
	if len(res.Results) != 1 || res.Results[0].ID != 1 {
		t.Fatalf("results = %v, want only the Gaborone two-bed", ids(res.Results))
	}
	if res.Confidence != 0.9 || res.Explanation == "" {
		t.Errorf("explanation/confidence not carried through: %q %v", res.Explanation, res.Confidence)
	}
}

func TestResolver_InvalidInterpretedFiltersFallBack(t *testing.T) {
	badType := "castle"
	interp := &fakeInterpreter{payload: &model.AIFilterPayload{PropertyType: &badType}}
	r := NewResolver(interp, 2, zap.NewNop())

	res, err := r.Resolve(context.Background(), "castle in Maun", model.DefaultFilters(), sampleProperties())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Degraded {
		t.Error("unusable interpreted filters must degrade to local match")
	}
}

func TestResolver_NilInterpreter(t *testing.T) {
	r := NewResolver(nil, 2, zap.NewNop())

	res, err := r.Resolve(context.Background(), "Gaborone", model.DefaultFilters(), sampleProperties())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Degraded || len(res.Results) != 1 {
		t.Errorf("nil interpreter should use local match, got %v", ids(res.Results))
	}
}
