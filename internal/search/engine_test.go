package search

import (
	"reflect"
	"testing"
	"time"

	"propertybw/internal/model"
)

func sampleProperties() []model.Property {
	area1, area2 := 180.0, 95.0
	d1 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	return []model.Property{
		{
			ID: 1, Title: "Two-bed house in Gaborone", Location: "Block 8, Gaborone",
			Price: 400000, PropertyType: model.TypeHouse, ListingType: model.ListingAgent,
			Bedrooms: 2, Bathrooms: 1, AreaSqm: &area2, ListedDate: &d1,
		},
		{
			ID: 2, Title: "Executive villa", Location: "Phakalane",
			Price: 900000, PropertyType: model.TypeHouse, ListingType: model.ListingOwner,
			Bedrooms: 4, Bathrooms: 3, AreaSqm: &area1, ListedDate: &d2,
		},
		{
			ID: 3, Title: "Farm near Maun", Location: "Maun outskirts",
			Price: 650000, PropertyType: model.TypeFarm, ListingType: model.ListingAgent,
			Bedrooms: 3, Bathrooms: 2,
		},
	}
}

func TestApplyFilters_PriceRangeScenario(t *testing.T) {
	props := []model.Property{
		{ID: 1, Price: 400000, Bedrooms: 2, PropertyType: model.TypeHouse, ListingType: model.ListingAgent},
		{ID: 2, Price: 900000, Bedrooms: 4, PropertyType: model.TypeHouse, ListingType: model.ListingAgent},
	}
	f := model.DefaultFilters()
	f.PriceRange = [2]float64{0, 500000}

	got := ApplyFilters(props, f)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("ApplyFilters = %+v, want only property 1", got)
	}
}

func TestApplyFilters_SubsetAndPredicates(t *testing.T) {
	props := sampleProperties()
	f := model.DefaultFilters()
	f.PropertyType = model.TypeHouse
	f.Bedrooms = "3"
	f.ListingType = model.ListingOwner

	got := ApplyFilters(props, f)

	inInput := make(map[int64]bool)
	for _, p := range props {
		inInput[p.ID] = true
	}
	for _, p := range got {
		if !inInput[p.ID] {
			t.Fatalf("result contains property %d not present in input", p.ID)
		}
		if p.PropertyType != model.TypeHouse {
			t.Errorf("property %d fails type predicate", p.ID)
		}
		if p.ListingType != model.ListingOwner {
			t.Errorf("property %d fails listing type predicate", p.ID)
		}
		if p.Bedrooms < 3 {
			t.Errorf("property %d fails bedroom threshold", p.ID)
		}
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("got %+v, want only the Phakalane villa", got)
	}
}

func TestApplyFilters_Idempotent(t *testing.T) {
	props := sampleProperties()
	f := model.DefaultFilters()
	f.Bathrooms = "2"

	once := ApplyFilters(props, f)
	twice := ApplyFilters(once, f)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering is not idempotent: %+v vs %+v", once, twice)
	}
}

func TestApplyFilters_SearchTerm(t *testing.T) {
	props := sampleProperties()
	f := model.DefaultFilters()
	f.SearchTerm = "maun"

	got := ApplyFilters(props, f)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("got %+v, want only the Maun farm", got)
	}
}

func TestApplyFilters_EmptyInput(t *testing.T) {
	got := ApplyFilters(nil, model.DefaultFilters())
	if len(got) != 0 {
		t.Errorf("empty input must yield empty output, got %v", got)
	}
}

func TestApplySort_PreservesMultiset(t *testing.T) {
	props := sampleProperties()
	for _, key := range []string{SortNewest, SortPriceLow, SortPriceHigh, SortSize, SortBedrooms} {
		got := ApplySort(props, key)
		if len(got) != len(props) {
			t.Fatalf("sort %q changed element count", key)
		}
		seen := make(map[int64]int)
		for _, p := range got {
			seen[p.ID]++
		}
		for _, p := range props {
			if seen[p.ID] != 1 {
				t.Errorf("sort %q changed multiset for id %d", key, p.ID)
			}
		}
	}
}

func TestApplySort_PriceLowNonDecreasing(t *testing.T) {
	got := ApplySort(sampleProperties(), SortPriceLow)
	for i := 1; i < len(got); i++ {
		if got[i-1].Price > got[i].Price {
			t.Fatalf("adjacent pair out of order: %v > %v", got[i-1].Price, got[i].Price)
		}
	}
}

func TestApplySort_SizeMissingTreatedAsZero(t *testing.T) {
	got := ApplySort(sampleProperties(), SortSize)
	if got[len(got)-1].ID != 3 {
		t.Errorf("property without area should sort last, got order %v", ids(got))
	}
}

func TestApplySort_DoesNotMutateInput(t *testing.T) {
	props := sampleProperties()
	original := ids(props)
	_ = ApplySort(props, SortPriceHigh)
	if !reflect.DeepEqual(ids(props), original) {
		t.Error("ApplySort mutated its input")
	}
}

func TestLocalMatch(t *testing.T) {
	got := LocalMatch(sampleProperties(), "Maun")
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("LocalMatch = %v, want the Maun farm", ids(got))
	}
	if n := len(LocalMatch(sampleProperties(), "")); n != 0 {
		t.Errorf("empty query should match nothing, got %d", n)
	}
}

func ids(props []model.Property) []int64 {
	out := make([]int64, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}
