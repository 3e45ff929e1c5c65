package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/saadjs/kcal-planner/internal/provider/usda"
	"github.com/saadjs/kcal-planner/internal/service"
)

type stubSearcher struct {
	foods []usda.Food
	err   error
}

func (s stubSearcher) SearchFoods(context.Context, string, int) ([]usda.Food, []byte, error) {
	return s.foods, nil, s.err
}

func TestLookupFoodsAndImportCandidate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	s := stubSearcher{foods: []usda.Food{
		{FDCID: 168878, Description: "Rice, white, long-grain, cooked", DataType: "SR Legacy", Calories: 130, ProteinG: 2.69, CarbsG: 28.2, FatG: 0.28},
		{FDCID: 2, Description: "Salt", DataType: "Foundation"},
	}}
	got, err := service.LookupFoods(context.Background(), s, "rice", 5)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 2 || !got[0].Complete || got[1].Complete {
		t.Fatalf("unexpected candidates: %+v", got)
	}

	in := service.CandidateFoodInput(got[0], "", "carbohydrate")
	if in.ID != "rice-white-long-grain-cooked" || in.SourceRef != "fdc:168878" || in.QuantityType != "grams" {
		t.Fatalf("unexpected food input: %+v", in)
	}
	if _, err := service.ImportFoods(db, []service.FoodInput{in}); err != nil {
		t.Fatalf("import candidate: %v", err)
	}
	foods, err := service.ListFoods(db, service.FoodFilter{Category: "carbohydrate"})
	if err != nil {
		t.Fatalf("list foods: %v", err)
	}
	if len(foods) != 1 || foods[0].Source != "usda" {
		t.Fatalf("unexpected foods: %+v", foods)
	}
}

func TestLookupFoodsWrapsProviderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := service.LookupFoods(context.Background(), stubSearcher{err: boom}, "rice", 5)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}
