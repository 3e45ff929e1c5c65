package planner_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/saadjs/kcal-planner/internal/planner"
)

func maintainRequest(meals int) planner.PlanRequest {
	return planner.PlanRequest{
		Profile:     standardProfile(),
		Goal:        planner.GoalMaintain,
		Level:       planner.LevelIntermediate,
		MealsPerDay: meals,
		Seed:        42,
	}
}

func TestAssembleThreeMealWeek(t *testing.T) {
	t.Parallel()
	a := planner.NewAssembler(planner.DefaultConfig(), testCatalog())
	plan, err := a.Assemble(context.Background(), maintainRequest(3))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if plan.Energy.Formula != planner.FormulaMifflinStJeor {
		t.Fatalf("expected standard formula, got %s", plan.Energy.Formula)
	}
	if plan.Target.ProteinG != 126 || plan.Target.FatG != 63 {
		t.Fatalf("unexpected target %+v", plan.Target)
	}
	if len(plan.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(plan.Days))
	}
	slots := 0
	for i, day := range plan.Days {
		if day.DayNumber != i+1 {
			t.Fatalf("expected day number %d, got %d", i+1, day.DayNumber)
		}
		if day.Target != plan.Target {
			t.Fatalf("expected same target every day")
		}
		for j, meal := range day.Meals {
			slots++
			if meal.Name != []string{"breakfast", "lunch", "dinner"}[j] {
				t.Fatalf("unexpected meal name %q at %d", meal.Name, j)
			}
			if len(meal.Allocations) == 0 || meal.Allocations[0].Food.Category != planner.CategoryProtein {
				t.Fatalf("expected protein allocation first in %s/%s", day.DayName, meal.Name)
			}
		}
	}
	if slots != 21 {
		t.Fatalf("expected 21 meal slots, got %d", slots)
	}
	if plan.Days[0].DayName != "Monday" || plan.Days[6].DayName != "Sunday" {
		t.Fatalf("unexpected day names %s..%s", plan.Days[0].DayName, plan.Days[6].DayName)
	}
}

func TestAssembleIsDeterministicForSeed(t *testing.T) {
	t.Parallel()
	a := planner.NewAssembler(planner.DefaultConfig(), testCatalog())
	first, err := a.Assemble(context.Background(), maintainRequest(5))
	if err != nil {
		t.Fatalf("first assemble: %v", err)
	}
	second, err := a.Assemble(context.Background(), maintainRequest(5))
	if err != nil {
		t.Fatalf("second assemble: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical plans for identical requests")
	}
	for _, day := range first.Days {
		if len(day.Meals) != 5 {
			t.Fatalf("expected 5 meals, got %d", len(day.Meals))
		}
	}
}

func TestAssembleWithStubbedRand(t *testing.T) {
	t.Parallel()
	a := planner.NewAssembler(planner.DefaultConfig(), testCatalog())
	a.NewRand = func(int64) planner.Rand { return firstRand{} }
	plan, err := a.Assemble(context.Background(), maintainRequest(3))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	for _, day := range plan.Days {
		if !reflect.DeepEqual(day.Meals, plan.Days[0].Meals) {
			t.Fatalf("expected every day to match with a constant random source")
		}
	}
}

func TestAssembleQuantityAndFactorBounds(t *testing.T) {
	t.Parallel()
	a := planner.NewAssembler(planner.DefaultConfig(), testCatalog())
	for meals := 1; meals <= 6; meals++ {
		plan, err := a.Assemble(context.Background(), maintainRequest(meals))
		if err != nil {
			t.Fatalf("assemble %d meals: %v", meals, err)
		}
		for _, day := range plan.Days {
			if day.Reconciliation.Factor < 0.5 || day.Reconciliation.Factor > 2 {
				t.Fatalf("factor %v out of bounds", day.Reconciliation.Factor)
			}
			for _, meal := range day.Meals {
				for _, al := range meal.Allocations {
					if al.Quantity <= 0 {
						t.Fatalf("non-positive quantity %+v", al)
					}
					if al.Unit == planner.UnitGrams && (al.Quantity < 20 || math.Mod(al.Quantity, 5) != 0) {
						t.Fatalf("bad grams quantity %v", al.Quantity)
					}
					if al.Unit == planner.UnitUnits && al.Quantity != math.Trunc(al.Quantity) {
						t.Fatalf("bad units quantity %v", al.Quantity)
					}
				}
			}
		}
	}
}

func TestAssembleTargetOverride(t *testing.T) {
	t.Parallel()
	a := planner.NewAssembler(planner.DefaultConfig(), testCatalog())
	req := maintainRequest(3)
	override := planner.MacroTarget{Calories: 1800, ProteinG: 150, CarbsG: 170, FatG: 56}
	req.Target = &override
	plan, err := a.Assemble(context.Background(), req)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if plan.Target != override || plan.Days[3].Target != override {
		t.Fatalf("expected override target, got %+v", plan.Target)
	}
	if plan.Energy.Target.Calories != 2507 {
		t.Fatalf("expected energy model result kept, got %+v", plan.Energy)
	}
}

func TestAssembleErrors(t *testing.T) {
	t.Parallel()
	a := planner.NewAssembler(planner.DefaultConfig(), testCatalog())
	for _, meals := range []int{0, 7} {
		if _, err := a.Assemble(context.Background(), maintainRequest(meals)); !errors.Is(err, planner.ErrInvalidMealsPerDay) {
			t.Fatalf("meals=%d: expected ErrInvalidMealsPerDay, got %v", meals, err)
		}
	}

	empty := planner.NewAssembler(planner.DefaultConfig(), planner.NewCatalog(nil))
	if _, err := empty.Assemble(context.Background(), maintainRequest(3)); !errors.Is(err, planner.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Assemble(ctx, maintainRequest(3)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMealNamesCycle(t *testing.T) {
	t.Parallel()
	if planner.MealName(3) != "snack 1" || planner.MealName(5) != "snack 3" || planner.MealName(6) != "breakfast" {
		t.Fatalf("unexpected meal names")
	}
}
