package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saadjs/kcal-planner/internal/planner"
	"github.com/saadjs/kcal-planner/internal/service"
)

func foodIDs(p service.GeneratePlanResult) []string {
	var out []string
	for _, d := range p.Plan.Days {
		for _, m := range d.Meals {
			for _, a := range m.Allocations {
				out = append(out, a.FoodID)
			}
		}
	}
	return out
}

func TestGeneratePlanPersistsFullWeek(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)

	now := time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC)
	res := generate(t, db, 42, now)

	p := res.Plan
	if p.Status != service.PlanStatusActive || p.Seed != 42 || p.MealsPerDay != 3 {
		t.Fatalf("unexpected plan header: %+v", p)
	}
	if p.Calories != 2507 || p.WeekStart != "2026-10-19" {
		t.Fatalf("expected 2507 kcal week of 2026-10-19, got %d / %s", p.Calories, p.WeekStart)
	}
	if len(p.Days) != planner.DaysPerWeek {
		t.Fatalf("expected 7 days, got %d", len(p.Days))
	}
	for i, d := range p.Days {
		if d.DayNumber != i+1 || d.DayName != planner.DayName(i+1) {
			t.Fatalf("unexpected day %d: %+v", i, d)
		}
		if len(d.Meals) != 3 {
			t.Fatalf("day %d: expected 3 meals, got %d", d.DayNumber, len(d.Meals))
		}
		if d.ScaleFactor < 0.5 || d.ScaleFactor > 2 {
			t.Fatalf("day %d: scale factor %.3f out of bounds", d.DayNumber, d.ScaleFactor)
		}
		for _, m := range d.Meals {
			if len(m.Allocations) == 0 {
				t.Fatalf("day %d %s: expected allocations", d.DayNumber, m.Name)
			}
			if m.Allocations[0].Category != string(planner.CategoryProtein) {
				t.Fatalf("day %d %s: expected protein first, got %s", d.DayNumber, m.Name, m.Allocations[0].Category)
			}
			for _, a := range m.Allocations {
				if a.Quantity <= 0 || a.CalculatedCalories <= 0 {
					t.Fatalf("bad allocation %+v", a)
				}
			}
		}
	}

	active, err := service.ActivePlan(db)
	if err != nil {
		t.Fatalf("active plan: %v", err)
	}
	if active.ID != p.ID || len(active.Days) != 7 {
		t.Fatalf("expected active plan %s, got %s", p.ID, active.ID)
	}
}

func TestGeneratePlanSupersedesPreviousPlan(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	first := generate(t, db, 7, now)
	second := generate(t, db, 7, now.Add(time.Hour))

	if first.Plan.ID == second.Plan.ID {
		t.Fatalf("expected a new plan id")
	}
	a, b := foodIDs(first), foodIDs(second)
	if len(a) != len(b) {
		t.Fatalf("expected same seed to give same shape, got %d vs %d allocations", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("allocation %d differs with same seed: %s vs %s", i, a[i], b[i])
		}
	}

	plans, err := service.ListPlans(db, 10)
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}
	if plans[0].ID != second.Plan.ID || plans[0].Status != service.PlanStatusActive {
		t.Fatalf("expected newest plan active, got %+v", plans[0])
	}
	if plans[1].Status != service.PlanStatusSuperseded || plans[1].SupersededAt == nil {
		t.Fatalf("expected first plan superseded, got %+v", plans[1])
	}

	old, err := service.GetPlan(db, first.Plan.ID)
	if err != nil {
		t.Fatalf("get superseded plan: %v", err)
	}
	if len(old.Days) != 7 {
		t.Fatalf("expected superseded plan to keep its days, got %d", len(old.Days))
	}
}

func TestGeneratePlanUsesStoredTargetAndOverrides(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)

	if err := service.SetMacroTarget(db, service.SetMacroTargetInput{
		Calories: 2000, ProteinG: 160, CarbsG: 190, FatG: 60, EffectiveDate: "2026-10-01",
	}); err != nil {
		t.Fatalf("set target: %v", err)
	}
	res, err := service.GeneratePlan(context.Background(), db, service.GeneratePlanInput{
		Config:      planner.DefaultConfig(),
		MealsPerDay: 5,
		Seed:        int64Ptr(1),
		Date:        "2026-10-19",
	})
	if err != nil {
		t.Fatalf("generate plan: %v", err)
	}
	if res.Plan.Calories != 2000 || res.Week.Target.Calories != 2000 {
		t.Fatalf("expected stored 2000 kcal target, got %d", res.Plan.Calories)
	}
	if res.Plan.MealsPerDay != 5 || len(res.Plan.Days[0].Meals) != 5 {
		t.Fatalf("expected 5 meals per day, got %d", res.Plan.MealsPerDay)
	}
	if res.Plan.Days[0].Meals[4].Name != planner.MealName(4) {
		t.Fatalf("unexpected meal name %q", res.Plan.Days[0].Meals[4].Name)
	}
}

func TestGeneratePlanSeedFromConfig(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)

	if err := service.SetConfig(db, service.ConfigPlanSeed, "99"); err != nil {
		t.Fatalf("set seed: %v", err)
	}
	res, err := service.GeneratePlan(context.Background(), db, service.GeneratePlanInput{Config: planner.DefaultConfig()})
	if err != nil {
		t.Fatalf("generate plan: %v", err)
	}
	if res.Plan.Seed != 99 {
		t.Fatalf("expected configured seed 99, got %d", res.Plan.Seed)
	}
}

func TestGeneratePlanErrors(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	if _, err := service.GeneratePlan(context.Background(), db, service.GeneratePlanInput{Config: planner.DefaultConfig()}); !errors.Is(err, service.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := service.SetProfile(db, service.ProfileInput{Weight: floatPtr(70), Sex: "male", Goal: "maintain", FitnessLevel: "beginner"}, planner.DefaultEnergyConfig()); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if _, err := service.GeneratePlan(context.Background(), db, service.GeneratePlanInput{Config: planner.DefaultConfig()}); !errors.Is(err, planner.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
	if _, err := service.ActivePlan(db); !errors.Is(err, service.ErrNoActivePlan) {
		t.Fatalf("expected ErrNoActivePlan, got %v", err)
	}
	if _, err := service.GetPlan(db, "missing"); !errors.Is(err, service.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestGoalChangeReachesNextPlan(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	if _, err := service.ComputeAndStoreTargets(db, planner.DefaultEnergyConfig(), "2026-10-19"); err != nil {
		t.Fatalf("compute targets: %v", err)
	}
	if _, err := service.SetProfile(db, service.ProfileInput{
		Weight:        floatPtr(70),
		HeightCm:      floatPtr(170),
		Sex:           "male",
		Age:           intPtr(30),
		Goal:          "reduce_fat",
		FitnessLevel:  "intermediate",
		EffectiveDate: "2026-10-19",
	}, planner.DefaultEnergyConfig()); err != nil {
		t.Fatalf("change goal: %v", err)
	}

	profile := planner.BodyProfile{WeightKg: 70, HeightCm: 170, Sex: planner.SexMale, Age: 30}
	want := planner.ComputeTargets(profile, planner.GoalReduceFat, planner.LevelIntermediate, planner.DefaultEnergyConfig()).Target

	cur, err := service.CurrentMacroTarget(db, "2026-10-19")
	if err != nil {
		t.Fatalf("current target: %v", err)
	}
	if cur == nil || cur.Calories != want.Calories || cur.Source != service.TargetSourceComputed {
		t.Fatalf("expected recomputed %d kcal target, got %+v", want.Calories, cur)
	}

	res := generate(t, db, 5, now)
	if res.Plan.Calories != want.Calories || res.Plan.ProteinG != want.ProteinG {
		t.Fatalf("expected plan at %d kcal / %.1f g protein, got %d kcal / %.1f g", want.Calories, want.ProteinG, res.Plan.Calories, res.Plan.ProteinG)
	}
}

func TestGeneratePlanFromProfileWithoutWeight(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	p, err := service.SetProfile(db, service.ProfileInput{
		Sex:           "male",
		Goal:          "maintain",
		FitnessLevel:  "intermediate",
		EffectiveDate: "2026-10-19",
	}, planner.DefaultEnergyConfig())
	if err != nil {
		t.Fatalf("set profile without weight: %v", err)
	}
	if p.WeightKg != nil || service.BodyProfile(p).WeightKg != 0 {
		t.Fatalf("expected weight to stay unset, got %+v", p)
	}
	if _, err := service.SeedDefaultCatalog(db); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	// Defaults of 70 kg, 170 cm and 30 years give the seeded profile's target.
	res := generate(t, db, 11, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	if res.Plan.Calories != 2507 || len(res.Plan.Days) != planner.DaysPerWeek {
		t.Fatalf("expected a full 2507 kcal week, got %d kcal over %d days", res.Plan.Calories, len(res.Plan.Days))
	}
}
