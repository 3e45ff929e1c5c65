package service_test

import (
	"testing"

	"github.com/saadjs/kcal-planner/internal/planner"
	"github.com/saadjs/kcal-planner/internal/service"
)

func TestComputeAndStoreTargets(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)

	res, err := service.ComputeAndStoreTargets(db, planner.DefaultEnergyConfig(), "2026-10-19")
	if err != nil {
		t.Fatalf("compute targets: %v", err)
	}
	if res.Formula != planner.FormulaMifflinStJeor || res.Target.Calories != 2507 {
		t.Fatalf("unexpected targets: %+v", res)
	}

	cur, err := service.CurrentMacroTarget(db, "2026-10-20")
	if err != nil {
		t.Fatalf("current target: %v", err)
	}
	if cur == nil || cur.Calories != 2507 || cur.Source != service.TargetSourceComputed || cur.TDEE == nil || *cur.TDEE != 2507 {
		t.Fatalf("unexpected stored target: %+v", cur)
	}

	before, err := service.CurrentMacroTarget(db, "2026-08-31")
	if err != nil {
		t.Fatalf("current target before: %v", err)
	}
	if before != nil {
		t.Fatalf("expected no target before the profile was set, got %+v", before)
	}
}

func TestLaterTargetSupersedesEarlier(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	for _, in := range []service.SetMacroTargetInput{
		{Calories: 2200, ProteinG: 150, CarbsG: 220, FatG: 70, EffectiveDate: "2026-10-01"},
		{Calories: 2000, ProteinG: 150, CarbsG: 180, FatG: 65, EffectiveDate: "2026-10-15"},
		{Calories: 1900, ProteinG: 150, CarbsG: 160, FatG: 65, EffectiveDate: "2026-10-15"},
	} {
		if err := service.SetMacroTarget(db, in); err != nil {
			t.Fatalf("set target: %v", err)
		}
	}

	cases := map[string]int{"2026-10-10": 2200, "2026-10-15": 1900, "2026-12-01": 1900}
	for date, want := range cases {
		cur, err := service.CurrentMacroTarget(db, date)
		if err != nil {
			t.Fatalf("current target %s: %v", date, err)
		}
		if cur == nil || cur.Calories != want {
			t.Fatalf("date %s: expected %d kcal, got %+v", date, want, cur)
		}
	}

	history, err := service.TargetHistory(db)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].EffectiveDate != "2026-10-15" || history[0].Source != service.TargetSourceManual {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestSetMacroTargetValidates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	if err := service.SetMacroTarget(db, service.SetMacroTargetInput{Calories: -1}); err == nil {
		t.Fatalf("expected negative calories to be rejected")
	}
	if err := service.SetMacroTarget(db, service.SetMacroTargetInput{Calories: 2000, Source: "guess"}); err == nil {
		t.Fatalf("expected unknown source to be rejected")
	}
	if err := service.SetMacroTarget(db, service.SetMacroTargetInput{Calories: 2000, EffectiveDate: "tomorrow"}); err == nil {
		t.Fatalf("expected invalid date to be rejected")
	}
}
