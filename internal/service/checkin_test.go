package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/saadjs/kcal-planner/internal/planner"
	"github.com/saadjs/kcal-planner/internal/service"
)

func checkin(t *testing.T, sqldb *sql.DB, weight float64, at time.Time, regenerate *bool) service.CheckinResult {
	t.Helper()
	res, err := service.SubmitCheckin(context.Background(), sqldb, service.CheckinInput{
		Measurement: service.BodyMeasurementInput{Weight: weight, BodyFatPct: floatPtr(18), MeasuredAt: at},
		Config:      planner.DefaultConfig(),
		Regenerate:  regenerate,
		Now:         at,
	})
	if err != nil {
		t.Fatalf("submit check-in: %v", err)
	}
	return res
}

func TestCheckinWaitsForTwoWeeksBeforeAdjusting(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)

	week1 := time.Date(2026, 10, 5, 8, 0, 0, 0, time.UTC)
	first := checkin(t, db, 70, week1, nil)
	if first.Outcome.Event != nil || first.Outcome.Recalculated {
		t.Fatalf("expected no adjustment on first check-in, got %+v", first.Outcome)
	}
	if first.Status != planner.UpToDate {
		t.Fatalf("expected up_to_date after checking in, got %s", first.Status)
	}

	week2 := week1.AddDate(0, 0, 7)
	second := checkin(t, db, 69.4, week2, nil)
	ev := second.Outcome.Event
	if ev == nil {
		t.Fatalf("expected targets changed event on second week")
	}
	if second.Outcome.Changes.WeightChangeKg != -0.6 || second.Outcome.Changes.WeeksTracked != 2 {
		t.Fatalf("unexpected changes: %+v", second.Outcome.Changes)
	}
	if ev.Target.Calories >= 2507 || ev.Target.Calories < 2400 {
		t.Fatalf("expected slightly lower target after weight loss, got %d", ev.Target.Calories)
	}
	if second.RegenerationRequestID == 0 || second.Plan != nil {
		t.Fatalf("expected a pending request and no plan, got %+v", second)
	}

	profile, err := service.GetProfile(db)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.WeightKg == nil || *profile.WeightKg != 69.4 || profile.BodyFatPct == nil || *profile.BodyFatPct != 18 {
		t.Fatalf("expected measurement projected onto profile, got %+v", profile)
	}

	target, err := service.CurrentMacroTarget(db, "2026-10-12")
	if err != nil {
		t.Fatalf("current target: %v", err)
	}
	if target == nil || target.Source != service.TargetSourceCheckin || target.Calories != ev.Target.Calories {
		t.Fatalf("expected check-in target stored, got %+v", target)
	}

	pending, err := service.PendingRegenerations(db)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].EffectiveFrom != "2026-10-12" || pending[0].MeasurementID == nil {
		t.Fatalf("unexpected pending requests: %+v", pending)
	}

	gen, err := service.ConsumeRegenerations(context.Background(), db, planner.DefaultConfig(), week2.Add(time.Hour))
	if err != nil {
		t.Fatalf("consume regenerations: %v", err)
	}
	if gen == nil || gen.ConsumedRequests != 1 || gen.Plan.Calories != ev.Target.Calories {
		t.Fatalf("expected regenerated plan at new target, got %+v", gen)
	}
	if gen.Plan.Reason != ev.Reason {
		t.Fatalf("expected plan reason %q, got %q", ev.Reason, gen.Plan.Reason)
	}

	pending, err = service.PendingRegenerations(db)
	if err != nil {
		t.Fatalf("pending after consume: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending requests, got %d", len(pending))
	}
	again, err := service.ConsumeRegenerations(context.Background(), db, planner.DefaultConfig(), week2)
	if err != nil || again != nil {
		t.Fatalf("expected nothing to consume, got %+v, %v", again, err)
	}
}

func TestCheckinRegeneratesImmediately(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)

	week1 := time.Date(2026, 10, 5, 8, 0, 0, 0, time.UTC)
	checkin(t, db, 70, week1, nil)

	if err := service.SetConfig(db, service.ConfigAutoRegenerate, "true"); err != nil {
		t.Fatalf("enable auto regenerate: %v", err)
	}
	res := checkin(t, db, 71, week1.AddDate(0, 0, 7), nil)
	if res.Plan == nil {
		t.Fatalf("expected auto regeneration to produce a plan")
	}
	if len(res.Plan.Days) != 7 {
		t.Fatalf("expected full week, got %d days", len(res.Plan.Days))
	}

	// Explicit false wins over the setting.
	res = checkin(t, db, 71.5, week1.AddDate(0, 0, 14), boolPtr(false))
	if res.Outcome.Event == nil || res.Plan != nil {
		t.Fatalf("expected event without plan, got %+v", res)
	}
}

func TestGetCheckinState(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	state, err := service.GetCheckinState(db, now)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Status != planner.NeedsCheckin || state.LatestAt != nil || state.Changes != nil {
		t.Fatalf("unexpected empty state: %+v", state)
	}
	if !state.WeekStart.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected week start %s", state.WeekStart)
	}

	checkin(t, db, 70, now.AddDate(0, 0, -7), nil)
	checkin(t, db, 69.5, now.Add(-time.Hour), nil)
	state, err = service.GetCheckinState(db, now)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Status != planner.UpToDate || state.Measurements != 2 || state.Changes == nil {
		t.Fatalf("unexpected state: %+v", state)
	}

	state, err = service.GetCheckinState(db, now.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("state next week: %v", err)
	}
	if state.Status != planner.NeedsCheckin {
		t.Fatalf("expected needs_checkin next week, got %s", state.Status)
	}
}

func TestCheckinRequiresProfile(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	_, err := service.SubmitCheckin(context.Background(), db, service.CheckinInput{
		Measurement: service.BodyMeasurementInput{Weight: 70},
		Config:      planner.DefaultConfig(),
	})
	if err == nil {
		t.Fatalf("expected missing profile error")
	}
	items, err := service.MeasurementHistory(db)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no measurement stored, got %d", len(items))
	}
}

func TestBackfilledCheckinKeepsLatestWeightOnProfile(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	seedPlanner(t, db)

	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	checkin(t, db, 80, now, boolPtr(false))

	res, err := service.SubmitCheckin(context.Background(), db, service.CheckinInput{
		Measurement: service.BodyMeasurementInput{Weight: 90, BodyFatPct: floatPtr(25), MeasuredAt: now.AddDate(0, 0, -14)},
		Config:      planner.DefaultConfig(),
		Regenerate:  boolPtr(false),
		Now:         now,
	})
	if err != nil {
		t.Fatalf("submit backfilled check-in: %v", err)
	}
	if res.Status != planner.UpToDate {
		t.Fatalf("expected status from the latest check-in, got %s", res.Status)
	}

	profile, err := service.GetProfile(db)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.WeightKg == nil || *profile.WeightKg != 80 || profile.BodyFatPct == nil || *profile.BodyFatPct != 18 {
		t.Fatalf("expected profile to follow the october 19 check-in, got weight=%v body fat=%v", profile.WeightKg, profile.BodyFatPct)
	}

	ev := res.Outcome.Event
	if ev == nil {
		t.Fatalf("expected targets changed once two weeks are tracked")
	}
	want := planner.ComputeTargets(service.BodyProfile(profile), planner.GoalMaintain, planner.LevelIntermediate, planner.DefaultEnergyConfig()).Target
	if ev.Target != want {
		t.Fatalf("expected target from the stored profile %+v, got %+v", want, ev.Target)
	}
}
