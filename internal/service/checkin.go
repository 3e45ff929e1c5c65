package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/saadjs/kcal-planner/internal/model"
	"github.com/saadjs/kcal-planner/internal/planner"
)

type CheckinInput struct {
	Measurement BodyMeasurementInput
	Config      planner.Config
	// Regenerate forces (true) or suppresses (false) immediate plan
	// regeneration. Nil follows the auto_regenerate setting.
	Regenerate *bool
	Now        time.Time
}

type CheckinResult struct {
	MeasurementID         int64                  `json:"measurement_id"`
	Status                planner.CheckinStatus  `json:"status"`
	Outcome               planner.CheckinOutcome `json:"outcome"`
	RegenerationRequestID int64                  `json:"regeneration_request_id,omitempty"`
	Plan                  *model.Plan            `json:"-"`
}

type CheckinState struct {
	Status       planner.CheckinStatus  `json:"status"`
	LatestAt     *time.Time             `json:"latest_at,omitempty"`
	Measurements int                    `json:"measurements"`
	Changes      *planner.WeeklyChanges `json:"changes,omitempty"`
	WeekStart    time.Time              `json:"week_start"`
}

// SubmitCheckin appends a measurement, projects it onto the profile and runs
// the adjuster. When targets change, the new target and a regeneration
// request are stored in the same transaction as the measurement.
func SubmitCheckin(ctx context.Context, db *sql.DB, in CheckinInput) (CheckinResult, error) {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	if in.Measurement.MeasuredAt.IsZero() {
		in.Measurement.MeasuredAt = in.Now
	}
	if err := validateInput(in.Measurement); err != nil {
		return CheckinResult{}, err
	}
	weightKg, err := convertWeightToKg(in.Measurement.Weight, in.Measurement.Unit)
	if err != nil {
		return CheckinResult{}, err
	}

	profile, err := GetProfile(db)
	if err != nil {
		return CheckinResult{}, err
	}
	stored, err := MeasurementHistory(db)
	if err != nil {
		return CheckinResult{}, err
	}
	history := append(toPlannerMeasurements(stored), planner.Measurement{
		MeasuredAt: in.Measurement.MeasuredAt,
		WeightKg:   weightKg,
		BodyFatPct: in.Measurement.BodyFatPct,
		MusclePct:  in.Measurement.MusclePct,
	})

	adjuster := planner.NewAdjuster(in.Config.Energy)
	outcome := adjuster.Evaluate(history, BodyProfile(profile), planner.Goal(profile.Goal), planner.FitnessLevel(profile.FitnessLevel), in.Now)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return CheckinResult{}, fmt.Errorf("begin check-in tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res := CheckinResult{Outcome: outcome}
	res.MeasurementID, err = addBodyMeasurement(tx, in.Measurement)
	if err != nil {
		return CheckinResult{}, err
	}
	// The profile follows the newest measurement, not necessarily this one.
	latest, _ := planner.LatestMeasurement(history)
	projected := planner.ProjectProfile(BodyProfile(profile), latest)
	if _, err := tx.ExecContext(ctx, `
UPDATE profile SET
  weight_kg = ?,
  body_fat_pct = ?,
  muscle_pct = ?,
  updated_at = CURRENT_TIMESTAMP
WHERE id = 1
`, projected.WeightKg, projected.BodyFatPct, projected.MusclePct); err != nil {
		return CheckinResult{}, fmt.Errorf("project measurement onto profile: %w", err)
	}

	if ev := outcome.Event; ev != nil {
		effective := ev.EffectiveFrom.Format(dateLayout)
		if err := setMacroTarget(tx, energyTargetInput(*outcome.Energy, TargetSourceCheckin, effective)); err != nil {
			return CheckinResult{}, err
		}
		r, err := tx.ExecContext(ctx, `
INSERT INTO regeneration_requests(effective_from, calories, protein_g, carbs_g, fat_g, reason, measurement_id)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, effective, ev.Target.Calories, ev.Target.ProteinG, ev.Target.CarbsG, ev.Target.FatG, ev.Reason, res.MeasurementID)
		if err != nil {
			return CheckinResult{}, fmt.Errorf("record regeneration request: %w", err)
		}
		if res.RegenerationRequestID, err = r.LastInsertId(); err != nil {
			return CheckinResult{}, fmt.Errorf("resolve regeneration request id: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return CheckinResult{}, fmt.Errorf("commit check-in: %w", err)
	}
	res.Status = planner.Status(&latest.MeasuredAt, in.Now)

	if outcome.Event == nil {
		log.Printf("[SubmitCheckin] measurement %d recorded without target change", res.MeasurementID)
		return res, nil
	}
	log.Printf("[SubmitCheckin] targets changed to %d kcal: %s", outcome.Event.Target.Calories, outcome.Event.Reason)

	regenerate := false
	if in.Regenerate != nil {
		regenerate = *in.Regenerate
	} else if regenerate, err = autoRegenerateEnabled(db); err != nil {
		return res, err
	}
	if !regenerate {
		return res, nil
	}
	gen, err := GeneratePlan(ctx, db, GeneratePlanInput{
		Config: in.Config,
		Reason: outcome.Event.Reason,
		Now:    in.Now,
	})
	if err != nil {
		return res, fmt.Errorf("regenerate plan after check-in: %w", err)
	}
	res.Plan = &gen.Plan
	return res, nil
}

// GetCheckinState reports whether a check-in is due this week and the
// latest week-over-week changes.
func GetCheckinState(db *sql.DB, now time.Time) (CheckinState, error) {
	if now.IsZero() {
		now = time.Now()
	}
	stored, err := MeasurementHistory(db)
	if err != nil {
		return CheckinState{}, err
	}
	state := CheckinState{Measurements: len(stored), WeekStart: planner.WeekStart(now)}
	var latest *time.Time
	if len(stored) > 0 {
		t := stored[0].MeasuredAt
		latest = &t
	}
	state.LatestAt = latest
	state.Status = planner.Status(latest, now)
	state.Changes = planner.ComputeWeeklyChanges(toPlannerMeasurements(stored), now.Location())
	return state, nil
}

func PendingRegenerations(db *sql.DB) ([]model.RegenerationRequest, error) {
	rows, err := db.Query(`
SELECT id, effective_from, calories, protein_g, carbs_g, fat_g, reason, measurement_id, created_at
FROM regeneration_requests
WHERE consumed_at IS NULL
ORDER BY effective_from ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list pending regenerations: %w", err)
	}
	defer rows.Close()

	out := make([]model.RegenerationRequest, 0)
	for rows.Next() {
		var r model.RegenerationRequest
		var measurementID sql.NullInt64
		if err := rows.Scan(&r.ID, &r.EffectiveFrom, &r.Calories, &r.ProteinG, &r.CarbsG, &r.FatG, &r.Reason, &measurementID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan regeneration request: %w", err)
		}
		if measurementID.Valid {
			v := measurementID.Int64
			r.MeasurementID = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regeneration requests: %w", err)
	}
	return out, nil
}

// ConsumeRegenerations generates a new plan when regeneration requests are
// pending. It returns nil when there is nothing to do.
func ConsumeRegenerations(ctx context.Context, db *sql.DB, cfg planner.Config, now time.Time) (*GeneratePlanResult, error) {
	pending, err := PendingRegenerations(db)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}
	if now.IsZero() {
		now = time.Now()
	}
	latest := pending[len(pending)-1]
	date := now.Format(dateLayout)
	if latest.EffectiveFrom > date {
		date = latest.EffectiveFrom
	}
	res, err := GeneratePlan(ctx, db, GeneratePlanInput{
		Config: cfg,
		Date:   date,
		Reason: latest.Reason,
		Now:    now,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
