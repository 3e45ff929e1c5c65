package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/saadjs/kcal-planner/internal/model"
	"github.com/saadjs/kcal-planner/internal/planner"
)

const (
	TargetSourceManual   = "manual"
	TargetSourceComputed = "computed"
	TargetSourceCheckin  = "checkin"
)

type SetMacroTargetInput struct {
	Calories      int      `json:"calories" validate:"gte=0"`
	ProteinG      float64  `json:"protein_g" validate:"gte=0"`
	CarbsG        float64  `json:"carbs_g" validate:"gte=0"`
	FatG          float64  `json:"fat_g" validate:"gte=0"`
	REE           *float64 `json:"ree,omitempty"`
	TDEE          *float64 `json:"tdee,omitempty"`
	Formula       string   `json:"formula"`
	Source        string   `json:"source" validate:"omitempty,oneof=manual computed checkin"`
	EffectiveDate string   `json:"effective_date"`
}

// SetMacroTarget stores a target for its effective date. A later date
// supersedes earlier ones; the same date is replaced.
func SetMacroTarget(db *sql.DB, in SetMacroTargetInput) error {
	return setMacroTarget(db, in)
}

func setMacroTarget(x execer, in SetMacroTargetInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	date, err := normalizeDate(in.EffectiveDate)
	if err != nil {
		return err
	}
	if in.Source == "" {
		in.Source = TargetSourceManual
	}

	_, err = x.Exec(`
INSERT INTO macro_targets(calories, protein_g, carbs_g, fat_g, ree, tdee, formula, source, effective_date)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(effective_date) DO UPDATE SET
  calories=excluded.calories,
  protein_g=excluded.protein_g,
  carbs_g=excluded.carbs_g,
  fat_g=excluded.fat_g,
  ree=excluded.ree,
  tdee=excluded.tdee,
  formula=excluded.formula,
  source=excluded.source,
  created_at=CURRENT_TIMESTAMP
`, in.Calories, in.ProteinG, in.CarbsG, in.FatG, in.REE, in.TDEE, in.Formula, in.Source, date)
	if err != nil {
		return fmt.Errorf("set macro target: %w", err)
	}
	return nil
}

const targetColumns = `id, calories, protein_g, carbs_g, fat_g, ree, tdee, formula, source, effective_date, created_at`

// CurrentMacroTarget returns the target in effect on date, or nil.
func CurrentMacroTarget(db *sql.DB, date string) (*model.MacroTarget, error) {
	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(`SELECT `+targetColumns+`
FROM macro_targets
WHERE effective_date <= ?
ORDER BY effective_date DESC
LIMIT 1
`, date)
	t, err := scanTarget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("current macro target for %s: %w", date, err)
	}
	return &t, nil
}

func TargetHistory(db *sql.DB) ([]model.MacroTarget, error) {
	rows, err := db.Query(`SELECT ` + targetColumns + ` FROM macro_targets ORDER BY effective_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list target history: %w", err)
	}
	defer rows.Close()

	out := make([]model.MacroTarget, 0)
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan target history: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate target history: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTarget(s scanner) (model.MacroTarget, error) {
	var t model.MacroTarget
	var ree, tdee sql.NullFloat64
	if err := s.Scan(&t.ID, &t.Calories, &t.ProteinG, &t.CarbsG, &t.FatG, &ree, &tdee, &t.Formula, &t.Source, &t.EffectiveDate, &t.CreatedAt); err != nil {
		return model.MacroTarget{}, err
	}
	t.REE = nullFloat(ree)
	t.TDEE = nullFloat(tdee)
	return t, nil
}

// ComputeTargets runs the energy model over the stored profile without
// persisting anything.
func ComputeTargets(db *sql.DB, cfg planner.EnergyConfig) (planner.EnergyResult, error) {
	p, err := GetProfile(db)
	if err != nil {
		return planner.EnergyResult{}, err
	}
	return planner.ComputeTargets(BodyProfile(p), planner.Goal(p.Goal), planner.FitnessLevel(p.FitnessLevel), cfg), nil
}

// ComputeAndStoreTargets computes targets from the profile and stores them
// effective from date.
func ComputeAndStoreTargets(db *sql.DB, cfg planner.EnergyConfig, date string) (planner.EnergyResult, error) {
	res, err := ComputeTargets(db, cfg)
	if err != nil {
		return planner.EnergyResult{}, err
	}
	if err := setMacroTarget(db, energyTargetInput(res, TargetSourceComputed, date)); err != nil {
		return planner.EnergyResult{}, err
	}
	log.Printf("[ComputeAndStoreTargets] stored %d kcal target (%s)", res.Target.Calories, res.Formula)
	return res, nil
}

func energyTargetInput(res planner.EnergyResult, source, date string) SetMacroTargetInput {
	ree, tdee := res.REE, res.TDEE
	return SetMacroTargetInput{
		Calories:      res.Target.Calories,
		ProteinG:      res.Target.ProteinG,
		CarbsG:        res.Target.CarbsG,
		FatG:          res.Target.FatG,
		REE:           &ree,
		TDEE:          &tdee,
		Formula:       res.Formula,
		Source:        source,
		EffectiveDate: date,
	}
}

func storedTarget(t model.MacroTarget) planner.MacroTarget {
	return planner.MacroTarget{Calories: t.Calories, ProteinG: t.ProteinG, CarbsG: t.CarbsG, FatG: t.FatG}
}
