package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/saadjs/kcal-planner/internal/model"
	"github.com/saadjs/kcal-planner/internal/planner"
)

type ProfileInput struct {
	Weight       *float64 `json:"weight,omitempty" validate:"omitempty,gt=0"`
	WeightUnit   string   `json:"weight_unit"`
	HeightCm     *float64 `json:"height_cm,omitempty" validate:"omitempty,gt=0,lt=300"`
	Sex          string   `json:"sex" validate:"required"`
	Age          *int     `json:"age,omitempty" validate:"omitempty,gt=0,lt=130"`
	BodyFatPct   *float64 `json:"body_fat_pct,omitempty" validate:"omitempty,gt=0,lt=100"`
	MusclePct    *float64 `json:"muscle_pct,omitempty" validate:"omitempty,gt=0,lt=100"`
	Goal         string   `json:"goal" validate:"required"`
	FitnessLevel string   `json:"fitness_level" validate:"required"`
	MealsPerDay  int      `json:"meals_per_day" validate:"omitempty,min=1,max=6"`
	// EffectiveDate of the recomputed target. Defaults to today.
	EffectiveDate string `json:"effective_date,omitempty"`
}

// SetProfile replaces the single profile row and stores a freshly computed
// target effective from in.EffectiveDate, in one transaction.
func SetProfile(db *sql.DB, in ProfileInput, cfg planner.EnergyConfig) (model.Profile, error) {
	if err := validateInput(in); err != nil {
		return model.Profile{}, err
	}
	var weightKg *float64
	if in.Weight != nil {
		w, err := convertWeightToKg(*in.Weight, in.WeightUnit)
		if err != nil {
			return model.Profile{}, err
		}
		weightKg = &w
	}
	sex, err := planner.ParseSex(in.Sex)
	if err != nil {
		return model.Profile{}, err
	}
	goal, err := planner.ParseGoal(in.Goal)
	if err != nil {
		return model.Profile{}, err
	}
	level, err := planner.ParseFitnessLevel(in.FitnessLevel)
	if err != nil {
		return model.Profile{}, err
	}
	if in.MealsPerDay == 0 {
		in.MealsPerDay = 3
	}
	if strings.TrimSpace(in.EffectiveDate) == "" {
		in.EffectiveDate = time.Now().Format(dateLayout)
	}

	tx, err := db.Begin()
	if err != nil {
		return model.Profile{}, fmt.Errorf("begin profile tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
INSERT INTO profile(id, weight_kg, height_cm, sex, age, body_fat_pct, muscle_pct, goal, fitness_level, meals_per_day, updated_at)
VALUES(1, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  weight_kg=excluded.weight_kg,
  height_cm=excluded.height_cm,
  sex=excluded.sex,
  age=excluded.age,
  body_fat_pct=excluded.body_fat_pct,
  muscle_pct=excluded.muscle_pct,
  goal=excluded.goal,
  fitness_level=excluded.fitness_level,
  meals_per_day=excluded.meals_per_day,
  updated_at=excluded.updated_at
`, weightKg, in.HeightCm, string(sex), in.Age, in.BodyFatPct, in.MusclePct, string(goal), string(level), in.MealsPerDay)
	if err != nil {
		return model.Profile{}, fmt.Errorf("set profile: %w", err)
	}
	p, err := getProfile(tx)
	if err != nil {
		return model.Profile{}, err
	}
	res := planner.ComputeTargets(BodyProfile(p), goal, level, cfg)
	if err := setMacroTarget(tx, energyTargetInput(res, TargetSourceComputed, in.EffectiveDate)); err != nil {
		return model.Profile{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Profile{}, fmt.Errorf("commit profile: %w", err)
	}
	log.Printf("[SetProfile] %s profile stored target %d kcal from %s", goal, res.Target.Calories, in.EffectiveDate)
	return p, nil
}

func GetProfile(db *sql.DB) (model.Profile, error) {
	return getProfile(db)
}

type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getProfile(q queryRower) (model.Profile, error) {
	var p model.Profile
	var weight, height, bodyFat, muscle sql.NullFloat64
	var age sql.NullInt64
	err := q.QueryRow(`
SELECT weight_kg, height_cm, sex, age, body_fat_pct, muscle_pct, goal, fitness_level, meals_per_day, updated_at
FROM profile WHERE id = 1
`).Scan(&weight, &height, &p.Sex, &age, &bodyFat, &muscle, &p.Goal, &p.FitnessLevel, &p.MealsPerDay, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.WeightKg = nullFloat(weight)
	p.HeightCm = nullFloat(height)
	p.BodyFatPct = nullFloat(bodyFat)
	p.MusclePct = nullFloat(muscle)
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	return p, nil
}

// SetMealsPerDay updates only the meals-per-day preference.
func SetMealsPerDay(db *sql.DB, meals int) error {
	if meals < 1 || meals > planner.MaxMealsPerDay {
		return planner.ErrInvalidMealsPerDay
	}
	res, err := db.Exec(`UPDATE profile SET meals_per_day = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`, meals)
	if err != nil {
		return fmt.Errorf("set meals per day: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// BodyProfile converts a stored profile into the engine's view of it.
func BodyProfile(p model.Profile) planner.BodyProfile {
	bp := planner.BodyProfile{
		Sex:        planner.Sex(p.Sex),
		BodyFatPct: p.BodyFatPct,
		MusclePct:  p.MusclePct,
	}
	// A missing weight stays 0 so the energy model applies its default.
	if p.WeightKg != nil {
		bp.WeightKg = *p.WeightKg
	}
	if p.HeightCm != nil {
		bp.HeightCm = *p.HeightCm
	}
	if p.Age != nil {
		bp.Age = *p.Age
	}
	return bp
}

func convertWeightToKg(value float64, unit string) (float64, error) {
	if value <= 0 {
		return 0, fmt.Errorf("weight must be > 0")
	}
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		u = "kg"
	}
	switch u {
	case "kg":
		return value, nil
	case "lb", "lbs":
		return value * 0.45359237, nil
	default:
		return 0, fmt.Errorf("invalid weight unit %q (use kg or lb)", unit)
	}
}

func WeightFromKg(weightKg float64, unit string) (float64, error) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		u = "kg"
	}
	switch u {
	case "kg":
		return weightKg, nil
	case "lb", "lbs":
		return weightKg / 0.45359237, nil
	default:
		return 0, fmt.Errorf("invalid weight unit %q (use kg or lb)", unit)
	}
}
