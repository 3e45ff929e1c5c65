package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saadjs/kcal-planner/internal/model"
	"github.com/saadjs/kcal-planner/internal/planner"
)

const (
	PlanStatusActive     = "active"
	PlanStatusSuperseded = "superseded"
)

type GeneratePlanInput struct {
	Config planner.Config
	// MealsPerDay overrides the profile preference when > 0.
	MealsPerDay int
	// Seed fixes food selection. Nil uses the plan_seed setting, then the clock.
	Seed   *int64
	Date   string
	Reason string
	Now    time.Time
}

type GeneratePlanResult struct {
	Plan             model.Plan         `json:"plan"`
	Week             planner.WeeklyPlan `json:"-"`
	ConsumedRequests int                `json:"consumed_requests"`
}

// GeneratePlan builds a week from the stored profile, current target and
// catalog, then replaces the active plan in one transaction. Pending
// regeneration requests effective on or before the plan date are consumed.
func GeneratePlan(ctx context.Context, db *sql.DB, in GeneratePlanInput) (GeneratePlanResult, error) {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	if strings.TrimSpace(in.Date) == "" {
		in.Date = in.Now.Format(dateLayout)
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return GeneratePlanResult{}, err
	}

	profile, err := GetProfile(db)
	if err != nil {
		return GeneratePlanResult{}, err
	}
	mealsPerDay := profile.MealsPerDay
	if in.MealsPerDay != 0 {
		mealsPerDay = in.MealsPerDay
	}
	seed, err := resolveSeed(db, in.Seed, in.Now)
	if err != nil {
		return GeneratePlanResult{}, err
	}
	catalog, err := LoadCatalog(db)
	if err != nil {
		return GeneratePlanResult{}, err
	}

	req := planner.PlanRequest{
		Profile:     BodyProfile(profile),
		Goal:        planner.Goal(profile.Goal),
		Level:       planner.FitnessLevel(profile.FitnessLevel),
		MealsPerDay: mealsPerDay,
		Seed:        seed,
	}
	current, err := CurrentMacroTarget(db, date)
	if err != nil {
		return GeneratePlanResult{}, err
	}
	if current != nil {
		t := storedTarget(*current)
		req.Target = &t
	}

	cfg := in.Config
	if tol, ok, err := toleranceSetting(db); err != nil {
		return GeneratePlanResult{}, err
	} else if ok {
		cfg.Reconcile.TolerancePct = tol
	}

	week, err := planner.NewAssembler(cfg, catalog).Assemble(ctx, req)
	if err != nil {
		return GeneratePlanResult{}, fmt.Errorf("generate plan: %w", err)
	}

	plan, consumed, err := persistPlan(ctx, db, week, date, in.Reason, in.Now)
	if err != nil {
		return GeneratePlanResult{}, err
	}
	log.Printf("[GeneratePlan] stored plan %s (%d kcal, %d meals/day, seed %d)", plan.ID, week.Target.Calories, mealsPerDay, seed)
	return GeneratePlanResult{Plan: plan, Week: week, ConsumedRequests: consumed}, nil
}

func resolveSeed(db *sql.DB, seed *int64, now time.Time) (int64, error) {
	if seed != nil {
		return *seed, nil
	}
	raw, ok, err := GetConfig(db, ConfigPlanSeed)
	if err != nil {
		return 0, err
	}
	if ok && strings.TrimSpace(raw) != "" {
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s setting %q", ConfigPlanSeed, raw)
		}
		return v, nil
	}
	return now.UnixNano(), nil
}

func persistPlan(ctx context.Context, db *sql.DB, week planner.WeeklyPlan, date, reason string, now time.Time) (model.Plan, int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.Plan{}, 0, fmt.Errorf("begin plan tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := now.UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `UPDATE plans SET status = ?, superseded_at = ? WHERE status = ?`,
		PlanStatusSuperseded, createdAt, PlanStatusActive); err != nil {
		return model.Plan{}, 0, fmt.Errorf("supersede active plan: %w", err)
	}

	planDate, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return model.Plan{}, 0, fmt.Errorf("parse plan date: %w", err)
	}
	id := uuid.NewString()
	t := week.Target
	if _, err := tx.ExecContext(ctx, `
INSERT INTO plans(id, status, seed, meals_per_day, calories, protein_g, carbs_g, fat_g, ree, tdee, formula, week_start, reason, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, PlanStatusActive, week.Seed, week.MealsPerDay, t.Calories, t.ProteinG, t.CarbsG, t.FatG,
		week.Energy.REE, week.Energy.TDEE, week.Energy.Formula, planner.WeekStart(planDate).Format(dateLayout),
		strings.TrimSpace(reason), createdAt); err != nil {
		return model.Plan{}, 0, fmt.Errorf("insert plan: %w", err)
	}

	for _, day := range week.Days {
		if err := insertPlanDay(ctx, tx, id, day); err != nil {
			return model.Plan{}, 0, err
		}
	}

	res, err := tx.ExecContext(ctx, `
UPDATE regeneration_requests SET consumed_at = ?, plan_id = ?
WHERE consumed_at IS NULL AND effective_from <= ?
`, createdAt, id, date)
	if err != nil {
		return model.Plan{}, 0, fmt.Errorf("consume regeneration requests: %w", err)
	}
	consumed, err := res.RowsAffected()
	if err != nil {
		return model.Plan{}, 0, fmt.Errorf("read rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Plan{}, 0, fmt.Errorf("commit plan: %w", err)
	}

	plan, err := GetPlan(db, id)
	if err != nil {
		return model.Plan{}, 0, err
	}
	return plan, int(consumed), nil
}

func insertPlanDay(ctx context.Context, tx *sql.Tx, planID string, day planner.DayPlan) error {
	rec := day.Reconciliation
	res, err := tx.ExecContext(ctx, `
INSERT INTO plan_days(plan_id, day_number, day_name, calories, protein_g, carbs_g, fat_g,
  realized_calories, realized_protein_g, realized_carbs_g, realized_fat_g,
  scale_factor, factor_clamped, deviation_pct, within_tolerance)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, planID, day.DayNumber, day.DayName, day.Target.Calories, day.Target.ProteinG, day.Target.CarbsG, day.Target.FatG,
		day.Totals.Calories, day.Totals.ProteinG, day.Totals.CarbsG, day.Totals.FatG,
		rec.Factor, boolInt(rec.Clamped), rec.DeviationPct, boolInt(rec.WithinTolerance))
	if err != nil {
		return fmt.Errorf("insert plan day %d: %w", day.DayNumber, err)
	}
	dayID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("resolve plan day id: %w", err)
	}

	for _, meal := range day.Meals {
		res, err := tx.ExecContext(ctx, `INSERT INTO plan_meals(plan_day_id, meal_index, name) VALUES(?, ?, ?)`, dayID, meal.Index, meal.Name)
		if err != nil {
			return fmt.Errorf("insert meal %s on day %d: %w", meal.Name, day.DayNumber, err)
		}
		mealID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("resolve plan meal id: %w", err)
		}
		for pos, a := range meal.Allocations {
			m := a.Macros.Rounded()
			if _, err := tx.ExecContext(ctx, `
INSERT INTO plan_allocations(plan_meal_id, position, food_id, food_name, category, quantity, quantity_unit,
  calculated_calories, calculated_protein, calculated_carbs, calculated_fat)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, mealID, pos, a.Food.ID, a.Food.Name, string(a.Food.Category), a.Quantity, a.Unit,
				m.Calories, m.ProteinG, m.CarbsG, m.FatG); err != nil {
				return fmt.Errorf("insert allocation %s: %w", a.Food.ID, err)
			}
		}
	}
	return nil
}

const planColumns = `id, status, seed, meals_per_day, calories, protein_g, carbs_g, fat_g, ree, tdee, formula, week_start, reason, created_at, superseded_at`

func scanPlan(s scanner) (model.Plan, error) {
	var p model.Plan
	var createdRaw string
	var supersededRaw sql.NullString
	if err := s.Scan(&p.ID, &p.Status, &p.Seed, &p.MealsPerDay, &p.Calories, &p.ProteinG, &p.CarbsG, &p.FatG,
		&p.REE, &p.TDEE, &p.Formula, &p.WeekStart, &p.Reason, &createdRaw, &supersededRaw); err != nil {
		return model.Plan{}, err
	}
	created, err := parseTimestamp(createdRaw)
	if err != nil {
		return model.Plan{}, err
	}
	p.CreatedAt = created
	if supersededRaw.Valid && supersededRaw.String != "" {
		t, err := parseTimestamp(supersededRaw.String)
		if err != nil {
			return model.Plan{}, err
		}
		p.SupersededAt = &t
	}
	return p, nil
}

// ListPlans returns plan headers, newest first.
func ListPlans(db *sql.DB, limit int) ([]model.Plan, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`SELECT `+planColumns+` FROM plans ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	out := make([]model.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return out, nil
}

// ActivePlan returns the active plan with its days, meals and allocations.
func ActivePlan(db *sql.DB) (model.Plan, error) {
	var id string
	err := db.QueryRow(`SELECT id FROM plans WHERE status = ? ORDER BY created_at DESC LIMIT 1`, PlanStatusActive).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Plan{}, ErrNoActivePlan
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("find active plan: %w", err)
	}
	return GetPlan(db, id)
}

// GetPlan loads a plan with its nested rows.
func GetPlan(db *sql.DB, id string) (model.Plan, error) {
	id = strings.TrimSpace(id)
	p, err := scanPlan(db.QueryRow(`SELECT `+planColumns+` FROM plans WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Plan{}, fmt.Errorf("get plan %s: %w", id, ErrPlanNotFound)
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("get plan %s: %w", id, err)
	}

	days, err := loadPlanDays(db, id)
	if err != nil {
		return model.Plan{}, err
	}
	p.Days = days
	return p, nil
}

func loadPlanDays(db *sql.DB, planID string) ([]model.PlanDay, error) {
	rows, err := db.Query(`
SELECT id, day_number, day_name, calories, protein_g, carbs_g, fat_g,
  realized_calories, realized_protein_g, realized_carbs_g, realized_fat_g,
  scale_factor, factor_clamped, deviation_pct, within_tolerance
FROM plan_days WHERE plan_id = ? ORDER BY day_number ASC
`, planID)
	if err != nil {
		return nil, fmt.Errorf("list plan days: %w", err)
	}
	days := make([]model.PlanDay, 0, planner.DaysPerWeek)
	index := make(map[int64]int)
	for rows.Next() {
		var d model.PlanDay
		var clamped, within int
		if err := rows.Scan(&d.ID, &d.DayNumber, &d.DayName, &d.Calories, &d.ProteinG, &d.CarbsG, &d.FatG,
			&d.RealizedCalories, &d.RealizedProteinG, &d.RealizedCarbsG, &d.RealizedFatG,
			&d.ScaleFactor, &clamped, &d.DeviationPct, &within); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan plan day: %w", err)
		}
		d.FactorClamped = clamped == 1
		d.WithinTolerance = within == 1
		index[d.ID] = len(days)
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate plan days: %w", err)
	}
	_ = rows.Close()

	mealRows, err := db.Query(`
SELECT m.id, m.plan_day_id, m.meal_index, m.name
FROM plan_meals m JOIN plan_days d ON d.id = m.plan_day_id
WHERE d.plan_id = ? ORDER BY d.day_number ASC, m.meal_index ASC
`, planID)
	if err != nil {
		return nil, fmt.Errorf("list plan meals: %w", err)
	}
	type mealRef struct{ day, meal int }
	meals := make(map[int64]mealRef)
	for mealRows.Next() {
		var m model.PlanMeal
		var dayID int64
		if err := mealRows.Scan(&m.ID, &dayID, &m.Index, &m.Name); err != nil {
			_ = mealRows.Close()
			return nil, fmt.Errorf("scan plan meal: %w", err)
		}
		di := index[dayID]
		meals[m.ID] = mealRef{day: di, meal: len(days[di].Meals)}
		days[di].Meals = append(days[di].Meals, m)
	}
	if err := mealRows.Err(); err != nil {
		_ = mealRows.Close()
		return nil, fmt.Errorf("iterate plan meals: %w", err)
	}
	_ = mealRows.Close()

	allocRows, err := db.Query(`
SELECT a.id, a.plan_meal_id, a.position, a.food_id, a.food_name, a.category, a.quantity, a.quantity_unit,
  a.calculated_calories, a.calculated_protein, a.calculated_carbs, a.calculated_fat
FROM plan_allocations a
JOIN plan_meals m ON m.id = a.plan_meal_id
JOIN plan_days d ON d.id = m.plan_day_id
WHERE d.plan_id = ? ORDER BY a.plan_meal_id ASC, a.position ASC
`, planID)
	if err != nil {
		return nil, fmt.Errorf("list plan allocations: %w", err)
	}
	defer allocRows.Close()
	for allocRows.Next() {
		var a model.PlanAllocation
		var mealID int64
		if err := allocRows.Scan(&a.ID, &mealID, &a.Position, &a.FoodID, &a.FoodName, &a.Category, &a.Quantity, &a.QuantityUnit,
			&a.CalculatedCalories, &a.CalculatedProtein, &a.CalculatedCarbs, &a.CalculatedFat); err != nil {
			return nil, fmt.Errorf("scan plan allocation: %w", err)
		}
		ref := meals[mealID]
		meal := &days[ref.day].Meals[ref.meal]
		meal.Allocations = append(meal.Allocations, a)
	}
	if err := allocRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan allocations: %w", err)
	}
	return days, nil
}
