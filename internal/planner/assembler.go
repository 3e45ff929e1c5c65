package planner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidMealsPerDay = errors.New("meals per day must be between 1 and 6")
	ErrEmptyCatalog       = errors.New("food catalog has no usable items")
)

const (
	DaysPerWeek    = 7
	MaxMealsPerDay = 6
)

var mealNames = []string{"breakfast", "lunch", "dinner", "snack 1", "snack 2", "snack 3"}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// MealName returns the positional name of the slot at index.
func MealName(index int) string {
	return mealNames[index%len(mealNames)]
}

func DayName(dayNumber int) string {
	return dayNames[(dayNumber-1)%len(dayNames)]
}

// Config bundles the engine tables. Zero fields in a loaded file keep defaults.
type Config struct {
	Energy    EnergyConfig    `yaml:"energy"`
	Composer  ComposerConfig  `yaml:"composer"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

func DefaultConfig() Config {
	return Config{
		Energy:    DefaultEnergyConfig(),
		Composer:  DefaultComposerConfig(),
		Reconcile: DefaultReconcileConfig(),
	}
}

func (c Config) Merge(override Config) Config {
	return Config{
		Energy:    c.Energy.Merge(override.Energy),
		Composer:  c.Composer.Merge(override.Composer),
		Reconcile: c.Reconcile.Merge(override.Reconcile),
	}
}

type PlanRequest struct {
	Profile     BodyProfile
	Goal        Goal
	Level       FitnessLevel
	MealsPerDay int
	Seed        int64
	// Target, when set, replaces the computed target for every day.
	Target *MacroTarget
}

type Meal struct {
	Index       int          `json:"index"`
	Name        string       `json:"name"`
	Allocations []Allocation `json:"allocations"`
	Totals      Macros       `json:"totals"`
}

type DayPlan struct {
	DayNumber      int            `json:"day_number"`
	DayName        string         `json:"day_name"`
	Target         MacroTarget    `json:"target"`
	Meals          []Meal         `json:"meals"`
	Totals         Macros         `json:"totals"`
	Reconciliation Reconciliation `json:"reconciliation"`
}

type WeeklyPlan struct {
	Energy      EnergyResult `json:"energy"`
	Target      MacroTarget  `json:"target"`
	MealsPerDay int          `json:"meals_per_day"`
	Seed        int64        `json:"seed"`
	Days        []DayPlan    `json:"days"`
}

// Assembler builds weekly plans. It holds no mutable state and is safe for
// concurrent use.
type Assembler struct {
	Config  Config
	Catalog *Catalog
	// NewRand builds the per-day random source. Defaults to math/rand.
	NewRand func(seed int64) Rand
}

func NewAssembler(cfg Config, catalog *Catalog) *Assembler {
	return &Assembler{Config: cfg, Catalog: catalog}
}

// DaySeed derives the seed for one day from the plan seed.
func DaySeed(seed int64, dayNumber int) int64 {
	return seed*1_000_003 + int64(dayNumber)
}

// Assemble computes the target once and builds seven days concurrently.
// Each day draws from its own random source, so the result depends only on
// the request.
func (a *Assembler) Assemble(ctx context.Context, req PlanRequest) (WeeklyPlan, error) {
	if req.MealsPerDay < 1 || req.MealsPerDay > MaxMealsPerDay {
		return WeeklyPlan{}, fmt.Errorf("%w: got %d", ErrInvalidMealsPerDay, req.MealsPerDay)
	}
	if a.Catalog == nil || !a.Catalog.Usable() {
		return WeeklyPlan{}, ErrEmptyCatalog
	}

	energy := ComputeTargets(req.Profile, req.Goal, req.Level, a.Config.Energy)
	target := energy.Target
	if req.Target != nil {
		target = *req.Target
	}

	newRand := a.NewRand
	if newRand == nil {
		newRand = func(seed int64) Rand { return rand.New(rand.NewSource(seed)) }
	}
	composer := NewComposer(a.Catalog, a.Config.Composer)

	days := make([]DayPlan, DaysPerWeek)
	g, gctx := errgroup.WithContext(ctx)
	for i := range days {
		dayNumber := i + 1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			days[dayNumber-1] = a.buildDay(composer, target, req.MealsPerDay, dayNumber, newRand(DaySeed(req.Seed, dayNumber)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WeeklyPlan{}, fmt.Errorf("assemble plan: %w", err)
	}

	return WeeklyPlan{
		Energy:      energy,
		Target:      target,
		MealsPerDay: req.MealsPerDay,
		Seed:        req.Seed,
		Days:        days,
	}, nil
}

func (a *Assembler) buildDay(composer *Composer, target MacroTarget, mealsPerDay, dayNumber int, rng Rand) DayPlan {
	slots := make([][]Allocation, mealsPerDay)
	for i := range slots {
		slots[i] = composer.ComposeMeal(target, mealsPerDay, i, rng)
	}
	rec := Reconcile(slots, target, a.Config.Reconcile)

	day := DayPlan{
		DayNumber:      dayNumber,
		DayName:        DayName(dayNumber),
		Target:         target,
		Meals:          make([]Meal, mealsPerDay),
		Reconciliation: rec,
	}
	for i, allocs := range slots {
		meal := Meal{Index: i, Name: MealName(i), Allocations: allocs}
		for _, al := range allocs {
			meal.Totals = meal.Totals.Add(al.Macros)
		}
		day.Totals = day.Totals.Add(meal.Totals)
		meal.Totals = meal.Totals.Rounded()
		day.Meals[i] = meal
	}
	day.Totals = day.Totals.Rounded()
	return day
}
