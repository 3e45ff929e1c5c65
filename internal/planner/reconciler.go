package planner

import "math"

type ReconcileConfig struct {
	MinFactor    float64 `yaml:"min_factor"`
	MaxFactor    float64 `yaml:"max_factor"`
	GramStep     float64 `yaml:"gram_step"`
	MinGrams     float64 `yaml:"min_grams"`
	MinUnits     float64 `yaml:"min_units"`
	TolerancePct float64 `yaml:"tolerance_pct"`
}

// DefaultTolerancePct is the accepted deviation of a reconciled day from its
// calorie target, in percent.
const DefaultTolerancePct = 10.0

func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		MinFactor:    0.5,
		MaxFactor:    2.0,
		GramStep:     5,
		MinGrams:     20,
		MinUnits:     1,
		TolerancePct: DefaultTolerancePct,
	}
}

func (c ReconcileConfig) Merge(override ReconcileConfig) ReconcileConfig {
	out := c
	if override.MinFactor > 0 {
		out.MinFactor = override.MinFactor
	}
	if override.MaxFactor > 0 && override.MaxFactor >= out.MinFactor {
		out.MaxFactor = override.MaxFactor
	}
	if override.GramStep > 0 {
		out.GramStep = override.GramStep
	}
	if override.MinGrams > 0 {
		out.MinGrams = override.MinGrams
	}
	if override.MinUnits > 0 {
		out.MinUnits = override.MinUnits
	}
	if override.TolerancePct > 0 {
		out.TolerancePct = override.TolerancePct
	}
	return out
}

// Reconciliation describes one day's scaling pass.
type Reconciliation struct {
	TargetCalories  float64 `json:"target_calories"`
	RealizedBefore  float64 `json:"realized_before"`
	RawFactor       float64 `json:"raw_factor"`
	Factor          float64 `json:"factor"`
	Clamped         bool    `json:"clamped"`
	RealizedAfter   float64 `json:"realized_after"`
	DeviationPct    float64 `json:"deviation_pct"`
	WithinTolerance bool    `json:"within_tolerance"`
}

// Reconcile scales every allocation of a day by one clamped factor so the
// day's calories move toward target, then re-rounds quantities and
// recomputes macros from the rounded quantity. meals is modified in place.
func Reconcile(meals [][]Allocation, target MacroTarget, cfg ReconcileConfig) Reconciliation {
	r := Reconciliation{TargetCalories: float64(target.Calories)}
	r.RealizedBefore = sumCalories(meals)

	r.RawFactor = 1
	if r.RealizedBefore > 0 {
		r.RawFactor = r.TargetCalories / r.RealizedBefore
	}
	r.Factor = math.Min(cfg.MaxFactor, math.Max(cfg.MinFactor, r.RawFactor))
	r.Clamped = r.Factor != r.RawFactor

	for _, meal := range meals {
		for i := range meal {
			a := &meal[i]
			a.Quantity = roundQuantity(a.Food.Mode, a.Quantity*r.Factor, cfg)
			a.Macros = MacrosFor(a.Food, a.Quantity)
		}
	}

	r.RealizedAfter = sumCalories(meals)
	if r.TargetCalories > 0 {
		r.DeviationPct = (r.RealizedAfter - r.TargetCalories) / r.TargetCalories * 100
	}
	r.WithinTolerance = math.Abs(r.DeviationPct) <= cfg.TolerancePct
	r.RealizedBefore = round1(r.RealizedBefore)
	r.RealizedAfter = round1(r.RealizedAfter)
	r.DeviationPct = round1(r.DeviationPct)
	return r
}

func roundQuantity(mode QuantityMode, q float64, cfg ReconcileConfig) float64 {
	if mode == ModePerUnit {
		return math.Max(cfg.MinUnits, math.Round(q))
	}
	return math.Max(cfg.MinGrams, math.Round(q/cfg.GramStep)*cfg.GramStep)
}

func sumCalories(meals [][]Allocation) float64 {
	var total float64
	for _, meal := range meals {
		for _, a := range meal {
			total += a.Macros.Calories
		}
	}
	return total
}
