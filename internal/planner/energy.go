package planner

import (
	"fmt"
	"math"
	"strings"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Goal string

const (
	GoalReduceFat  Goal = "reduce_fat"
	GoalGainMuscle Goal = "gain_muscle"
	GoalMaintain   Goal = "maintain"
)

type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

const (
	FormulaLeanMass      = "lean_mass"
	FormulaMifflinStJeor = "mifflin_st_jeor"
)

// BodyProfile is the subset of a user's profile the energy model reads.
// Zero values mean "unknown" and fall back to EnergyConfig defaults.
type BodyProfile struct {
	WeightKg   float64
	HeightCm   float64
	Sex        Sex
	Age        int
	BodyFatPct *float64
	MusclePct  *float64
}

// MacroTarget is one day's calorie and macro target.
type MacroTarget struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// MacroCalories reconstructs calories from the three macros.
func (t MacroTarget) MacroCalories() float64 {
	return t.ProteinG*4 + t.CarbsG*4 + t.FatG*9
}

type EnergyResult struct {
	REE     float64     `json:"ree"`
	TDEE    float64     `json:"tdee"`
	Formula string      `json:"formula"`
	Target  MacroTarget `json:"target"`
}

// EnergyConfig holds every table and constant the energy model uses.
type EnergyConfig struct {
	DefaultWeightKg float64 `yaml:"default_weight_kg"`
	DefaultHeightCm float64 `yaml:"default_height_cm"`
	DefaultAge      int     `yaml:"default_age"`

	LeanMassBase       float64 `yaml:"lean_mass_base"`
	LeanMassMultiplier float64 `yaml:"lean_mass_multiplier"`

	ActivityFactors   map[FitnessLevel]float64 `yaml:"activity_factors"`
	GoalMultipliers   map[Goal]float64         `yaml:"goal_multipliers"`
	ProteinPerKg      map[Goal]float64         `yaml:"protein_per_kg"`
	FatPerKgMinimum   map[Goal]float64         `yaml:"fat_per_kg_minimum"`
	FatCalorieShare   float64                  `yaml:"fat_calorie_share"`
	MinimumCarbsGrams float64                  `yaml:"minimum_carbs_g"`
}

func DefaultEnergyConfig() EnergyConfig {
	return EnergyConfig{
		DefaultWeightKg:    70,
		DefaultHeightCm:    170,
		DefaultAge:         30,
		LeanMassBase:       370,
		LeanMassMultiplier: 21.6,
		ActivityFactors: map[FitnessLevel]float64{
			LevelBeginner:     1.375,
			LevelIntermediate: 1.55,
			LevelAdvanced:     1.725,
		},
		GoalMultipliers: map[Goal]float64{
			GoalReduceFat:  0.8,
			GoalGainMuscle: 1.1,
			GoalMaintain:   1.0,
		},
		ProteinPerKg: map[Goal]float64{
			GoalReduceFat:  2.2,
			GoalGainMuscle: 2.0,
			GoalMaintain:   1.8,
		},
		FatPerKgMinimum: map[Goal]float64{
			GoalReduceFat:  0.8,
			GoalGainMuscle: 1.0,
			GoalMaintain:   0.9,
		},
		FatCalorieShare:   0.20,
		MinimumCarbsGrams: 50,
	}
}

// Merge returns c with every non-zero field of override applied on top.
func (c EnergyConfig) Merge(override EnergyConfig) EnergyConfig {
	out := c
	if override.DefaultWeightKg > 0 {
		out.DefaultWeightKg = override.DefaultWeightKg
	}
	if override.DefaultHeightCm > 0 {
		out.DefaultHeightCm = override.DefaultHeightCm
	}
	if override.DefaultAge > 0 {
		out.DefaultAge = override.DefaultAge
	}
	if override.LeanMassBase > 0 {
		out.LeanMassBase = override.LeanMassBase
	}
	if override.LeanMassMultiplier > 0 {
		out.LeanMassMultiplier = override.LeanMassMultiplier
	}
	if override.FatCalorieShare > 0 {
		out.FatCalorieShare = override.FatCalorieShare
	}
	if override.MinimumCarbsGrams > 0 {
		out.MinimumCarbsGrams = override.MinimumCarbsGrams
	}
	out.ActivityFactors = mergeTable(c.ActivityFactors, override.ActivityFactors)
	out.GoalMultipliers = mergeTable(c.GoalMultipliers, override.GoalMultipliers)
	out.ProteinPerKg = mergeTable(c.ProteinPerKg, override.ProteinPerKg)
	out.FatPerKgMinimum = mergeTable(c.FatPerKgMinimum, override.FatPerKgMinimum)
	return out
}

func mergeTable[K comparable](base, override map[K]float64) map[K]float64 {
	out := make(map[K]float64, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return SexMale, nil
	case "female", "f":
		return SexFemale, nil
	default:
		return "", fmt.Errorf("invalid sex %q (use male or female)", s)
	}
}

func ParseGoal(s string) (Goal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reduce_fat", "reduce", "lose", "cut":
		return GoalReduceFat, nil
	case "gain_muscle", "gain", "bulk":
		return GoalGainMuscle, nil
	case "maintain", "maintenance":
		return GoalMaintain, nil
	default:
		return "", fmt.Errorf("invalid goal %q (use reduce_fat, gain_muscle or maintain)", s)
	}
}

func ParseFitnessLevel(s string) (FitnessLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner, nil
	case "intermediate":
		return LevelIntermediate, nil
	case "advanced":
		return LevelAdvanced, nil
	default:
		return "", fmt.Errorf("invalid fitness level %q (use beginner, intermediate or advanced)", s)
	}
}

// RestingEnergy returns REE and the formula used. Body-fat percentage, when
// known, selects the lean-mass formula; otherwise Mifflin-St Jeor.
func RestingEnergy(p BodyProfile, cfg EnergyConfig) (float64, string) {
	weight := p.WeightKg
	if weight <= 0 {
		weight = cfg.DefaultWeightKg
	}
	if p.BodyFatPct != nil && *p.BodyFatPct > 0 && *p.BodyFatPct < 100 {
		leanMassKg := weight * (1 - *p.BodyFatPct/100)
		return cfg.LeanMassBase + cfg.LeanMassMultiplier*leanMassKg, FormulaLeanMass
	}

	height := p.HeightCm
	if height <= 0 {
		height = cfg.DefaultHeightCm
	}
	age := p.Age
	if age <= 0 {
		age = cfg.DefaultAge
	}
	ree := 10*weight + 6.25*height - 5*float64(age)
	if p.Sex == SexFemale {
		ree -= 161
	} else {
		ree += 5
	}
	return ree, FormulaMifflinStJeor
}

// ComputeTargets derives the daily MacroTarget. Unknown goals and levels
// resolve to maintain and intermediate.
func ComputeTargets(p BodyProfile, goal Goal, level FitnessLevel, cfg EnergyConfig) EnergyResult {
	ree, formula := RestingEnergy(p, cfg)

	activity, ok := cfg.ActivityFactors[level]
	if !ok {
		activity = cfg.ActivityFactors[LevelIntermediate]
	}
	if _, ok := cfg.GoalMultipliers[goal]; !ok {
		goal = GoalMaintain
	}
	tdee := ree * activity
	calories := math.Round(tdee * cfg.GoalMultipliers[goal])

	weight := p.WeightKg
	if weight <= 0 {
		weight = cfg.DefaultWeightKg
	}
	protein := round1(weight * cfg.ProteinPerKg[goal])

	fatFloor := weight * cfg.FatPerKgMinimum[goal]
	fatShare := cfg.FatCalorieShare * calories / 9
	fat := ceil1(math.Max(fatFloor, fatShare))

	carbs := (calories - protein*4 - fat*9) / 4
	if carbs < cfg.MinimumCarbsGrams {
		carbs = cfg.MinimumCarbsGrams
	}
	carbs = round1(carbs)

	return EnergyResult{
		REE:     math.Round(ree),
		TDEE:    math.Round(tdee),
		Formula: formula,
		Target: MacroTarget{
			Calories: int(calories),
			ProteinG: protein,
			CarbsG:   carbs,
			FatG:     fat,
		},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ceil1 keeps the fat floor from being crossed by rounding.
func ceil1(v float64) float64 {
	return math.Ceil(v*10-1e-9) / 10
}
