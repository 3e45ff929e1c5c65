package model

import "time"

type Profile struct {
	WeightKg     *float64  `json:"weight_kg,omitempty"`
	HeightCm     *float64  `json:"height_cm,omitempty"`
	Sex          string    `json:"sex"`
	Age          *int      `json:"age,omitempty"`
	BodyFatPct   *float64  `json:"body_fat_pct,omitempty"`
	MusclePct    *float64  `json:"muscle_pct,omitempty"`
	Goal         string    `json:"goal"`
	FitnessLevel string    `json:"fitness_level"`
	MealsPerDay  int       `json:"meals_per_day"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BodyMeasurement struct {
	ID         int64     `json:"id"`
	MeasuredAt time.Time `json:"measured_at"`
	WeightKg   float64   `json:"weight_kg"`
	BodyFatPct *float64  `json:"body_fat_pct,omitempty"`
	MusclePct  *float64  `json:"muscle_pct,omitempty"`
	WaistCm    *float64  `json:"waist_cm,omitempty"`
	HipCm      *float64  `json:"hip_cm,omitempty"`
	ChestCm    *float64  `json:"chest_cm,omitempty"`
	ArmCm      *float64  `json:"arm_cm,omitempty"`
	ThighCm    *float64  `json:"thigh_cm,omitempty"`
	Notes      string    `json:"notes"`
}

type MacroTarget struct {
	ID            int64     `json:"id"`
	Calories      int       `json:"calories"`
	ProteinG      float64   `json:"protein_g"`
	CarbsG        float64   `json:"carbs_g"`
	FatG          float64   `json:"fat_g"`
	REE           *float64  `json:"ree,omitempty"`
	TDEE          *float64  `json:"tdee,omitempty"`
	Formula       string    `json:"formula"`
	Source        string    `json:"source"`
	EffectiveDate string    `json:"effective_date"`
	CreatedAt     time.Time `json:"created_at"`
}

type Food struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	QuantityType string    `json:"quantity_type"`
	Calories     float64   `json:"calories"`
	ProteinG     float64   `json:"protein_g"`
	CarbsG       float64   `json:"carbs_g"`
	FatG         float64   `json:"fat_g"`
	Source       string    `json:"source"`
	SourceRef    string    `json:"source_ref"`
	IsComplete   bool      `json:"is_complete"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Plan struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Seed         int64      `json:"seed"`
	MealsPerDay  int        `json:"meals_per_day"`
	Calories     int        `json:"calories"`
	ProteinG     float64    `json:"protein_g"`
	CarbsG       float64    `json:"carbs_g"`
	FatG         float64    `json:"fat_g"`
	REE          float64    `json:"ree"`
	TDEE         float64    `json:"tdee"`
	Formula      string     `json:"formula"`
	WeekStart    string     `json:"week_start"`
	Reason       string     `json:"reason"`
	CreatedAt    time.Time  `json:"created_at"`
	SupersededAt *time.Time `json:"superseded_at,omitempty"`
	Days         []PlanDay  `json:"days"`
}

type PlanDay struct {
	ID               int64      `json:"id"`
	DayNumber        int        `json:"day_number"`
	DayName          string     `json:"day_name"`
	Calories         int        `json:"calories"`
	ProteinG         float64    `json:"protein_g"`
	CarbsG           float64    `json:"carbs_g"`
	FatG             float64    `json:"fat_g"`
	RealizedCalories float64    `json:"realized_calories"`
	RealizedProteinG float64    `json:"realized_protein_g"`
	RealizedCarbsG   float64    `json:"realized_carbs_g"`
	RealizedFatG     float64    `json:"realized_fat_g"`
	ScaleFactor      float64    `json:"scale_factor"`
	FactorClamped    bool       `json:"factor_clamped"`
	DeviationPct     float64    `json:"deviation_pct"`
	WithinTolerance  bool       `json:"within_tolerance"`
	Meals            []PlanMeal `json:"meals"`
}

type PlanMeal struct {
	ID          int64            `json:"id"`
	Index       int              `json:"index"`
	Name        string           `json:"name"`
	Allocations []PlanAllocation `json:"allocations"`
}

type PlanAllocation struct {
	ID                 int64   `json:"id"`
	Position           int     `json:"position"`
	FoodID             string  `json:"food_id"`
	FoodName           string  `json:"food_name"`
	Category           string  `json:"category"`
	Quantity           float64 `json:"quantity"`
	QuantityUnit       string  `json:"quantity_unit"`
	CalculatedCalories float64 `json:"calculated_calories"`
	CalculatedProtein  float64 `json:"calculated_protein"`
	CalculatedCarbs    float64 `json:"calculated_carbs"`
	CalculatedFat      float64 `json:"calculated_fat"`
}

type RegenerationRequest struct {
	ID            int64      `json:"id"`
	EffectiveFrom string     `json:"effective_from"`
	Calories      int        `json:"calories"`
	ProteinG      float64    `json:"protein_g"`
	CarbsG        float64    `json:"carbs_g"`
	FatG          float64    `json:"fat_g"`
	Reason        string     `json:"reason"`
	MeasurementID *int64     `json:"measurement_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ConsumedAt    *time.Time `json:"consumed_at,omitempty"`
	PlanID        string     `json:"plan_id,omitempty"`
}
