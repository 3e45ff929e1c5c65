package planner

// Rand is the randomness the composer needs. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type SizingConfig struct {
	MinGrams   float64 `yaml:"min_grams"`
	MaxGrams   float64 `yaml:"max_grams"`
	MinUnits   float64 `yaml:"min_units"`
	FixedGrams float64 `yaml:"fixed_grams"`
	FixedUnits float64 `yaml:"fixed_units"`
}

type ComposerConfig struct {
	MainMeals      int          `yaml:"main_meals"`
	MainMealShare  float64      `yaml:"main_meal_share"`
	FatThresholdG  float64      `yaml:"fat_threshold_g"`
	CarbThresholdG float64      `yaml:"carb_threshold_g"`
	Sizing         SizingConfig `yaml:"sizing"`
}

func DefaultComposerConfig() ComposerConfig {
	return ComposerConfig{
		MainMeals:      3,
		MainMealShare:  0.30,
		FatThresholdG:  5,
		CarbThresholdG: 10,
		Sizing: SizingConfig{
			MinGrams:   30,
			MaxGrams:   300,
			MinUnits:   1,
			FixedGrams: 150,
			FixedUnits: 1,
		},
	}
}

func (c ComposerConfig) Merge(override ComposerConfig) ComposerConfig {
	out := c
	if override.MainMeals > 0 {
		out.MainMeals = override.MainMeals
	}
	if override.MainMealShare > 0 && override.MainMealShare*float64(out.MainMeals) <= 1 {
		out.MainMealShare = override.MainMealShare
	}
	if override.FatThresholdG > 0 {
		out.FatThresholdG = override.FatThresholdG
	}
	if override.CarbThresholdG > 0 {
		out.CarbThresholdG = override.CarbThresholdG
	}
	s := override.Sizing
	if s.MinGrams > 0 {
		out.Sizing.MinGrams = s.MinGrams
	}
	if s.MaxGrams > 0 && s.MaxGrams >= out.Sizing.MinGrams {
		out.Sizing.MaxGrams = s.MaxGrams
	}
	if s.MinUnits > 0 {
		out.Sizing.MinUnits = s.MinUnits
	}
	if s.FixedGrams > 0 {
		out.Sizing.FixedGrams = s.FixedGrams
	}
	if s.FixedUnits > 0 {
		out.Sizing.FixedUnits = s.FixedUnits
	}
	return out
}

// Allocation is one food with a positive quantity inside a meal.
type Allocation struct {
	Food     FoodItem `json:"food"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	Macros   Macros   `json:"macros"`
}

func newAllocation(f FoodItem, quantity float64) Allocation {
	return Allocation{
		Food:     f,
		Quantity: quantity,
		Unit:     f.Mode.Unit(),
		Macros:   MacrosFor(f, quantity),
	}
}

// IsMainMeal reports whether the slot at index is one of the main meals.
func (c ComposerConfig) IsMainMeal(index int) bool {
	return index < c.MainMeals
}

// MealShare is the fraction of the day target assigned to the slot at index.
// Up to MainMeals slots split the day evenly; beyond that, main meals keep
// MainMealShare each and snack slots split what is left.
func (c ComposerConfig) MealShare(index, mealsPerDay int) float64 {
	if mealsPerDay <= 0 || index < 0 || index >= mealsPerDay {
		return 0
	}
	if mealsPerDay <= c.MainMeals {
		return 1 / float64(mealsPerDay)
	}
	if c.IsMainMeal(index) {
		return c.MainMealShare
	}
	snacks := mealsPerDay - c.MainMeals
	return (1 - c.MainMealShare*float64(c.MainMeals)) / float64(snacks)
}

// Composer fills one meal slot at a time from a catalog.
type Composer struct {
	Catalog *Catalog
	Config  ComposerConfig
}

func NewComposer(catalog *Catalog, cfg ComposerConfig) *Composer {
	return &Composer{Catalog: catalog, Config: cfg}
}

// ComposeMeal picks foods for the slot at index in priority order: protein,
// fat, carbohydrate, vegetable, fruit. A step whose pool is empty adds nothing.
func (c *Composer) ComposeMeal(day MacroTarget, mealsPerDay, index int, rng Rand) []Allocation {
	share := c.Config.MealShare(index, mealsPerDay)
	if share <= 0 {
		return nil
	}
	proteinNeed := day.ProteinG * share
	fatNeed := day.FatG * share
	carbNeed := day.CarbsG * share
	sizing := c.Config.Sizing

	var out []Allocation
	var got Macros
	add := func(a Allocation) {
		out = append(out, a)
		got = got.Add(a.Macros)
	}

	if f, ok := pick(c.Catalog.Pool(ProteinPool...), rng); ok {
		if q := quantityFor(f, f.ProteinG, proteinNeed, sizing); q > 0 {
			add(newAllocation(f, q))
		}
	}

	if remaining := fatNeed - got.FatG; remaining > c.Config.FatThresholdG {
		if f, ok := pick(c.Catalog.Pool(FatPool...), rng); ok {
			if q := quantityFor(f, f.FatG, remaining, sizing); q > 0 {
				add(newAllocation(f, q))
			}
		}
	}

	if remaining := carbNeed - got.CarbsG; remaining > c.Config.CarbThresholdG {
		if f, ok := pick(c.Catalog.Pool(CarbPool...), rng); ok {
			if q := quantityFor(f, f.CarbsG, remaining, sizing); q > 0 {
				add(newAllocation(f, q))
			}
		}
	}

	if c.Config.IsMainMeal(index) {
		if f, ok := pick(c.Catalog.Pool(VegetablePool...), rng); ok {
			add(newAllocation(f, c.fixedQuantity(f)))
		}
	}

	if index == 0 || !c.Config.IsMainMeal(index) {
		if f, ok := pick(c.Catalog.Pool(FruitPool...), rng); ok {
			add(newAllocation(f, c.fixedQuantity(f)))
		}
	}

	return out
}

func (c *Composer) fixedQuantity(f FoodItem) float64 {
	if f.Mode == ModePerUnit {
		return c.Config.Sizing.FixedUnits
	}
	return c.Config.Sizing.FixedGrams
}

func pick(pool []FoodItem, rng Rand) (FoodItem, bool) {
	if len(pool) == 0 {
		return FoodItem{}, false
	}
	return pool[rng.Intn(len(pool))], true
}
