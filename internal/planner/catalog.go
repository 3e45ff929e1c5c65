package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Category string

const (
	CategoryProtein      Category = "protein"
	CategoryFat          Category = "fat"
	CategoryNuts         Category = "nuts"
	CategoryDairyHighFat Category = "dairy_high_fat"
	CategoryCarbohydrate Category = "carbohydrate"
	CategoryCereal       Category = "cereal"
	CategoryLegume       Category = "legume"
	CategoryVegetable    Category = "vegetable"
	CategoryFruit        Category = "fruit"
)

var AllCategories = []Category{
	CategoryProtein,
	CategoryFat,
	CategoryNuts,
	CategoryDairyHighFat,
	CategoryCarbohydrate,
	CategoryCereal,
	CategoryLegume,
	CategoryVegetable,
	CategoryFruit,
}

// Composition pools. Order within a pool is fixed so seeded selection is stable.
var (
	ProteinPool   = []Category{CategoryProtein}
	FatPool       = []Category{CategoryFat, CategoryNuts, CategoryDairyHighFat}
	CarbPool      = []Category{CategoryCarbohydrate, CategoryCereal, CategoryLegume}
	VegetablePool = []Category{CategoryVegetable}
	FruitPool     = []Category{CategoryFruit}
)

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown food category %q", s)
}

type QuantityMode string

const (
	ModePer100g QuantityMode = "per_100g"
	ModePerUnit QuantityMode = "per_unit"
)

const (
	UnitGrams = "grams"
	UnitUnits = "units"
)

func ParseQuantityMode(s string) (QuantityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "per_100g", "per-100g", "grams", "g":
		return ModePer100g, nil
	case "per_unit", "per-unit", "units", "unit":
		return ModePerUnit, nil
	default:
		return "", fmt.Errorf("invalid quantity mode %q (use grams or units)", s)
	}
}

// Unit is the allocation unit matching the mode.
func (m QuantityMode) Unit() string {
	if m == ModePerUnit {
		return UnitUnits
	}
	return UnitGrams
}

// FoodItem carries macros per 100 g or per unit depending on Mode.
type FoodItem struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Category Category     `json:"category" yaml:"category"`
	Mode     QuantityMode `json:"mode" yaml:"mode"`
	Calories float64      `json:"calories" yaml:"calories"`
	ProteinG float64      `json:"protein_g" yaml:"protein_g"`
	CarbsG   float64      `json:"carbs_g" yaml:"carbs_g"`
	FatG     float64      `json:"fat_g" yaml:"fat_g"`
}

// Complete reports whether the item can take part in composition.
func (f FoodItem) Complete() bool {
	if strings.TrimSpace(f.ID) == "" {
		return false
	}
	if _, err := ParseCategory(string(f.Category)); err != nil {
		return false
	}
	if f.Mode != ModePer100g && f.Mode != ModePerUnit {
		return false
	}
	if f.Calories <= 0 || f.ProteinG < 0 || f.CarbsG < 0 || f.FatG < 0 {
		return false
	}
	return true
}

// Macros is a realized nutrient amount.
type Macros struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		ProteinG: m.ProteinG + o.ProteinG,
		CarbsG:   m.CarbsG + o.CarbsG,
		FatG:     m.FatG + o.FatG,
	}
}

// Rounded rounds every field to one decimal.
func (m Macros) Rounded() Macros {
	return Macros{
		Calories: round1(m.Calories),
		ProteinG: round1(m.ProteinG),
		CarbsG:   round1(m.CarbsG),
		FatG:     round1(m.FatG),
	}
}

// MacrosFor applies the macro-to-quantity formula for the item's mode.
func MacrosFor(f FoodItem, quantity float64) Macros {
	scale := quantity
	if f.Mode != ModePerUnit {
		scale = quantity / 100
	}
	return Macros{
		Calories: f.Calories * scale,
		ProteinG: f.ProteinG * scale,
		CarbsG:   f.CarbsG * scale,
		FatG:     f.FatG * scale,
	}
}

// Catalog is a read-only, category-partitioned view over complete food items.
type Catalog struct {
	byID       map[string]FoodItem
	byCategory map[Category][]FoodItem
	skipped    int
}

// NewCatalog drops incomplete and duplicate items. Items inside each
// category are ordered by id.
func NewCatalog(items []FoodItem) *Catalog {
	c := &Catalog{
		byID:       make(map[string]FoodItem, len(items)),
		byCategory: make(map[Category][]FoodItem),
	}
	for _, item := range items {
		if !item.Complete() {
			c.skipped++
			continue
		}
		if _, dup := c.byID[item.ID]; dup {
			c.skipped++
			continue
		}
		c.byID[item.ID] = item
		c.byCategory[item.Category] = append(c.byCategory[item.Category], item)
	}
	for cat := range c.byCategory {
		sort.Slice(c.byCategory[cat], func(i, j int) bool {
			return c.byCategory[cat][i].ID < c.byCategory[cat][j].ID
		})
	}
	return c
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}

// Skipped is the number of input items rejected by NewCatalog.
func (c *Catalog) Skipped() int {
	if c == nil {
		return 0
	}
	return c.skipped
}

func (c *Catalog) Get(id string) (FoodItem, bool) {
	if c == nil {
		return FoodItem{}, false
	}
	f, ok := c.byID[id]
	return f, ok
}

// Pool returns the items of the given categories in argument order.
func (c *Catalog) Pool(categories ...Category) []FoodItem {
	if c == nil {
		return nil
	}
	var out []FoodItem
	for _, cat := range categories {
		out = append(out, c.byCategory[cat]...)
	}
	return out
}

// Usable reports whether at least one composition step has a candidate.
func (c *Catalog) Usable() bool {
	for _, pool := range [][]Category{ProteinPool, FatPool, CarbPool, VegetablePool, FruitPool} {
		if len(c.Pool(pool...)) > 0 {
			return true
		}
	}
	return false
}

// quantityFor inverts a per-mode macro value so the item supplies need grams
// of that macro. Returns 0 when the item carries none of it.
func quantityFor(f FoodItem, macroValue, need float64, sizing SizingConfig) float64 {
	if macroValue <= 0 || need <= 0 {
		return 0
	}
	if f.Mode == ModePerUnit {
		return math.Max(sizing.MinUnits, math.Round(need/macroValue))
	}
	grams := need / macroValue * 100
	return math.Min(sizing.MaxGrams, math.Max(sizing.MinGrams, grams))
}
