package planner_test

import "github.com/saadjs/kcal-planner/internal/planner"

// firstRand always picks the first pool member.
type firstRand struct{}

func (firstRand) Intn(int) int { return 0 }

func floatPtr(v float64) *float64 { return &v }

func testFoods() []planner.FoodItem {
	return []planner.FoodItem{
		{ID: "chicken-breast", Name: "Chicken breast", Category: planner.CategoryProtein, Mode: planner.ModePer100g, Calories: 165, ProteinG: 31, CarbsG: 0, FatG: 3.6},
		{ID: "egg", Name: "Egg", Category: planner.CategoryProtein, Mode: planner.ModePerUnit, Calories: 72, ProteinG: 6.3, CarbsG: 0.4, FatG: 4.8},
		{ID: "olive-oil", Name: "Olive oil", Category: planner.CategoryFat, Mode: planner.ModePer100g, Calories: 884, ProteinG: 0, CarbsG: 0, FatG: 100},
		{ID: "almonds", Name: "Almonds", Category: planner.CategoryNuts, Mode: planner.ModePer100g, Calories: 579, ProteinG: 21, CarbsG: 22, FatG: 50},
		{ID: "rice", Name: "Cooked rice", Category: planner.CategoryCarbohydrate, Mode: planner.ModePer100g, Calories: 130, ProteinG: 2.7, CarbsG: 28, FatG: 0.3},
		{ID: "oats", Name: "Rolled oats", Category: planner.CategoryCereal, Mode: planner.ModePer100g, Calories: 389, ProteinG: 17, CarbsG: 66, FatG: 7},
		{ID: "broccoli", Name: "Broccoli", Category: planner.CategoryVegetable, Mode: planner.ModePer100g, Calories: 34, ProteinG: 2.8, CarbsG: 7, FatG: 0.4},
		{ID: "apple", Name: "Apple", Category: planner.CategoryFruit, Mode: planner.ModePerUnit, Calories: 95, ProteinG: 0.5, CarbsG: 25, FatG: 0.3},
		{ID: "", Name: "Missing id", Category: planner.CategoryFruit, Mode: planner.ModePerUnit, Calories: 50},
		{ID: "mystery", Name: "Unknown category", Category: "candy", Mode: planner.ModePer100g, Calories: 400},
	}
}

func testCatalog() *planner.Catalog {
	return planner.NewCatalog(testFoods())
}

func standardProfile() planner.BodyProfile {
	return planner.BodyProfile{WeightKg: 70, HeightCm: 170, Sex: planner.SexMale}
}
