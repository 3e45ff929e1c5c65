package service

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/saadjs/kcal-planner/internal/model"
	"github.com/saadjs/kcal-planner/internal/planner"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

type FoodInput struct {
	ID           string  `yaml:"id" json:"id" validate:"required"`
	Name         string  `yaml:"name" json:"name" validate:"required"`
	Category     string  `yaml:"category" json:"category" validate:"required"`
	QuantityType string  `yaml:"quantity_type" json:"quantity_type" validate:"required"`
	Calories     float64 `yaml:"calories" json:"calories" validate:"gte=0"`
	ProteinG     float64 `yaml:"protein_g" json:"protein_g" validate:"gte=0"`
	CarbsG       float64 `yaml:"carbs_g" json:"carbs_g" validate:"gte=0"`
	FatG         float64 `yaml:"fat_g" json:"fat_g" validate:"gte=0"`
	Source       string  `yaml:"source,omitempty" json:"source,omitempty"`
	SourceRef    string  `yaml:"source_ref,omitempty" json:"source_ref,omitempty"`
}

type catalogFile struct {
	Foods []FoodInput `yaml:"foods"`
}

type FoodFilter struct {
	Category     string
	CompleteOnly bool
}

type ImportResult struct {
	Imported   int `json:"imported"`
	Incomplete int `json:"incomplete"`
}

// ParseCatalogYAML decodes a catalog file of the form `foods: [...]`.
func ParseCatalogYAML(raw []byte) ([]FoodInput, error) {
	var f catalogFile
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	return f.Foods, nil
}

// ImportFoods upserts foods by id in one transaction. Rows that would not
// take part in composition are stored with is_complete = 0.
func ImportFoods(db *sql.DB, foods []FoodInput) (ImportResult, error) {
	var res ImportResult
	tx, err := db.Begin()
	if err != nil {
		return res, fmt.Errorf("begin food import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, in := range foods {
		item, err := normalizeFood(in)
		if err != nil {
			return res, fmt.Errorf("food %d (%s): %w", i+1, in.ID, err)
		}
		complete := item.Complete()
		if !complete {
			res.Incomplete++
		}
		source := strings.TrimSpace(in.Source)
		if source == "" {
			source = "manual"
		}
		_, err = tx.Exec(`
INSERT INTO foods(id, name, category, quantity_type, calories, protein_g, carbs_g, fat_g, source, source_ref, is_complete, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  category=excluded.category,
  quantity_type=excluded.quantity_type,
  calories=excluded.calories,
  protein_g=excluded.protein_g,
  carbs_g=excluded.carbs_g,
  fat_g=excluded.fat_g,
  source=excluded.source,
  source_ref=excluded.source_ref,
  is_complete=excluded.is_complete,
  updated_at=excluded.updated_at
`, item.ID, item.Name, string(item.Category), item.Mode.Unit(), item.Calories, item.ProteinG, item.CarbsG, item.FatG,
			source, strings.TrimSpace(in.SourceRef), boolInt(complete))
		if err != nil {
			return res, fmt.Errorf("import food %s: %w", item.ID, err)
		}
		res.Imported++
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit food import: %w", err)
	}
	return res, nil
}

func normalizeFood(in FoodInput) (planner.FoodItem, error) {
	in.ID = normalizeName(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return planner.FoodItem{}, err
	}
	category, err := planner.ParseCategory(in.Category)
	if err != nil {
		return planner.FoodItem{}, err
	}
	mode, err := planner.ParseQuantityMode(in.QuantityType)
	if err != nil {
		return planner.FoodItem{}, err
	}
	return planner.FoodItem{
		ID:       in.ID,
		Name:     in.Name,
		Category: category,
		Mode:     mode,
		Calories: in.Calories,
		ProteinG: in.ProteinG,
		CarbsG:   in.CarbsG,
		FatG:     in.FatG,
	}, nil
}

// SeedDefaultCatalog imports the bundled starter catalog. Existing rows with
// the same id are overwritten.
func SeedDefaultCatalog(db *sql.DB) (ImportResult, error) {
	foods, err := ParseCatalogYAML(defaultCatalogYAML)
	if err != nil {
		return ImportResult{}, err
	}
	res, err := ImportFoods(db, foods)
	if err != nil {
		return res, err
	}
	log.Printf("[SeedDefaultCatalog] imported %d foods", res.Imported)
	return res, nil
}

func ListFoods(db *sql.DB, f FoodFilter) ([]model.Food, error) {
	query := `SELECT id, name, category, quantity_type, calories, protein_g, carbs_g, fat_g, source, source_ref, is_complete, updated_at FROM foods WHERE 1=1`
	args := make([]any, 0)
	if c := strings.TrimSpace(f.Category); c != "" {
		category, err := planner.ParseCategory(c)
		if err != nil {
			return nil, err
		}
		query += ` AND category = ?`
		args = append(args, string(category))
	}
	if f.CompleteOnly {
		query += ` AND is_complete = 1`
	}
	query += ` ORDER BY category ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	out := make([]model.Food, 0)
	for rows.Next() {
		var food model.Food
		var complete int
		if err := rows.Scan(&food.ID, &food.Name, &food.Category, &food.QuantityType, &food.Calories, &food.ProteinG, &food.CarbsG, &food.FatG, &food.Source, &food.SourceRef, &complete, &food.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		food.IsComplete = complete == 1
		out = append(out, food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foods: %w", err)
	}
	return out, nil
}

func DeleteFood(db *sql.DB, id string) error {
	id = normalizeName(id)
	if id == "" {
		return fmt.Errorf("food id is required")
	}
	res, err := db.Exec(`DELETE FROM foods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete food %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("food %s not found", id)
	}
	return nil
}

// LoadCatalog reads complete foods into an engine catalog.
func LoadCatalog(db *sql.DB) (*planner.Catalog, error) {
	foods, err := ListFoods(db, FoodFilter{CompleteOnly: true})
	if err != nil {
		return nil, err
	}
	items := make([]planner.FoodItem, 0, len(foods))
	for _, f := range foods {
		mode, err := planner.ParseQuantityMode(f.QuantityType)
		if err != nil {
			return nil, fmt.Errorf("food %s: %w", f.ID, err)
		}
		items = append(items, planner.FoodItem{
			ID:       f.ID,
			Name:     f.Name,
			Category: planner.Category(f.Category),
			Mode:     mode,
			Calories: f.Calories,
			ProteinG: f.ProteinG,
			CarbsG:   f.CarbsG,
			FatG:     f.FatG,
		})
	}
	catalog := planner.NewCatalog(items)
	if catalog.Skipped() > 0 {
		log.Printf("[LoadCatalog] skipped %d incomplete foods", catalog.Skipped())
	}
	return catalog, nil
}
