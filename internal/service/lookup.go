package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/saadjs/kcal-planner/internal/provider/usda"
)

// FoodSearcher is implemented by *usda.Client.
type FoodSearcher interface {
	SearchFoods(ctx context.Context, query string, limit int) ([]usda.Food, []byte, error)
}

type LookupCandidate struct {
	FDCID       int64   `json:"fdc_id"`
	Description string  `json:"description"`
	DataType    string  `json:"data_type"`
	Calories    float64 `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	Complete    bool    `json:"complete"`
}

// LookupFoods searches the external database and returns per-100 g candidates.
func LookupFoods(ctx context.Context, s FoodSearcher, query string, limit int) ([]LookupCandidate, error) {
	foods, _, err := s.SearchFoods(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("lookup foods %q: %w", query, err)
	}
	out := make([]LookupCandidate, 0, len(foods))
	for _, f := range foods {
		out = append(out, LookupCandidate{
			FDCID:       f.FDCID,
			Description: f.Description,
			DataType:    f.DataType,
			Calories:    f.Calories,
			ProteinG:    f.ProteinG,
			CarbsG:      f.CarbsG,
			FatG:        f.FatG,
			Complete:    f.Complete(),
		})
	}
	return out, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// CandidateFoodInput turns a lookup candidate into a per-100 g catalog row.
// An empty id is derived from the description.
func CandidateFoodInput(c LookupCandidate, id, category string) FoodInput {
	if strings.TrimSpace(id) == "" {
		id = slugify(c.Description)
	}
	return FoodInput{
		ID:           id,
		Name:         c.Description,
		Category:     category,
		QuantityType: "grams",
		Calories:     c.Calories,
		ProteinG:     c.ProteinG,
		CarbsG:       c.CarbsG,
		FatG:         c.FatG,
		Source:       "usda",
		SourceRef:    fmt.Sprintf("fdc:%d", c.FDCID),
	}
}
