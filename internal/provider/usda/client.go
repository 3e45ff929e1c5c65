package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.nal.usda.gov"

// Generic (non-branded) data types report nutrients per 100 g.
var genericDataTypes = []string{"Foundation", "SR Legacy"}

// Food is one search hit with macros per 100 g.
type Food struct {
	FDCID       int64   `json:"fdc_id"`
	Description string  `json:"description"`
	DataType    string  `json:"data_type"`
	Calories    float64 `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
}

// Complete reports whether all four macro values were present in the response.
func (f Food) Complete() bool {
	return f.Calories > 0 && (f.ProteinG > 0 || f.CarbsG > 0 || f.FatG > 0)
}

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// SearchFoods queries FoodData Central for generic foods matching query.
// The raw response body is returned alongside the parsed hits.
func (c *Client) SearchFoods(ctx context.Context, query string, limit int) ([]Food, []byte, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, nil, fmt.Errorf("missing USDA API key")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, fmt.Errorf("search query is required")
	}
	if limit <= 0 {
		limit = 10
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	reqBody := map[string]any{
		"query":    query,
		"dataType": genericDataTypes,
		"pageSize": limit,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal USDA search payload: %w", err)
	}

	url := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", baseURL, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("create USDA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, body, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, body, fmt.Errorf("decode USDA response: %w", err)
	}

	out := make([]Food, 0, len(parsed.Foods))
	for _, f := range parsed.Foods {
		out = append(out, toFood(f))
	}
	return out, body, nil
}

func toFood(f usdaFood) Food {
	out := Food{
		FDCID:       f.FDCID,
		Description: strings.TrimSpace(f.Description),
		DataType:    strings.TrimSpace(f.DataType),
	}
	for _, n := range f.FoodNutrients {
		name := strings.ToLower(strings.TrimSpace(n.NutrientName))
		switch {
		case strings.HasPrefix(name, "energy"):
			// Foundation foods also list energy in kJ.
			if strings.EqualFold(strings.TrimSpace(n.UnitName), "kj") {
				continue
			}
			if out.Calories == 0 {
				out.Calories = n.Value
			}
		case name == "protein":
			out.ProteinG = n.Value
		case name == "carbohydrate, by difference":
			out.CarbsG = n.Value
		case name == "total lipid (fat)":
			out.FatG = n.Value
		}
	}
	return out
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	DataType      string         `json:"dataType"`
	FoodNutrients []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}
