package usda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchFoodsParsesGenericFoods(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "demo" {
			t.Errorf("expected api_key query param, got %q", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "foods": [
    {
      "fdcId": 171077,
      "description": "Chicken, broilers or fryers, breast, meat only, cooked, roasted",
      "dataType": "SR Legacy",
      "foodNutrients": [
        {"nutrientName": "Energy", "unitName": "kJ", "value": 690},
        {"nutrientName": "Energy", "unitName": "KCAL", "value": 165},
        {"nutrientName": "Protein", "unitName": "G", "value": 31},
        {"nutrientName": "Carbohydrate, by difference", "unitName": "G", "value": 0},
        {"nutrientName": "Total lipid (fat)", "unitName": "G", "value": 3.57}
      ]
    },
    {
      "fdcId": 1,
      "description": "Water",
      "dataType": "Foundation",
      "foodNutrients": []
    }
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client()}

	foods, raw, err := c.SearchFoods(context.Background(), "chicken breast", 5)
	if err != nil {
		t.Fatalf("search foods: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw body to be returned")
	}
	if gotBody["query"] != "chicken breast" {
		t.Fatalf("expected query in payload, got %v", gotBody["query"])
	}
	if gotBody["pageSize"] != float64(5) {
		t.Fatalf("expected pageSize 5, got %v", gotBody["pageSize"])
	}
	if len(foods) != 2 {
		t.Fatalf("expected 2 foods, got %d", len(foods))
	}
	chicken := foods[0]
	if chicken.FDCID != 171077 || chicken.DataType != "SR Legacy" {
		t.Fatalf("unexpected food header: %+v", chicken)
	}
	if chicken.Calories != 165 || chicken.ProteinG != 31 || chicken.CarbsG != 0 || chicken.FatG != 3.57 {
		t.Fatalf("unexpected nutrients: %+v", chicken)
	}
	if !chicken.Complete() {
		t.Fatalf("expected chicken to be complete")
	}
	if foods[1].Complete() {
		t.Fatalf("expected water without nutrients to be incomplete")
	}
}

func TestSearchFoodsRequiresAPIKey(t *testing.T) {
	t.Parallel()

	c := &Client{}
	if _, _, err := c.SearchFoods(context.Background(), "rice", 5); err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestSearchFoodsReportsHTTPStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
	}))
	defer ts.Close()

	c := &Client{APIKey: "bad", BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, raw, err := c.SearchFoods(context.Background(), "rice", 5)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected error body to be returned")
	}
}
