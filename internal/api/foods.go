package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/kcal-planner/internal/service"
)

// GET /api/foods?category=protein&complete=true
func (h *Handler) listFoods(c *gin.Context) {
	foods, err := service.ListFoods(h.db, service.FoodFilter{
		Category:     c.Query("category"),
		CompleteOnly: c.Query("complete") == "true",
	})
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, foods)
}

// importFoods upserts a batch of foods.
// POST /api/foods. Body: {"foods": [service.FoodInput, ...]}.
func (h *Handler) importFoods(c *gin.Context) {
	var body struct {
		Foods []service.FoodInput `json:"foods"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Foods) == 0 {
		apiError(c, http.StatusBadRequest, "foods must not be empty")
		return
	}
	res, err := service.ImportFoods(h.db, body.Foods)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, res)
}
