package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/kcal-planner/internal/service"
)

// GET /api/plans?limit=20. Headers only, newest first.
func (h *Handler) listPlans(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			apiError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}
	plans, err := service.ListPlans(h.db, limit)
	if err != nil {
		serviceError(c, "list plans", err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// generatePlan builds and stores a new active week.
// POST /api/plans. Body (all optional): {"meals_per_day": 4, "seed": 42, "date": "YYYY-MM-DD"}.
func (h *Handler) generatePlan(c *gin.Context) {
	var body struct {
		MealsPerDay int    `json:"meals_per_day"`
		Seed        *int64 `json:"seed"`
		Date        string `json:"date"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	res, err := service.GeneratePlan(c.Request.Context(), h.db, service.GeneratePlanInput{
		Config:      h.config,
		MealsPerDay: body.MealsPerDay,
		Seed:        body.Seed,
		Date:        body.Date,
		Now:         h.now(),
	})
	if err != nil {
		serviceError(c, "generate plan", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/plans/active
func (h *Handler) getActivePlan(c *gin.Context) {
	p, err := service.ActivePlan(h.db)
	if err != nil {
		serviceError(c, "get active plan", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/plans/:id
func (h *Handler) getPlan(c *gin.Context) {
	p, err := service.GetPlan(h.db, c.Param("id"))
	if err != nil {
		serviceError(c, "get plan", err)
		return
	}
	c.JSON(http.StatusOK, p)
}
