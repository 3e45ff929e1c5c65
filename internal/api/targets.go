package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/kcal-planner/internal/service"
)

// getTargets returns the target in effect on ?date (default today) and the
// full history.
// GET /api/targets?date=YYYY-MM-DD
func (h *Handler) getTargets(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = h.now().Format("2006-01-02")
	}
	current, err := service.CurrentMacroTarget(h.db, date)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	history, err := service.TargetHistory(h.db)
	if err != nil {
		serviceError(c, "list targets", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": current, "history": history})
}

// POST /api/targets. Body: service.SetMacroTargetInput as JSON.
func (h *Handler) setTarget(c *gin.Context) {
	var body service.SetMacroTargetInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.EffectiveDate == "" {
		body.EffectiveDate = h.now().Format("2006-01-02")
	}
	if err := service.SetMacroTarget(h.db, body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	current, err := service.CurrentMacroTarget(h.db, body.EffectiveDate)
	if err != nil {
		serviceError(c, "read target", err)
		return
	}
	c.JSON(http.StatusCreated, current)
}

// computeTargets runs the energy model over the profile and stores the
// result effective today.
// POST /api/targets/compute
func (h *Handler) computeTargets(c *gin.Context) {
	res, err := service.ComputeAndStoreTargets(h.db, h.config.Energy, h.now().Format("2006-01-02"))
	if err != nil {
		serviceError(c, "compute targets", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
