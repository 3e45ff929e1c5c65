package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/kcal-planner/internal/service"
)

// GET /api/profile
func (h *Handler) getProfile(c *gin.Context) {
	p, err := service.GetProfile(h.db)
	if err != nil {
		serviceError(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// putProfile replaces the profile and recomputes the target from today.
// PUT /api/profile. Body: service.ProfileInput as JSON.
func (h *Handler) putProfile(c *gin.Context) {
	var body service.ProfileInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.EffectiveDate == "" {
		body.EffectiveDate = h.now().Format("2006-01-02")
	}
	p, err := service.SetProfile(h.db, body, h.config.Energy)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, p)
}
