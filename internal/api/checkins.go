package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/kcal-planner/internal/service"
)

// submitCheckin records a weekly measurement and runs the adjuster.
// POST /api/checkins. Body: service.BodyMeasurementInput plus optional
// "regenerate" to force or suppress immediate plan regeneration.
func (h *Handler) submitCheckin(c *gin.Context) {
	var body struct {
		service.BodyMeasurementInput
		Regenerate *bool `json:"regenerate"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := service.SubmitCheckin(c.Request.Context(), h.db, service.CheckinInput{
		Measurement: body.BodyMeasurementInput,
		Config:      h.config,
		Regenerate:  body.Regenerate,
		Now:         h.now(),
	})
	if err != nil {
		serviceError(c, "submit check-in", err)
		return
	}
	out := gin.H{"checkin": res}
	if res.Plan != nil {
		out["plan"] = res.Plan
	}
	c.JSON(http.StatusCreated, out)
}

// GET /api/checkins/state
func (h *Handler) getCheckinState(c *gin.Context) {
	state, err := service.GetCheckinState(h.db, h.now())
	if err != nil {
		serviceError(c, "get check-in state", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GET /api/regenerations. Pending requests only.
func (h *Handler) listRegenerations(c *gin.Context) {
	pending, err := service.PendingRegenerations(h.db)
	if err != nil {
		serviceError(c, "list regenerations", err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

// consumeRegenerations regenerates the plan when requests are pending.
// POST /api/regenerations/consume. Responds 204 when there is nothing to do.
func (h *Handler) consumeRegenerations(c *gin.Context) {
	res, err := service.ConsumeRegenerations(c.Request.Context(), h.db, h.config, h.now())
	if err != nil {
		serviceError(c, "consume regenerations", err)
		return
	}
	if res == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, res)
}
