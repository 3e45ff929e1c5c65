package api

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/kcal-planner/internal/planner"
	"github.com/saadjs/kcal-planner/internal/service"
)

// Handler holds shared dependencies for all route handlers.
type Handler struct {
	db     *sql.DB
	config planner.Config
	now    func() time.Time
}

func NewHandler(db *sql.DB, cfg planner.Config) *Handler {
	return &Handler{db: db, config: cfg, now: time.Now}
}

// NewRouter builds a gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	_ = router.SetTrustedProxies(nil)
	h.registerRoutes(router)
	return router
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// serviceError maps service errors to a status. Unexpected errors are logged
// and reported without detail.
func serviceError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound), errors.Is(err, service.ErrNoActivePlan),
		errors.Is(err, service.ErrPlanNotFound):
		apiError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		apiError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, planner.ErrEmptyCatalog), errors.Is(err, planner.ErrInvalidMealsPerDay):
		apiError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("[%s] %v", op, err)
		apiError(c, http.StatusInternalServerError, "failed to "+op)
	}
}

func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.GET("/targets", h.getTargets)
	api.POST("/targets", h.setTarget)
	api.POST("/targets/compute", h.computeTargets)
	api.GET("/foods", h.listFoods)
	api.POST("/foods", h.importFoods)
	api.GET("/plans", h.listPlans)
	api.POST("/plans", h.generatePlan)
	api.GET("/plans/active", h.getActivePlan)
	api.GET("/plans/:id", h.getPlan)
	api.POST("/checkins", h.submitCheckin)
	api.GET("/checkins/state", h.getCheckinState)
	api.GET("/regenerations", h.listRegenerations)
	api.POST("/regenerations/consume", h.consumeRegenerations)
}
