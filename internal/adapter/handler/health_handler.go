package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/usecase"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	healthUseCase *usecase.HealthUseCase
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(healthUseCase *usecase.HealthUseCase) *HealthHandler {
	return &HealthHandler{
		healthUseCase: healthUseCase,
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.GetHealth)
	router.GET("/health/live", h.GetLiveness)
	router.GET("/health/ready", h.GetReadiness)
}

// GetHealth returns comprehensive health status
// @Summary Get service health
// @Description Returns storage, registry, session store and disk checks
// @Tags Health
// @Produce json
// @Success 200 {object} entities.HealthCheck
// @Success 503 {object} entities.HealthCheck
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *gin.Context) {
	health, err := h.healthUseCase.GetHealth(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "health check failed",
		})
		return
	}

	// partial still answers 200
	statusCode := http.StatusOK
	if health.Status == entities.HealthStatusDown {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// GetLiveness returns liveness status
// @Summary Get service liveness
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"uptime": h.healthUseCase.Uptime().String(),
	})
}

// GetReadiness returns readiness status
// @Summary Get service readiness
// @Description Check if the upload root and registry are usable
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Success 503 {object} map[string]string
// @Router /health/ready [get]
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	ready, message := h.healthUseCase.GetReadiness(c.Request.Context())

	if ready {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"message": message,
		})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":  "not_ready",
		"message": message,
	})
}
