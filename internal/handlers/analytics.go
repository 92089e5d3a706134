package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/dto"
	"github.com/yukikurage/workboard-api/internal/services"
)

// AnalyticsHandler serves monthly task statistics.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	log              *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *services.AnalyticsService, log *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		log:              log,
	}
}

func (h *AnalyticsHandler) WorkspaceAnalytics(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.Workspace(c.Request.Context(), ac)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToAnalyticsDTO(*analytics))
}

func (h *AnalyticsHandler) ProjectAnalytics(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.Project(c.Request.Context(), ac, c.Param("projectId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToAnalyticsDTO(*analytics))
}
