package api

import (
	"net/http"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler holds the stats service dependency.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats returns the user's relationship-level summary, recomputed from
// current state on every request.
func (h *StatsHandler) GetStats(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	stats, err := h.statsService.Summary(c.Request.Context(), userID)
	if err != nil {
		respondStorageError(c, err, "Could not compute statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}
