package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/fpl-advisor/internal/services"
	"github.com/jstittsworth/fpl-advisor/pkg/database"
)

type HealthHandler struct {
	db      *database.DB
	fetcher *services.DataFetcherService
}

func NewHealthHandler(db *database.DB, fetcher *services.DataFetcherService) *HealthHandler {
	return &HealthHandler{db: db, fetcher: fetcher}
}

// GetHealth is the liveness probe; it returns 200 whenever the process is up.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "fpl-advisor",
	})
}

// GetReady is the readiness probe; it fails until the database answers and
// the first gameweek snapshot has been loaded.
func (h *HealthHandler) GetReady(c *gin.Context) {
	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"reason": "database unreachable",
			})
			return
		}
	}

	if h.fetcher.LatestData() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "gameweek data not loaded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"fetch":  h.fetcher.GetFetchStatus(),
	})
}
