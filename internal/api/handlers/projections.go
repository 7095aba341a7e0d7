package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/engine/projection"
	"github.com/jstittsworth/fpl-advisor/internal/models"
	"github.com/jstittsworth/fpl-advisor/internal/services"
	"github.com/jstittsworth/fpl-advisor/pkg/utils"
)

type ProjectionsHandler struct {
	fetcher SnapshotSource
	cache   *services.CacheService
	logger  *logrus.Logger
}

func NewProjectionsHandler(fetcher SnapshotSource, cache *services.CacheService, logger *logrus.Logger) *ProjectionsHandler {
	return &ProjectionsHandler{fetcher: fetcher, cache: cache, logger: logger}
}

// GetProjections returns expected points for every player in the pool for
// one gameweek, defaulting to the current one. Results are cached per
// gameweek since the underlying snapshot only changes on refresh.
func (h *ProjectionsHandler) GetProjections(c *gin.Context) {
	data := h.fetcher.LatestData()
	if data == nil {
		utils.SendBadGateway(c, "Gameweek data not loaded yet")
		return
	}

	gameweek := data.Gameweek
	if gwParam := c.Query("gameweek"); gwParam != "" {
		gw, err := strconv.Atoi(gwParam)
		if err != nil || gw < 1 || gw > 38 {
			utils.SendValidationError(c, "Invalid gameweek", "gameweek must be 1-38")
			return
		}
		gameweek = gw
	}

	cacheKey := services.ProjectionsCacheKey(gameweek)
	if h.cache != nil {
		var cached []models.Projection
		if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil {
			utils.SendSuccessWithMeta(c, cached, &utils.Meta{Gameweek: gameweek, Count: len(cached)})
			return
		}
	}

	projections := projection.ProjectAll(data.Players, data.Fixtures, gameweek)
	rounded := make([]models.Projection, 0, len(projections))
	for _, p := range projections {
		rounded = append(rounded, p.Rounded())
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), cacheKey, rounded, services.ProjectionsTTL); err != nil {
			h.logger.Warnf("Failed to cache projections for GW%d: %v", gameweek, err)
		}
	}

	utils.SendSuccessWithMeta(c, rounded, &utils.Meta{Gameweek: gameweek, Count: len(rounded)})
}
