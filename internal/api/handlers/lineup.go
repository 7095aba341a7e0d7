package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/fpl-advisor/internal/engine/projection"
	"github.com/jstittsworth/fpl-advisor/internal/engine/squad"
	"github.com/jstittsworth/fpl-advisor/internal/models"
	"github.com/jstittsworth/fpl-advisor/pkg/utils"
)

type LineupHandler struct {
	fetcher SnapshotSource
}

func NewLineupHandler(fetcher SnapshotSource) *LineupHandler {
	return &LineupHandler{fetcher: fetcher}
}

type optimizeLineupRequest struct {
	Players  []models.Player `json:"players" binding:"required"`
	Gameweek int             `json:"gameweek"`
}

// OptimizeLineup picks the best starting eleven, bench order and captaincy
// for a 15-man squad, using current fixture projections for scoring.
func (h *LineupHandler) OptimizeLineup(c *gin.Context) {
	data := h.fetcher.LatestData()
	if data == nil {
		utils.SendBadGateway(c, "Gameweek data not loaded yet")
		return
	}

	var req optimizeLineupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	gameweek := req.Gameweek
	if gameweek == 0 {
		gameweek = data.Gameweek
	}

	points := projection.PointsByPlayer(projection.ProjectAll(req.Players, data.Fixtures, gameweek))

	scored := make([]squad.ScoredPlayer, 0, len(req.Players))
	for _, p := range req.Players {
		scored = append(scored, squad.ScoredPlayer{Player: p, Points: points[p.ID]})
	}

	lineup, err := squad.BestLineup(scored)
	if err != nil {
		if errors.Is(err, squad.ErrInvalidSquad) {
			utils.SendValidationError(c, "Invalid squad", err.Error())
			return
		}
		utils.SendInternalError(c, "Lineup optimization failed")
		return
	}

	utils.SendSuccessWithMeta(c, lineup, &utils.Meta{Gameweek: gameweek})
}
