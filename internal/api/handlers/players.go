package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/fpl-advisor/internal/models"
	"github.com/jstittsworth/fpl-advisor/pkg/utils"
)

type PlayersHandler struct {
	fetcher SnapshotSource
}

func NewPlayersHandler(fetcher SnapshotSource) *PlayersHandler {
	return &PlayersHandler{fetcher: fetcher}
}

// GetPlayers lists the current player pool, optionally filtered by position
// or club.
func (h *PlayersHandler) GetPlayers(c *gin.Context) {
	data := h.fetcher.LatestData()
	if data == nil {
		utils.SendBadGateway(c, "Gameweek data not loaded yet")
		return
	}

	players := data.Players

	if posParam := c.Query("position"); posParam != "" {
		position, ok := parsePosition(posParam)
		if !ok {
			utils.SendValidationError(c, "Invalid position filter", "use GKP, DEF, MID, FWD or 1-4")
			return
		}
		players = filterPlayers(players, func(p models.Player) bool {
			return p.Position == position
		})
	}

	if teamParam := c.Query("team"); teamParam != "" {
		teamID, err := strconv.ParseUint(teamParam, 10, 32)
		if err != nil {
			utils.SendValidationError(c, "Invalid team filter", "team must be a numeric club ID")
			return
		}
		players = filterPlayers(players, func(p models.Player) bool {
			return p.TeamID == uint(teamID)
		})
	}

	utils.SendSuccessWithMeta(c, players, &utils.Meta{
		Gameweek: data.Gameweek,
		Count:    len(players),
	})
}

// GetPlayer returns a single player by element ID.
func (h *PlayersHandler) GetPlayer(c *gin.Context) {
	data := h.fetcher.LatestData()
	if data == nil {
		utils.SendBadGateway(c, "Gameweek data not loaded yet")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid player ID", "id must be numeric")
		return
	}

	for _, p := range data.Players {
		if p.ID == uint(id) {
			utils.SendSuccess(c, p)
			return
		}
	}

	utils.SendNotFound(c, "Player not found")
}

func parsePosition(value string) (models.Position, bool) {
	switch strings.ToUpper(value) {
	case "GKP", "GK", "1":
		return models.Goalkeeper, true
	case "DEF", "2":
		return models.Defender, true
	case "MID", "3":
		return models.Midfielder, true
	case "FWD", "4":
		return models.Forward, true
	}
	return 0, false
}

func filterPlayers(players []models.Player, keep func(models.Player) bool) []models.Player {
	filtered := make([]models.Player, 0, len(players))
	for _, p := range players {
		if keep(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
