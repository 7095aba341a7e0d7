package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/api/middleware"
	"github.com/jstittsworth/fpl-advisor/internal/engine/projection"
	"github.com/jstittsworth/fpl-advisor/internal/engine/squad"
	"github.com/jstittsworth/fpl-advisor/internal/services"
	"github.com/jstittsworth/fpl-advisor/pkg/utils"
)

type AdvisorHandler struct {
	fetcher   SnapshotSource
	ingestion SquadSource
	advisor   *services.AdvisorService
	logger    *logrus.Logger
}

func NewAdvisorHandler(fetcher SnapshotSource, ingestion SquadSource, advisor *services.AdvisorService, logger *logrus.Logger) *AdvisorHandler {
	return &AdvisorHandler{fetcher: fetcher, ingestion: ingestion, advisor: advisor, logger: logger}
}

// GetReport builds the full weekly advisory for a manager entry: solved
// transfers with reasoning, captain picks, player tags and squad warnings.
// The entry comes from the session token, with a query override for tooling.
func (h *AdvisorHandler) GetReport(c *gin.Context) {
	data := h.fetcher.LatestData()
	if data == nil {
		utils.SendBadGateway(c, "Gameweek data not loaded yet")
		return
	}

	entryID, ok := middleware.EntryFromContext(c)
	if entryParam := c.Query("entry"); entryParam != "" {
		id, err := strconv.Atoi(entryParam)
		if err != nil || id <= 0 {
			utils.SendValidationError(c, "Invalid entry", "entry must be a positive integer")
			return
		}
		entryID, ok = id, true
	}
	if !ok || entryID <= 0 {
		utils.SendValidationError(c, "Missing entry", "no entry ID in session or query")
		return
	}

	state, err := h.ingestion.BuildSquadState(c.Request.Context(), entryID, data)
	if err != nil {
		h.logger.Warnf("Failed to fetch picks for entry %d: %v", entryID, err)
		utils.SendBadGateway(c, "Failed to fetch squad from FPL")
		return
	}

	result, err := solveForState(state, data)
	if err != nil {
		if errors.Is(err, squad.ErrInvalidSquad) {
			utils.SendError(c, http.StatusUnprocessableEntity, utils.NewAppError(utils.ErrCodeInvalidSquad, "Invalid squad", err.Error()))
			return
		}
		h.logger.Errorf("Advisor solve failed for entry %d: %v", entryID, err)
		utils.SendError(c, http.StatusInternalServerError, utils.NewAppError(utils.ErrCodeSolver, "Transfer solve failed"))
		return
	}

	points := projection.PointsByPlayer(projection.ProjectAll(data.Players, data.Fixtures, state.Gameweek))
	report := h.advisor.BuildReport(result, data.Players, points)

	utils.SendSuccessWithMeta(c, report, &utils.Meta{Gameweek: report.Gameweek})
}
