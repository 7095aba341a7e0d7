package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/engine/projection"
	"github.com/jstittsworth/fpl-advisor/internal/engine/squad"
	"github.com/jstittsworth/fpl-advisor/internal/engine/transfer"
	"github.com/jstittsworth/fpl-advisor/internal/models"
	"github.com/jstittsworth/fpl-advisor/internal/services"
	"github.com/jstittsworth/fpl-advisor/pkg/utils"
)

type TransfersHandler struct {
	fetcher   SnapshotSource
	ingestion SquadSource
	logger    *logrus.Logger
}

func NewTransfersHandler(fetcher SnapshotSource, ingestion SquadSource, logger *logrus.Logger) *TransfersHandler {
	return &TransfersHandler{fetcher: fetcher, ingestion: ingestion, logger: logger}
}

type solveRequest struct {
	EntryID int                `json:"entry_id"`
	Squad   *models.SquadState `json:"squad"`
}

// SolveTransfers runs the transfer solver for a squad, given either inline
// squad state or an FPL entry ID whose picks are fetched upstream.
func (h *TransfersHandler) SolveTransfers(c *gin.Context) {
	data := h.fetcher.LatestData()
	if data == nil {
		utils.SendBadGateway(c, "Gameweek data not loaded yet")
		return
	}

	var req solveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	state, ok := h.resolveSquad(c, &req, data)
	if !ok {
		return
	}

	result, err := solveForState(state, data)
	if err != nil {
		if errors.Is(err, squad.ErrInvalidSquad) {
			utils.SendError(c, http.StatusUnprocessableEntity, utils.NewAppError(utils.ErrCodeInvalidSquad, "Invalid squad", err.Error()))
			return
		}
		h.logger.Errorf("Transfer solve failed for GW%d: %v", state.Gameweek, err)
		utils.SendError(c, http.StatusInternalServerError, utils.NewAppError(utils.ErrCodeSolver, "Transfer solve failed"))
		return
	}

	utils.SendSuccessWithMeta(c, result, &utils.Meta{Gameweek: result.Gameweek})
}

// resolveSquad picks between inline squad state and an entry ID lookup,
// writing the error response itself when neither works out.
func (h *TransfersHandler) resolveSquad(c *gin.Context, req *solveRequest, data *services.GameweekData) (*models.SquadState, bool) {
	if req.Squad != nil {
		if req.Squad.Gameweek == 0 {
			req.Squad.Gameweek = data.Gameweek
		}
		return req.Squad, true
	}

	if req.EntryID <= 0 {
		utils.SendValidationError(c, "Missing squad", "provide either squad or entry_id")
		return nil, false
	}

	state, err := h.ingestion.BuildSquadState(c.Request.Context(), req.EntryID, data)
	if err != nil {
		h.logger.Warnf("Failed to fetch picks for entry %d: %v", req.EntryID, err)
		utils.SendBadGateway(c, "Failed to fetch squad from FPL")
		return nil, false
	}
	return state, true
}

// solveForState projects the full pool for the squad's gameweek and runs the
// solver. Shared with the advisor handler.
func solveForState(state *models.SquadState, data *services.GameweekData) (*models.SolverResult, error) {
	points := projection.PointsByPlayer(projection.ProjectAll(data.Players, data.Fixtures, state.Gameweek))
	return transfer.Solve(*state, data.Players, points)
}
