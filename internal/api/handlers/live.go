package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/fpl-advisor/internal/engine/rank"
	"github.com/jstittsworth/fpl-advisor/internal/engine/squad"
	"github.com/jstittsworth/fpl-advisor/internal/models"
	"github.com/jstittsworth/fpl-advisor/pkg/utils"
)

type LiveHandler struct {
	fetcher    SnapshotSource
	population int
}

func NewLiveHandler(fetcher SnapshotSource, population int) *LiveHandler {
	return &LiveHandler{fetcher: fetcher, population: population}
}

type autoSubsRequest struct {
	Picks   []models.Pick `json:"picks" binding:"required"`
	Minutes map[uint]int  `json:"minutes" binding:"required"`
}

// ApplyAutoSubs replays FPL auto-substitution for a finished round: starters
// with zero minutes are replaced from the bench in priority order, keeping
// the formation legal and moving the armband to the vice-captain when needed.
func (h *LiveHandler) ApplyAutoSubs(c *gin.Context) {
	var req autoSubsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	picks, err := squad.ApplyAutoSubs(req.Picks, req.Minutes)
	if err != nil {
		if errors.Is(err, squad.ErrInvalidSquad) {
			utils.SendValidationError(c, "Invalid squad", err.Error())
			return
		}
		utils.SendInternalError(c, "Auto-substitution failed")
		return
	}

	utils.SendSuccess(c, picks)
}

// EstimateRank converts a live score into an estimated overall rank. Average
// defaults to the current gameweek's average entry score, population to the
// configured game size.
func (h *LiveHandler) EstimateRank(c *gin.Context) {
	scoreParam := c.Query("score")
	if scoreParam == "" {
		utils.SendValidationError(c, "Missing score", "score query parameter is required")
		return
	}
	score, err := strconv.ParseFloat(scoreParam, 64)
	if err != nil {
		utils.SendValidationError(c, "Invalid score", "score must be numeric")
		return
	}

	average := 0.0
	if avgParam := c.Query("average"); avgParam != "" {
		average, err = strconv.ParseFloat(avgParam, 64)
		if err != nil {
			utils.SendValidationError(c, "Invalid average", "average must be numeric")
			return
		}
	} else if data := h.fetcher.LatestData(); data != nil {
		average = data.AverageScore
	}

	population := h.population
	if popParam := c.Query("population"); popParam != "" {
		population, err = strconv.Atoi(popParam)
		if err != nil || population < 1 {
			utils.SendValidationError(c, "Invalid population", "population must be a positive integer")
			return
		}
	}

	estimate := rank.Estimate(score, average, population)

	utils.SendSuccess(c, gin.H{
		"score":      score,
		"average":    average,
		"population": population,
		"rank":       estimate,
	})
}
