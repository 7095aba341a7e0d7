package handlers

import (
	"context"

	"github.com/jstittsworth/fpl-advisor/internal/models"
	"github.com/jstittsworth/fpl-advisor/internal/services"
)

// SnapshotSource provides the most recent gameweek snapshot.
type SnapshotSource interface {
	LatestData() *services.GameweekData
}

// SquadSource turns an FPL entry ID into solver-ready squad state.
type SquadSource interface {
	BuildSquadState(ctx context.Context, entryID int, data *services.GameweekData) (*models.SquadState, error)
}
