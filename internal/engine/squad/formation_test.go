package squad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/fpl-advisor/internal/models"
)

func validSquadPlayers() []models.Player {
	// 2 GKP, 5 DEF, 5 MID, 3 FWD spread across clubs 1-6.
	var players []models.Player
	add := func(id, team uint, pos models.Position) {
		players = append(players, models.Player{ID: id, TeamID: team, Position: pos, NowCost: 50})
	}
	add(1, 1, models.Goalkeeper)
	add(2, 2, models.Goalkeeper)
	add(3, 1, models.Defender)
	add(4, 2, models.Defender)
	add(5, 3, models.Defender)
	add(6, 4, models.Defender)
	add(7, 5, models.Defender)
	add(8, 1, models.Midfielder)
	add(9, 2, models.Midfielder)
	add(10, 3, models.Midfielder)
	add(11, 4, models.Midfielder)
	add(12, 5, models.Midfielder)
	add(13, 3, models.Forward)
	add(14, 4, models.Forward)
	add(15, 6, models.Forward)
	return players
}

func TestLegalFormations_Exhaustive(t *testing.T) {
	require.Len(t, LegalFormations, 8)

	seen := make(map[string]bool)
	for _, f := range LegalFormations {
		assert.True(t, ValidStartingCounts(1, f.Defenders, f.Midfielders, f.Forwards),
			"formation %s should be a legal eleven", f)
		assert.False(t, seen[f.String()], "duplicate formation %s", f)
		seen[f.String()] = true
	}
}

func TestValidStartingCounts(t *testing.T) {
	tests := []struct {
		name                 string
		gkp, def, mid, fwd   int
		want                 bool
	}{
		{"classic 4-4-2", 1, 4, 4, 2, true},
		{"defensive 5-4-1", 1, 5, 4, 1, true},
		{"no keeper", 0, 5, 4, 2, false},
		{"two keepers", 2, 4, 3, 2, false},
		{"two defenders", 1, 2, 5, 3, false},
		{"six midfielders", 1, 3, 6, 1, false},
		{"no forward", 1, 5, 5, 0, false},
		{"four forwards", 1, 3, 3, 4, false},
		{"only ten players", 1, 4, 4, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidStartingCounts(tt.gkp, tt.def, tt.mid, tt.fwd))
		})
	}
}

func TestValidateComposition(t *testing.T) {
	t.Run("valid squad passes", func(t *testing.T) {
		assert.NoError(t, ValidateComposition(validSquadPlayers()))
	})

	t.Run("wrong size", func(t *testing.T) {
		err := ValidateComposition(validSquadPlayers()[:14])
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSquad)
	})

	t.Run("wrong position quota", func(t *testing.T) {
		players := validSquadPlayers()
		players[2].Position = models.Midfielder // 4 DEF, 6 MID
		err := ValidateComposition(players)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSquad)
	})

	t.Run("club cap breached", func(t *testing.T) {
		players := validSquadPlayers()
		// Club 1 already has GKP, DEF, MID; a fourth breaks the cap.
		players[14].TeamID = 1
		err := ValidateComposition(players)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSquad)
	})
}
