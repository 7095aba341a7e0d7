package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/jstittsworth/fpl-advisor/internal/models"
	"github.com/jstittsworth/fpl-advisor/internal/providers"
	"github.com/jstittsworth/fpl-advisor/pkg/database"
)

// FPLProvider is the slice of the API client the ingestion pipeline needs.
type FPLProvider interface {
	GetBootstrap(ctx context.Context) (*providers.Bootstrap, error)
	GetFixtures(ctx context.Context) ([]providers.APIFixture, error)
	GetPicks(ctx context.Context, entryID, gameweek int) (*providers.EntryPicks, error)
	GetHistory(ctx context.Context, entryID int) (*providers.SeasonHistory, error)
}

// IngestionService turns raw FPL API payloads into the domain model: the
// player pool and fixture list the projection engine reads, and a manager's
// squad state for the solver. Snapshots go to the database so a solve can be
// replayed against the inputs it saw.
type IngestionService struct {
	fpl    FPLProvider
	db     *database.DB
	cache  *CacheService
	logger *logrus.Logger
}

func NewIngestionService(fpl FPLProvider, db *database.DB, cache *CacheService, logger *logrus.Logger) *IngestionService {
	return &IngestionService{
		fpl:    fpl,
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// GameweekData is one round's worth of inputs for the engine.
type GameweekData struct {
	Gameweek     int              `json:"gameweek"`
	AverageScore float64          `json:"average_score"`
	Players      []models.Player  `json:"players"`
	Fixtures     []models.Fixture `json:"fixtures"`
}

// LoadGameweekData fetches and converts the bootstrap and fixture feeds,
// going through the cache when one is wired in.
func (s *IngestionService) LoadGameweekData(ctx context.Context) (*GameweekData, error) {
	bootstrap, err := s.fetchBootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap fetch failed: %w", err)
	}

	apiFixtures, err := s.fetchFixtures(ctx)
	if err != nil {
		return nil, fmt.Errorf("fixtures fetch failed: %w", err)
	}

	gameweek := bootstrap.CurrentGameweek()

	data := &GameweekData{
		Gameweek:     gameweek,
		AverageScore: averageScore(bootstrap.Events, gameweek),
		Players:      BuildPlayerPool(bootstrap),
		Fixtures:     ConvertFixtures(apiFixtures),
	}

	s.logger.WithFields(logrus.Fields{
		"gameweek": gameweek,
		"players":  len(data.Players),
		"fixtures": len(data.Fixtures),
	}).Info("Gameweek data loaded")

	return data, nil
}

// BuildSquadState assembles a manager's roster from their picks, attaching
// selling prices and the bank balance. Free transfers default to 1; the
// public API does not expose the rolled-transfer count.
func (s *IngestionService) BuildSquadState(ctx context.Context, entryID int, data *GameweekData) (*models.SquadState, error) {
	picks, err := s.fpl.GetPicks(ctx, entryID, data.Gameweek)
	if err != nil {
		return nil, fmt.Errorf("picks fetch for entry %d failed: %w", entryID, err)
	}

	byID := make(map[uint]models.Player, len(data.Players))
	for _, p := range data.Players {
		byID[p.ID] = p
	}

	state := &models.SquadState{
		Bank:          picks.EntryHistory.Bank,
		FreeTransfers: 1,
		Gameweek:      data.Gameweek,
	}

	for _, pick := range picks.Picks {
		player, ok := byID[pick.Element]
		if !ok {
			s.logger.Warnf("Pick references unknown element %d, skipping", pick.Element)
			continue
		}
		player.SellingPrice = pick.SellingPrice
		if player.SellingPrice == 0 {
			player.SellingPrice = player.NowCost
		}
		state.Picks = append(state.Picks, models.Pick{
			Player:        player,
			Slot:          pick.Position,
			Multiplier:    pick.Multiplier,
			IsCaptain:     pick.IsCaptain,
			IsViceCaptain: pick.IsViceCaptain,
		})
	}

	if len(state.Picks) != models.SquadSize {
		return nil, fmt.Errorf("entry %d returned %d picks, want %d", entryID, len(state.Picks), models.SquadSize)
	}

	return state, nil
}

// PersistSnapshot upserts the converted pool and archives the raw payload.
func (s *IngestionService) PersistSnapshot(data *GameweekData, source string, raw json.RawMessage) error {
	if s.db == nil {
		return nil
	}

	if len(data.Players) > 0 {
		err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&data.Players).Error
		if err != nil && !database.IsUniqueViolation(err) {
			return fmt.Errorf("player upsert failed: %w", err)
		}
	}

	if len(data.Fixtures) > 0 {
		err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&data.Fixtures).Error
		if err != nil && !database.IsUniqueViolation(err) {
			return fmt.Errorf("fixture upsert failed: %w", err)
		}
	}

	snapshot := models.GameweekSnapshot{
		Gameweek:  data.Gameweek,
		Source:    source,
		Payload:   datatypes.JSON(raw),
		FetchedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&snapshot).Error; err != nil {
		return fmt.Errorf("snapshot insert failed: %w", err)
	}

	return nil
}

func (s *IngestionService) fetchBootstrap(ctx context.Context) (*providers.Bootstrap, error) {
	if s.cache != nil {
		var cached providers.Bootstrap
		if err := s.cache.Get(ctx, BootstrapCacheKey(), &cached); err == nil {
			return &cached, nil
		}
	}

	bootstrap, err := s.fpl.GetBootstrap(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, BootstrapCacheKey(), bootstrap, BootstrapTTL); err != nil {
			s.logger.Warnf("Failed to cache bootstrap: %v", err)
		}
	}
	return bootstrap, nil
}

func (s *IngestionService) fetchFixtures(ctx context.Context) ([]providers.APIFixture, error) {
	if s.cache != nil {
		var cached []providers.APIFixture
		if err := s.cache.Get(ctx, FixturesCacheKey(), &cached); err == nil {
			return cached, nil
		}
	}

	fixtures, err := s.fpl.GetFixtures(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, FixturesCacheKey(), fixtures, FixturesTTL); err != nil {
			s.logger.Warnf("Failed to cache fixtures: %v", err)
		}
	}
	return fixtures, nil
}

// BuildPlayerPool converts bootstrap elements into domain players. Elements
// outside the four playing positions (FPL assistant managers) are dropped.
func BuildPlayerPool(bootstrap *providers.Bootstrap) []models.Player {
	players := make([]models.Player, 0, len(bootstrap.Elements))
	for _, el := range bootstrap.Elements {
		position := models.Position(el.ElementType)
		if !position.Valid() {
			continue
		}
		players = append(players, models.Player{
			ID:              el.ID,
			Name:            el.WebName,
			TeamID:          el.Team,
			Position:        position,
			NowCost:         el.NowCost,
			Status:          models.Availability(el.Status),
			ChanceOfPlaying: el.ChanceOfPlayingNextRound,
			Form:            parseFloat(el.Form),
			OwnershipPct:    parseFloat(el.SelectedByPercent),
			PointsPerGame:   parseFloat(el.PointsPerGame),
			TotalPoints:     el.TotalPoints,
			Minutes:         el.Minutes,
			Starts:          el.Starts,
			Goals:           el.GoalsScored,
			Assists:         el.Assists,
			CleanSheets:     el.CleanSheets,
			GoalsConceded:   el.GoalsConceded,
			Bonus:           el.Bonus,
			ExpectedGoals:   parseFloat(el.ExpectedGoals),
			ExpectedAssists: parseFloat(el.ExpectedAssists),
		})
	}
	return players
}

// ConvertFixtures maps API fixtures to domain fixtures. Unscheduled fixtures
// keep Event 0, which no gameweek filter ever matches.
func ConvertFixtures(apiFixtures []providers.APIFixture) []models.Fixture {
	fixtures := make([]models.Fixture, 0, len(apiFixtures))
	for _, f := range apiFixtures {
		fixture := models.Fixture{
			ID:             f.ID,
			HomeTeamID:     f.TeamH,
			AwayTeamID:     f.TeamA,
			HomeDifficulty: f.TeamHDifficulty,
			AwayDifficulty: f.TeamADifficulty,
			Started:        f.Started,
			Finished:       f.Finished,
		}
		if f.Event != nil {
			fixture.Event = *f.Event
		}
		if f.KickoffTime != nil {
			fixture.KickoffTime = *f.KickoffTime
		}
		fixtures = append(fixtures, fixture)
	}
	return fixtures
}

func averageScore(events []providers.Event, gameweek int) float64 {
	for _, e := range events {
		if e.ID == gameweek {
			return float64(e.AverageEntryScore)
		}
	}
	return 0
}

// parseFloat handles the FPL feed's string-typed numerics; blanks become 0.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
