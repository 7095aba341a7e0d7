package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/models"
	"github.com/jstittsworth/fpl-advisor/pkg/config"
	"github.com/jstittsworth/fpl-advisor/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	if err := db.AutoMigrate(
		&models.Player{},
		&models.Fixture{},
		&models.GameweekSnapshot{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_players_team_position ON players(team_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_fixtures_event ON fixtures(event)",
		"CREATE INDEX IF NOT EXISTS idx_snapshots_gameweek_source ON gameweek_snapshots(gameweek, source)",
		"CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON gameweek_snapshots(fetched_at)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Drop tables in reverse order to handle foreign key constraints
	tables := []string{
		"gameweek_snapshots",
		"fixtures",
		"players",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

// seedData loads a small development squad so the engine endpoints can be
// exercised without hitting the live FPL API.
func seedData(db *database.DB) error {
	kickoff := time.Now().Add(48 * time.Hour)

	players := []models.Player{
		{ID: 1, Name: "Sample Keeper", TeamID: 1, Position: models.Goalkeeper, NowCost: 50, Status: models.StatusAvailable, Form: 4.0, OwnershipPct: 15.0, PointsPerGame: 3.8, Minutes: 900, Starts: 10, CleanSheets: 4, Bonus: 2},
		{ID: 2, Name: "Sample Backup Keeper", TeamID: 2, Position: models.Goalkeeper, NowCost: 40, Status: models.StatusAvailable, Form: 2.0, OwnershipPct: 5.0, PointsPerGame: 2.5, Minutes: 180, Starts: 2},
		{ID: 3, Name: "Sample Fullback", TeamID: 1, Position: models.Defender, NowCost: 55, Status: models.StatusAvailable, Form: 5.2, OwnershipPct: 32.0, PointsPerGame: 4.5, Minutes: 880, Starts: 10, Goals: 1, Assists: 3, CleanSheets: 4, Bonus: 5, ExpectedGoals: 0.8, ExpectedAssists: 2.4},
		{ID: 4, Name: "Sample Centre Back", TeamID: 2, Position: models.Defender, NowCost: 45, Status: models.StatusAvailable, Form: 3.5, OwnershipPct: 12.0, PointsPerGame: 3.6, Minutes: 900, Starts: 10, CleanSheets: 4, Bonus: 3},
		{ID: 5, Name: "Sample Winger", TeamID: 3, Position: models.Midfielder, NowCost: 80, Status: models.StatusAvailable, Form: 6.8, OwnershipPct: 45.0, PointsPerGame: 5.9, Minutes: 850, Starts: 10, Goals: 5, Assists: 4, Bonus: 8, ExpectedGoals: 4.2, ExpectedAssists: 3.6},
		{ID: 6, Name: "Sample Playmaker", TeamID: 4, Position: models.Midfielder, NowCost: 105, Status: models.StatusAvailable, Form: 8.1, OwnershipPct: 62.0, PointsPerGame: 7.2, Minutes: 890, Starts: 10, Goals: 7, Assists: 5, Bonus: 12, ExpectedGoals: 6.1, ExpectedAssists: 4.8},
		{ID: 7, Name: "Sample Striker", TeamID: 5, Position: models.Forward, NowCost: 125, Status: models.StatusAvailable, Form: 9.0, OwnershipPct: 71.0, PointsPerGame: 8.0, Minutes: 870, Starts: 10, Goals: 12, Assists: 2, Bonus: 15, ExpectedGoals: 10.5, ExpectedAssists: 1.8},
		{ID: 8, Name: "Sample Budget Forward", TeamID: 6, Position: models.Forward, NowCost: 55, Status: models.StatusDoubtful, ChanceOfPlaying: intPtr(75), Form: 3.1, OwnershipPct: 8.0, PointsPerGame: 3.2, Minutes: 600, Starts: 7, Goals: 3, Bonus: 2, ExpectedGoals: 2.9},
	}

	if err := db.Create(&players).Error; err != nil {
		return fmt.Errorf("failed to create players: %w", err)
	}

	fixtures := []models.Fixture{
		{ID: 1, Event: 1, HomeTeamID: 1, AwayTeamID: 2, HomeDifficulty: 2, AwayDifficulty: 4, KickoffTime: kickoff},
		{ID: 2, Event: 1, HomeTeamID: 3, AwayTeamID: 4, HomeDifficulty: 3, AwayDifficulty: 3, KickoffTime: kickoff.Add(2 * time.Hour)},
		{ID: 3, Event: 1, HomeTeamID: 5, AwayTeamID: 6, HomeDifficulty: 2, AwayDifficulty: 5, KickoffTime: kickoff.Add(4 * time.Hour)},
	}

	if err := db.Create(&fixtures).Error; err != nil {
		return fmt.Errorf("failed to create fixtures: %w", err)
	}

	logrus.Infof("Seeded %d players and %d fixtures", len(players), len(fixtures))
	return nil
}

func intPtr(v int) *int {
	return &v
}
