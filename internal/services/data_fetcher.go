package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/models"
	"github.com/jstittsworth/fpl-advisor/internal/providers"
	"github.com/jstittsworth/fpl-advisor/pkg/database"
)

// LiveProvider is the slice of the API client the matchday poller needs.
type LiveProvider interface {
	GetEventLive(ctx context.Context, gameweek int) (*providers.LiveEvent, error)
}

// DataFetcherService keeps the snapshot data fresh: a full bootstrap refresh
// on a fixed interval, live-score polling during the weekend match window,
// and a nightly snapshot cleanup.
type DataFetcherService struct {
	ingestion     *IngestionService
	live          LiveProvider
	db            *database.DB
	cache         *CacheService
	hub           *WebSocketHub
	logger        *logrus.Logger
	cron          *cron.Cron
	mu            sync.Mutex
	isRunning     bool
	fetchInterval time.Duration

	dataMu   sync.RWMutex
	lastData *GameweekData
}

func NewDataFetcherService(
	ingestion *IngestionService,
	live LiveProvider,
	db *database.DB,
	cache *CacheService,
	hub *WebSocketHub,
	logger *logrus.Logger,
	fetchInterval time.Duration,
) *DataFetcherService {
	return &DataFetcherService{
		ingestion:     ingestion,
		live:          live,
		db:            db,
		cache:         cache,
		hub:           hub,
		logger:        logger,
		cron:          cron.New(),
		fetchInterval: fetchInterval,
	}
}

// Start begins the scheduled fetching.
func (s *DataFetcherService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("data fetcher is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.fetchInterval.String())
	_, err := s.cron.AddFunc(schedule, s.refreshSnapshot)
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot refresh: %w", err)
	}

	// Premier League rounds mostly run Saturday and Sunday afternoons UK
	// time; poll live scores every 10 minutes inside that window.
	_, err = s.cron.AddFunc("*/10 11-22 * * 6,0", s.pollLiveScores)
	if err != nil {
		return fmt.Errorf("failed to schedule live polling: %w", err)
	}

	_, err = s.cron.AddFunc("0 3 * * *", s.cleanupOldSnapshots)
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	go s.refreshSnapshot()

	s.logger.Info("Data fetcher service started")
	return nil
}

// Stop halts the scheduled fetching.
func (s *DataFetcherService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Data fetcher service stopped")
}

// LatestData returns the most recently fetched gameweek data, or nil before
// the first refresh completes.
func (s *DataFetcherService) LatestData() *GameweekData {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.lastData
}

func (s *DataFetcherService) refreshSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	data, err := s.ingestion.LoadGameweekData(ctx)
	if err != nil {
		s.logger.Errorf("Snapshot refresh failed: %v", err)
		return
	}

	s.dataMu.Lock()
	s.lastData = data
	s.dataMu.Unlock()

	raw, err := json.Marshal(data)
	if err != nil {
		s.logger.Errorf("Failed to marshal snapshot: %v", err)
		return
	}
	if err := s.ingestion.PersistSnapshot(data, "bootstrap", raw); err != nil {
		s.logger.Errorf("Failed to persist snapshot: %v", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToTopic("gameweek", "data_refresh", map[string]interface{}{
			"gameweek": data.Gameweek,
			"players":  len(data.Players),
			"fixtures": len(data.Fixtures),
		})
	}
}

func (s *DataFetcherService) pollLiveScores() {
	data := s.LatestData()
	if data == nil || s.live == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	live, err := s.live.GetEventLive(ctx, data.Gameweek)
	if err != nil {
		s.logger.Errorf("Live poll for gameweek %d failed: %v", data.Gameweek, err)
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, LiveCacheKey(data.Gameweek), live, LiveTTL); err != nil {
			s.logger.Warnf("Failed to cache live data: %v", err)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToTopic("live", "live_scores", map[string]interface{}{
			"gameweek": data.Gameweek,
			"elements": live.Elements,
		})
	}
}

func (s *DataFetcherService) cleanupOldSnapshots() {
	if s.db == nil {
		return
	}
	s.logger.Info("Starting nightly snapshot cleanup")

	cutoff := time.Now().AddDate(0, 0, -30)
	result := s.db.Where("fetched_at < ?", cutoff).Delete(&models.GameweekSnapshot{})
	if result.Error != nil {
		s.logger.Errorf("Failed to cleanup old snapshots: %v", result.Error)
		return
	}
	s.logger.Infof("Cleaned up %d old snapshots", result.RowsAffected)
}

// GetFetchStatus returns the current scheduler state.
func (s *DataFetcherService) GetFetchStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	return map[string]interface{}{
		"is_running":     s.isRunning,
		"fetch_interval": s.fetchInterval.String(),
		"next_runs":      nextRuns,
		"cron_jobs":      len(entries),
	}
}
