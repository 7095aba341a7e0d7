package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fpl-advisor/internal/engine/projection"
	"github.com/jstittsworth/fpl-advisor/internal/engine/transfer"
)

// AlertService sends the weekly deadline reminder for the configured manager
// entry: it solves the squad, builds the advisory report and texts the top
// move plus captain pick.
type AlertService struct {
	fetcher   *DataFetcherService
	ingestion *IngestionService
	advisor   *AdvisorService
	sms       SMSService
	phone     string
	entryID   int
	schedule  string
	logger    *logrus.Logger
	cron      *cron.Cron
}

func NewAlertService(
	fetcher *DataFetcherService,
	ingestion *IngestionService,
	advisor *AdvisorService,
	sms SMSService,
	phone string,
	entryID int,
	schedule string,
	logger *logrus.Logger,
) *AlertService {
	return &AlertService{
		fetcher:   fetcher,
		ingestion: ingestion,
		advisor:   advisor,
		sms:       sms,
		phone:     phone,
		entryID:   entryID,
		schedule:  schedule,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules the reminder. A missing phone number or entry ID disables
// alerting without failing startup.
func (s *AlertService) Start() error {
	if s.phone == "" || s.entryID <= 0 {
		s.logger.Info("Deadline alerts disabled: no phone number or entry configured")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.sendDeadlineReminder); err != nil {
		return fmt.Errorf("failed to schedule deadline alerts: %w", err)
	}

	s.cron.Start()
	s.logger.Infof("Deadline alerts scheduled (%s) for entry %d", s.schedule, s.entryID)
	return nil
}

func (s *AlertService) Stop() {
	s.cron.Stop()
}

func (s *AlertService) sendDeadlineReminder() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	data := s.fetcher.LatestData()
	if data == nil {
		s.logger.Warn("Deadline alert skipped: gameweek data not loaded")
		return
	}

	state, err := s.ingestion.BuildSquadState(ctx, s.entryID, data)
	if err != nil {
		s.logger.Errorf("Deadline alert: failed to fetch picks for entry %d: %v", s.entryID, err)
		return
	}

	points := projection.PointsByPlayer(projection.ProjectAll(data.Players, data.Fixtures, state.Gameweek))
	result, err := transfer.Solve(*state, data.Players, points)
	if err != nil {
		s.logger.Errorf("Deadline alert: solve failed for entry %d: %v", s.entryID, err)
		return
	}

	report := s.advisor.BuildReport(result, data.Players, points)
	if err := SendDeadlineAlert(s.sms, s.phone, report); err != nil {
		s.logger.Errorf("Deadline alert: send failed: %v", err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"entry_id": s.entryID,
		"gameweek": report.Gameweek,
	}).Info("Deadline alert sent")
}
