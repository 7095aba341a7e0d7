package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SMSService sends deadline alerts to a manager's phone.
type SMSService interface {
	SendMessage(phoneNumber, message string) error
}

// MockSMSService for development - logs instead of sending real SMS
type MockSMSService struct {
	logger *logrus.Logger
}

func NewMockSMSService(logger *logrus.Logger) *MockSMSService {
	return &MockSMSService{logger: logger}
}

func (s *MockSMSService) SendMessage(phoneNumber, message string) error {
	s.logger.WithField("phone", phoneNumber).Infof("MOCK SMS: %s", message)
	return nil
}

// BuildDeadlineAlert formats the pre-deadline reminder: the round, the top
// recommended move and the captain pick, small enough for one SMS segment.
func BuildDeadlineAlert(report *AdvisorReport) string {
	header := fmt.Sprintf("FPL GW%d deadline approaching.", report.Gameweek)

	var move string
	if report.ShouldRoll || len(report.Advice) == 0 {
		move = "Advice: roll your transfer."
	} else {
		top := report.Advice[0]
		move = fmt.Sprintf("Top move: %s out, %s in (+%.1f xP).",
			top.Out.Player.Name, top.In.Player.Name, top.PointsGain)
	}

	captain := fmt.Sprintf("Captain: %s.", report.Captain.Player.Name)

	return header + " " + move + " " + captain
}

// SendDeadlineAlert builds and dispatches the reminder for one report.
func SendDeadlineAlert(sms SMSService, phoneNumber string, report *AdvisorReport) error {
	if phoneNumber == "" {
		return nil
	}
	return sms.SendMessage(phoneNumber, BuildDeadlineAlert(report))
}
