package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/fpl-advisor/internal/models"
)

type spySMS struct {
	to   string
	body string
	sent int
}

func (s *spySMS) SendMessage(phoneNumber, message string) error {
	s.to = phoneNumber
	s.body = message
	s.sent++
	return nil
}

func deadlineReport() *AdvisorReport {
	return &AdvisorReport{
		Gameweek: 8,
		Advice: []TransferAdvice{{
			Out:        TaggedPlayer{Player: models.Player{Name: "Fading Mid"}},
			In:         TaggedPlayer{Player: models.Player{Name: "Rising Mid"}},
			PointsGain: 2.5,
		}},
		Captain: TaggedPlayer{Player: models.Player{Name: "Skipper"}},
	}
}

func TestBuildDeadlineAlert(t *testing.T) {
	msg := BuildDeadlineAlert(deadlineReport())

	assert.Contains(t, msg, "GW8 deadline")
	assert.Contains(t, msg, "Fading Mid out, Rising Mid in (+2.5 xP)")
	assert.Contains(t, msg, "Captain: Skipper")
}

func TestBuildDeadlineAlert_Roll(t *testing.T) {
	report := deadlineReport()
	report.ShouldRoll = true

	msg := BuildDeadlineAlert(report)
	assert.Contains(t, msg, "roll your transfer")
	assert.NotContains(t, msg, "Top move")
}

func TestSendDeadlineAlert(t *testing.T) {
	spy := &spySMS{}
	require.NoError(t, SendDeadlineAlert(spy, "+447700900123", deadlineReport()))
	assert.Equal(t, 1, spy.sent)
	assert.Equal(t, "+447700900123", spy.to)
	assert.Contains(t, spy.body, "GW8")

	// No configured number means no alert, not an error.
	require.NoError(t, SendDeadlineAlert(spy, "", deadlineReport()))
	assert.Equal(t, 1, spy.sent)
}

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"e164 passthrough", "+447700900123", "+447700900123", false},
		{"formatted e164", "+44 7700 900-123", "+447700900123", false},
		{"us national", "5551234567", "+15551234567", false},
		{"too short", "12345", "", true},
		{"garbage", "not-a-number", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizePhoneNumber(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSMSRateLimiter(t *testing.T) {
	limiter := NewSMSRateLimiter(2, time.Hour)

	require.NoError(t, limiter.Allow("+447700900123"))
	require.NoError(t, limiter.Allow("+447700900123"))
	assert.Error(t, limiter.Allow("+447700900123"), "third send inside the window is blocked")

	// Other numbers have their own budget.
	assert.NoError(t, limiter.Allow("+447700900999"))

	limiter.Reset()
	assert.NoError(t, limiter.Allow("+447700900123"))
}
