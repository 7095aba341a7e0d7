package services

import (
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// RateLimiter caps how often alerts go to one phone number.
type RateLimiter interface {
	Allow(phoneNumber string) error
}

// TwilioSMSService implements SMSService using the Twilio API, wrapped in a
// circuit breaker so an outage does not back up the alert scheduler.
type TwilioSMSService struct {
	client      *twilio.RestClient
	fromNumber  string
	logger      *logrus.Logger
	breaker     *gobreaker.CircuitBreaker
	rateLimiter RateLimiter
}

// NewTwilioSMSService creates a new Twilio SMS service
func NewTwilioSMSService(accountSID, authToken, fromNumber string, rateLimiter RateLimiter, logger *logrus.Logger) *TwilioSMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "twilio-sms",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &TwilioSMSService{
		client:      client,
		fromNumber:  fromNumber,
		logger:      logger,
		breaker:     breaker,
		rateLimiter: rateLimiter,
	}
}

// SendMessage sends an SMS message via Twilio
func (s *TwilioSMSService) SendMessage(phoneNumber, message string) error {
	normalized, err := normalizePhoneNumber(phoneNumber)
	if err != nil {
		return fmt.Errorf("invalid phone number format: %w", err)
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Allow(normalized); err != nil {
			s.logger.Warnf("Twilio SMS: rate limited for %s", normalized)
			return fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(normalized)
	params.SetFrom(s.fromNumber)
	params.SetBody(message)

	_, err = s.breaker.Execute(func() (interface{}, error) {
		resp, err := s.client.Api.CreateMessage(params)
		if err != nil {
			return nil, err
		}
		if resp.Sid != nil {
			s.logger.Infof("Twilio SMS: message sent (SID: %s)", *resp.Sid)
		}
		return nil, nil
	})
	if err != nil {
		s.logger.Errorf("Twilio SMS: send failed - %v", err)
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

var (
	nonDialable = regexp.MustCompile(`[^\d+]`)
	usNational  = regexp.MustCompile(`^\d{10}$`)
	e164        = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

// normalizePhoneNumber ensures phone number is in E.164 format
func normalizePhoneNumber(phone string) (string, error) {
	cleaned := nonDialable.ReplaceAllString(phone, "")

	if len(cleaned) == 0 || cleaned[0] != '+' {
		// Assume US number if no country code
		if usNational.MatchString(cleaned) {
			cleaned = "+1" + cleaned
		} else {
			return "", fmt.Errorf("invalid phone number format")
		}
	}

	if !e164.MatchString(cleaned) {
		return "", fmt.Errorf("invalid phone number format")
	}

	return cleaned, nil
}

// GetStats returns circuit breaker and service statistics
func (s *TwilioSMSService) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"circuit_breaker_state": s.breaker.State().String(),
		"service_type":          "twilio",
	}
}
