package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

var twilioSendTracer = otel.Tracer("agenda.internal.messaging.twilio_send")

const defaultTwilioBaseURL = "https://api.twilio.com"

// Sender delivers a text message to a contact handle.
type Sender interface {
	Enabled() bool
	Send(ctx context.Context, to, body string) error
}

// TwilioWhatsAppSender posts WhatsApp messages using Twilio's REST API.
// Failures are returned to the caller without retrying.
type TwilioWhatsAppSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTwilioWhatsAppSender builds a sender. from may be given with or without
// the whatsapp: scheme.
func NewTwilioWhatsAppSender(accountSID, authToken, from string, logger *logging.Logger) *TwilioWhatsAppSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &TwilioWhatsAppSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       WhatsAppAddress(from),
		baseURL:    defaultTwilioBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// WithBaseURL overrides the Twilio API host.
func (s *TwilioWhatsAppSender) WithBaseURL(baseURL string) *TwilioWhatsAppSender {
	if baseURL == "" {
		return s
	}
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

func (s *TwilioWhatsAppSender) Enabled() bool { return s != nil }

// Send dispatches a single WhatsApp message to the handle.
func (s *TwilioWhatsAppSender) Send(ctx context.Context, to, body string) error {
	if s.accountSID == "" || s.authToken == "" {
		return errors.New("messaging: twilio credentials missing")
	}
	to = WhatsAppAddress(to)
	if to == "" {
		return errors.New("messaging: to required")
	}
	if s.from == "" {
		return errors.New("messaging: from required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := twilioSendTracer.Start(ctx, "messaging.twilio.send")
	defer span.End()
	span.SetAttributes(attribute.String("agenda.to", to))

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", s.from)
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return fmt.Errorf("messaging: twilio request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("messaging: twilio http: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("messaging: twilio send failed: %s", formatTwilioError(resp.StatusCode, raw))
		span.RecordError(err)
		return err
	}

	var parsed struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	_ = json.Unmarshal(raw, &parsed)
	s.logger.Info("twilio whatsapp sent", "to", to, "sid", parsed.SID, "status", parsed.Status)
	return nil
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func formatTwilioError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, trimmed)
}

// Disabled drops every message. It is used when Twilio is not configured.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Send(context.Context, string, string) error { return nil }

var (
	_ Sender = (*TwilioWhatsAppSender)(nil)
	_ Sender = Disabled{}
)
