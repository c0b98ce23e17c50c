package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

// GoogleCalendar inserts events with a service-account JWT.
type GoogleCalendar struct {
	service    *gcal.Service
	tokens     oauth2.TokenSource
	calendarID string
	logger     *logging.Logger
}

// NewGoogleCalendar parses the service-account JSON and prepares the client.
// No network call is made until Authorize or InsertEvent.
func NewGoogleCalendar(ctx context.Context, serviceAccountJSON []byte, calendarID string, logger *logging.Logger, opts ...option.ClientOption) (*GoogleCalendar, error) {
	jwtCfg, err := google.JWTConfigFromJSON(serviceAccountJSON, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("calendar: parse service account: %w", err)
	}
	tokens := oauth2.ReuseTokenSource(nil, jwtCfg.TokenSource(ctx))
	opts = append([]option.ClientOption{option.WithTokenSource(tokens)}, opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: create service: %w", err)
	}
	return newGoogleCalendar(svc, tokens, calendarID, logger), nil
}

func newGoogleCalendar(svc *gcal.Service, tokens oauth2.TokenSource, calendarID string, logger *logging.Logger) *GoogleCalendar {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(calendarID) == "" {
		calendarID = "primary"
	}
	return &GoogleCalendar{
		service:    svc,
		tokens:     tokens,
		calendarID: calendarID,
		logger:     logger,
	}
}

func (g *GoogleCalendar) Enabled() bool { return g != nil && g.service != nil }

// Authorize fetches an access token so credential problems surface before the
// first insert.
func (g *GoogleCalendar) Authorize(ctx context.Context) error {
	if g.tokens == nil {
		return nil
	}
	if _, err := g.tokens.Token(); err != nil {
		return fmt.Errorf("calendar: authorize: %w", err)
	}
	return nil
}

// InsertEvent authorizes, then inserts evt. An authorization failure is only
// logged; the insert itself reports the definitive error.
func (g *GoogleCalendar) InsertEvent(ctx context.Context, evt Event) error {
	if err := g.Authorize(ctx); err != nil {
		g.logger.Warn("google authorize warning", "error", err)
	}

	body := &gcal.Event{
		Summary:     evt.Summary,
		Description: evt.Description,
		Start: &gcal.EventDateTime{
			DateTime: evt.Start.Format(time.RFC3339),
			TimeZone: evt.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: evt.End.Format(time.RFC3339),
			TimeZone: evt.TimeZone,
		},
	}
	created, err := g.service.Events.Insert(g.calendarID, body).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("calendar: insert event: %w", err)
	}
	g.logger.Info("calendar event created", "calendar_id", g.calendarID, "event_id", created.Id, "start", body.Start.DateTime)
	return nil
}

var (
	_ Scheduler = (*GoogleCalendar)(nil)
	_ Scheduler = Disabled{}
)
