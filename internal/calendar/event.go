// Package calendar creates session events in the practitioner's calendar.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SessionDuration is the fixed length of every session.
const SessionDuration = 55 * time.Minute

// Event is a calendar entry for a confirmed session.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Scheduler inserts events. Enabled is false for the disabled implementation
// so callers can skip building events at all.
type Scheduler interface {
	Enabled() bool
	InsertEvent(ctx context.Context, evt Event) error
}

var clockLayouts = []string{"15:04", "15:04:05"}

// NewEvent builds a session event starting at dateISO + clock in loc.
func NewEvent(summary, description, dateISO, clock string, loc *time.Location) (Event, error) {
	if loc == nil {
		loc = time.UTC
	}
	dateISO = strings.TrimSpace(dateISO)
	clock = strings.TrimSpace(clock)

	var start time.Time
	var err error
	for _, layout := range clockLayouts {
		start, err = time.ParseInLocation("2006-01-02 "+layout, dateISO+" "+clock, loc)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Event{}, fmt.Errorf("calendar: invalid session date/time %q %q: %w", dateISO, clock, err)
	}

	return Event{
		Summary:     summary,
		Description: description,
		Start:       start,
		End:         start.Add(SessionDuration),
		TimeZone:    loc.String(),
	}, nil
}

// Disabled is used when no service account is configured.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) InsertEvent(context.Context, Event) error { return nil }
