package payments

import (
	"context"
	"errors"
	"sync"

	"github.com/luciene-trg/agenda-backend/internal/bookings"
	"github.com/luciene-trg/agenda-backend/internal/calendar"
	"github.com/luciene-trg/agenda-backend/internal/notify"
)

type stubGateway struct {
	mu sync.Mutex

	pref       *Preference
	createErr  error
	lastCreate *PreferenceRequest
	creates    int

	payment    *Payment
	paymentErr error

	preference    *Preference
	preferenceErr error
	preferenceIDs []string
}

func (g *stubGateway) CreatePreference(_ context.Context, req PreferenceRequest) (*Preference, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creates++
	g.lastCreate = &req
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.pref, nil
}

func (g *stubGateway) GetPayment(context.Context, string) (*Payment, error) {
	if g.paymentErr != nil {
		return nil, g.paymentErr
	}
	return g.payment, nil
}

func (g *stubGateway) GetPreference(_ context.Context, id string) (*Preference, error) {
	g.mu.Lock()
	g.preferenceIDs = append(g.preferenceIDs, id)
	g.mu.Unlock()
	if g.preferenceErr != nil {
		return nil, g.preferenceErr
	}
	if g.preference == nil {
		return nil, &APIError{StatusCode: 404, Body: `{"message":"not found"}`}
	}
	return g.preference, nil
}

type stubScheduler struct {
	enabled bool
	err     error
	events  []calendar.Event
}

func (s *stubScheduler) Enabled() bool { return s.enabled }

func (s *stubScheduler) InsertEvent(_ context.Context, evt calendar.Event) error {
	s.events = append(s.events, evt)
	return s.err
}

type sentMessage struct {
	to   string
	body string
}

type stubSender struct {
	enabled bool
	err     error
	sent    []sentMessage
}

func (s *stubSender) Enabled() bool { return s.enabled }

func (s *stubSender) Send(_ context.Context, to, body string) error {
	s.sent = append(s.sent, sentMessage{to: to, body: body})
	return s.err
}

type stubEmail struct {
	messages []notify.EmailMessage
}

func (s *stubEmail) Send(_ context.Context, msg notify.EmailMessage) error {
	s.messages = append(s.messages, msg)
	return nil
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*bookings.PricedBooking, error) {
	return nil, errors.New("store down")
}

func (failingStore) Set(context.Context, string, bookings.PricedBooking) error {
	return errors.New("store down")
}
