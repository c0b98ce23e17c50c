package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luciene-trg/agenda-backend/internal/bookings"
	"github.com/luciene-trg/agenda-backend/internal/calendar"
	"github.com/luciene-trg/agenda-backend/internal/messaging"
	"github.com/luciene-trg/agenda-backend/internal/messaging/templates"
	"github.com/luciene-trg/agenda-backend/internal/notify"
	"github.com/luciene-trg/agenda-backend/internal/observability/metrics"
	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

// Outcome describes how a notification was handled.
type Outcome string

const (
	OutcomeNoPaymentID Outcome = "no-payment-id"
	OutcomeNotApproved Outcome = "not-approved"
	OutcomeProcessed   Outcome = "ok"
)

// Booking source labels, used in logs.
const (
	sourceStore      = "store"
	sourcePreference = "preference"
	sourcePayment    = "payment_reference"
	sourcePayer      = "payer_fallback"
)

const (
	fallbackName = "Cliente"
	fallbackPlan = "Atendimento"
)

// PaymentNotification is the part of a Mercado Pago webhook body we read.
// Webhooks send {"data":{"id":...}}; older IPN payloads send {"id":...}.
type PaymentNotification struct {
	Type   string     `json:"type"`
	Topic  string     `json:"topic"`
	Action string     `json:"action"`
	ID     FlexibleID `json:"id"`
	Data   struct {
		ID FlexibleID `json:"id"`
	} `json:"data"`
}

// PaymentID returns data.id, falling back to id.
func (n PaymentNotification) PaymentID() string {
	if id := strings.TrimSpace(n.Data.ID.String()); id != "" {
		return id
	}
	return strings.TrimSpace(n.ID.String())
}

// ConfirmationConfig wires the collaborators of the confirmation flow.
// Nil ports are replaced by their disabled implementations.
type ConfirmationConfig struct {
	Gateway       Gateway
	Store         bookings.Store
	Calendar      calendar.Scheduler
	Messenger     messaging.Sender
	OwnerEmail    *notify.OwnerNotifier
	OwnerWhatsApp string
	Location      *time.Location
	Metrics       *metrics.BookingMetrics
	Logger        *logging.Logger
}

// ConfirmationService reconciles payment notifications with bookings and
// schedules the session.
type ConfirmationService struct {
	gateway       Gateway
	store         bookings.Store
	calendar      calendar.Scheduler
	messenger     messaging.Sender
	ownerEmail    *notify.OwnerNotifier
	ownerWhatsApp string
	loc           *time.Location
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
}

func NewConfirmationService(cfg ConfirmationConfig) *ConfirmationService {
	s := &ConfirmationService{
		gateway:       cfg.Gateway,
		store:         cfg.Store,
		calendar:      cfg.Calendar,
		messenger:     cfg.Messenger,
		ownerEmail:    cfg.OwnerEmail,
		ownerWhatsApp: strings.TrimSpace(cfg.OwnerWhatsApp),
		loc:           cfg.Location,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
	}
	if s.gateway == nil {
		s.gateway = DisabledGateway{}
	}
	if s.store == nil {
		s.store = bookings.NewMemoryStore()
	}
	if s.calendar == nil {
		s.calendar = calendar.Disabled{}
	}
	if s.messenger == nil {
		s.messenger = messaging.Disabled{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	return s
}

// HandleNotification processes one notification. Only a failure to fetch
// the payment is returned; collaborator failures are logged and swallowed.
func (s *ConfirmationService) HandleNotification(ctx context.Context, n PaymentNotification) (Outcome, error) {
	paymentID := n.PaymentID()
	if paymentID == "" {
		s.logger.Debug("notification without payment id", "type", n.Type, "action", n.Action)
		return OutcomeNoPaymentID, nil
	}

	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return "", fmt.Errorf("payments: fetch payment %s: %w", paymentID, err)
	}
	s.logger.Info("payment fetched", "payment_id", paymentID, "status", payment.Status)

	if !payment.Approved() {
		return OutcomeNotApproved, nil
	}

	booking, source := s.resolveBooking(ctx, payment)
	s.logger.Info("booking resolved",
		"payment_id", paymentID,
		"source", source,
		"has_schedule", booking.HasSchedule(),
		"has_contact", booking.HasContact(),
	)

	s.scheduleSession(ctx, paymentID, booking)
	s.notifyCustomer(ctx, booking)
	s.notifyOwnerEmail(ctx, paymentID, booking)

	return OutcomeProcessed, nil
}

// resolveBooking tries the store, the preference's external reference, the
// payment's own external reference and finally the payer metadata.
func (s *ConfirmationService) resolveBooking(ctx context.Context, payment *Payment) (bookings.PricedBooking, string) {
	prefID := payment.ResolvedPreferenceID()

	if prefID != "" {
		b, err := s.store.Get(ctx, prefID)
		if err == nil {
			return *b, sourceStore
		}
		if !errors.Is(err, bookings.ErrNotFound) {
			s.logger.Warn("pending checkout lookup failed", "preference_id", prefID, "error", err)
		}

		pref, err := s.gateway.GetPreference(ctx, prefID)
		if err != nil {
			s.logger.Warn("could not fetch preference", "preference_id", prefID, "error", err)
		} else if pref.ExternalReference != "" {
			b, err := bookings.ParseExternalReference(pref.ExternalReference)
			if err == nil {
				return *b, sourcePreference
			}
			s.logger.Warn("preference external reference unreadable", "preference_id", prefID, "error", err)
		}
	}

	if payment.ExternalReference != "" {
		if b, err := bookings.ParseExternalReference(payment.ExternalReference); err == nil {
			return *b, sourcePayment
		}
	}

	name := strings.TrimSpace(payment.Payer.FirstName)
	if name == "" {
		name = strings.TrimSpace(payment.Payer.Name)
	}
	if name == "" {
		name = fallbackName
	}
	return bookings.PricedBooking{
		Name:   name,
		Plan:   fallbackPlan,
		Amount: payment.TransactionAmount,
	}, sourcePayer
}

func (s *ConfirmationService) scheduleSession(ctx context.Context, paymentID string, b bookings.PricedBooking) {
	if !s.calendar.Enabled() || !b.HasSchedule() {
		s.logger.Info("calendar event skipped", "calendar_enabled", s.calendar.Enabled(), "has_schedule", b.HasSchedule())
		return
	}

	evt, err := calendar.NewEvent(
		fmt.Sprintf("%s - %s", b.Plan, b.Name),
		fmt.Sprintf("Pagamento confirmado (Mercado Pago). Payment id: %s", paymentID),
		b.DateISO,
		b.Time,
		s.loc,
	)
	if err != nil {
		s.metrics.ObserveCollaboratorError("calendar")
		s.logger.Error("calendar event not built", "error", err)
		return
	}
	if err := s.calendar.InsertEvent(ctx, evt); err != nil {
		s.metrics.ObserveCollaboratorError("calendar")
		s.logger.Error("calendar insert failed", "error", err, "payment_id", paymentID)
		return
	}
	s.logger.Info("calendar event created", "name", b.Name, "date", b.DateISO, "time", b.Time)
}

// notifyCustomer messages the customer, or the owner when the customer has
// no contact handle.
func (s *ConfirmationService) notifyCustomer(ctx context.Context, b bookings.PricedBooking) {
	if !s.messenger.Enabled() {
		return
	}
	data := templates.ConfirmationData{
		Name:    b.Name,
		Plan:    b.Plan,
		Amount:  b.Amount,
		DateISO: b.DateISO,
		Time:    b.Time,
	}

	to, render, audience := b.WhatsApp, templates.CustomerConfirmation, "customer"
	if !b.HasContact() {
		if s.ownerWhatsApp == "" {
			return
		}
		to, render, audience = s.ownerWhatsApp, templates.OwnerSummary, "owner"
	}

	body, err := render(data)
	if err != nil {
		s.metrics.ObserveCollaboratorError("messaging")
		s.logger.Error("confirmation message not rendered", "error", err, "audience", audience)
		return
	}
	if err := s.messenger.Send(ctx, to, body); err != nil {
		s.metrics.ObserveCollaboratorError("messaging")
		s.logger.Error("whatsapp send failed", "error", err, "audience", audience)
		return
	}
	s.logger.Info("whatsapp confirmation sent", "audience", audience)
}

func (s *ConfirmationService) notifyOwnerEmail(ctx context.Context, paymentID string, b bookings.PricedBooking) {
	if !s.ownerEmail.Enabled() {
		return
	}
	err := s.ownerEmail.PaymentConfirmed(ctx, notify.PaymentSummary{
		PaymentID: paymentID,
		Name:      b.Name,
		Contact:   b.WhatsApp,
		Plan:      b.Plan,
		Amount:    b.Amount,
		DateISO:   b.DateISO,
		Time:      b.Time,
	})
	if err != nil {
		s.metrics.ObserveCollaboratorError("email")
		s.logger.Error("owner email failed", "error", err)
	}
}
