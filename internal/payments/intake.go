package payments

import (
	"context"
	"errors"

	"github.com/luciene-trg/agenda-backend/internal/bookings"
	"github.com/luciene-trg/agenda-backend/internal/observability/metrics"
	"github.com/luciene-trg/agenda-backend/internal/pricing"
	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

const (
	titleMonthly    = "Pacote Mensal (4 sessões)"
	titleIndividual = "Sessão Individual (55 min)"
	currencyBRL     = "BRL"
)

// UpstreamError wraps a payment provider failure during intake.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "payments: create preference: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// CheckoutResult is returned to the browser, which redirects to InitPoint.
type CheckoutResult struct {
	InitPoint    string `json:"init_point"`
	PreferenceID string `json:"preference_id"`
}

// IntakeConfig carries the optional provider URLs attached to each preference.
type IntakeConfig struct {
	NotificationURL string
	SuccessURL      string
}

// IntakeService prices bookings and registers checkout preferences.
type IntakeService struct {
	gateway Gateway
	store   bookings.Store
	coupons pricing.Coupons
	cfg     IntakeConfig
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

func NewIntakeService(gateway Gateway, store bookings.Store, coupons pricing.Coupons, cfg IntakeConfig, m *metrics.BookingMetrics, logger *logging.Logger) *IntakeService {
	if gateway == nil {
		gateway = DisabledGateway{}
	}
	if store == nil {
		store = bookings.NewMemoryStore()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeService{
		gateway: gateway,
		store:   store,
		coupons: coupons,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

// CreateCheckout validates and prices req, then registers a preference with
// the booking attached as its external reference. The booking is stored under
// the returned preference id; a store failure is logged only, since the
// external reference still carries the booking.
func (s *IntakeService) CreateCheckout(ctx context.Context, req bookings.BookingRequest) (*CheckoutResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.ObserveIntake("invalid")
		return nil, err
	}

	booking := req.Priced(s.coupons.Price(req.Plan, req.Coupon))
	ref, err := booking.ExternalReference()
	if err != nil {
		return nil, err
	}

	prefReq := PreferenceRequest{
		Items: []PreferenceItem{{
			Title:      itemTitle(req.Plan),
			Quantity:   1,
			UnitPrice:  booking.Amount,
			CurrencyID: currencyBRL,
		}},
		ExternalReference: ref,
		NotificationURL:   s.cfg.NotificationURL,
	}
	if s.cfg.SuccessURL != "" {
		prefReq.BackURLs = &BackURLs{Success: s.cfg.SuccessURL}
		prefReq.AutoReturn = "approved"
	}

	pref, err := s.gateway.CreatePreference(ctx, prefReq)
	if err != nil {
		s.metrics.ObserveIntake("upstream_error")
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			s.logger.Error("mercadopago create preference failed", "status", apiErr.StatusCode, "body", apiErr.Body)
		} else {
			s.logger.Error("mercadopago create preference failed", "error", err)
		}
		return nil, &UpstreamError{Err: err}
	}

	if err := s.store.Set(ctx, pref.ID, booking); err != nil {
		s.logger.Warn("pending checkout not stored", "preference_id", pref.ID, "error", err)
	}
	s.metrics.ObserveIntake("created")
	s.logger.Info("checkout preference created",
		"preference_id", pref.ID,
		"plan", booking.Plan,
		"amount", booking.Amount,
		"date", booking.DateISO,
		"time", booking.Time,
	)

	return &CheckoutResult{InitPoint: pref.InitPoint, PreferenceID: pref.ID}, nil
}

func itemTitle(plan string) string {
	if pricing.IsMonthly(plan) {
		return titleMonthly
	}
	return titleIndividual
}

