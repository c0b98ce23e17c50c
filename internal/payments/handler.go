package payments

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luciene-trg/agenda-backend/internal/bookings"
	"github.com/luciene-trg/agenda-backend/internal/observability/metrics"
	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

const (
	maxWebhookBody = 1 << 20
	topicPayment   = "payment"
)

// CheckoutHandler serves POST /create_preference.
type CheckoutHandler struct {
	intake *IntakeService
	logger *logging.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewCheckoutHandler(intake *IntakeService, logger *logging.Logger) *CheckoutHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CheckoutHandler{intake: intake, logger: logger}
}

func (h *CheckoutHandler) CreatePreference(w http.ResponseWriter, r *http.Request) {
	var req bookings.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}

	result, err := h.intake.CreateCheckout(r.Context(), req)
	if err != nil {
		var verr *bookings.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to create payment preference"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// WebhookHandler serves POST /webhook. Every handled outcome answers 200;
// a failed payment fetch or a panic answers 500.
type WebhookHandler struct {
	confirmations *ConfirmationService
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
}

func NewWebhookHandler(confirmations *ConfirmationService, m *metrics.BookingMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{confirmations: confirmations, metrics: m, logger: logger}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		h.metrics.ObserveWebhookLatency(time.Since(start).Seconds())
	}()
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook panic", "panic", rec)
			h.metrics.ObserveWebhook("error")
			writeText(w, http.StatusInternalServerError, "error")
		}
	}()

	notification := parseNotification(r, h.logger)

	outcome, err := h.confirmations.HandleNotification(r.Context(), notification)
	if err != nil {
		h.logger.Error("webhook processing failed", "error", err)
		h.metrics.ObserveWebhook("error")
		writeText(w, http.StatusInternalServerError, "error")
		return
	}
	h.metrics.ObserveWebhook(string(outcome))
	writeText(w, http.StatusOK, string(outcome))
}

// parseNotification reads the JSON body when present and falls back to the
// data.id / id query parameters used by IPN style callbacks.
func parseNotification(r *http.Request, logger *logging.Logger) PaymentNotification {
	var n PaymentNotification
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("webhook body unreadable", "error", err)
	} else if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &n); err != nil {
			logger.Warn("webhook body is not json", "error", err)
			n = PaymentNotification{}
		}
	}
	if n.PaymentID() != "" {
		return n
	}

	q := r.URL.Query()
	if n.Type == "" {
		n.Type = firstNonEmpty(n.Topic, q.Get("type"), q.Get("topic"))
	}
	// IPN callbacks reuse ?id= for merchant orders and other resources.
	if kind := strings.ToLower(strings.TrimSpace(n.Type)); kind != "" && kind != topicPayment {
		return n
	}
	if id := strings.TrimSpace(q.Get("data.id")); id != "" {
		n.Data.ID = FlexibleID(id)
	} else if id := strings.TrimSpace(q.Get("id")); id != "" {
		n.ID = FlexibleID(id)
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
