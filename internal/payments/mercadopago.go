package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

var mercadoTracer = otel.Tracer("agenda.internal.payments.mercadopago")

const defaultMercadoBaseURL = "https://api.mercadopago.com"

// StatusApproved is the payment status for captured funds.
const StatusApproved = "approved"

// ErrGatewayDisabled is returned by DisabledGateway.
var ErrGatewayDisabled = errors.New("payments: payment gateway not configured")

// Gateway is the subset of the Mercado Pago API the service relies on.
type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	GetPreference(ctx context.Context, preferenceID string) (*Preference, error)
}

type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id,omitempty"`
}

type BackURLs struct {
	Success string `json:"success,omitempty"`
	Pending string `json:"pending,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// PreferenceRequest is the body of POST /checkout/preferences.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	BackURLs          *BackURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
}

// Preference is a checkout session.
type Preference struct {
	ID                string `json:"id"`
	InitPoint         string `json:"init_point"`
	SandboxInitPoint  string `json:"sandbox_init_point"`
	ExternalReference string `json:"external_reference"`
}

// Payment is the authoritative payment record fetched by id.
type Payment struct {
	ID                FlexibleID `json:"id"`
	Status            string     `json:"status"`
	StatusDetail      string     `json:"status_detail"`
	PreferenceID      string     `json:"preference_id"`
	ExternalReference string     `json:"external_reference"`
	TransactionAmount float64    `json:"transaction_amount"`
	Order             struct {
		ID           FlexibleID `json:"id"`
		PreferenceID string     `json:"preference_id"`
	} `json:"order"`
	Payer struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Name      string `json:"name"`
		Email     string `json:"email"`
	} `json:"payer"`
}

// Approved reports whether funds were captured.
func (p *Payment) Approved() bool {
	return p != nil && p.Status == StatusApproved
}

// ResolvedPreferenceID returns the preference id, falling back to the order's.
func (p *Payment) ResolvedPreferenceID() string {
	if p == nil {
		return ""
	}
	if id := strings.TrimSpace(p.PreferenceID); id != "" {
		return id
	}
	return strings.TrimSpace(p.Order.PreferenceID)
}

// FlexibleID accepts both JSON strings and numbers. Mercado Pago sends
// numeric payment ids in some payloads and strings in others.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("payments: id is neither string nor number: %s", string(data))
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) String() string { return string(f) }

// APIError carries the status and body of a failed Mercado Pago call.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payments: mercadopago api status %d: %s", e.StatusCode, e.Body)
}

// MercadoPagoClient talks to the Mercado Pago REST API with a bearer token.
type MercadoPagoClient struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	logger      *logging.Logger
}

func NewMercadoPagoClient(accessToken string, logger *logging.Logger) *MercadoPagoClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &MercadoPagoClient{
		accessToken: accessToken,
		baseURL:     defaultMercadoBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// WithBaseURL overrides the API host (tests, proxies).
func (c *MercadoPagoClient) WithBaseURL(baseURL string) *MercadoPagoClient {
	if baseURL == "" {
		return c
	}
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

func (c *MercadoPagoClient) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	ctx, span := mercadoTracer.Start(ctx, "mercadopago.create_preference")
	defer span.End()
	span.SetAttributes(attribute.Int("agenda.items", len(req.Items)))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("payments: preference payload: %w", err)
	}
	headers := map[string]string{"X-Idempotency-Key": uuid.NewString()}

	var pref Preference
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", body, headers, &pref); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create preference failed")
		return nil, err
	}
	if pref.ID == "" {
		return nil, fmt.Errorf("payments: preference response missing id")
	}
	span.SetAttributes(attribute.String("agenda.preference_id", pref.ID))
	return &pref, nil
}

func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	ctx, span := mercadoTracer.Start(ctx, "mercadopago.get_payment")
	defer span.End()
	span.SetAttributes(attribute.String("agenda.payment_id", paymentID))

	var p Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, nil, &p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get payment failed")
		return nil, err
	}
	return &p, nil
}

func (c *MercadoPagoClient) GetPreference(ctx context.Context, preferenceID string) (*Preference, error) {
	ctx, span := mercadoTracer.Start(ctx, "mercadopago.get_preference")
	defer span.End()
	span.SetAttributes(attribute.String("agenda.preference_id", preferenceID))

	var pref Preference
	if err := c.do(ctx, http.MethodGet, "/checkout/preferences/"+url.PathEscape(preferenceID), nil, nil, &pref); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get preference failed")
		return nil, err
	}
	return &pref, nil
}

func (c *MercadoPagoClient) do(ctx context.Context, method, path string, body []byte, headers map[string]string, out any) error {
	if c.accessToken == "" {
		return fmt.Errorf("payments: mercadopago access token missing")
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("payments: mercadopago request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("mercadopago request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("payments: mercadopago http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		c.logger.Warn("mercadopago api error", "method", method, "path", path, "status", apiErr.StatusCode, "body", apiErr.Body)
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("payments: mercadopago decode: %w", err)
	}
	return nil
}

// DisabledGateway stands in when no access token is configured.
type DisabledGateway struct{}

func (DisabledGateway) CreatePreference(context.Context, PreferenceRequest) (*Preference, error) {
	return nil, ErrGatewayDisabled
}

func (DisabledGateway) GetPayment(context.Context, string) (*Payment, error) {
	return nil, ErrGatewayDisabled
}

func (DisabledGateway) GetPreference(context.Context, string) (*Preference, error) {
	return nil, ErrGatewayDisabled
}

var (
	_ Gateway = (*MercadoPagoClient)(nil)
	_ Gateway = DisabledGateway{}
)
