package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

func TestMercadoPagoClient_CreatePreference(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/checkout/preferences" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.Header.Get("X-Idempotency-Key") == "" {
			t.Errorf("expected idempotency key")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"pref-123","init_point":"https://mp.example/checkout","sandbox_init_point":"https://sandbox.mp.example"}`)
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("token-abc", nil).WithBaseURL(srv.URL)
	pref, err := client.CreatePreference(context.Background(), PreferenceRequest{
		Items:             []PreferenceItem{{Title: "Sessão Individual (55 min)", Quantity: 1, UnitPrice: 120, CurrencyID: "BRL"}},
		ExternalReference: `{"name":"Ana"}`,
		NotificationURL:   "https://agenda.example/webhook",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if pref.ID != "pref-123" || pref.InitPoint != "https://mp.example/checkout" {
		t.Fatalf("unexpected preference: %+v", pref)
	}

	if gotBody["external_reference"] != `{"name":"Ana"}` {
		t.Fatalf("unexpected external_reference %#v", gotBody["external_reference"])
	}
	if gotBody["notification_url"] != "https://agenda.example/webhook" {
		t.Fatalf("unexpected notification_url %#v", gotBody["notification_url"])
	}
	if _, ok := gotBody["back_urls"]; ok {
		t.Fatalf("back_urls should be omitted when unset")
	}
	items, ok := gotBody["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one item, got %#v", gotBody["items"])
	}
	item := items[0].(map[string]any)
	if item["unit_price"] != 120.0 || item["currency_id"] != "BRL" {
		t.Fatalf("unexpected item %#v", item)
	}
}

func TestMercadoPagoClient_GetPaymentAcceptsNumericIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/987" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":987,"status":"approved","transaction_amount":324,"order":{"id":55,"preference_id":"pref-1"},"payer":{"first_name":"Ana"}}`)
	}))
	defer srv.Close()

	p, err := NewMercadoPagoClient("tok", nil).WithBaseURL(srv.URL).GetPayment(context.Background(), "987")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if p.ID.String() != "987" || !p.Approved() {
		t.Fatalf("unexpected payment %+v", p)
	}
	if p.ResolvedPreferenceID() != "pref-1" {
		t.Fatalf("expected order preference id, got %q", p.ResolvedPreferenceID())
	}
	if p.TransactionAmount != 324 || p.Payer.FirstName != "Ana" {
		t.Fatalf("unexpected payment fields %+v", p)
	}
}

func TestMercadoPagoClient_GetPreference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checkout/preferences/pref-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":"pref-1","external_reference":"{\"name\":\"Ana\"}"}`)
	}))
	defer srv.Close()

	pref, err := NewMercadoPagoClient("tok", nil).WithBaseURL(srv.URL).GetPreference(context.Background(), "pref-1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if pref.ExternalReference != `{"name":"Ana"}` {
		t.Fatalf("unexpected external reference %q", pref.ExternalReference)
	}
}

func TestMercadoPagoClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid access token"}`)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	client := NewMercadoPagoClient("bad", logging.NewWithWriter("info", &logs)).WithBaseURL(srv.URL)
	_, err := client.GetPayment(context.Background(), "1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Body != `{"message":"invalid access token"}` {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if out := logs.String(); !strings.Contains(out, "mercadopago api error") || !strings.Contains(out, "/v1/payments/1") {
		t.Fatalf("expected api failure to be logged, got %s", out)
	}
}

func TestMercadoPagoClient_MissingToken(t *testing.T) {
	if _, err := NewMercadoPagoClient("", nil).GetPayment(context.Background(), "1"); err == nil {
		t.Fatalf("expected error without access token")
	}
}

func TestFlexibleID_UnmarshalJSON(t *testing.T) {
	cases := map[string]string{
		`"abc"`:       "abc",
		`123`:         "123",
		`12345678901`: "12345678901",
		`null`:        "",
	}
	for raw, want := range cases {
		var id FlexibleID
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			t.Fatalf("%s: unexpected error %v", raw, err)
		}
		if id.String() != want {
			t.Fatalf("%s: expected %q, got %q", raw, want, id.String())
		}
	}
	var id FlexibleID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Fatalf("expected error for object id")
	}
}

func TestDisabledGateway(t *testing.T) {
	_, err := DisabledGateway{}.CreatePreference(context.Background(), PreferenceRequest{})
	if !errors.Is(err, ErrGatewayDisabled) {
		t.Fatalf("expected ErrGatewayDisabled, got %v", err)
	}
}
