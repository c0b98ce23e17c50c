package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luciene-trg/agenda-backend/internal/app/bootstrap"
	appconfig "github.com/luciene-trg/agenda-backend/internal/config"
	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

func TestSetupMetricsExposesBookingMetrics(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveIntake("created")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `booking_intake_total{result="created"} 1`) {
		t.Fatalf("expected intake counter to be exported")
	}
}

func TestBuildHandlerWithoutCredentials(t *testing.T) {
	cfg := &appconfig.Config{
		Port:               "0",
		BookingStore:       "memory",
		CORSAllowedOrigins: []string{"*"},
	}
	handler, cleanup, err := buildHandler(context.Background(), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected liveness 200, got %d", rr.Code)
	}

	// Without a Mercado Pago token the intake answers 500 once validation passes.
	body := `{"plan":"individual","name":"Ana","whatsapp":"+5511999990000","dateISO":"2024-05-10","time":"14:00"}`
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/create_preference", strings.NewReader(body)))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 with disabled gateway, got %d", rr.Code)
	}
}

func TestBuildHandlerRejectsUnknownStore(t *testing.T) {
	_, cleanup, err := buildHandler(context.Background(), &appconfig.Config{BookingStore: "cassandra"}, logging.New("error"))
	if err == nil {
		t.Fatalf("expected error for unknown store")
	}
	cleanup()
}

func TestCalendarTimezoneResolvesFromEmbeddedZoneinfo(t *testing.T) {
	cfg := &appconfig.Config{CalendarTimezone: "America/Sao_Paulo"}
	loc := bootstrap.LoadLocation(cfg, logging.New("error"))
	if loc.String() != "America/Sao_Paulo" {
		t.Fatalf("expected America/Sao_Paulo, got %s", loc)
	}
}
