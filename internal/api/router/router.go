package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/luciene-trg/agenda-backend/internal/http/middleware"
	"github.com/luciene-trg/agenda-backend/internal/payments"
	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

// LivenessMessage is the body of GET /.
const LivenessMessage = "Backend online 🚀"

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CheckoutHandler    *payments.CheckoutHandler
	WebhookHandler     *payments.WebhookHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", liveness)
	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.CheckoutHandler != nil {
		r.Post("/create_preference", cfg.CheckoutHandler.CreatePreference)
	}
	if cfg.WebhookHandler != nil {
		r.Post("/webhook", cfg.WebhookHandler.Handle)
	}

	return r
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(LivenessMessage))
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
