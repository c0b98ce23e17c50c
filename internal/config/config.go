package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Mercado Pago
	MercadoAccessToken     string
	MercadoBaseURL         string
	MercadoNotificationURL string
	MercadoSuccessURL      string

	// Google Calendar
	GoogleServiceAccount string
	CalendarID           string
	CalendarTimezone     string

	// Twilio WhatsApp
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	OwnerWhatsApp      string

	// CouponsJSON is a JSON object of code -> discount fraction, e.g. {"LUCY10":0.1}.
	CouponsJSON string

	// Pending checkout store
	BookingStore  string
	BookingTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	DatabaseURL   string

	// SendGrid owner email
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OwnerEmail        string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "3000"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		MercadoAccessToken:     getEnv("MERCADO_ACCESS_TOKEN", ""),
		MercadoBaseURL:         getEnv("MERCADO_BASE_URL", ""),
		MercadoNotificationURL: getEnv("MERCADO_NOTIFICATION_URL", ""),
		MercadoSuccessURL:      getEnv("MERCADO_SUCCESS_URL", ""),

		GoogleServiceAccount: getEnv("GOOGLE_SERVICE_ACCOUNT", ""),
		CalendarID:           getEnv("CALENDAR_ID", "primary"),
		CalendarTimezone:     getEnv("CALENDAR_TIMEZONE", "America/Sao_Paulo"),

		TwilioAccountSID:   getEnv("TWILIO_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),
		OwnerWhatsApp:      getEnv("OWNER_WHATSAPP", ""),

		CouponsJSON: getEnv("COUPONS", ""),

		BookingStore:  strings.ToLower(strings.TrimSpace(getEnv("BOOKING_STORE", "auto"))),
		BookingTTL:    getEnvAsDuration("BOOKING_TTL", 30*24*time.Hour),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Agenda TRG"),
		OwnerEmail:        getEnv("OWNER_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
