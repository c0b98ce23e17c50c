package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/luciene-trg/agenda-backend/internal/calendar"
	appconfig "github.com/luciene-trg/agenda-backend/internal/config"
	"github.com/luciene-trg/agenda-backend/internal/messaging"
	"github.com/luciene-trg/agenda-backend/internal/notify"
	"github.com/luciene-trg/agenda-backend/internal/payments"
	"github.com/luciene-trg/agenda-backend/internal/pricing"
	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

// BuildGateway returns the Mercado Pago client, or a disabled gateway when no
// access token is set.
func BuildGateway(cfg *appconfig.Config, logger *logging.Logger) payments.Gateway {
	logger = orDefault(logger)
	if cfg == nil || strings.TrimSpace(cfg.MercadoAccessToken) == "" {
		logger.Warn("MERCADO_ACCESS_TOKEN not set; payments disabled")
		return payments.DisabledGateway{}
	}
	return payments.NewMercadoPagoClient(cfg.MercadoAccessToken, logger.Component("mercadopago")).
		WithBaseURL(cfg.MercadoBaseURL)
}

// LoadCoupons parses COUPONS. Invalid entries are dropped with a warning.
func LoadCoupons(cfg *appconfig.Config, logger *logging.Logger) pricing.Coupons {
	logger = orDefault(logger)
	if cfg == nil {
		return pricing.Coupons{}
	}
	coupons, err := pricing.ParseCoupons(cfg.CouponsJSON)
	if err != nil {
		logger.Warn("coupon table partially ignored", "error", err)
	}
	if coupons == nil {
		coupons = pricing.Coupons{}
	}
	logger.Info("coupons loaded", "count", len(coupons))
	return coupons
}

// LoadLocation resolves CALENDAR_TIMEZONE, falling back to UTC.
func LoadLocation(cfg *appconfig.Config, logger *logging.Logger) *time.Location {
	logger = orDefault(logger)
	name := "UTC"
	if cfg != nil && strings.TrimSpace(cfg.CalendarTimezone) != "" {
		name = strings.TrimSpace(cfg.CalendarTimezone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("unknown calendar timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// BuildCalendar returns the Google Calendar scheduler, or a disabled one when
// no service account is configured or it cannot be parsed.
func BuildCalendar(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) calendar.Scheduler {
	logger = orDefault(logger)
	if cfg == nil || strings.TrimSpace(cfg.GoogleServiceAccount) == "" {
		logger.Warn("GOOGLE_SERVICE_ACCOUNT not set; calendar disabled")
		return calendar.Disabled{}
	}
	gc, err := calendar.NewGoogleCalendar(ctx, []byte(cfg.GoogleServiceAccount), cfg.CalendarID, logger.Component("calendar"))
	if err != nil {
		logger.Warn("calendar disabled", "error", err)
		return calendar.Disabled{}
	}
	if err := gc.Authorize(ctx); err != nil {
		logger.Warn("calendar authorization failed at startup", "error", err)
	}
	return gc
}

// BuildMessenger returns the Twilio WhatsApp sender when credentials exist.
func BuildMessenger(cfg *appconfig.Config, logger *logging.Logger) messaging.Sender {
	logger = orDefault(logger)
	if cfg == nil || cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		logger.Warn("twilio credentials not set; whatsapp disabled")
		return messaging.Disabled{}
	}
	if cfg.TwilioWhatsAppFrom == "" {
		logger.Warn("TWILIO_WHATSAPP_FROM not set; whatsapp disabled")
		return messaging.Disabled{}
	}
	return messaging.NewTwilioWhatsAppSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, logger.Component("twilio"))
}

// BuildOwnerNotifier returns nil unless SendGrid and OWNER_EMAIL are set.
func BuildOwnerNotifier(cfg *appconfig.Config, logger *logging.Logger) *notify.OwnerNotifier {
	logger = orDefault(logger)
	if cfg == nil {
		return nil
	}
	sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger.Component("sendgrid"))
	if sender == nil {
		return nil
	}
	return notify.NewOwnerNotifier(sender, cfg.OwnerEmail)
}

func orDefault(logger *logging.Logger) *logging.Logger {
	if logger == nil {
		return logging.Default()
	}
	return logger
}
