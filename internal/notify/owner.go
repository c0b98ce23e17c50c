package notify

import (
	"context"
	"fmt"
	"strings"
)

// PaymentSummary describes an approved payment for the owner.
type PaymentSummary struct {
	PaymentID string
	Name      string
	Contact   string
	Plan      string
	Amount    float64
	DateISO   string
	Time      string
}

// OwnerNotifier emails the practitioner about approved payments. A nil
// *OwnerNotifier is valid and does nothing.
type OwnerNotifier struct {
	email      EmailSender
	ownerEmail string
}

// NewOwnerNotifier returns nil unless both a sender and an address exist.
func NewOwnerNotifier(email EmailSender, ownerEmail string) *OwnerNotifier {
	ownerEmail = strings.TrimSpace(ownerEmail)
	if email == nil || ownerEmail == "" {
		return nil
	}
	return &OwnerNotifier{email: email, ownerEmail: ownerEmail}
}

func (n *OwnerNotifier) Enabled() bool { return n != nil }

// PaymentConfirmed sends the owner a summary of the booking.
func (n *OwnerNotifier) PaymentConfirmed(ctx context.Context, s PaymentSummary) error {
	if n == nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Pagamento confirmado (Mercado Pago %s).\n\n", s.PaymentID)
	fmt.Fprintf(&b, "Cliente: %s\n", s.Name)
	if s.Contact != "" {
		fmt.Fprintf(&b, "WhatsApp: %s\n", s.Contact)
	}
	fmt.Fprintf(&b, "Plano: %s\n", s.Plan)
	fmt.Fprintf(&b, "Valor: R$ %.2f\n", s.Amount)
	if s.DateISO != "" {
		fmt.Fprintf(&b, "Sessão: %s %s\n", s.DateISO, s.Time)
	}

	return n.email.Send(ctx, EmailMessage{
		To:      n.ownerEmail,
		Subject: "Pagamento confirmado - " + s.Name,
		Body:    b.String(),
	})
}
