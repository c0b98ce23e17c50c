package bookings

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BookingRequest is what the site's booking form posts.
type BookingRequest struct {
	Plan     string `json:"plan"`
	Name     string `json:"name"`
	WhatsApp string `json:"whatsapp"`
	DateISO  string `json:"dateISO"`
	Time     string `json:"time"`
	Coupon   string `json:"coupon,omitempty"`
}

// PricedBooking is a booking request with its computed amount. Its JSON form is
// the external reference attached to the checkout preference.
type PricedBooking struct {
	Name     string  `json:"name"`
	WhatsApp string  `json:"whatsapp"`
	Plan     string  `json:"plan"`
	DateISO  string  `json:"dateISO"`
	Time     string  `json:"time"`
	Amount   float64 `json:"amount"`
	Coupon   string  `json:"coupon,omitempty"`
}

// ValidationError lists the required booking fields that were missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Normalize trims surrounding whitespace from every field.
func (r BookingRequest) Normalize() BookingRequest {
	return BookingRequest{
		Plan:     strings.TrimSpace(r.Plan),
		Name:     strings.TrimSpace(r.Name),
		WhatsApp: strings.TrimSpace(r.WhatsApp),
		DateISO:  strings.TrimSpace(r.DateISO),
		Time:     strings.TrimSpace(r.Time),
		Coupon:   strings.TrimSpace(r.Coupon),
	}
}

// Validate returns a *ValidationError when any field other than the coupon is empty.
func (r BookingRequest) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"plan", r.Plan},
		{"name", r.Name},
		{"whatsapp", r.WhatsApp},
		{"dateISO", r.DateISO},
		{"time", r.Time},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Priced attaches amount to the request.
func (r BookingRequest) Priced(amount float64) PricedBooking {
	return PricedBooking{
		Name:     r.Name,
		WhatsApp: r.WhatsApp,
		Plan:     r.Plan,
		DateISO:  r.DateISO,
		Time:     r.Time,
		Amount:   amount,
		Coupon:   r.Coupon,
	}
}

// HasSchedule reports whether both the date and the time are known.
func (b PricedBooking) HasSchedule() bool {
	return strings.TrimSpace(b.DateISO) != "" && strings.TrimSpace(b.Time) != ""
}

// HasContact reports whether the customer can be messaged.
func (b PricedBooking) HasContact() bool {
	return strings.TrimSpace(b.WhatsApp) != ""
}

// ExternalReference serializes the booking for the payment provider.
func (b PricedBooking) ExternalReference() (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("bookings: encode external reference: %w", err)
	}
	return string(raw), nil
}

// ParseExternalReference decodes a reference produced by ExternalReference.
// A reference that decodes to an object without a name is rejected since it
// cannot have come from a booking.
func ParseExternalReference(ref string) (*PricedBooking, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("bookings: empty external reference")
	}
	var b PricedBooking
	if err := json.Unmarshal([]byte(ref), &b); err != nil {
		return nil, fmt.Errorf("bookings: decode external reference: %w", err)
	}
	if strings.TrimSpace(b.Name) == "" {
		return nil, fmt.Errorf("bookings: external reference has no booking")
	}
	return &b, nil
}
