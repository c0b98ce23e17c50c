package messaging

import "strings"

const whatsAppScheme = "whatsapp:"

// NormalizeE164 ensures the value begins with + and only contains digits afterward.
func NormalizeE164(value string) string {
	digits := digitsOnly(value)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// WhatsAppAddress converts a contact handle into Twilio's WhatsApp addressing
// scheme, "whatsapp:+<digits>". A handle already carrying the scheme maps to
// itself. An empty or digitless handle yields "".
func WhatsAppAddress(handle string) string {
	e164 := NormalizeE164(handle)
	if e164 == "" {
		return ""
	}
	return whatsAppScheme + e164
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
