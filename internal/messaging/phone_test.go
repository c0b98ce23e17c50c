package messaging

import "testing"

func TestWhatsAppAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+5583999999999", "whatsapp:+5583999999999"},
		{"5583999999999", "whatsapp:+5583999999999"},
		{"+55 (83) 99999-9999", "whatsapp:+5583999999999"},
		{"whatsapp:+14155238886", "whatsapp:+14155238886"},
		{"", ""},
		{"   ", ""},
		{"no digits", ""},
	}
	for _, tt := range tests {
		if got := WhatsAppAddress(tt.in); got != tt.want {
			t.Errorf("WhatsAppAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeE164(t *testing.T) {
	if got := NormalizeE164(" 83 98714-9132 "); got != "+83987149132" {
		t.Fatalf("unexpected normalization %q", got)
	}
	if got := NormalizeE164("abc"); got != "" {
		t.Fatalf("expected empty for digitless input, got %q", got)
	}
}
