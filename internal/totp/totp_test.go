package totp

import (
	"testing"
	"time"
)

// rfcSecret is the RFC 6238 test secret "12345678901234567890" in base32.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestCodeAtRFCVectors(t *testing.T) {
	// Appendix B of RFC 6238 (SHA-1 rows, 8 digits)
	tests := []struct {
		unix int64
		want string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}
	for _, tt := range tests {
		got, err := CodeAt(rfcSecret, 8, 30, time.Unix(tt.unix, 0))
		if err != nil {
			t.Fatalf("CodeAt(t=%d): %v", tt.unix, err)
		}
		if got != tt.want {
			t.Errorf("CodeAt(t=%d) = %s, want %s", tt.unix, got, tt.want)
		}
	}
}

func TestCodeAtSixDigits(t *testing.T) {
	// Six-digit codes are the trailing digits of the eight-digit values
	got, err := CodeAt(rfcSecret, 6, 30, time.Unix(59, 0))
	if err != nil {
		t.Fatalf("CodeAt: %v", err)
	}
	if got != "287082" {
		t.Errorf("CodeAt = %s, want 287082", got)
	}
}

func TestCodeAtDefaults(t *testing.T) {
	got, err := CodeAt(rfcSecret, 0, 0, time.Unix(59, 0))
	if err != nil {
		t.Fatalf("CodeAt: %v", err)
	}
	if len(got) != 6 {
		t.Errorf("CodeAt with zero digits produced %q, want 6 digits", got)
	}
	if got != "287082" {
		t.Errorf("CodeAt defaults = %s, want 287082", got)
	}
}

func TestCodeAtPreservesLeadingZeros(t *testing.T) {
	got, err := CodeAt(rfcSecret, 8, 30, time.Unix(1111111109, 0))
	if err != nil {
		t.Fatalf("CodeAt: %v", err)
	}
	if got != "07081804" {
		t.Errorf("CodeAt = %s, want leading zero preserved in 07081804", got)
	}
}

func TestSecretNormalization(t *testing.T) {
	variants := []string{
		rfcSecret,
		"gezdgnbvgy3tqojqgezdgnbvgy3tqojq",
		"GEZD GNBV GY3T QOJQ GEZD GNBV GY3T QOJQ",
		"GEZD-GNBV-GY3T-QOJQ-GEZD-GNBV-GY3T-QOJQ",
		rfcSecret + "======",
	}
	want, err := CodeAt(rfcSecret, 6, 30, time.Unix(59, 0))
	if err != nil {
		t.Fatalf("CodeAt: %v", err)
	}
	for _, secret := range variants {
		got, err := CodeAt(secret, 6, 30, time.Unix(59, 0))
		if err != nil {
			t.Errorf("CodeAt(%q): %v", secret, err)
			continue
		}
		if got != want {
			t.Errorf("CodeAt(%q) = %s, want %s", secret, got, want)
		}
	}
}

func TestInvalidSecrets(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"only padding", "===="},
		{"not base32", "1nv@lid!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CodeAt(tt.secret, 6, 30, time.Unix(59, 0)); err == nil {
				t.Errorf("CodeAt(%q) returned nil error", tt.secret)
			}
			if err := Validate(tt.secret); err == nil {
				t.Errorf("Validate(%q) returned nil error", tt.secret)
			}
		})
	}
}

func TestTooManyDigits(t *testing.T) {
	if _, err := CodeAt(rfcSecret, 11, 30, time.Unix(59, 0)); err == nil {
		t.Error("CodeAt with 11 digits returned nil error")
	}
}

func TestNowRemaining(t *testing.T) {
	_, remaining, err := Now(rfcSecret, 6, 30)
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if remaining < 1 || remaining > 30 {
		t.Errorf("secondsRemaining = %d, want within (0, 30]", remaining)
	}
}
