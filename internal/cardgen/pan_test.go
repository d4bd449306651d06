package cardgen

import (
	"strings"
	"testing"
)

func TestGeneratePAN(t *testing.T) {
	pan, err := GeneratePAN("414012", "")
	if err != nil {
		t.Fatalf("GeneratePAN: %v", err)
	}
	if len(pan) != 16 {
		t.Fatalf("pan length = %d; want 16", len(pan))
	}
	if !strings.HasPrefix(pan, "414012") {
		t.Fatalf("pan %s does not start with bin", pan)
	}
	if !validLuhn(pan) {
		t.Fatalf("pan %s fails the Luhn check", pan)
	}
}

func TestGeneratePANSequence(t *testing.T) {
	pan, err := GeneratePAN("414012", "000042")
	if err != nil {
		t.Fatalf("GeneratePAN: %v", err)
	}
	// the sequence sits right before the check digit
	if got := pan[len(pan)-7 : len(pan)-1]; got != "000042" {
		t.Fatalf("sequence digits = %s; want 000042", got)
	}
	if !validLuhn(pan) {
		t.Fatalf("pan %s fails the Luhn check", pan)
	}
}

func TestGeneratePANErrors(t *testing.T) {
	tests := []struct {
		name     string
		bin      string
		sequence string
	}{
		{"bin too short", "41401", ""},
		{"bin not numeric", "41401a", ""},
		{"sequence not numeric", "414012", "12ab"},
		{"sequence too long", "414012", "1234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GeneratePAN(tt.bin, tt.sequence); err == nil {
				t.Errorf("GeneratePAN(%q, %q) expected error", tt.bin, tt.sequence)
			}
		})
	}
}

func TestRandomDigits(t *testing.T) {
	digits, err := RandomDigits(20)
	if err != nil {
		t.Fatalf("RandomDigits: %v", err)
	}
	if len(digits) != 20 {
		t.Fatalf("length = %d; want 20", len(digits))
	}
	if !IsDigits(digits) {
		t.Fatalf("RandomDigits returned non-digits: %s", digits)
	}

	empty, err := RandomDigits(0)
	if err != nil || empty != "" {
		t.Fatalf("RandomDigits(0) = %q, %v; want empty", empty, err)
	}
}

func TestNormalizePAN(t *testing.T) {
	if got := NormalizePAN("4140-1200 0000.0001"); got != "4140120000000001" {
		t.Fatalf("NormalizePAN = %s", got)
	}
}

func TestLastN(t *testing.T) {
	if got := LastN("4140120000000001", 4); got != "0001" {
		t.Fatalf("LastN = %s; want 0001", got)
	}
	if got := LastN("42", 4); got != "42" {
		t.Fatalf("LastN short = %s; want 42", got)
	}
	if got := LastN("4140120000000001", 0); got != "" {
		t.Fatalf("LastN(s, 0) = %q; want empty", got)
	}
	if got := LastN("4140120000000001", -1); got != "" {
		t.Fatalf("LastN(s, -1) = %q; want empty", got)
	}
}

func validLuhn(pan string) bool {
	sum, dbl := 0, false
	for i := len(pan) - 1; i >= 0; i-- {
		d := int(pan[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return sum%10 == 0
}
