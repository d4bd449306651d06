// Package cardval implements the pure card-format checks: vendor pattern
// matching, the Luhn checksum and the vendor-specific CVV length rule.
package cardval

import "regexp"

// Vendor patterns are tried in this order; the first match wins.
var vendors = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"visa", regexp.MustCompile(`^4[0-9]{12}(?:[0-9]{3})?$`)},
	{"mastercard", regexp.MustCompile(`^5[1-5][0-9]{14}$|^2(?:2(?:2[1-9]|[3-9][0-9])|[3-6][0-9][0-9]|7(?:[01][0-9]|20))[0-9]{12}$`)},
	{"amex", regexp.MustCompile(`^3[47][0-9]{13}$`)},
	{"discover", regexp.MustCompile(`^(?:65[4-9][0-9]{13}|64[4-9][0-9]{13}|6011[0-9]{12}|622(?:12[6-9]|1[3-9][0-9]|[2-8][0-9][0-9]|9[01][0-9]|92[0-5])[0-9]{10})$`)},
	{"diners_club", regexp.MustCompile(`^3(?:0[0-5]|[68][0-9])[0-9]{11}$`)},
	{"jcb", regexp.MustCompile(`^(?:2131|1800|35[0-9]{3})[0-9]{11}$`)},
}

var nonDigits = regexp.MustCompile(`\D`)

// Normalize strips every non-digit character from a card number.
func Normalize(cardNumber string) string {
	return nonDigits.ReplaceAllString(cardNumber, "")
}

// Vendor returns the card network whose format the number matches, or
// ok=false when no pattern matches.
func Vendor(cardNumber string) (vendor string, ok bool) {
	digits := Normalize(cardNumber)
	for _, v := range vendors {
		if v.pattern.MatchString(digits) {
			return v.name, true
		}
	}
	return "", false
}

// ValidLuhn reports whether the number's last digit satisfies the Luhn
// checksum. Digits are processed right to left, doubling every second digit
// (parity fixed by the total digit count) and subtracting 9 from doubled
// values above 9; the number is valid when the digit sum divides by 10.
func ValidLuhn(cardNumber string) bool {
	digits := Normalize(cardNumber)
	sum := 0
	parity := len(digits) % 2
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if (i+1)%2 != parity {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}

// ValidCVV reports whether the CVV length is right for the card's vendor:
// amex cards take a 4-digit code, every other known vendor a 3-digit one.
// A number with no resolvable vendor never passes.
func ValidCVV(cardNumber, cvv string) bool {
	vendor, ok := Vendor(cardNumber)
	if !ok {
		return false
	}
	if vendor == "amex" {
		return len(cvv) == 4
	}
	return len(cvv) == 3
}

// Result carries the outcome of a full card format check.
type Result struct {
	Valid  bool
	Vendor string
	Luhn   bool
	CVV    bool
}

// ValidateCard runs the vendor, Luhn and CVV checks together; any failing
// sub-check fails the card.
func ValidateCard(cardNumber, cvv string) Result {
	vendor, ok := Vendor(cardNumber)

	result := Result{
		Vendor: vendor,
		Luhn:   ValidLuhn(cardNumber),
		CVV:    ValidCVV(cardNumber, cvv),
	}
	result.Valid = ok && result.Luhn && result.CVV

	return result
}
