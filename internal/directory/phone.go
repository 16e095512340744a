package directory

import "strings"

// CountryCode is the dialling prefix for numbers held in the directory.
const CountryCode = "91"

const nationalNumberLength = 10

// NormalizePhone strips every non-digit character from phone.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NationalNumber returns the phone without its country code. Inputs that do
// not carry the prefix are returned as normalized digits.
func NationalNumber(phone string) string {
	digits := NormalizePhone(phone)
	if len(digits) == nationalNumberLength+len(CountryCode) && strings.HasPrefix(digits, CountryCode) {
		return digits[len(CountryCode):]
	}
	return digits
}

// lookupCandidates lists the keys a phone may be stored under: the bare
// national number and the country-code-prefixed variant.
func lookupCandidates(phone string) []string {
	national := NationalNumber(phone)
	if national == "" {
		return nil
	}
	return []string{national, CountryCode + national}
}

// MaskPhone renders a phone for display keeping the country code and the last
// four digits, e.g. "+91 ******3210".
func MaskPhone(phone string) string {
	national := NationalNumber(phone)
	last := national
	if len(national) > 4 {
		last = national[len(national)-4:]
	}
	return "+" + CountryCode + " " + strings.Repeat("*", 6) + last
}
