// Package phone normalizes Saudi mobile numbers to a canonical form.
package phone

import "strings"

// CountryCode is the fixed dialing prefix prepended to normalized numbers.
const CountryCode = "966"

const localDigits = 9

// Normalize converts raw input to the canonical +966XXXXXXXXX form.
// Separators (spaces, hyphens) are stripped, then a leading "+" or "0",
// and the last 9 characters must be digits. ok is false for anything
// malformed; callers must check it.
func Normalize(raw string) (normalized string, ok bool) {
	s := stripSeparators(raw)
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimLeft(s, "0")
	if len(s) < localDigits {
		return "", false
	}
	local := s[len(s)-localDigits:]
	for i := 0; i < len(local); i++ {
		if local[i] < '0' || local[i] > '9' {
			return "", false
		}
	}
	// Whatever precedes the local part must be the country code or nothing.
	if prefix := s[:len(s)-localDigits]; prefix != "" && prefix != CountryCode {
		return "", false
	}
	return "+" + CountryCode + local, true
}

// NormalizeForSMS is Normalize without the leading "+", the form SMS
// gateways expect.
func NormalizeForSMS(raw string) (string, bool) {
	n, ok := Normalize(raw)
	if !ok {
		return "", false
	}
	return n[1:], true
}

// IsValid reports whether raw normalizes to a canonical number.
func IsValid(raw string) bool {
	_, ok := Normalize(raw)
	return ok
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\t', '(', ')':
			return -1
		}
		return r
	}, s)
}
