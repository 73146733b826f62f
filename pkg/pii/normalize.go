// Package pii normalizes personally identifiable match-key fields into the
// canonical shapes ad-platform conversion APIs expect, and hashes them for
// safe transmission.
//
// Every normalizer is a pure function returning (value, ok). ok=false is the
// only rejection signal: malformed input is never an error, it simply yields
// no value. Each normalizer is idempotent on its own successful output.
package pii

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCountryCode is applied by NormalizePhone when no country code is
// supplied and a ten-digit national number needs a prefix.
const DefaultCountryCode = "1"

// NormalizeEmail lowercases and trims an email address. Rejects values with
// no "@" or shorter than five characters; anything stricter is left to the
// receiving platform.
func NormalizeEmail(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if len(v) < 5 || !strings.Contains(v, "@") {
		return "", false
	}
	return v, true
}

// NormalizePhone canonicalizes a phone number to E.164-style form: a leading
// "+" followed by digits only. Formatting characters are stripped; a number
// with exactly ten digits is assumed national and gets countryCode prepended
// (empty countryCode means DefaultCountryCode). Fewer than ten digits is
// rejected. Already-prefixed input round-trips unchanged.
func NormalizePhone(raw string, countryCode string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}

	digits := b.String()
	if len(digits) < 10 {
		return "", false
	}
	if len(digits) == 10 {
		if countryCode == "" {
			countryCode = DefaultCountryCode
		}
		digits = countryCode + digits
	}
	return "+" + digits, true
}

// NormalizeName lowercases a first or last name, trims it, and collapses any
// run of whitespace to a single space. Rejects names that are empty once
// trimmed.
func NormalizeName(raw string) (string, bool) {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		return "", false
	}
	return strings.Join(fields, " "), true
}

// NormalizeGender maps the accepted spellings to the single-letter codes the
// conversion APIs take: m/male -> "m", f/female -> "f". Everything else is
// rejected rather than guessed at.
func NormalizeGender(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "male":
		return "m", true
	case "f", "female":
		return "f", true
	}
	return "", false
}

// NormalizeDateOfBirth strips hyphens, slashes, and periods and requires
// exactly eight decimal digits. This is a format check only: it does not
// validate a real calendar date and does not reorder fields, so a US-style
// MM/DD/YYYY input passes through as an 8-digit string in that order.
func NormalizeDateOfBirth(raw string) (string, bool) {
	v := strings.NewReplacer("-", "", "/", "", ".", "").Replace(raw)
	if len(v) != 8 {
		return "", false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return v, true
}

// NormalizeCity lowercases and trims a city name; rejects empty.
func NormalizeCity(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	return v, true
}

// NormalizeState lowercases and trims a state or region; rejects empty.
func NormalizeState(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	return v, true
}

// NormalizeZip lowercases a postal code and removes all whitespace, inner
// included, so "SW1A 1AA" and "sw1a1aa" hash identically. Rejects empty.
func NormalizeZip(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	v := b.String()
	if v == "" {
		return "", false
	}
	return v, true
}

// NormalizeCountry lowercases and trims a country value and requires the
// two-letter form; anything that is not exactly two characters after
// trimming is rejected.
func NormalizeCountry(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if utf8.RuneCountInString(v) != 2 {
		return "", false
	}
	return v, true
}
