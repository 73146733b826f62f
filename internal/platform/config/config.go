package config

import (
	"os"

	"matchkey/pkg/pii"
)

// Settings captures process-level configuration so main stays lean.
type Settings struct {
	// DefaultCountryCode is prepended to ten-digit phone numbers.
	DefaultCountryCode string
	// HashAddressFields digests city/state/zip_code/country instead of
	// emitting them as normalized plain text.
	HashAddressFields bool
	// Debug enables debug-level logging.
	Debug bool
}

// FromEnv builds Settings from environment variables.
func FromEnv() Settings {
	countryCode := os.Getenv("MATCHKEY_DEFAULT_COUNTRY_CODE")
	if countryCode == "" {
		countryCode = pii.DefaultCountryCode
	}

	return Settings{
		DefaultCountryCode: countryCode,
		HashAddressFields:  os.Getenv("MATCHKEY_HASH_ADDRESS_FIELDS") == "true",
		Debug:              os.Getenv("MATCHKEY_DEBUG") == "true",
	}
}

// PII maps process settings onto the pii service configuration.
func (s Settings) PII() pii.Config {
	return pii.Config{
		DefaultCountryCode: s.DefaultCountryCode,
		HashAddressFields:  s.HashAddressFields,
	}
}
