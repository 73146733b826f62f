package pii

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"matchkey/pkg/digest"
	"matchkey/pkg/pii/metrics"
)

// RawRecord is an open mapping from field name to raw value. Values are
// strings except for the nested traits map; no field is required.
type RawRecord map[string]any

// NormalizedRecord mirrors RawRecord. Each value is a digest.Digest, a
// normalized plain string, or a passthrough value of its original shape.
// A field rejected by normalization is simply absent: omission is the only
// rejection signal, there is no per-field error code.
type NormalizedRecord map[string]any

// Config controls the orchestrator.
type Config struct {
	// DefaultCountryCode is prepended to ten-digit phone numbers when no
	// per-call code is given. Defaults to "1".
	DefaultCountryCode string
	// HashAddressFields controls whether city/state/zip_code/country are
	// digested or left as normalized plain text.
	HashAddressFields bool
}

// Service applies the normalization rules and routes fields to the digest
// facility. Safe for concurrent use; it holds no mutable state.
type Service struct {
	cfg     Config
	hasher  digest.Hasher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

// WithHasher swaps the digest facility, e.g. for a KMS-backed backend or a
// failing fake in tests.
func WithHasher(h digest.Hasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New builds a Service. Zero-value Config gets the documented defaults.
func New(cfg Config, opts ...Option) *Service {
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = DefaultCountryCode
	}

	svc := &Service{
		cfg:    cfg,
		hasher: digest.SHA256(),
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// HashEmail normalizes then digests an email address. ok=false reports a
// validation rejection; a non-nil error reports a digest facility failure.
// The same contract applies to all Hash methods below.
func (s *Service) HashEmail(ctx context.Context, raw string) (digest.Digest, bool, error) {
	return s.hashField(ctx, FieldEmail, raw)
}

// HashPhone normalizes then digests a phone number. countryCode overrides
// Config.DefaultCountryCode for this call; pass "" to use the default.
func (s *Service) HashPhone(ctx context.Context, raw string, countryCode string) (digest.Digest, bool, error) {
	if countryCode == "" {
		countryCode = s.cfg.DefaultCountryCode
	}
	v, ok := NormalizePhone(raw, countryCode)
	if !ok {
		s.reject(FieldPhone)
		return "", false, nil
	}
	d, err := s.digest(ctx, FieldPhone, v)
	return d, err == nil, err
}

// HashName normalizes then digests a first or last name.
func (s *Service) HashName(ctx context.Context, raw string) (digest.Digest, bool, error) {
	return s.hashField(ctx, FieldFirstName, raw)
}

func (s *Service) HashGender(ctx context.Context, raw string) (digest.Digest, bool, error) {
	return s.hashField(ctx, FieldGender, raw)
}

func (s *Service) HashDateOfBirth(ctx context.Context, raw string) (digest.Digest, bool, error) {
	return s.hashField(ctx, FieldDateOfBirth, raw)
}

// HashExternalID trims and digests an external identifier. Unlike the other
// always-hash fields it applies no lowercasing and no format check; the
// identifier is opaque and case may be significant to its issuer.
func (s *Service) HashExternalID(ctx context.Context, raw string) (digest.Digest, bool, error) {
	d, err := s.digest(ctx, FieldExternalID, strings.TrimSpace(raw))
	return d, err == nil, err
}

func (s *Service) HashCity(ctx context.Context, raw string) (digest.Digest, bool, error) {
	return s.hashField(ctx, FieldCity, raw)
}

func (s *Service) HashState(ctx context.Context, raw string) (digest.Digest, bool, error) {
	return s.hashField(ctx, FieldState, raw)
}

func (s *Service) HashZip(ctx context.Context, raw string) (digest.Digest, bool, error) {
	return s.hashField(ctx, FieldZip, raw)
}

func (s *Service) HashCountry(ctx context.Context, raw string) (digest.Digest, bool, error) {
	return s.hashField(ctx, FieldCountry, raw)
}

// Normalize applies the routing table to every recognized field present in
// raw and returns the record to send to the platform. Per-field validation
// rejections drop the field and continue; a digest facility failure aborts
// the call with an error, since it signals a broken environment rather than
// bad input. Field names outside the routing table are dropped.
func (s *Service) Normalize(ctx context.Context, raw RawRecord) (NormalizedRecord, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveNormalize(time.Now())
	}

	out := make(NormalizedRecord, len(raw))
	for field, value := range raw {
		class, known := ClassOf(field)
		if !known || !present(value) {
			continue
		}

		if class == Passthrough {
			out[field] = value
			continue
		}

		str, isString := value.(string)
		if !isString {
			s.reject(field)
			continue
		}

		normalized, ok := s.normalizeField(field, str)
		if !ok {
			s.reject(field)
			continue
		}

		if class == AlwaysHash || s.cfg.HashAddressFields {
			d, err := s.digest(ctx, field, normalized)
			if err != nil {
				return nil, err
			}
			out[field] = d
			continue
		}
		out[field] = normalized
	}

	return out, nil
}

// NormalizeAll processes a batch of independent records with a bounded
// fan-out. Output order matches input order. The first digest facility
// failure cancels the remaining work.
func (s *Service) NormalizeAll(ctx context.Context, records []RawRecord) ([]NormalizedRecord, error) {
	out := make([]NormalizedRecord, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchWorkers)
	for i, record := range records {
		g.Go(func() error {
			normalized, err := s.Normalize(ctx, record)
			if err != nil {
				return err
			}
			out[i] = normalized
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

const maxBatchWorkers = 8

// normalizeField dispatches to the pure normalizer for a field name.
// external_id deliberately bypasses the normalize-then-hash pattern: it is
// trimmed only.
func (s *Service) normalizeField(field, value string) (string, bool) {
	switch field {
	case FieldEmail:
		return NormalizeEmail(value)
	case FieldPhone:
		return NormalizePhone(value, s.cfg.DefaultCountryCode)
	case FieldFirstName, FieldLastName:
		return NormalizeName(value)
	case FieldGender:
		return NormalizeGender(value)
	case FieldDateOfBirth:
		return NormalizeDateOfBirth(value)
	case FieldExternalID:
		return strings.TrimSpace(value), true
	case FieldCity:
		return NormalizeCity(value)
	case FieldState:
		return NormalizeState(value)
	case FieldZip:
		return NormalizeZip(value)
	case FieldCountry:
		return NormalizeCountry(value)
	}
	return "", false
}

// hashField is the normalize-then-digest composition shared by the Hash
// methods. A rejection short-circuits without touching the hasher.
func (s *Service) hashField(ctx context.Context, field, raw string) (digest.Digest, bool, error) {
	v, ok := s.normalizeField(field, raw)
	if !ok {
		s.reject(field)
		return "", false, nil
	}
	d, err := s.digest(ctx, field, v)
	return d, err == nil, err
}

func (s *Service) digest(ctx context.Context, field, value string) (digest.Digest, error) {
	d, err := s.hasher.Digest(ctx, value)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", field, err)
	}
	if s.metrics != nil {
		s.metrics.IncrementFieldHashed(field)
	}
	return d, nil
}

func (s *Service) reject(field string) {
	s.logger.Debug("field rejected by normalization", "field", field)
	if s.metrics != nil {
		s.metrics.IncrementFieldRejected(field)
	}
}

// present reports whether a raw value counts as supplied: nil and the empty
// string are treated the same as a missing key.
func present(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		return s != ""
	}
	return true
}
