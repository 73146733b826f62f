package pii

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"matchkey/pkg/digest"
)

// failingHasher simulates a broken digest facility.
type failingHasher struct{ err error }

func (f failingHasher) Digest(context.Context, string) (digest.Digest, error) {
	return "", f.err
}

// ServiceSuite tests the field-hash compositions and the batch orchestrator.
type ServiceSuite struct {
	suite.Suite
	svc *Service
}

func (s *ServiceSuite) SetupTest() {
	s.svc = New(Config{})
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestHashCompositions() {
	ctx := context.Background()

	s.Run("email normalizes before hashing", func() {
		d, ok, err := s.svc.HashEmail(ctx, " JOHN@EXAMPLE.COM ")
		s.NoError(err)
		s.True(ok)
		s.Equal(digest.Sum("john@example.com"), d)
	})

	s.Run("rejection short-circuits without hashing", func() {
		d, ok, err := s.svc.HashEmail(ctx, "not-an-email")
		s.NoError(err)
		s.False(ok)
		s.Empty(d)
	})

	s.Run("phone uses configured default country code", func() {
		d, ok, err := s.svc.HashPhone(ctx, "5551234567", "")
		s.NoError(err)
		s.True(ok)
		s.Equal(digest.Sum("+15551234567"), d)
	})

	s.Run("phone per-call country code wins", func() {
		d, ok, err := s.svc.HashPhone(ctx, "5551234567", "44")
		s.NoError(err)
		s.True(ok)
		s.Equal(digest.Sum("+445551234567"), d)
	})

	s.Run("external_id is trimmed but case is preserved", func() {
		id := uuid.NewString()
		d, ok, err := s.svc.HashExternalID(ctx, "  ABC-"+id+"  ")
		s.NoError(err)
		s.True(ok)
		s.Equal(digest.Sum("ABC-"+id), d)
		s.NotEqual(digest.Sum("abc-"+id), d)
	})

	s.Run("every successful digest satisfies IsDigest", func() {
		d, ok, err := s.svc.HashName(ctx, "  Mary   Jane ")
		s.NoError(err)
		s.True(ok)
		s.True(digest.IsDigest(string(d)))
	})
}

func (s *ServiceSuite) TestNormalizeAlwaysHashFields() {
	out, err := s.svc.Normalize(context.Background(), RawRecord{
		"email":         "JOHN@EXAMPLE.COM",
		"phone":         "(555) 123-4567",
		"first_name":    " John ",
		"last_name":     "DOE",
		"gender":        "Male",
		"date_of_birth": "1990-01-15",
		"external_id":   "User-42",
	})
	s.Require().NoError(err)

	s.Equal(NormalizedRecord{
		"email":         digest.Sum("john@example.com"),
		"phone":         digest.Sum("+15551234567"),
		"first_name":    digest.Sum("john"),
		"last_name":     digest.Sum("doe"),
		"gender":        digest.Sum("m"),
		"date_of_birth": digest.Sum("19900115"),
		"external_id":   digest.Sum("User-42"),
	}, out)
}

func (s *ServiceSuite) TestNormalizeRejectionYieldsOmission() {
	out, err := s.svc.Normalize(context.Background(), RawRecord{
		"email": "not-an-email",
		"phone": "123",
	})
	s.Require().NoError(err)

	s.NotContains(out, "email")
	s.NotContains(out, "phone")
	s.Empty(out)
}

func (s *ServiceSuite) TestNormalizeNonStringValuesAreRejected() {
	out, err := s.svc.Normalize(context.Background(), RawRecord{
		"email":      42,
		"first_name": []string{"john"},
		"last_name":  "Doe",
	})
	s.Require().NoError(err)

	s.Equal(NormalizedRecord{"last_name": digest.Sum("doe")}, out)
}

func (s *ServiceSuite) TestNormalizeAddressToggle() {
	raw := RawRecord{
		"city":     " New York ",
		"state":    "NY",
		"zip_code": "10 001",
		"country":  "US",
	}

	s.Run("plain text when hashing is off", func() {
		out, err := New(Config{}).Normalize(context.Background(), raw)
		s.Require().NoError(err)
		s.Equal(NormalizedRecord{
			"city":     "new york",
			"state":    "ny",
			"zip_code": "10001",
			"country":  "us",
		}, out)
	})

	s.Run("digests when hashing is on", func() {
		out, err := New(Config{HashAddressFields: true}).Normalize(context.Background(), raw)
		s.Require().NoError(err)
		s.Equal(NormalizedRecord{
			"city":     digest.Sum("new york"),
			"state":    digest.Sum("ny"),
			"zip_code": digest.Sum("10001"),
			"country":  digest.Sum("us"),
		}, out)
	})

	s.Run("address rejection omits regardless of toggle", func() {
		out, err := New(Config{HashAddressFields: true}).Normalize(context.Background(), RawRecord{
			"country": "United States",
		})
		s.Require().NoError(err)
		s.Empty(out)
	})
}

func (s *ServiceSuite) TestNormalizePassthrough() {
	traits := map[string]any{
		"plan":  "pro",
		"flags": []any{"beta", "invited"},
		"depth": map[string]any{"nested": true},
	}
	leadID := uuid.NewString()

	out, err := s.svc.Normalize(context.Background(), RawRecord{
		"ip_address":      "203.0.113.7",
		"user_agent":      "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0",
		"subscription_id": "sub_123",
		"lead_id":         leadID,
		"anonymous_id":    "anon-1",
		"traits":          traits,
	})
	s.Require().NoError(err)

	s.Equal("203.0.113.7", out["ip_address"])
	s.Equal("Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0", out["user_agent"])
	s.Equal("sub_123", out["subscription_id"])
	s.Equal(leadID, out["lead_id"])
	s.Equal("anon-1", out["anonymous_id"])
	s.Equal(traits, out["traits"])
}

func (s *ServiceSuite) TestNormalizeEdgeShapes() {
	ctx := context.Background()

	s.Run("empty record maps to empty record", func() {
		out, err := s.svc.Normalize(ctx, RawRecord{})
		s.Require().NoError(err)
		s.Empty(out)
	})

	s.Run("nil and empty values count as absent", func() {
		out, err := s.svc.Normalize(ctx, RawRecord{
			"email":      "",
			"first_name": nil,
			"ip_address": "",
		})
		s.Require().NoError(err)
		s.Empty(out)
	})

	s.Run("unrecognized field names are dropped", func() {
		out, err := s.svc.Normalize(ctx, RawRecord{
			"ssn":   "000-00-0000",
			"email": "john@example.com",
		})
		s.Require().NoError(err)
		s.Equal(NormalizedRecord{"email": digest.Sum("john@example.com")}, out)
	})
}

// TestNormalizeHasherFailurePropagates pins the boundary between validation
// rejection (omission) and digest facility failure (hard error).
func (s *ServiceSuite) TestNormalizeHasherFailurePropagates() {
	broken := errors.New("hsm unavailable")
	svc := New(Config{}, WithHasher(failingHasher{err: broken}))

	out, err := svc.Normalize(context.Background(), RawRecord{"email": "john@example.com"})
	s.Nil(out)
	s.ErrorIs(err, broken)

	d, ok, err := svc.HashEmail(context.Background(), "john@example.com")
	s.Empty(d)
	s.False(ok)
	s.ErrorIs(err, broken)

	// A validation rejection short-circuits before the hasher: even a broken
	// facility produces no error for invalid input.
	_, ok, err = svc.HashEmail(context.Background(), "not-an-email")
	s.False(ok)
	s.NoError(err)
}

func TestNormalizeAll(t *testing.T) {
	svc := New(Config{})

	t.Run("output order matches input order", func(t *testing.T) {
		records := []RawRecord{
			{"email": "a@example.com"},
			{"email": "not-an-email"},
			{"email": "b@example.com"},
		}

		out, err := svc.NormalizeAll(context.Background(), records)
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, NormalizedRecord{"email": digest.Sum("a@example.com")}, out[0])
		assert.Empty(t, out[1])
		assert.Equal(t, NormalizedRecord{"email": digest.Sum("b@example.com")}, out[2])
	})

	t.Run("empty batch", func(t *testing.T) {
		out, err := svc.NormalizeAll(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("hasher failure fails the batch", func(t *testing.T) {
		broken := errors.New("hsm unavailable")
		failing := New(Config{}, WithHasher(failingHasher{err: broken}))

		_, err := failing.NormalizeAll(context.Background(), []RawRecord{
			{"email": "a@example.com"},
		})
		assert.ErrorIs(t, err, broken)
	})
}
