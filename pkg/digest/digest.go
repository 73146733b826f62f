// Package digest provides the deterministic SHA-256 primitive used to hash
// normalized match keys, plus the shape validator for its output.
package digest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// Digest is the hex-encoded SHA-256 of a normalized match key. Keeping it a
// distinct type stops raw strings from being passed where a hashed value is
// expected; the representation is a plain string.
type Digest string

var digestPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Sum computes the SHA-256 of the UTF-8 bytes of input and renders it as
// 64 lowercase hexadecimal characters. Deterministic: identical input always
// yields an identical Digest.
func Sum(input string) Digest {
	h := sha256.Sum256([]byte(input))
	return Digest(hex.EncodeToString(h[:]))
}

// IsDigest reports whether value has the shape of a Digest: exactly 64
// characters from [0-9a-f]. Shape check only, no cryptographic verification.
func IsDigest(value string) bool {
	return digestPattern.MatchString(value)
}

// Hasher is the port for the digest facility. The default implementation is
// in-process SHA-256 and cannot fail; alternative backends (HSM, remote KMS)
// may block on ctx and surface infrastructure failures through the error.
// Callers must treat a non-nil error as an environment defect, never as a
// validation rejection.
type Hasher interface {
	Digest(ctx context.Context, input string) (Digest, error)
}

// SHA256 returns the default in-process Hasher.
func SHA256() Hasher { return sha256Hasher{} }

type sha256Hasher struct{}

func (sha256Hasher) Digest(_ context.Context, input string) (Digest, error) {
	return Sum(input), nil
}
