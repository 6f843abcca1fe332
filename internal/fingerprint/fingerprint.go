// Package fingerprint computes content digests used to detect whether a text
// field changed since it was last enhanced.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Size is the length of a digest in bytes.
const Size = sha256.Size

// Digest is the SHA-256 of a field's raw bytes.
type Digest [Size]byte

// Of returns the digest of text. The bytes are hashed as-is: no trimming,
// no case folding, no newline normalization.
func Of(text string) Digest {
	return Digest(sha256.Sum256([]byte(text)))
}

// String returns the lowercase hex encoding used in the cache file.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d is the zero value.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Equal reports whether two digests match.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// Parse decodes a hex digest as produced by String.
func Parse(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	if len(b) != Size {
		return d, fmt.Errorf("invalid digest %q: want %d bytes, got %d", s, Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}
