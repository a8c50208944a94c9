// Package fingerprint derives content-addressed cache keys from raw input bytes.
//
// A Fingerprint is the uppercase hexadecimal encoding of a 256-bit digest over the
// exact input bytes. Identical inputs always produce identical fingerprints.
// Callers must treat the value as opaque: the digest algorithm is selected by
// configuration and is not part of the key's contract.
package fingerprint

import (
	_ "crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/zeebo/blake3"
)

// Width is the length in characters of every Fingerprint.
const Width = 64

// Algorithm names a supported digest function.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

var (
	// ErrUnknownAlgorithm indicates an unsupported digest algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown fingerprint algorithm")
	// ErrInvalid indicates a string that is not a well-formed Fingerprint.
	ErrInvalid = errors.New("invalid fingerprint")
)

// Fingerprint is the identity and partition key of a cache entry.
type Fingerprint string

func (f Fingerprint) String() string {
	return string(f)
}

// Validate checks that f has the fixed width and uppercase hex alphabet.
func (f Fingerprint) Validate() error {
	if len(f) != Width {
		return fmt.Errorf("%w: length %d", ErrInvalid, len(f))
	}
	for _, c := range f {
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return fmt.Errorf("%w: unexpected character %q", ErrInvalid, c)
		}
	}
	return nil
}

// Deriver computes fingerprints. Implementations are pure and safe for concurrent use.
type Deriver interface {
	Of(b []byte) Fingerprint
}

// DeriverFunc adapts a function to the Deriver interface.
type DeriverFunc func(b []byte) Fingerprint

func (fn DeriverFunc) Of(b []byte) Fingerprint {
	return fn(b)
}

// New returns the Deriver for alg. An empty name selects SHA256.
func New(alg Algorithm) (Deriver, error) {
	switch Algorithm(strings.ToLower(string(alg))) {
	case "", SHA256:
		return DeriverFunc(Of), nil
	case BLAKE3:
		return DeriverFunc(ofBLAKE3), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
}

// Of returns the SHA-256 fingerprint of b.
func Of(b []byte) Fingerprint {
	return Fingerprint(strings.ToUpper(digest.SHA256.FromBytes(b).Encoded()))
}

func ofBLAKE3(b []byte) Fingerprint {
	sum := blake3.Sum256(b)
	return Fingerprint(fmt.Sprintf("%X", sum[:]))
}
