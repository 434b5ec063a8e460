package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns a truncated hash suitable for cache keys and log lines
func (h Hash) Short() string {
	if len(h) <= 16 {
		return string(h)
	}
	return string(h[:16])
}

// Fingerprint is a short stable hash over a dataset used as a cache key
type Fingerprint string

// NewFingerprint builds a fingerprint from pre-serialized dataset bytes
func NewFingerprint(data []byte) Fingerprint {
	return Fingerprint(NewHash(data).Short())
}

// String returns the string representation
func (f Fingerprint) String() string { return string(f) }
