// Package hasher provides keyed, normalized one-way hashing for sensitive
// identity fields. Blacklist and audit-correlation lookups never touch
// plaintext — they go through the hashes this package produces.
package hasher

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hasher computes HMAC-SHA256 keyed hashes over normalized input. The key
// is a secret configured at boot; a Hasher can never be constructed
// without one, matching the fatal-on-absence rule in spec.md §4.1.
type Hasher struct {
	key []byte
}

// New creates a Hasher from a secret key. An empty key is a configuration
// error — the caller should treat it as fatal during service startup.
func New(key string) (*Hasher, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("hasher: key must not be empty")
	}
	return &Hasher{key: []byte(key)}, nil
}

// normalize lowercases and trims the value so the same logical input
// always hashes identically regardless of case or incidental whitespace.
func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Hash returns the hex-encoded HMAC-SHA256 of the normalized value.
func (h *Hasher) Hash(value string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(normalize(value)))
	return hex.EncodeToString(mac.Sum(nil))
}

// IndexHash returns the first 16 hex characters of Hash, suitable for a
// short, collision-tolerant index key (e.g. a cache key suffix) where the
// full hash would be wasteful.
func (h *Hasher) IndexHash(value string) string {
	full := h.Hash(value)
	if len(full) < 16 {
		return full
	}
	return full[:16]
}

// CompositeHash hashes several values together as a single logical key:
// the values are normalized, sorted, joined with "|", then hashed. Sorting
// makes the result independent of argument order.
func (h *Hasher) CompositeHash(values ...string) string {
	normalized := make([]string, len(values))
	for i, v := range values {
		normalized[i] = normalize(v)
	}
	sort.Strings(normalized)
	return h.Hash(strings.Join(normalized, "|"))
}

// Verify reports whether value hashes to the given hex digest, using a
// constant-time comparison to avoid leaking timing information about the
// stored hash.
func (h *Hasher) Verify(value, hexDigest string) bool {
	computed, err := hex.DecodeString(h.Hash(value))
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(hexDigest)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
