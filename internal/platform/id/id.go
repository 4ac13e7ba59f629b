// Package id generates opaque roll identifiers.
//
// Identifiers are UUIDv4 bytes encoded as lowercase base32 (RFC 4648)
// without padding: 26 characters, safe in URLs, logs, and span attributes.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new random identifier.
func NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}

// Parse decodes an identifier produced by NewID.
func Parse(s string) (uuid.UUID, error) {
	b, err := encoding.DecodeString(strings.ToUpper(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode id %q: %w", s, err)
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode id %q: %w", s, err)
	}
	return u, nil
}
