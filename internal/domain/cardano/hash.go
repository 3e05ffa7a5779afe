// Package cardano holds the ledger primitives shared by the codecs: hashes,
// credentials, addresses, output references and multi-asset values.
package cardano

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	Hash28Size = 28
	Hash32Size = 32
)

// Hash28 is a blake2b-224 digest: key hashes, script hashes and policy ids
type Hash28 [Hash28Size]byte

// Hash32 is a blake2b-256 digest: transaction ids and derived identifiers
type Hash32 [Hash32Size]byte

// ScriptHash identifies a validator or minting policy
type ScriptHash = Hash28

// PolicyID is the script hash of a minting policy
type PolicyID = Hash28

// ParseHash28 parses a 56 character hex string
func ParseHash28(s string) (Hash28, error) {
	var h Hash28
	if err := decodeFixedHex(s, h[:]); err != nil {
		return Hash28{}, err
	}
	return h, nil
}

// ParseHash32 parses a 64 character hex string
func ParseHash32(s string) (Hash32, error) {
	var h Hash32
	if err := decodeFixedHex(s, h[:]); err != nil {
		return Hash32{}, err
	}
	return h, nil
}

// Hash28FromBytes copies b into a Hash28
func Hash28FromBytes(b []byte) (Hash28, error) {
	var h Hash28
	if len(b) != Hash28Size {
		return h, fmt.Errorf("expected %d bytes, got %d", Hash28Size, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Hash32FromBytes copies b into a Hash32
func Hash32FromBytes(b []byte) (Hash32, error) {
	var h Hash32
	if len(b) != Hash32Size {
		return h, fmt.Errorf("expected %d bytes, got %d", Hash32Size, len(b))
	}
	copy(h[:], b)
	return h, nil
}

func decodeFixedHex(s string, dst []byte) error {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != len(dst)*2 {
		return fmt.Errorf("expected %d hex characters, got %d", len(dst)*2, len(s))
	}
	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	return nil
}

func (h Hash28) String() string { return hex.EncodeToString(h[:]) }
func (h Hash32) String() string { return hex.EncodeToString(h[:]) }

func (h Hash28) Bytes() []byte { return append([]byte(nil), h[:]...) }
func (h Hash32) Bytes() []byte { return append([]byte(nil), h[:]...) }

func (h Hash28) IsZero() bool { return h == Hash28{} }
func (h Hash32) IsZero() bool { return h == Hash32{} }

func (h Hash28) MarshalText() ([]byte, error) { return []byte(h.String()), nil }
func (h Hash32) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hash28) UnmarshalText(b []byte) error {
	parsed, err := ParseHash28(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (h *Hash32) UnmarshalText(b []byte) error {
	parsed, err := ParseHash32(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
