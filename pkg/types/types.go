// Stringly-typed identifiers used across the daemon API. Each one renders as
// a prefixed hex string on the wire ("ed25519:<hex>", "fcid:<hex>", ...) and
// round-trips through JSON via encoding.TextMarshaler, which also makes them
// usable as JSON object keys.
package types

import (
	"encoding/hex"
	"fmt"
)

// PublicKey is a host's ed25519 public key.
type PublicKey [32]byte

const publicKeyPrefix = "ed25519:"

func (pk PublicKey) String() string {
	return publicKeyPrefix + hex.EncodeToString(pk[:])
}

func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	if err := parsePrefixedHex(s, publicKeyPrefix, pk[:]); err != nil {
		return PublicKey{}, fmt.Errorf("invalid public key %q", s)
	}
	return pk, nil
}

func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *PublicKey) UnmarshalText(b []byte) error {
	parsed, err := ParsePublicKey(string(b))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// Hash is a 256-bit daemon hash ("h:<hex>").
type Hash [32]byte

const hashPrefix = "h:"

func (h Hash) String() string {
	return hashPrefix + hex.EncodeToString(h[:])
}

func ParseHash(s string) (Hash, error) {
	var h Hash
	if err := parsePrefixedHex(s, hashPrefix, h[:]); err != nil {
		return Hash{}, fmt.Errorf("invalid hash %q", s)
	}
	return h, nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(b []byte) error {
	parsed, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// FileContractID identifies a file contract ("fcid:<hex>").
type FileContractID [32]byte

const fcidPrefix = "fcid:"

func (id FileContractID) String() string {
	return fcidPrefix + hex.EncodeToString(id[:])
}

func ParseFileContractID(s string) (FileContractID, error) {
	var id FileContractID
	if err := parsePrefixedHex(s, fcidPrefix, id[:]); err != nil {
		return FileContractID{}, fmt.Errorf("invalid file contract id %q", s)
	}
	return id, nil
}

func (id FileContractID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *FileContractID) UnmarshalText(b []byte) error {
	parsed, err := ParseFileContractID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// SettingsID identifies a stored settings blob. Unlike the other IDs it has
// no prefix; it is 16 raw hex bytes.
type SettingsID [16]byte

func (id SettingsID) String() string {
	return hex.EncodeToString(id[:])
}

func ParseSettingsID(s string) (SettingsID, error) {
	var id SettingsID
	if err := parsePrefixedHex(s, "", id[:]); err != nil {
		return SettingsID{}, fmt.Errorf("invalid settings id %q", s)
	}
	return id, nil
}

func (id SettingsID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *SettingsID) UnmarshalText(b []byte) error {
	parsed, err := ParseSettingsID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// parsePrefixedHex strips prefix from s and hex-decodes the rest into dst,
// which must be exactly the right size.
func parsePrefixedHex(s, prefix string, dst []byte) error {
	if len(s) < len(prefix) || s[:len(prefix)] != prefix {
		return fmt.Errorf("missing %q prefix", prefix)
	}
	raw := s[len(prefix):]
	if len(raw) != hex.EncodedLen(len(dst)) {
		return fmt.Errorf("want %d hex chars, got %d", hex.EncodedLen(len(dst)), len(raw))
	}
	_, err := hex.Decode(dst, []byte(raw))
	return err
}
