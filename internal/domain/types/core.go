package types

import (
	"encoding/base64"
	"errors"
)

// Username identifies a registered identity.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// NegotiationID identifies one handshake attempt (and the session it yields)
// for a username. It is minted by the responder in round 1.
type NegotiationID string

// String returns the string form of the negotiation identifier.
func (id NegotiationID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented in logs.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// KDF names the function used to turn a password into key_P.
type KDF string

const (
	// KDFArgon2id is the default salted, memory-hard password KDF.
	KDFArgon2id KDF = "argon2id"
	// KDFSHA256 truncates a single unsalted SHA-256 of the password. Legacy
	// clients register with it.
	KDFSHA256 KDF = "sha256"
)

// String returns the string form of the KDF name.
func (k KDF) String() string { return string(k) }

// SymmetricKeySize is the size of every symmetric key in the protocol.
const SymmetricKeySize = 32

// SymmetricKey is a 256-bit AEAD key (key_P, key_R and session keys).
type SymmetricKey [SymmetricKeySize]byte

// Slice returns the key as a []byte.
func (k SymmetricKey) Slice() []byte { return k[:] }

// String never reveals key material.
func (k SymmetricKey) String() string { return "SymmetricKey(redacted)" }

// MarshalText encodes the key as unpadded URL-safe base64 for JSON storage.
func (k SymmetricKey) MarshalText() ([]byte, error) {
	out := make([]byte, base64.RawURLEncoding.EncodedLen(len(k)))
	base64.RawURLEncoding.Encode(out, k[:])
	return out, nil
}

// UnmarshalText mirrors MarshalText.
func (k *SymmetricKey) UnmarshalText(text []byte) error {
	raw := make([]byte, base64.RawURLEncoding.DecodedLen(len(text)))
	n, err := base64.RawURLEncoding.Decode(raw, text)
	if err != nil {
		return err
	}
	if n != SymmetricKeySize {
		return errors.New("symmetric key: want 32 bytes")
	}
	copy(k[:], raw[:n])
	return nil
}
