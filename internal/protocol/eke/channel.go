package eke

import (
	"fmt"

	"eke/internal/crypto"
	"eke/internal/domain"
	"eke/internal/util/memzero"
)

var (
	adFromInitiator = []byte("eke/v1/data/initiator")
	adFromResponder = []byte("eke/v1/data/responder")
)

// Channel encrypts application payloads under an established session key.
// The sending role is authenticated with every message, so a ciphertext
// reflected back to its sender does not decrypt.
type Channel struct {
	role Role
	key  domain.SymmetricKey
}

// NewChannel binds sessionKey to the local role.
func NewChannel(role Role, sessionKey []byte) (*Channel, error) {
	if role != RoleInitiator && role != RoleResponder {
		return nil, fmt.Errorf("eke: channel: invalid role %s", role)
	}
	if len(sessionKey) != domain.SymmetricKeySize {
		return nil, fmt.Errorf("eke: channel: session key has %d bytes, want %d", len(sessionKey), domain.SymmetricKeySize)
	}
	c := &Channel{role: role}
	copy(c.key[:], sessionKey)
	return c, nil
}

// Role is the local end of the channel.
func (c *Channel) Role() Role { return c.role }

// Send encrypts a payload for the peer.
func (c *Channel) Send(plaintext []byte) ([]byte, error) {
	return Seal(c.key, c.role, plaintext)
}

// Receive decrypts a payload sent by the peer.
func (c *Channel) Receive(ciphertext []byte) ([]byte, error) {
	return Open(c.key, c.role.Peer(), ciphertext)
}

// Close wipes the session key. The channel is unusable afterwards.
func (c *Channel) Close() {
	memzero.Zero(c.key[:])
	c.role = 0
}

// Seal encrypts plaintext under sessionKey as sent by from.
func Seal(sessionKey domain.SymmetricKey, from Role, plaintext []byte) ([]byte, error) {
	ad, err := directionAD(from)
	if err != nil {
		return nil, err
	}
	return crypto.EncryptSymmetric(sessionKey, plaintext, ad)
}

// Open decrypts a ciphertext produced by Seal with the same sender role.
func Open(sessionKey domain.SymmetricKey, from Role, ciphertext []byte) ([]byte, error) {
	ad, err := directionAD(from)
	if err != nil {
		return nil, err
	}
	pt, err := crypto.DecryptSymmetric(sessionKey, ciphertext, ad)
	if err != nil {
		return nil, fmt.Errorf("eke: channel: %w", err)
	}
	return pt, nil
}

func directionAD(from Role) ([]byte, error) {
	switch from {
	case RoleInitiator:
		return adFromInitiator, nil
	case RoleResponder:
		return adFromResponder, nil
	default:
		return nil, fmt.Errorf("eke: channel: %w: closed or invalid role", domain.ErrProtocolStateViolation)
	}
}
