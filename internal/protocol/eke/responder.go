package eke

import (
	"crypto/rsa"
	"crypto/subtle"
	"fmt"

	"eke/internal/crypto"
	"eke/internal/domain"
	"eke/internal/util/memzero"
)

// Responder is the server role for one negotiation of one identity. It is
// single-use: once established or failed, a new negotiation needs a new
// Responder.
type Responder struct {
	username domain.Username
	keyP     domain.SymmetricKey
	state    State

	peer        *rsa.PublicKey
	fingerprint domain.Fingerprint

	seed            []byte
	keyR            domain.SymmetricKey
	challengeRemote []byte
	challengeLocal  []byte
	sessionKey      []byte
}

// NewResponder returns an idle responder for id.
func NewResponder(id domain.Identity) *Responder {
	return &Responder{username: id.Username, keyP: id.Secret}
}

// State reports the current handshake state.
func (r *Responder) State() State { return r.state }

// Username is the identity this responder negotiates for.
func (r *Responder) Username() domain.Username { return r.username }

// Fingerprint identifies the initiator's ephemeral public key.
func (r *Responder) Fingerprint() domain.Fingerprint { return r.fingerprint }

// OnMsg1 recovers the initiator's public key from msg1, draws a fresh seed R
// and returns msg2: R encrypted to that key, then wrapped under key_P.
func (r *Responder) OnMsg1(msg1 []byte) ([]byte, error) {
	if r.state != StateIdle {
		return nil, violation("msg1", r.state, StateIdle)
	}

	encoded, err := crypto.DecryptSymmetric(r.keyP, msg1, adMsg1)
	if err != nil {
		return nil, r.fail("msg1", err)
	}
	pub, err := crypto.ParsePublicKey(encoded)
	if err != nil {
		return nil, r.fail("msg1", err)
	}

	seed, err := crypto.RandomBytes(crypto.SeedBytes)
	if err != nil {
		return nil, r.fail("msg2", err)
	}
	keyR, err := crypto.DeriveSeedKey(seed)
	if err != nil {
		memzero.Zero(seed)
		return nil, r.fail("msg2", err)
	}
	r.peer, r.seed, r.keyR = pub, seed, keyR
	r.fingerprint = crypto.PublicKeyFingerprint(pub)

	inner, err := crypto.EncryptAsymmetric(pub, seed)
	if err != nil {
		return nil, r.fail("msg2", err)
	}
	msg2, err := crypto.EncryptSymmetric(r.keyP, inner, adMsg2)
	if err != nil {
		return nil, r.fail("msg2", err)
	}
	r.state = StateKeyReceived
	return msg2, nil
}

// OnMsg3 recovers the initiator's challenge, issues our own and returns
// msg4 carrying both.
func (r *Responder) OnMsg3(msg3 []byte) ([]byte, error) {
	if r.state != StateKeyReceived {
		return nil, violation("msg3", r.state, StateKeyReceived)
	}

	remote, err := crypto.DecryptSymmetric(r.keyR, msg3, adMsg3)
	if err != nil {
		return nil, r.fail("msg3", err)
	}
	if len(remote) != crypto.ChallengeBytes {
		memzero.Zero(remote)
		return nil, r.fail("msg3", fmt.Errorf("%w: challenge has %d bytes", domain.ErrAuthenticationMismatch, len(remote)))
	}
	local, err := crypto.RandomBytes(crypto.ChallengeBytes)
	if err != nil {
		memzero.Zero(remote)
		return nil, r.fail("msg4", err)
	}
	r.challengeRemote, r.challengeLocal = remote, local

	payload := make([]byte, 0, 2*crypto.ChallengeBytes)
	payload = append(payload, remote...)
	payload = append(payload, local...)
	msg4, err := crypto.EncryptSymmetric(r.keyR, payload, adMsg4)
	memzero.Zero(payload)
	if err != nil {
		return nil, r.fail("msg4", err)
	}
	r.state = StateChallengeIssued
	return msg4, nil
}

// OnMsg5 verifies that the initiator returned our challenge and, only then,
// generates the session key and returns msg6.
func (r *Responder) OnMsg5(msg5 []byte) ([]byte, error) {
	if r.state != StateChallengeIssued {
		return nil, violation("msg5", r.state, StateChallengeIssued)
	}

	got, err := crypto.DecryptSymmetric(r.keyR, msg5, adMsg5)
	if err != nil {
		return nil, r.fail("msg5", err)
	}
	defer memzero.Zero(got)
	if subtle.ConstantTimeCompare(got, r.challengeLocal) != 1 {
		return nil, r.fail("msg5", domain.ErrAuthenticationMismatch)
	}
	r.state = StateChallengeConfirmed

	sessionKey, err := crypto.RandomKey()
	if err != nil {
		return nil, r.fail("msg6", err)
	}
	msg6, err := crypto.EncryptSymmetric(r.keyR, sessionKey[:], adMsg6)
	if err != nil {
		memzero.Zero(sessionKey[:])
		return nil, r.fail("msg6", err)
	}

	r.wipeHandshake()
	r.sessionKey = append([]byte(nil), sessionKey[:]...)
	memzero.Zero(sessionKey[:])
	r.state = StateEstablished
	return msg6, nil
}

// SessionKey returns a copy of the negotiated key. ok is false unless the
// handshake is established.
func (r *Responder) SessionKey() (key []byte, ok bool) {
	if r.state != StateEstablished {
		return nil, false
	}
	return append([]byte(nil), r.sessionKey...), true
}

// Channel returns the application channel for the established session.
func (r *Responder) Channel() (*Channel, error) {
	if r.state != StateEstablished {
		return nil, violation("channel", r.state, StateEstablished)
	}
	return NewChannel(RoleResponder, r.sessionKey)
}

// Discard wipes everything and marks the responder failed. The registry calls
// it when a negotiation is replaced, expires or is closed.
func (r *Responder) Discard() {
	r.wipeHandshake()
	memzero.Zero(r.sessionKey)
	r.sessionKey = nil
	r.state = StateFailed
}

func (r *Responder) fail(round string, err error) error {
	r.Discard()
	return fmt.Errorf("eke: %s: %w", round, err)
}

func (r *Responder) wipeHandshake() {
	memzero.Zero(r.seed, r.keyR[:], r.challengeRemote, r.challengeLocal)
	r.seed, r.challengeRemote, r.challengeLocal = nil, nil, nil
	r.peer = nil
}
