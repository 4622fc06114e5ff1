package eke

import (
	"crypto/rsa"
	"crypto/subtle"
	"fmt"

	"eke/internal/crypto"
	"eke/internal/domain"
	"eke/internal/util/memzero"
)

// Initiator is the client role. It owns its ephemeral key pair, the seed R
// recovered from msg2, both challenges and, once established, the session key.
type Initiator struct {
	keyP  domain.SymmetricKey
	state State

	ephemeral   *rsa.PrivateKey
	fingerprint domain.Fingerprint

	seed            []byte
	keyR            domain.SymmetricKey
	challengeLocal  []byte
	challengeRemote []byte
	sessionKey      []byte
}

// NewInitiator returns an idle initiator holding key_P.
func NewInitiator(keyP domain.SymmetricKey) *Initiator {
	return &Initiator{keyP: keyP}
}

// State reports the current handshake state.
func (in *Initiator) State() State { return in.state }

// Fingerprint identifies the ephemeral public key of the current attempt.
func (in *Initiator) Fingerprint() domain.Fingerprint { return in.fingerprint }

// Start generates a fresh ephemeral key pair and returns msg1, the public key
// wrapped under key_P. It is allowed from StateIdle and StateFailed; any
// other state must be cleared with Reset first.
func (in *Initiator) Start() ([]byte, error) {
	switch in.state {
	case StateIdle:
	case StateFailed:
		in.discard()
		in.state = StateIdle
	default:
		return nil, violation("start", in.state, StateIdle, StateFailed)
	}

	priv, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, in.fail("msg1", err)
	}
	encoded, err := crypto.EncodePublicKey(&priv.PublicKey)
	if err != nil {
		return nil, in.fail("msg1", err)
	}
	msg1, err := crypto.EncryptSymmetric(in.keyP, encoded, adMsg1)
	if err != nil {
		return nil, in.fail("msg1", err)
	}

	in.ephemeral = priv
	in.fingerprint = crypto.PublicKeyFingerprint(&priv.PublicKey)
	in.state = StateKeySent
	return msg1, nil
}

// OnMsg2 unwraps msg2 under key_P and then under the ephemeral private key
// to recover R, derives key_R and returns msg3 carrying a fresh challenge.
func (in *Initiator) OnMsg2(msg2 []byte) ([]byte, error) {
	if in.state != StateKeySent {
		return nil, violation("msg2", in.state, StateKeySent)
	}

	inner, err := crypto.DecryptSymmetric(in.keyP, msg2, adMsg2)
	if err != nil {
		return nil, in.fail("msg2", err)
	}
	seed, err := crypto.DecryptAsymmetric(in.ephemeral, inner)
	if err != nil {
		return nil, in.fail("msg2", err)
	}
	if len(seed) != crypto.SeedBytes {
		memzero.Zero(seed)
		return nil, in.fail("msg2", fmt.Errorf("%w: seed has %d bytes", domain.ErrDecryptionFailure, len(seed)))
	}
	keyR, err := crypto.DeriveSeedKey(seed)
	if err != nil {
		memzero.Zero(seed)
		return nil, in.fail("msg2", err)
	}
	in.seed, in.keyR = seed, keyR
	// The private key has done its only job.
	in.ephemeral = nil
	in.state = StateRSeeded

	challenge, err := crypto.RandomBytes(crypto.ChallengeBytes)
	if err != nil {
		return nil, in.fail("msg3", err)
	}
	msg3, err := crypto.EncryptSymmetric(in.keyR, challenge, adMsg3)
	if err != nil {
		return nil, in.fail("msg3", err)
	}
	in.challengeLocal = challenge
	in.state = StateChallengeSent
	return msg3, nil
}

// OnMsg4 checks that the responder echoed our challenge and returns msg5,
// the responder's challenge encrypted back under key_R.
func (in *Initiator) OnMsg4(msg4 []byte) ([]byte, error) {
	if in.state != StateChallengeSent {
		return nil, violation("msg4", in.state, StateChallengeSent)
	}

	pt, err := crypto.DecryptSymmetric(in.keyR, msg4, adMsg4)
	if err != nil {
		return nil, in.fail("msg4", err)
	}
	defer memzero.Zero(pt)
	if len(pt) != 2*crypto.ChallengeBytes {
		return nil, in.fail("msg4", fmt.Errorf("%w: challenge block has %d bytes", domain.ErrAuthenticationMismatch, len(pt)))
	}
	echoed, remote := pt[:crypto.ChallengeBytes], pt[crypto.ChallengeBytes:]
	if subtle.ConstantTimeCompare(echoed, in.challengeLocal) != 1 {
		return nil, in.fail("msg4", domain.ErrAuthenticationMismatch)
	}

	in.challengeRemote = append([]byte(nil), remote...)
	msg5, err := crypto.EncryptSymmetric(in.keyR, in.challengeRemote, adMsg5)
	if err != nil {
		return nil, in.fail("msg5", err)
	}
	in.state = StateChallengeConfirmed
	return msg5, nil
}

// OnMsg6 recovers the session key. After it returns nil the initiator is
// established and only the session key is retained.
func (in *Initiator) OnMsg6(msg6 []byte) error {
	if in.state != StateChallengeConfirmed {
		return violation("msg6", in.state, StateChallengeConfirmed)
	}

	sessionKey, err := crypto.DecryptSymmetric(in.keyR, msg6, adMsg6)
	if err != nil {
		return in.fail("msg6", err)
	}
	if len(sessionKey) != domain.SymmetricKeySize {
		memzero.Zero(sessionKey)
		return in.fail("msg6", fmt.Errorf("%w: session key has %d bytes", domain.ErrDecryptionFailure, len(sessionKey)))
	}

	in.wipeHandshake()
	in.sessionKey = sessionKey
	in.state = StateEstablished
	return nil
}

// SessionKey returns a copy of the negotiated key. ok is false unless the
// handshake is established.
func (in *Initiator) SessionKey() (key []byte, ok bool) {
	if in.state != StateEstablished {
		return nil, false
	}
	return append([]byte(nil), in.sessionKey...), true
}

// Channel returns the application channel for the established session.
func (in *Initiator) Channel() (*Channel, error) {
	if in.state != StateEstablished {
		return nil, violation("channel", in.state, StateEstablished)
	}
	return NewChannel(RoleInitiator, in.sessionKey)
}

// Reset discards every ephemeral field, including an established session
// key, and returns to StateIdle.
func (in *Initiator) Reset() {
	in.discard()
	in.state = StateIdle
}

func (in *Initiator) fail(round string, err error) error {
	in.discard()
	in.state = StateFailed
	return fmt.Errorf("eke: %s: %w", round, err)
}

func (in *Initiator) wipeHandshake() {
	memzero.Zero(in.seed, in.keyR[:], in.challengeLocal, in.challengeRemote)
	in.seed, in.challengeLocal, in.challengeRemote = nil, nil, nil
	in.ephemeral = nil
}

func (in *Initiator) discard() {
	in.wipeHandshake()
	memzero.Zero(in.sessionKey)
	in.sessionKey = nil
	in.fingerprint = ""
}
