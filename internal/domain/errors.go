package domain

import "errors"

// Error taxonomy. Every failure returned by the protocol engine, the stores
// and the services wraps exactly one of these so callers can use errors.Is,
// including across the HTTP transport.
var (
	// ErrDecryptionFailure: an authentication tag or padding check failed
	// (wrong key, wrong password, corrupted or tampered ciphertext).
	ErrDecryptionFailure = errors.New("decryption failure")

	// ErrAuthenticationMismatch: a decrypted challenge did not equal the
	// locally held value.
	ErrAuthenticationMismatch = errors.New("authentication mismatch")

	// ErrMalformedKey: recovered public-key bytes did not parse.
	ErrMalformedKey = errors.New("malformed public key")

	// ErrProtocolStateViolation: a round function was invoked while not in
	// its expected state.
	ErrProtocolStateViolation = errors.New("protocol state violation")

	// ErrUnknownUser: no identity is registered under the username.
	ErrUnknownUser = errors.New("unknown user")

	// ErrDuplicateUser: the username is already registered.
	ErrDuplicateUser = errors.New("duplicate user")

	// ErrUnknownNegotiation: no live negotiation matches (username, id).
	ErrUnknownNegotiation = errors.New("unknown negotiation")

	// ErrNegotiationInProgress: another negotiation for the username is in
	// flight and the responder is configured to reject new ones.
	ErrNegotiationInProgress = errors.New("negotiation in progress")

	// ErrInvalidUsername: the username is empty, too long or not printable.
	ErrInvalidUsername = errors.New("invalid username")
)
