// Package eke implements the Bellovin-Merritt Encrypted Key Exchange: two
// parties sharing only a password derive a fresh random session key.
//
// # Overview
//
// Both roles hold key_P, the password-derived key. The initiator wraps a
// fresh RSA public key under key_P; the responder answers with a random seed
// R encrypted to that public key and wrapped again under key_P. Both derive
// key_R from R, then prove to each other that they hold it with two random
// challenges before the responder hands out the session key.
//
// # Flow
//
//	#  sender     content
//	1  initiator  Enc(key_P, PEM(pub))
//	2  responder  Enc(key_P, OAEP(pub, R))
//	3  initiator  Enc(key_R, challengeA)
//	4  responder  Enc(key_R, challengeA || challengeB)
//	5  initiator  Enc(key_R, challengeB)
//	6  responder  Enc(key_R, sessionKey)
//
// Each symmetric layer also authenticates the message number, so a
// ciphertext from one position cannot be replayed in another.
//
// # Errors
//
// Every round either returns the next message or fails with an error wrapping
// one of domain.ErrDecryptionFailure, domain.ErrAuthenticationMismatch,
// domain.ErrMalformedKey or domain.ErrProtocolStateViolation. A failed round
// moves the role to StateFailed and wipes all ephemeral material; Start (or a
// new Responder) begins again from scratch. Calls made in the wrong state are
// rejected and leave the state untouched.
//
// Concurrency: Initiator, Responder and Channel are NOT safe for concurrent
// use. Callers must serialise access per negotiation.
package eke
