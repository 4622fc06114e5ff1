// Package store persists registered identities.
//
// IdentityFileStore keeps every identity in a single JSON file under a data
// directory, optionally sealed with a passphrase (scrypt + ChaCha20-Poly1305).
// IdentityMemoryStore keeps them in a map and is used by tests and the
// in-process demo. Both are safe for concurrent use and implement
// domain.IdentityStore.
//
// Negotiation and session state never reaches a store; it lives in the
// responder service's registry and dies with the process.
package store
