package interfaces

import domaintypes "eke/internal/domain/types"

// IdentityStore persists long-term identities (username -> passwordSecret).
// It never holds per-negotiation state.
type IdentityStore interface {
	// CreateIdentity stores a new identity. It fails with ErrDuplicateUser
	// if the username is already present.
	CreateIdentity(id domaintypes.Identity) error
	// LoadIdentity fails with ErrUnknownUser if the username is absent.
	LoadIdentity(username domaintypes.Username) (domaintypes.Identity, error)
}
