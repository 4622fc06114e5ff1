package domain

import (
	interfaces "eke/internal/domain/interfaces"
	types "eke/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Username      = types.Username
	NegotiationID = types.NegotiationID
	Fingerprint   = types.Fingerprint
	KDF           = types.KDF
	SymmetricKey  = types.SymmetricKey
	Identity      = types.Identity
	Frame         = types.Frame
	Registration  = types.Registration
	Round         = types.Round
)

// Constant re-exports.
const (
	KDFArgon2id      = types.KDFArgon2id
	KDFSHA256        = types.KDFSHA256
	SymmetricKeySize = types.SymmetricKeySize
	Round12          = types.Round12
	Round34          = types.Round34
	Round56          = types.Round56
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityStore    = interfaces.IdentityStore
	ResponderService = interfaces.ResponderService
	ResponderClient  = interfaces.ResponderClient
)
