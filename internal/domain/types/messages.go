package types

// Frame carries one opaque handshake or application ciphertext together with
// the cleartext routing fields the responder needs.
//
// NegotiationID is empty on round 1 requests and set on everything after.
type Frame struct {
	Username      Username      `json:"username"`
	NegotiationID NegotiationID `json:"negotiation_id,omitempty"`
	Data          []byte        `json:"-"`
}

// Registration uploads an already-derived secret for a new username.
type Registration struct {
	Username Username     `json:"username"`
	Secret   SymmetricKey `json:"secret"`
	KDF      KDF          `json:"kdf"`
}
