package types

// Identity is the long-term record created at registration. Secret is the
// password-derived key_P; the password itself is never kept.
type Identity struct {
	Username   Username     `json:"username"`
	Secret     SymmetricKey `json:"secret"`
	KDF        KDF          `json:"kdf"`
	CreatedUTC int64        `json:"created_utc"`
}
