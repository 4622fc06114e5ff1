package crypto

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"

	"eke/internal/domain"
)

// Fingerprint returns a short hex fingerprint of public material.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(pub []byte) domain.Fingerprint {
	sum := sha256.Sum256(pub)
	return domain.Fingerprint(hex.EncodeToString(sum[:10]))
}

// PublicKeyFingerprint fingerprints the PKIX encoding of pub. It returns an
// empty fingerprint for a nil key.
func PublicKeyFingerprint(pub *rsa.PublicKey) domain.Fingerprint {
	if pub == nil {
		return ""
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return ""
	}
	return Fingerprint(der)
}
