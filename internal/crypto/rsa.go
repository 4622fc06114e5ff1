package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"eke/internal/domain"
)

const (
	// RSABits is the modulus size of generated key pairs and the minimum
	// accepted from a peer.
	RSABits = 2048

	pemPublicKey = "PUBLIC KEY"
)

// GenerateKeyPair returns a fresh RSA-2048 key pair (e = 65537).
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, RSABits)
}

// EncodePublicKey returns pub as a PEM "PUBLIC KEY" block (PKIX,
// SubjectPublicKeyInfo).
func EncodePublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemPublicKey, Bytes: der}), nil
}

// ParsePublicKey is the inverse of EncodePublicKey. Anything other than a
// single PEM-wrapped RSA key of at least RSABits fails with
// domain.ErrMalformedKey.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	block, rest := pem.Decode(data)
	if block == nil || block.Type != pemPublicKey {
		return nil, fmt.Errorf("%w: no PEM public key block", domain.ErrMalformedKey)
	}
	if len(bytes.TrimSpace(rest)) != 0 {
		return nil, fmt.Errorf("%w: trailing data after PEM block", domain.ErrMalformedKey)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedKey, err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", domain.ErrMalformedKey)
	}
	if pub.N.BitLen() < RSABits {
		return nil, fmt.Errorf("%w: %d-bit modulus is below %d", domain.ErrMalformedKey, pub.N.BitLen(), RSABits)
	}
	return pub, nil
}

// EncryptAsymmetric encrypts data to pub with RSA-OAEP (SHA-256, MGF1-SHA-256,
// empty label). Every call is randomised.
func EncryptAsymmetric(pub *rsa.PublicKey, data []byte) ([]byte, error) {
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, data, nil)
}

// DecryptAsymmetric reverses EncryptAsymmetric.
func DecryptAsymmetric(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	pt, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ciphertext, nil)
	if err != nil {
		return nil, domain.ErrDecryptionFailure
	}
	return pt, nil
}
