package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"eke/internal/domain"
)

const (
	KeyBytes   = chacha20poly1305.KeySize
	NonceBytes = chacha20poly1305.NonceSizeX

	// Overhead is the number of bytes EncryptSymmetric adds to a plaintext.
	Overhead = NonceBytes + chacha20poly1305.Overhead
)

// EncryptSymmetric seals plaintext under key with a random 24-byte nonce.
// The output is nonce || ciphertext || tag. ad is authenticated but not
// encrypted and may be nil.
func EncryptSymmetric(key domain.SymmetricKey, plaintext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key.Slice())
	if err != nil {
		return nil, err
	}
	out := make([]byte, NonceBytes, NonceBytes+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, out); err != nil {
		return nil, err
	}
	return aead.Seal(out, out[:NonceBytes], plaintext, ad), nil
}

// DecryptSymmetric opens a ciphertext produced by EncryptSymmetric.
func DecryptSymmetric(key domain.SymmetricKey, ciphertext, ad []byte) ([]byte, error) {
	if len(ciphertext) < Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", domain.ErrDecryptionFailure)
	}
	aead, err := chacha20poly1305.NewX(key.Slice())
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, ciphertext[:NonceBytes], ciphertext[NonceBytes:], ad)
	if err != nil {
		return nil, domain.ErrDecryptionFailure
	}
	return pt, nil
}
