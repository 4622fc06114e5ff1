package crypto

import (
	"crypto/rand"
	"io"

	"eke/internal/domain"
)

// RandomBytes returns n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// RandomKey returns a fresh random symmetric key.
func RandomKey() (domain.SymmetricKey, error) {
	var k domain.SymmetricKey
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		return domain.SymmetricKey{}, err
	}
	return k, nil
}
