package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"eke/internal/domain"
	"eke/internal/util/memzero"
)

const (
	// SeedBytes is the size of the responder's random seed R.
	SeedBytes = 32
	// ChallengeBytes is the size of each challenge nonce.
	ChallengeBytes = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4

	saltLabel = "eke/v1/salt"
	seedInfo  = "eke/v1/key_R"
)

// ParseKDF validates a KDF name. The empty string selects the default.
func ParseKDF(name string) (domain.KDF, error) {
	switch domain.KDF(name) {
	case "", domain.KDFArgon2id:
		return domain.KDFArgon2id, nil
	case domain.KDFSHA256:
		return domain.KDFSHA256, nil
	default:
		return "", fmt.Errorf("unsupported kdf %q", name)
	}
}

// DerivePasswordKey turns a password into key_P.
//
// Argon2id salts with a digest of the username, so both roles can compute it
// without an extra message and two users with the same password end up with
// different keys. KDFSHA256 is a bare unsalted hash, kept for accounts
// registered by clients that hash passwords that way.
func DerivePasswordKey(kdf domain.KDF, username domain.Username, password string) (domain.SymmetricKey, error) {
	var key domain.SymmetricKey
	kdf, err := ParseKDF(kdf.String())
	if err != nil {
		return key, err
	}
	pw := []byte(password)
	defer memzero.Zero(pw)

	switch kdf {
	case domain.KDFSHA256:
		sum := sha256.Sum256(pw)
		copy(key[:], sum[:domain.SymmetricKeySize])
		memzero.Zero(sum[:])
	default:
		salt := passwordSalt(username)
		derived := argon2.IDKey(pw, salt[:], argonTime, argonMemory, argonThreads, domain.SymmetricKeySize)
		copy(key[:], derived)
		memzero.Zero(derived)
	}
	return key, nil
}

// DeriveSeedKey derives key_R from the random seed R.
func DeriveSeedKey(seed []byte) (domain.SymmetricKey, error) {
	var key domain.SymmetricKey
	if len(seed) != SeedBytes {
		return key, fmt.Errorf("seed: want %d bytes, got %d", SeedBytes, len(seed))
	}
	r := hkdf.New(sha256.New, seed, nil, []byte(seedInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return domain.SymmetricKey{}, err
	}
	return key, nil
}

func passwordSalt(username domain.Username) [sha256.Size]byte {
	return sha256.Sum256([]byte(saltLabel + "\x00" + username.String()))
}
