package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"eke/internal/util/memzero"
)

// envelopeVersion is the newest sealed-file format this package writes.
const envelopeVersion = 1

// ErrWrongPassphrase is returned when a sealed file does not open, either
// because the passphrase is wrong or because the file was modified.
var ErrWrongPassphrase = errors.New("store: wrong passphrase or corrupted file")

var envelopeAD = []byte("eke/v1/identities")

// envelope is the on-disk JSON form of a sealed file.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

type scryptParams struct{ N, r, p int }

func defaultScrypt() scryptParams { return scryptParams{N: 1 << 15, r: 8, p: 1} }

// seal encrypts raw under a key derived from passphrase with a fresh salt.
// The salt makes every key single-use, so a zero nonce is safe.
func seal(passphrase string, raw []byte, params scryptParams) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	aead, err := envelopeAEAD(passphrase, salt, params)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	ct := aead.Seal(nil, nonce, raw, envelopeBinding(salt))

	return json.Marshal(envelope{
		V:      envelopeVersion,
		Salt:   salt,
		N:      params.N,
		R:      params.r,
		P:      params.p,
		Cipher: ct,
	})
}

// open reverses seal using the parameters recorded in the envelope.
func open(passphrase string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("store: parse envelope: %w", err)
	}
	if env.V < 1 || env.V > envelopeVersion {
		return nil, fmt.Errorf("store: unsupported envelope version %d", env.V)
	}
	aead, err := envelopeAEAD(passphrase, env.Salt, scryptParams{N: env.N, r: env.R, p: env.P})
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	pt, err := aead.Open(nil, nonce, env.Cipher, envelopeBinding(env.Salt))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

func envelopeAEAD(passphrase string, salt []byte, params scryptParams) (cipher.AEAD, error) {
	pw := []byte(passphrase)
	defer memzero.Zero(pw)
	key, err := scrypt.Key(pw, salt, params.N, params.r, params.p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("store: derive key: %w", err)
	}
	defer memzero.Zero(key)
	return chacha20poly1305.New(key)
}

func envelopeBinding(salt []byte) []byte {
	ad := make([]byte, 0, len(envelopeAD)+len(salt))
	ad = append(ad, envelopeAD...)
	return append(ad, salt...)
}
