// Package crypto exposes the primitives the EKE handshake is built from.
//
// Contents
//
//   - Authenticated symmetric encryption with XChaCha20-Poly1305 and a fresh
//     random nonce per call (EncryptSymmetric, DecryptSymmetric)
//   - RSA-2048 key pairs with OAEP/SHA-256 encryption and PEM/PKIX public key
//     encoding (GenerateKeyPair, EncodePublicKey, ParsePublicKey,
//     EncryptAsymmetric, DecryptAsymmetric)
//   - Key derivation: key_P from a password (Argon2id or the legacy SHA-256
//     truncation) and key_R from the random seed R (HKDF-SHA256)
//   - Random byte and key generation
//   - Short public-key fingerprints for logging (Fingerprint)
//
// # Errors
//
// Decryption failures of either scheme wrap domain.ErrDecryptionFailure and
// public key parse failures wrap domain.ErrMalformedKey. Error text never
// includes key material.
package crypto
