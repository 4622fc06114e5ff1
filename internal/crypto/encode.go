package crypto

import "encoding/base64"

// B64 returns URL-safe base64 with padding, the text form used on the wire.
func B64(b []byte) string { return base64.URLEncoding.EncodeToString(b) }

// FromB64 decodes the output of B64.
func FromB64(s string) ([]byte, error) { return base64.URLEncoding.DecodeString(s) }
