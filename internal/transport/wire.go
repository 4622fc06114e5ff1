package transport

import (
	"errors"
	"fmt"
	"net/http"

	"eke/internal/crypto"
	"eke/internal/domain"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 64 << 10

// ErrBadRequest reports a request the server could not parse.
var ErrBadRequest = errors.New("bad request")

// frameJSON is a domain.Frame on the wire.
type frameJSON struct {
	Username      string `json:"username"`
	NegotiationID string `json:"negotiation_id,omitempty"`
	Data          string `json:"data,omitempty"`
}

func encodeFrame(f domain.Frame) frameJSON {
	out := frameJSON{Username: f.Username.String(), NegotiationID: f.NegotiationID.String()}
	if f.Data != nil {
		out.Data = crypto.B64(f.Data)
	}
	return out
}

func (f frameJSON) decode() (domain.Frame, error) {
	data, err := crypto.FromB64(f.Data)
	if err != nil {
		return domain.Frame{}, fmt.Errorf("%w: data is not base64", ErrBadRequest)
	}
	return domain.Frame{
		Username:      domain.Username(f.Username),
		NegotiationID: domain.NegotiationID(f.NegotiationID),
		Data:          data,
	}, nil
}

type registerJSON struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
	KDF      string `json:"kdf,omitempty"`
}

func encodeRegistration(reg domain.Registration) registerJSON {
	return registerJSON{
		Username: reg.Username.String(),
		Secret:   crypto.B64(reg.Secret[:]),
		KDF:      reg.KDF.String(),
	}
}

func (r registerJSON) decode() (domain.Registration, error) {
	raw, err := crypto.FromB64(r.Secret)
	if err != nil || len(raw) != domain.SymmetricKeySize {
		return domain.Registration{}, fmt.Errorf("%w: secret must be %d bytes of base64", ErrBadRequest, domain.SymmetricKeySize)
	}
	reg := domain.Registration{Username: domain.Username(r.Username), KDF: domain.KDF(r.KDF)}
	copy(reg.Secret[:], raw)
	return reg, nil
}

type errorJSON struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorCodes maps domain errors to wire codes and HTTP statuses. Order
// matters only in that the first match wins.
var errorCodes = []struct {
	code   string
	status int
	err    error
}{
	{"unknown_user", http.StatusNotFound, domain.ErrUnknownUser},
	{"duplicate_user", http.StatusConflict, domain.ErrDuplicateUser},
	{"invalid_username", http.StatusBadRequest, domain.ErrInvalidUsername},
	{"negotiation_in_progress", http.StatusConflict, domain.ErrNegotiationInProgress},
	{"protocol_state_violation", http.StatusConflict, domain.ErrProtocolStateViolation},
	{"unknown_negotiation", http.StatusNotFound, domain.ErrUnknownNegotiation},
	{"malformed_key", http.StatusBadRequest, domain.ErrMalformedKey},
	{"decryption_failure", http.StatusForbidden, domain.ErrDecryptionFailure},
	{"authentication_mismatch", http.StatusForbidden, domain.ErrAuthenticationMismatch},
	{"bad_request", http.StatusBadRequest, ErrBadRequest},
}

const codeInternal = "internal"

func classify(err error) (code string, status int) {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code, c.status
		}
	}
	return codeInternal, http.StatusInternalServerError
}

// RemoteError is a failure reported by the server. It unwraps to the domain
// error named by Code, if there is one.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	for _, c := range errorCodes {
		if c.code == e.Code {
			return c.err
		}
	}
	return nil
}
