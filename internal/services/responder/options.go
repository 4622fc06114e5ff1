package responder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eke/internal/domain"
)

// Policy decides what a new round 1 does while the same username already
// has a negotiation in flight.
type Policy string

const (
	// PolicyReplace discards the in-flight negotiation and starts the new one.
	PolicyReplace Policy = "replace"
	// PolicyReject fails the new round 1 with ErrNegotiationInProgress.
	PolicyReject Policy = "reject"
)

// ParsePolicy validates a policy name. The empty string selects PolicyReplace.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case "", PolicyReplace:
		return PolicyReplace, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("unknown in-flight policy %q", name)
	}
}

const (
	DefaultHandshakeTimeout = 30 * time.Second
	DefaultSessionTTL       = 30 * time.Minute
)

// Handler produces the reply to one decrypted application message.
type Handler func(ctx context.Context, username domain.Username, message []byte) ([]byte, error)

// ReceiptHandler acknowledges every message with its arrival time.
func ReceiptHandler(now func() time.Time) Handler {
	return func(_ context.Context, _ domain.Username, _ []byte) ([]byte, error) {
		return []byte("Message received at " + now().UTC().Format(time.RFC3339)), nil
	}
}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	Policy           Policy
	HandshakeTimeout time.Duration
	SessionTTL       time.Duration
	Handler          Handler
	Logger           *slog.Logger
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Policy == "" {
		o.Policy = PolicyReplace
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Handler == nil {
		o.Handler = ReceiptHandler(o.Now)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
