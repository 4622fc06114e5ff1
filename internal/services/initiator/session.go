package initiator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"eke/internal/domain"
	"eke/internal/protocol/eke"
)

// ErrSessionClosed is returned by Send after Close.
var ErrSessionClosed = errors.New("session closed")

// Session is an established EKE session. Send is safe for concurrent use.
type Session struct {
	client      domain.ResponderClient
	username    domain.Username
	id          domain.NegotiationID
	fingerprint domain.Fingerprint

	mu     sync.Mutex
	in     *eke.Initiator
	ch     *eke.Channel
	closed bool
}

// ID is the negotiation id the responder minted for this session.
func (s *Session) ID() domain.NegotiationID { return s.id }

// Username is the account the session was opened for.
func (s *Session) Username() domain.Username { return s.username }

// Fingerprint identifies the ephemeral key used to establish the session.
func (s *Session) Fingerprint() domain.Fingerprint { return s.fingerprint }

// Send encrypts plaintext, delivers it and returns the decrypted reply.
func (s *Session) Send(ctx context.Context, plaintext []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	ct, err := s.ch.Send(plaintext)
	if err != nil {
		return nil, err
	}
	reply, err := s.client.Send(ctx, domain.Frame{Username: s.username, NegotiationID: s.id, Data: ct})
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	pt, err := s.ch.Receive(reply.Data)
	if err != nil {
		return nil, fmt.Errorf("send: reply: %w", err)
	}
	return pt, nil
}

// Close wipes the session key locally and asks the responder to do the
// same. The local wipe happens even if the request fails.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.ch.Close()
	s.in.Reset()
	return s.client.Close(ctx, s.username, s.id)
}
