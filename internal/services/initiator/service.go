package initiator

import (
	"context"
	"fmt"
	"log/slog"

	"eke/internal/crypto"
	"eke/internal/domain"
	"eke/internal/protocol/eke"
)

// Service registers accounts and opens sessions against one responder.
type Service struct {
	client domain.ResponderClient
	kdf    domain.KDF
	log    *slog.Logger
}

// New returns a Service that derives password keys with kdf (empty selects
// the default) and talks to the responder through client.
func New(client domain.ResponderClient, kdf domain.KDF, log *slog.Logger) (*Service, error) {
	kdf, err := crypto.ParseKDF(kdf.String())
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, kdf: kdf, log: log.With("component", "initiator")}, nil
}

// KDF reports the password KDF in use.
func (s *Service) KDF() domain.KDF { return s.kdf }

// Register derives the password secret and uploads it.
func (s *Service) Register(ctx context.Context, username domain.Username, password string) error {
	if err := domain.ValidateUsername(username); err != nil {
		return err
	}
	secret, err := crypto.DerivePasswordKey(s.kdf, username, password)
	if err != nil {
		return err
	}
	if err := s.client.Register(ctx, domain.Registration{Username: username, Secret: secret, KDF: s.kdf}); err != nil {
		return fmt.Errorf("register %s: %w", username, err)
	}
	s.log.Info("registered", "username", username, "kdf", s.kdf)
	return nil
}

// Connect runs a full handshake and returns the established session. On any
// failure all handshake state is wiped; there is no automatic retry.
func (s *Service) Connect(ctx context.Context, username domain.Username, password string) (*Session, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	keyP, err := crypto.DerivePasswordKey(s.kdf, username, password)
	if err != nil {
		return nil, err
	}
	in := eke.NewInitiator(keyP)

	id, err := s.handshake(ctx, in, username)
	if err != nil {
		in.Reset()
		s.log.Warn("handshake failed", "username", username, "negotiation", id, "err", err)
		if id != "" {
			// Best effort; the responder drops failed negotiations itself.
			_ = s.client.Close(context.WithoutCancel(ctx), username, id)
		}
		return nil, err
	}

	ch, err := in.Channel()
	if err != nil {
		in.Reset()
		return nil, err
	}
	s.log.Info("session established", "username", username, "negotiation", id, "fingerprint", in.Fingerprint())
	return &Session{
		client:      s.client,
		username:    username,
		id:          id,
		fingerprint: in.Fingerprint(),
		in:          in,
		ch:          ch,
	}, nil
}

func (s *Service) handshake(ctx context.Context, in *eke.Initiator, username domain.Username) (domain.NegotiationID, error) {
	msg1, err := in.Start()
	if err != nil {
		return "", err
	}
	reply, err := s.client.Negotiate(ctx, domain.Round12, domain.Frame{Username: username, Data: msg1})
	if err != nil {
		return "", fmt.Errorf("%s: %w", domain.Round12, err)
	}
	id := reply.NegotiationID
	if id == "" {
		return "", fmt.Errorf("%s: %w: no negotiation id", domain.Round12, domain.ErrProtocolStateViolation)
	}

	msg3, err := in.OnMsg2(reply.Data)
	if err != nil {
		return id, err
	}
	if reply, err = s.client.Negotiate(ctx, domain.Round34, domain.Frame{Username: username, NegotiationID: id, Data: msg3}); err != nil {
		return id, fmt.Errorf("%s: %w", domain.Round34, err)
	}
	msg5, err := in.OnMsg4(reply.Data)
	if err != nil {
		return id, err
	}
	if reply, err = s.client.Negotiate(ctx, domain.Round56, domain.Frame{Username: username, NegotiationID: id, Data: msg5}); err != nil {
		return id, fmt.Errorf("%s: %w", domain.Round56, err)
	}
	return id, in.OnMsg6(reply.Data)
}
