package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eke/internal/crypto"
	"eke/internal/domain"
	"eke/internal/protocol/eke"
)

// Service registers identities and answers the three handshake rounds.
type Service struct {
	ids  domain.IdentityStore
	opts Options
	log  *slog.Logger
	reg  *registry
}

// New returns a Service backed by ids.
func New(ids domain.IdentityStore, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		ids:  ids,
		opts: opts,
		log:  opts.Logger.With("component", "responder"),
		reg:  newRegistry(),
	}
}

// Register derives the password secret with kdf and creates the identity.
func (s *Service) Register(ctx context.Context, username domain.Username, password string, kdf domain.KDF) error {
	kdf, err := crypto.ParseKDF(kdf.String())
	if err != nil {
		return err
	}
	secret, err := crypto.DerivePasswordKey(kdf, username, password)
	if err != nil {
		return err
	}
	return s.RegisterSecret(ctx, domain.Registration{Username: username, Secret: secret, KDF: kdf})
}

// RegisterSecret creates an identity from an already-derived secret.
func (s *Service) RegisterSecret(ctx context.Context, reg domain.Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := domain.ValidateUsername(reg.Username); err != nil {
		return err
	}
	kdf, err := crypto.ParseKDF(reg.KDF.String())
	if err != nil {
		return err
	}
	if reg.Secret == (domain.SymmetricKey{}) {
		return errors.New("responder: empty secret")
	}

	id := domain.Identity{
		Username:   reg.Username,
		Secret:     reg.Secret,
		KDF:        kdf,
		CreatedUTC: s.opts.Now().UTC().Unix(),
	}
	if err := s.ids.CreateIdentity(id); err != nil {
		s.log.Info("register rejected", "username", reg.Username, "err", err)
		return err
	}
	s.log.Info("registered", "username", reg.Username, "kdf", kdf)
	return nil
}

// Negotiate12 starts a negotiation: it consumes msg1, mints the negotiation
// id and returns it with msg2.
func (s *Service) Negotiate12(
	ctx context.Context,
	username domain.Username,
	msg1 []byte,
) (domain.NegotiationID, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if err := domain.ValidateUsername(username); err != nil {
		return "", nil, err
	}
	id, err := s.ids.LoadIdentity(username)
	if err != nil {
		return "", nil, err
	}

	r := eke.NewResponder(id)
	msg2, err := r.OnMsg1(msg1)
	if err != nil {
		s.log.Warn("negotiation failed", "username", username, "round", domain.Round12, "err", err)
		return "", nil, err
	}

	now := s.opts.Now()
	sl := &slot{
		key:     slotKey{username: username, id: newNegotiationID()},
		started: now,
		r:       r,
	}
	sl.touch(now)

	evicted, err := s.reg.insert(sl, func(old *slot) bool {
		if now.Sub(old.started) > s.opts.HandshakeTimeout {
			return true
		}
		return s.opts.Policy == PolicyReplace
	})
	if err != nil {
		r.Discard()
		s.log.Info("negotiation rejected", "username", username, "err", err)
		return "", nil, err
	}
	if evicted != nil {
		evicted.mu.Lock()
		evicted.kill()
		evicted.mu.Unlock()
		s.log.Info("negotiation replaced", "username", username,
			"old_negotiation", evicted.key.id, "negotiation", sl.key.id)
	}

	s.log.Info("negotiation started", "username", username, "negotiation", sl.key.id,
		"fingerprint", r.Fingerprint(), "state", r.State())
	return sl.key.id, msg2, nil
}

// Negotiate34 consumes msg3 and returns msg4.
func (s *Service) Negotiate34(
	ctx context.Context,
	username domain.Username,
	id domain.NegotiationID,
	msg3 []byte,
) ([]byte, error) {
	return s.round(ctx, domain.Round34, username, id, func(sl *slot) ([]byte, error) {
		return sl.r.OnMsg3(msg3)
	})
}

// Negotiate56 consumes msg5 and returns msg6. On success the session is
// established under the same id.
func (s *Service) Negotiate56(
	ctx context.Context,
	username domain.Username,
	id domain.NegotiationID,
	msg5 []byte,
) ([]byte, error) {
	return s.round(ctx, domain.Round56, username, id, func(sl *slot) ([]byte, error) {
		if sl.r.State() == eke.StateChallengeIssued && !s.reg.claim(sl) {
			return nil, fmt.Errorf("responder: %w: %s/%s replaced", domain.ErrUnknownNegotiation, username, id)
		}
		msg6, err := sl.r.OnMsg5(msg5)
		if err != nil {
			return nil, err
		}
		ch, err := sl.r.Channel()
		if err != nil {
			return nil, err
		}
		sl.channel = ch
		sl.established.Store(true)
		s.reg.promote(sl)
		return msg6, nil
	})
}

// round runs fn on the slot for (username, id) under the slot lock. A
// failing round removes and wipes the slot; a call in the wrong state
// leaves it alone.
func (s *Service) round(
	ctx context.Context,
	round domain.Round,
	username domain.Username,
	id domain.NegotiationID,
	fn func(*slot) ([]byte, error),
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sl, err := s.reg.lookup(username, id)
	if err != nil {
		return nil, err
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.dead {
		return nil, fmt.Errorf("responder: %w: %s/%s", domain.ErrUnknownNegotiation, username, id)
	}

	out, err := fn(sl)
	if err != nil {
		if errors.Is(err, domain.ErrProtocolStateViolation) {
			s.log.Info("round out of order", "username", username, "negotiation", id,
				"round", round, "state", sl.r.State())
			return nil, err
		}
		s.reg.remove(sl)
		sl.kill()
		s.log.Warn("negotiation failed", "username", username, "negotiation", id,
			"round", round, "err", err)
		return nil, err
	}

	sl.touch(s.opts.Now())
	s.log.Info("round complete", "username", username, "negotiation", id,
		"round", round, "state", sl.r.State())
	return out, nil
}

// Exchange decrypts one application message, passes it to the handler and
// returns the encrypted reply.
func (s *Service) Exchange(
	ctx context.Context,
	username domain.Username,
	id domain.NegotiationID,
	ciphertext []byte,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sl, err := s.reg.lookup(username, id)
	if err != nil {
		return nil, err
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.dead {
		return nil, fmt.Errorf("responder: %w: %s/%s", domain.ErrUnknownNegotiation, username, id)
	}
	if sl.channel == nil {
		return nil, fmt.Errorf("responder: exchange: %w: session not established", domain.ErrProtocolStateViolation)
	}

	msg, err := sl.channel.Receive(ciphertext)
	if err != nil {
		s.log.Warn("message rejected", "username", username, "negotiation", id, "err", err)
		return nil, err
	}
	reply, err := s.opts.Handler(ctx, username, msg)
	if err != nil {
		return nil, fmt.Errorf("responder: handler: %w", err)
	}
	out, err := sl.channel.Send(reply)
	if err != nil {
		return nil, err
	}
	sl.touch(s.opts.Now())
	s.log.Debug("message exchanged", "username", username, "negotiation", id)
	return out, nil
}

// Close ends a negotiation or session and wipes its keys.
func (s *Service) Close(ctx context.Context, username domain.Username, id domain.NegotiationID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sl, err := s.reg.lookup(username, id)
	if err != nil {
		return err
	}
	if !s.reg.remove(sl) {
		return fmt.Errorf("responder: %w: %s/%s", domain.ErrUnknownNegotiation, username, id)
	}
	sl.mu.Lock()
	sl.kill()
	sl.mu.Unlock()
	s.log.Info("session closed", "username", username, "negotiation", id)
	return nil
}

// Sweep wipes negotiations older than the handshake timeout and sessions
// idle for longer than the session TTL. It returns how many were removed.
func (s *Service) Sweep(now time.Time) int {
	stale := s.reg.expired(now, s.opts.HandshakeTimeout, s.opts.SessionTTL)
	for _, sl := range stale {
		sl.mu.Lock()
		sl.kill()
		sl.mu.Unlock()
		s.log.Info("expired", "username", sl.key.username, "negotiation", sl.key.id)
	}
	return len(stale)
}

// Run calls Sweep every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Sweep(s.opts.Now())
		}
	}
}

// Counts reports live negotiations that are still in flight and established.
func (s *Service) Counts() (inFlight, established int) { return s.reg.counts() }

// Compile-time assertion that Service implements domain.ResponderService.
var _ domain.ResponderService = (*Service)(nil)
