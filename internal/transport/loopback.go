package transport

import (
	"context"

	"eke/internal/domain"
)

// Loopback calls a responder service in-process. It copies frame data in
// both directions so neither side can alias the other's buffers.
type Loopback struct {
	svc domain.ResponderService
}

func NewLoopback(svc domain.ResponderService) *Loopback { return &Loopback{svc: svc} }

func (l *Loopback) Register(ctx context.Context, reg domain.Registration) error {
	return l.svc.RegisterSecret(ctx, reg)
}

func (l *Loopback) Negotiate(ctx context.Context, round domain.Round, f domain.Frame) (domain.Frame, error) {
	f.Data = clone(f.Data)
	out, err := dispatch(ctx, l.svc, round, f)
	if err != nil {
		return domain.Frame{}, err
	}
	out.Data = clone(out.Data)
	return out, nil
}

func (l *Loopback) Send(ctx context.Context, f domain.Frame) (domain.Frame, error) {
	reply, err := l.svc.Exchange(ctx, f.Username, f.NegotiationID, clone(f.Data))
	if err != nil {
		return domain.Frame{}, err
	}
	return domain.Frame{Username: f.Username, NegotiationID: f.NegotiationID, Data: clone(reply)}, nil
}

func (l *Loopback) Close(ctx context.Context, username domain.Username, id domain.NegotiationID) error {
	return l.svc.Close(ctx, username, id)
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

var _ domain.ResponderClient = (*Loopback)(nil)
