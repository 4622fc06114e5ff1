package interfaces

import (
	"context"

	domaintypes "eke/internal/domain/types"
)

// ResponderClient is how the initiator talks to a responder, all with context.
// Negotiate returns the responder's frame for the given round; the frame for
// Round12 carries the freshly minted negotiation id.
type ResponderClient interface {
	Register(ctx context.Context, reg domaintypes.Registration) error
	Negotiate(
		ctx context.Context,
		round domaintypes.Round,
		frame domaintypes.Frame,
	) (domaintypes.Frame, error)
	Send(ctx context.Context, frame domaintypes.Frame) (domaintypes.Frame, error)
	Close(ctx context.Context, username domaintypes.Username, id domaintypes.NegotiationID) error
}
