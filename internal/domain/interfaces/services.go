package interfaces

import (
	"context"

	domaintypes "eke/internal/domain/types"
)

// ResponderService is the server role as seen by a transport: registration,
// the three handshake rounds and post-handshake application traffic.
type ResponderService interface {
	RegisterSecret(ctx context.Context, reg domaintypes.Registration) error
	Negotiate12(
		ctx context.Context,
		username domaintypes.Username,
		msg1 []byte,
	) (domaintypes.NegotiationID, []byte, error)
	Negotiate34(
		ctx context.Context,
		username domaintypes.Username,
		id domaintypes.NegotiationID,
		msg3 []byte,
	) ([]byte, error)
	Negotiate56(
		ctx context.Context,
		username domaintypes.Username,
		id domaintypes.NegotiationID,
		msg5 []byte,
	) ([]byte, error)
	Exchange(
		ctx context.Context,
		username domaintypes.Username,
		id domaintypes.NegotiationID,
		ciphertext []byte,
	) ([]byte, error)
	Close(ctx context.Context, username domaintypes.Username, id domaintypes.NegotiationID) error
}
