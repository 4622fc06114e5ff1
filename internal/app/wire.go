package app

import (
	"io"
	"log/slog"
	"net/http"

	"eke/internal/domain"
	"eke/internal/logging"
	"eke/internal/services/initiator"
	"eke/internal/services/responder"
	"eke/internal/store"
	"eke/internal/transport"
)

// Client bundles what the CLI needs to talk to a responder.
type Client struct {
	Transport domain.ResponderClient
	Initiator *initiator.Service
}

// NewClient builds the HTTP transport and initiator service from cfg.
func NewClient(cfg ClientConfig, log *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hc := cfg.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	tc := transport.NewHTTPClient(cfg.ServerURL, hc)
	svc, err := initiator.New(tc, domain.KDF(cfg.KDF), log)
	if err != nil {
		return nil, err
	}
	return &Client{Transport: tc, Initiator: svc}, nil
}

// Demo is both ends wired in-process over a Loopback transport.
type Demo struct {
	Responder *responder.Service
	Initiator *initiator.Service
}

// NewDemo keeps identities in memory and logs to w (nil discards).
func NewDemo(kdf domain.KDF, w io.Writer) (*Demo, error) {
	log := slog.New(slog.DiscardHandler)
	if w != nil {
		log = logging.New(w, slog.LevelInfo)
	}
	rsp := responder.New(store.NewIdentityMemoryStore(), responder.Options{Logger: log})
	svc, err := initiator.New(transport.NewLoopback(rsp), kdf, log)
	if err != nil {
		return nil, err
	}
	return &Demo{Responder: rsp, Initiator: svc}, nil
}
