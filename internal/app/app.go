package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"eke/internal/domain"
	"eke/internal/logging"
	"eke/internal/services/responder"
	"eke/internal/store"
	"eke/internal/transport"
)

const shutdownGrace = 5 * time.Second

// Server is the responder process: identity store, registry, HTTP handler
// and the sweeper that expires stale negotiations.
type Server struct {
	cfg       ServerConfig
	Log       *slog.Logger
	Store     domain.IdentityStore
	Responder *responder.Service
	Handler   http.Handler

	logFile io.Closer
}

// NewServer builds the dependency graph from cfg. Logs go to cfg.LogFile,
// or to stderr when it is empty.
func NewServer(cfg ServerConfig) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	policy, _ := responder.ParsePolicy(cfg.InFlightPolicy)

	var out io.Writer = os.Stderr
	var logFile io.Closer
	if cfg.LogFile != "" {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		out, logFile = f, f
	}
	log := logging.New(out, level)

	var ids domain.IdentityStore
	if cfg.DataDir == "" {
		ids = store.NewIdentityMemoryStore()
		log.Warn("no data directory; identities are kept in memory")
	} else {
		fs, err := store.OpenIdentityFileStore(cfg.DataDir, cfg.StorePassphrase)
		if err != nil {
			if logFile != nil {
				_ = logFile.Close()
			}
			return nil, fmt.Errorf("open identity store: %w", err)
		}
		ids = fs
		log.Info("identity store", "path", fs.Path(), "sealed", cfg.StorePassphrase != "",
			"identities", len(fs.Usernames()))
	}

	rsp := responder.New(ids, responder.Options{
		Policy:           policy,
		HandshakeTimeout: cfg.HandshakeTimeout,
		SessionTTL:       cfg.SessionTTL,
		Logger:           log,
	})
	return &Server{
		cfg:       cfg,
		Log:       log,
		Store:     ids,
		Responder: rsp,
		Handler:   transport.NewServer(rsp, log),
		logFile:   logFile,
	}, nil
}

// Run listens on cfg.Listen and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server and the sweeper on ln until ctx is done or
// either fails, then shuts the HTTP server down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.Log.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Log.Info("listening", "addr", ln.Addr().String())
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.Responder.Run(gctx, s.cfg.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()
		s.Log.Info("shutting down")
		return hs.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the log file, if one was opened.
func (s *Server) Close() error {
	if s.logFile != nil {
		return s.logFile.Close()
	}
	return nil
}
