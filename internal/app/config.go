package app

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"eke/internal/crypto"
	"eke/internal/domain"
	"eke/internal/logging"
	"eke/internal/services/responder"
)

// ServerConfig holds the responder's runtime options.
type ServerConfig struct {
	Listen           string        // host:port, e.g. 127.0.0.1:5000
	DataDir          string        // directory holding identities.json; empty keeps identities in memory
	StorePassphrase  string        // seals identities.json at rest when set
	InFlightPolicy   string        // replace or reject
	HandshakeTimeout time.Duration // in-flight negotiations older than this are dropped
	SessionTTL       time.Duration // idle established sessions older than this are dropped
	SweepInterval    time.Duration
	LogFile          string // empty logs to stderr
	LogLevel         string
}

// DefaultServerConfig mirrors the flag defaults of ekeserver.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Listen:           "127.0.0.1:5000",
		InFlightPolicy:   string(responder.PolicyReplace),
		HandshakeTimeout: responder.DefaultHandshakeTimeout,
		SessionTTL:       responder.DefaultSessionTTL,
		SweepInterval:    10 * time.Second,
		LogLevel:         "info",
	}
}

// Validate reports the first invalid field.
func (c ServerConfig) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if _, err := responder.ParsePolicy(c.InFlightPolicy); err != nil {
		return err
	}
	if c.HandshakeTimeout <= 0 || c.SessionTTL <= 0 || c.SweepInterval <= 0 {
		return errors.New("timeouts and sweep interval must be positive")
	}
	if c.StorePassphrase != "" && c.DataDir == "" {
		return errors.New("a store passphrase needs a data directory")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ClientConfig holds the initiator's runtime options.
type ClientConfig struct {
	ServerURL string        // responder base URL, e.g. http://127.0.0.1:5000
	KDF       string        // argon2id (default) or sha256
	Timeout   time.Duration // per-request timeout
	HTTP      *http.Client  // optional; overrides Timeout when set
}

// DefaultClientConfig mirrors the flag defaults of eke.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL: "http://127.0.0.1:5000",
		KDF:       string(domain.KDFArgon2id),
		Timeout:   15 * time.Second,
	}
}

// Validate reports the first invalid field.
func (c ClientConfig) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("server url %q: want http(s)://host[:port]", c.ServerURL)
	}
	if _, err := crypto.ParseKDF(c.KDF); err != nil {
		return err
	}
	if c.HTTP == nil && c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}
