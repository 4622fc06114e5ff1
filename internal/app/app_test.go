package app_test

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eke/internal/app"
	"eke/internal/domain"
	"eke/internal/store"
	"eke/internal/transport"
)

func TestServerConfig_Validate(t *testing.T) {
	if err := app.DefaultServerConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cases := map[string]func(*app.ServerConfig){
		"no listen":         func(c *app.ServerConfig) { c.Listen = "" },
		"bad policy":        func(c *app.ServerConfig) { c.InFlightPolicy = "queue" },
		"zero timeout":      func(c *app.ServerConfig) { c.HandshakeTimeout = 0 },
		"zero sweep":        func(c *app.ServerConfig) { c.SweepInterval = 0 },
		"orphan passphrase": func(c *app.ServerConfig) { c.StorePassphrase = "x" },
		"bad level":         func(c *app.ServerConfig) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		cfg := app.DefaultServerConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestClientConfig_Validate(t *testing.T) {
	if err := app.DefaultClientConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	for _, u := range []string{"", "127.0.0.1:5000", "ftp://host", "http://"} {
		cfg := app.DefaultClientConfig()
		cfg.ServerURL = u
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%q: expected error", u)
		}
	}
	cfg := app.DefaultClientConfig()
	cfg.KDF = "md5"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown kdf")
	}
}

func TestServer_ServeRegisterConnect(t *testing.T) {
	dir := t.TempDir()
	cfg := app.DefaultServerConfig()
	cfg.DataDir = dir
	cfg.StorePassphrase = "server passphrase"
	cfg.LogFile = filepath.Join(dir, "log", "server.log")
	cfg.SweepInterval = 50 * time.Millisecond

	srv, err := app.NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer srv.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	ccfg := app.DefaultClientConfig()
	ccfg.ServerURL = "http://" + ln.Addr().String()
	ccfg.KDF = string(domain.KDFSHA256)
	client, err := app.NewClient(ccfg, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := client.Transport.(*transport.HTTPClient).Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := client.Initiator.Register(ctx, "alice", "zebra-Quartz-pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	sess, err := client.Initiator.Connect(ctx, "alice", "zebra-Quartz-pw")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	reply, err := sess.Send(ctx, []byte("hello"))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.HasPrefix(string(reply), "Message received at ") {
		t.Fatalf("reply %q", reply)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	// The identity survived in the sealed file.
	reopened, err := store.OpenIdentityFileStore(dir, "server passphrase")
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if _, err := reopened.LoadIdentity("alice"); err != nil {
		t.Fatalf("alice not persisted: %v", err)
	}
	logs, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(logs), "zebra-Quartz-pw") {
		t.Fatal("password reached the server log")
	}
	if !strings.Contains(string(logs), "session established") && !strings.Contains(string(logs), "round complete") {
		t.Fatalf("handshake not logged:\n%s", logs)
	}
}

func TestNewServer_WrongStorePassphrase(t *testing.T) {
	dir := t.TempDir()
	cfg := app.DefaultServerConfig()
	cfg.DataDir = dir
	cfg.StorePassphrase = "one"
	cfg.LogFile = filepath.Join(dir, "server.log")
	srv, err := app.NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Responder.Register(context.Background(), "alice", "pw", domain.KDFSHA256); err != nil {
		t.Fatalf("register: %v", err)
	}
	srv.Close()

	cfg.StorePassphrase = "two"
	if _, err := app.NewServer(cfg); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
}

func TestDemo_AliceScenario(t *testing.T) {
	ctx := context.Background()
	demo, err := app.NewDemo(domain.KDFArgon2id, nil)
	if err != nil {
		t.Fatalf("NewDemo: %v", err)
	}
	if err := demo.Initiator.Register(ctx, "alice", "123456"); err != nil {
		t.Fatalf("register: %v", err)
	}
	sess, err := demo.Initiator.Connect(ctx, "alice", "123456")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := sess.Send(ctx, []byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, est := demo.Responder.Counts(); est != 1 {
		t.Fatalf("%d established sessions, want 1", est)
	}
}
