package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"eke/internal/app"
	"eke/internal/logging"
)

const passphraseEnv = "EKE_STORE_PASSPHRASE"

func main() {
	if err := newRoot().Execute(); err != nil {
		logging.NewConsole(os.Stderr).Warn("%v", err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	cfg := app.DefaultServerConfig()
	cmd := &cobra.Command{
		Use:           "ekeserver",
		Short:         "EKE responder server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.StorePassphrase == "" {
				cfg.StorePassphrase = os.Getenv(passphraseEnv)
			}
			srv, err := app.NewServer(cfg)
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Listen, "listen", cfg.Listen, "address to listen on")
	f.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for identities.json (empty keeps identities in memory)")
	f.StringVar(&cfg.StorePassphrase, "store-passphrase", "", "seal identities.json with this passphrase (or $"+passphraseEnv+")")
	f.StringVar(&cfg.InFlightPolicy, "in-flight", cfg.InFlightPolicy, "new negotiation while one is in flight: replace or reject")
	f.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "drop negotiations not finished within this time")
	f.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "drop sessions idle for this long")
	f.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "how often to expire negotiations and sessions")
	f.StringVar(&cfg.LogFile, "log-file", "", "append logs to this file instead of stderr")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	return cmd
}
