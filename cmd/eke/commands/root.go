package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"eke/internal/app"
	"eke/internal/logging"
)

const passwordEnv = "EKE_PASSWORD"

var (
	cfg      = app.DefaultClientConfig()
	password string
	verbose  bool

	client  *app.Client
	console *logging.Console
)

// Execute runs the root command and prints any error as a warning line.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRoot()
	if err := root.ExecuteContext(ctx); err != nil {
		logging.NewConsole(root.ErrOrStderr()).Warn("%v", err)
		return err
	}
	return nil
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "eke",
		Short:         "Password-authenticated key exchange client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			console = logging.NewConsole(cmd.OutOrStdout())
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			var err error
			client, err = app.NewClient(cfg, clientLogger(cmd.ErrOrStderr()))
			return err
		},
	}

	root.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "responder base URL")
	root.PersistentFlags().StringVar(&cfg.KDF, "kdf", cfg.KDF, "password KDF: argon2id or sha256")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	root.PersistentFlags().StringVarP(&password, "password", "p", "", "account password (or $"+passwordEnv+")")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log protocol events to stderr")

	root.AddCommand(registerCmd(), connectCmd(), sendCmd(), demoCmd(), fingerprintCmd())
	return root
}

func clientLogger(w io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return logging.New(w, slog.LevelDebug)
}

// readPassword resolves the password from the flag, the environment, or
// the first line of in.
func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if password != "" {
		return password, nil
	}
	if env := os.Getenv(passwordEnv); env != "" {
		return env, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func since(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
