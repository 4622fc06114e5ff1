package commands

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"eke/internal/domain"
	"eke/internal/services/initiator"
)

func connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect [username]",
		Short: "Establish a session, then send each stdin line and print the reply",
		Long: "Runs the six-message handshake and then reads lines from stdin. Each\n" +
			"line is sent over the session and the server's reply is printed. An\n" +
			"empty stdin, EOF or the line \"quit\" ends the session.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			sess, err := openSession(cmd, domain.Username(args[0]), in)
			if err != nil {
				return err
			}
			defer closeSession(sess)

			console.Info("Type a message and press enter; \"quit\" to exit")
			for {
				line, err := in.ReadString('\n')
				text := strings.TrimRight(line, "\r\n")
				if text != "" && text != "quit" {
					reply, sendErr := sess.Send(cmd.Context(), []byte(text))
					if sendErr != nil {
						return sendErr
					}
					console.Success("Server says: %s", reply)
				}
				if text == "quit" || errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
			}
		},
	}
}

func openSession(cmd *cobra.Command, username domain.Username, in *bufio.Reader) (*initiator.Session, error) {
	pw, err := readPassword(cmd, in)
	if err != nil {
		return nil, err
	}
	console.Info("Negotiating with %s as %s", cfg.ServerURL, username)
	start := time.Now()
	sess, err := client.Initiator.Connect(cmd.Context(), username, pw)
	if err != nil {
		return nil, err
	}
	console.Success("Session %s established in %s (key %s)", sess.ID(), since(start), sess.Fingerprint())
	return sess, nil
}

func closeSession(sess *initiator.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sess.Close(ctx); err != nil {
		console.Note("Closing session: %v", err)
	}
}
