package commands

import (
	"github.com/spf13/cobra"

	"eke/internal/app"
	"eke/internal/domain"
)

func demoCmd() *cobra.Command {
	var (
		username = "alice"
		pw       = "123456"
		message  = "hello"
	)
	cmd := &cobra.Command{
		Use:         "demo",
		Short:       "Run a complete register/handshake/send cycle in-process",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var logOut = cmd.ErrOrStderr()
			if !verbose {
				logOut = nil
			}
			demo, err := app.NewDemo(domain.KDF(cfg.KDF), logOut)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			user := domain.Username(username)

			if err := demo.Initiator.Register(ctx, user, pw); err != nil {
				return err
			}
			console.Success("Registered %s", user)

			sess, err := demo.Initiator.Connect(ctx, user, pw)
			if err != nil {
				return err
			}
			defer sess.Close(ctx)
			console.Success("Session %s established (key %s)", sess.ID(), sess.Fingerprint())

			reply, err := sess.Send(ctx, []byte(message))
			if err != nil {
				return err
			}
			console.Info("Sent %q", message)
			console.Plain("%s", reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", username, "demo username")
	cmd.Flags().StringVar(&pw, "demo-password", pw, "demo password")
	cmd.Flags().StringVar(&message, "message", message, "message to send")
	return cmd
}
