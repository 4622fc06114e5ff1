package commands

import (
	"bufio"

	"github.com/spf13/cobra"

	"eke/internal/domain"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [username]",
		Short: "Register a username and password with the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := domain.Username(args[0])
			pw, err := readPassword(cmd, bufio.NewReader(cmd.InOrStdin()))
			if err != nil {
				return err
			}
			if err := client.Initiator.Register(cmd.Context(), username, pw); err != nil {
				return err
			}
			console.Success("Registered %s (kdf %s) with %s", username, client.Initiator.KDF(), cfg.ServerURL)
			return nil
		},
	}
}
