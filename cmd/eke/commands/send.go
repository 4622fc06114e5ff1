package commands

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"eke/internal/domain"
)

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send [username] [message...]",
		Short: "Establish a session, send one message and print the reply",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, domain.Username(args[0]), bufio.NewReader(cmd.InOrStdin()))
			if err != nil {
				return err
			}
			defer closeSession(sess)

			reply, err := sess.Send(cmd.Context(), []byte(strings.Join(args[1:], " ")))
			if err != nil {
				return err
			}
			console.Plain("%s", reply)
			return nil
		},
	}
}
