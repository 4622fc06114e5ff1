package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"eke/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "fingerprint [pem-file]",
		Short:       "Print the fingerprint of a PEM public key (stdin if no file)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			data, err := io.ReadAll(io.LimitReader(r, 1<<16))
			if err != nil {
				return err
			}
			pub, err := crypto.ParsePublicKey(data)
			if err != nil {
				return err
			}
			console.Plain("Fingerprint: %s", crypto.PublicKeyFingerprint(pub))
			return nil
		},
	}
}
