package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lmaotrigine/indieauth/token"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func keygenCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an Ed25519 key pair for PASETO_PUBLIC and PASETO_PRIVATE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keyPair, err := token.GenerateKeyPair()
			if err != nil {
				return err
			}
			if outFile == "" {
				return writeKeyPair(cmd.OutOrStdout(), keyPair)
			}

			f, err := os.OpenFile(outFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
			if err != nil {
				return errors.Wrap(err, "failed to create key file")
			}
			if err := writeKeyPair(f, keyPair); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "The file to export to. Prints out otherwise.")
	return cmd
}

func writeKeyPair(w io.Writer, keyPair *token.KeyPair) error {
	_, err := fmt.Fprintf(w, "Public: %s\nPrivate: %s\n", keyPair.PublicHex(), keyPair.PrivateHex())
	return err
}
