package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/gabapcia/powledger/internal/wallet"

	"github.com/urfave/cli/v3"
)

// keygenCommand returns a command printing a freshly generated wallet.
//
// Usage example:
//
//	powledger keygen
func keygenCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "keygen",
		Description: "Generate an ed25519 wallet and print its keys and address.",
		Usage:       "Prints the base64 public and private keys and the base58check address of a new wallet.",
		Action: func(ctx context.Context, c *cli.Command) error {
			w, err := wallet.New()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(out, "public key:  %s\nprivate key: %s\naddress:     %s\n",
				w.EncodedPublicKey(),
				w.EncodedPrivateKey(),
				w.Address(),
			)
			return err
		},
	}
}
