package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/gabapcia/powledger/internal/pkg/merkle"
	"github.com/gabapcia/powledger/internal/pkg/types"

	"github.com/urfave/cli/v3"
)

// merkleCommand returns a command folding digests into a Merkle root and,
// with --proof, printing the inclusion proof of one leaf.
//
// Usage example:
//
//	powledger merkle --proof 1 <digest> <digest> <digest>
func merkleCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "merkle",
		Description: "Compute the Merkle root of an ordered list of 64 character hex digests.",
		Usage:       "Prints the root of the given leaves. Odd levels duplicate their last node.",
		ArgsUsage:   "LEAF...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "proof",
				Usage: "Also print the inclusion proof of the leaf at this position",
				Value: -1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			leaves := make([]types.Digest, 0, c.NArg())
			for _, arg := range c.Args().Slice() {
				leaf, err := types.DigestFromString(arg)
				if err != nil {
					return fmt.Errorf("%w: leaf %q: %w", merkle.ErrInvalidArgument, arg, err)
				}
				leaves = append(leaves, leaf)
			}

			root, err := merkle.Root(leaves)
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintf(out, "root: %s\n", root); err != nil {
				return err
			}

			index := c.Int("proof")
			if index < 0 {
				return nil
			}

			proof, err := merkle.Proof(leaves, index)
			if err != nil {
				return err
			}

			for i, step := range proof {
				if _, err := fmt.Fprintf(out, "step %d: %s %s\n", i, step.Side, step.Sibling); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
