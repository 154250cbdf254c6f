package cli

import (
	"context"
	"io"

	"github.com/gabapcia/powledger/internal/config"
	"github.com/gabapcia/powledger/internal/ledgerexport"

	"github.com/urfave/cli/v3"
)

// Run builds the powledger command tree and executes it with args, writing
// command output to out.
//
// Commands:
//
//   - `demo`: mines a small chain of signed transfers and prints it.
//   - `keygen`: prints a new wallet.
//   - `merkle`: prints the Merkle root of a list of digests.
//
// exporter receives the chain when `demo --publish` is given; it may be nil
// when no sink is configured.
func Run(ctx context.Context, args []string, out io.Writer, cfg config.Config, exporter ledgerexport.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "powledger",
		Description:           "Proof-of-work ledger: mine, validate and export a hash-linked chain of signed transfers.",
		Usage:                 "powledger [command] [flags]",
		Writer:                out,
		Commands: []*cli.Command{
			demoCommand(cfg, exporter, out),
			keygenCommand(out),
			merkleCommand(out),
		},
	}

	return app.Run(ctx, args)
}
