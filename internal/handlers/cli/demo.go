package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabapcia/powledger/internal/blockproc"
	"github.com/gabapcia/powledger/internal/config"
	"github.com/gabapcia/powledger/internal/ledger"
	"github.com/gabapcia/powledger/internal/ledgerexport"
	"github.com/gabapcia/powledger/internal/pkg/logger"
	"github.com/gabapcia/powledger/internal/pkg/x/chflow"
	"github.com/gabapcia/powledger/internal/wallet"

	"github.com/urfave/cli/v3"
)

// ErrNoExporter is returned by `demo --publish` when no export sink is configured.
var ErrNoExporter = errors.New("no export sink configured")

// transfer is one scripted payment of the demo.
type transfer struct {
	sender, recipient string
	amount            uint64
}

// demoTransfers pass value around a ring of four participants.
var demoTransfers = []transfer{
	{"Alice", "Bob", 50},
	{"Bob", "Charlie", 30},
	{"Charlie", "Dave", 20},
	{"Dave", "Alice", 10},
}

// demoWallets creates one wallet per participant of demoTransfers, plus an
// outsider used to forge a transfer.
func demoWallets() (map[string]*wallet.Wallet, error) {
	wallets := make(map[string]*wallet.Wallet)
	for _, name := range []string{"Alice", "Bob", "Charlie", "Dave", "Mallory"} {
		w, err := wallet.New()
		if err != nil {
			return nil, err
		}
		wallets[name] = w
	}

	return wallets, nil
}

// sealTransfers signs every transfer with its sender's wallet and has the
// producer seal each one in its own block.
func sealTransfers(ctx context.Context, producer blockproc.Service, wallets map[string]*wallet.Wallet) error {
	sealedCh, err := producer.Start(ctx)
	if err != nil {
		return err
	}
	defer producer.Close()

	for _, tr := range demoTransfers {
		sender := wallets[tr.sender]

		tx, err := ledger.NewTransaction(tr.sender, tr.recipient, tr.amount, sender.EncodedPublicKey())
		if err != nil {
			return err
		}

		if err := tx.Sign(sender.PrivateKey()); err != nil {
			return err
		}

		if err := producer.Submit(ctx, blockproc.Batch{Transactions: []ledger.Transaction{tx}}); err != nil {
			return err
		}
	}

	sealed, ok := chflow.ReceiveN(ctx, sealedCh, len(demoTransfers))
	if !ok {
		return errors.Join(fmt.Errorf("producer stopped after %d of %d blocks", len(sealed), len(demoTransfers)), ctx.Err())
	}

	var errs []error
	for _, s := range sealed {
		if s.Err != nil {
			errs = append(errs, fmt.Errorf("batch %s: %w", s.ProcessingID, s.Err))
		}
	}

	return errors.Join(errs...)
}

// forgeBlock appends a block that claims Alice pays Mallory but is signed by
// Mallory and linked to genesis instead of the tip. Append stores it; only
// validation notices.
func forgeBlock(ctx context.Context, chain *ledger.Chain, wallets map[string]*wallet.Wallet) error {
	tx, err := ledger.NewTransaction("Alice", "Mallory", 999, wallets["Alice"].EncodedPublicKey())
	if err != nil {
		return err
	}

	if err := tx.Sign(wallets["Mallory"].PrivateKey()); err != nil {
		return err
	}

	genesis := chain.Blocks()[0]
	block, err := ledger.NewBlock(uint64(chain.Len()), []ledger.Transaction{tx}, genesis.Hash)
	if err != nil {
		return err
	}

	return chain.Append(ctx, block)
}

// demoCommand returns the command reproducing the reference scenario: four
// wallets, four signed transfers in four mined blocks, validation and a JSON
// export of the chain.
//
// Usage example:
//
//	powledger demo --difficulty 3 --tamper
func demoCommand(cfg config.Config, exporter ledgerexport.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "demo",
		Description: "Mine a chain of four signed transfers, validate it and print its JSON export.",
		Usage:       "Runs the ring-of-transfers scenario end to end.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "difficulty",
				Usage: "Leading zero hex characters required of every block hash",
				Value: cfg.Difficulty,
			},
			&cli.Uint64Flag{
				Name:  "max-attempts",
				Usage: "Nonces tried per block before giving up (0 for no limit)",
				Value: cfg.MiningMaxAttempts,
			},
			&cli.BoolFlag{
				Name:  "tamper",
				Usage: "Append a forged, mis-linked block afterwards and report the audit",
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "Send the export to the configured sinks",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("publish") && exporter == nil {
				return ErrNoExporter
			}

			chain, err := ledger.New(ctx,
				ledger.WithDifficulty(c.Int("difficulty")),
				ledger.WithMineOptions(ledger.WithMaxAttempts(c.Uint64("max-attempts"))),
			)
			if err != nil {
				return err
			}

			wallets, err := demoWallets()
			if err != nil {
				return err
			}

			producer := blockproc.New(chain,
				blockproc.WithMiningTimeout(cfg.MiningTimeout),
				blockproc.WithQueueSize(len(demoTransfers)),
			)
			if err := sealTransfers(ctx, producer, wallets); err != nil {
				return err
			}

			if _, err := fmt.Fprintf(out, "chain valid: %t\n", chain.Validate(ctx)); err != nil {
				return err
			}

			if c.Bool("tamper") {
				if err := forgeBlock(ctx, chain, wallets); err != nil {
					return err
				}

				if _, err := fmt.Fprintf(out, "chain valid after tampering: %t\n", chain.Validate(ctx)); err != nil {
					return err
				}

				for _, v := range chain.Audit(ctx) {
					if _, err := fmt.Fprintf(out, "violation: %s\n", v); err != nil {
						return err
					}
				}
			}

			doc := chain.Export()
			data, err := doc.JSON()
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintf(out, "%s\n", data); err != nil {
				return err
			}

			if c.Bool("publish") {
				if err := exporter.Publish(ctx, doc); err != nil {
					return err
				}
				logger.Info(ctx, "demo chain published", "chain.length", len(doc))
			}

			return nil
		},
	}
}
