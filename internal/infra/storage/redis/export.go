package redis

import (
	"context"
	"fmt"

	"github.com/gabapcia/powledger/internal/ledger"
	"github.com/gabapcia/powledger/internal/ledgerexport"
	"github.com/gabapcia/powledger/internal/pkg/resilience/retry"

	redis "github.com/redis/go-redis/v9"
)

// ledgerKeyPrefix namespaces every key written by this package.
const ledgerKeyPrefix = "ledger"

// exportKey holds the latest full export of a chain:
//
//	"ledger:export:<name>"
func exportKey(name string) string {
	return fmt.Sprintf("%s:export:%s", ledgerKeyPrefix, name)
}

// tipKey holds the hash of the last block of the latest export:
//
//	"ledger:tip:<name>"
func tipKey(name string) string {
	return fmt.Sprintf("%s:tip:%s", ledgerKeyPrefix, name)
}

// PublishExport stores doc and its tip hash under name. Both keys are written
// in one MULTI/EXEC so readers never see a tip from a different export.
func (c *client) PublishExport(ctx context.Context, name string, doc ledger.Document) error {
	tip, ok := doc.Tip()
	if !ok {
		return retry.Permanent(ledgerexport.ErrEmptyDocument)
	}

	data, err := doc.JSON()
	if err != nil {
		return retry.Permanent(fmt.Errorf("encode export: %w", err))
	}

	_, err = c.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, exportKey(name), data, 0)
		pipe.Set(ctx, tipKey(name), tip.Hash.String(), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store export %q: %w", name, err)
	}

	return nil
}

// exportSink binds PublishExport to a fixed chain name.
type exportSink struct {
	client *client
	name   string
}

// Compile-time assertion to ensure exportSink implements the Publisher interface.
var _ ledgerexport.Publisher = (*exportSink)(nil)

// ExportSink returns a ledgerexport.Publisher storing exports under name.
func (c *client) ExportSink(name string) *exportSink {
	return &exportSink{client: c, name: name}
}

func (s *exportSink) Publish(ctx context.Context, doc ledger.Document) error {
	return s.client.PublishExport(ctx, s.name, doc)
}
