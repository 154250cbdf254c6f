package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/gabapcia/powledger/internal/pkg/logger"
	"github.com/gabapcia/powledger/internal/pkg/types"
)

// DefaultDifficulty is the number of leading zero hex characters every block
// hash must carry unless WithDifficulty says otherwise.
const DefaultDifficulty = 4

type config struct {
	difficulty  int
	mineOptions []MineOption
}

// Option configures a Chain.
type Option func(*config)

// WithDifficulty sets the proof-of-work difficulty used for genesis and every
// appended block.
func WithDifficulty(difficulty int) Option {
	return func(c *config) {
		c.difficulty = difficulty
	}
}

// WithMineOptions applies opts to every mining run performed by the chain.
func WithMineOptions(opts ...MineOption) Option {
	return func(c *config) {
		c.mineOptions = append(c.mineOptions, opts...)
	}
}

// Chain is an ordered, append-only sequence of mined blocks.
//
// Appends are serialized: one block is mined at a time, under writeMu. Readers
// only take mu, so Validate and Blocks never wait for a search in progress.
type Chain struct {
	difficulty  int
	mineOptions []MineOption

	writeMu sync.Mutex
	mu      sync.RWMutex
	blocks  []Block
}

// New builds a chain holding a freshly mined genesis block: index 0, previous
// hash "0" and the genesis transaction.
func New(ctx context.Context, opts ...Option) (*Chain, error) {
	cfg := config{difficulty: DefaultDifficulty}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkDifficulty(cfg.difficulty); err != nil {
		return nil, err
	}

	genesis, err := NewBlock(0, []Transaction{GenesisTransaction()}, GenesisPreviousHash)
	if err != nil {
		return nil, fmt.Errorf("build genesis block: %w", err)
	}

	if err := genesis.Mine(ctx, cfg.difficulty, cfg.mineOptions...); err != nil {
		return nil, fmt.Errorf("mine genesis block: %w", err)
	}

	logger.Info(ctx, "genesis block mined",
		"block.hash", genesis.Hash,
		"mining.difficulty", cfg.difficulty,
	)

	return &Chain{
		difficulty:  cfg.difficulty,
		mineOptions: cfg.mineOptions,
		blocks:      []Block{genesis.clone()},
	}, nil
}

// Difficulty returns the proof-of-work difficulty of the chain.
func (c *Chain) Difficulty() int {
	return c.difficulty
}

// Append mines b at the chain difficulty and stores a copy of it.
//
// The caller is responsible for wiring b.Index and b.PreviousHash to the
// current tip. Append does not check them; a mis-linked block is stored and
// only reported by Validate or Audit. Use AppendTransactions to have the
// linkage derived from the tip instead.
func (c *Chain) Append(ctx context.Context, b *Block) error {
	if b == nil {
		return fmt.Errorf("%w: nil block", ErrInvalidArgument)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.mineAndStore(ctx, b)
}

// AppendTransactions seals txs into a new block linked to the current tip,
// mines it and appends it. The stored block is returned.
func (c *Chain) AppendTransactions(ctx context.Context, txs []Transaction) (Block, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	tip := c.Tip()
	b, err := NewBlock(tip.Index+1, txs, tip.Hash)
	if err != nil {
		return Block{}, err
	}

	if err := c.mineAndStore(ctx, b); err != nil {
		return Block{}, err
	}

	return b.clone(), nil
}

// mineAndStore must be called with writeMu held.
func (c *Chain) mineAndStore(ctx context.Context, b *Block) error {
	if err := b.Mine(ctx, c.difficulty, c.mineOptions...); err != nil {
		return fmt.Errorf("mine block %d: %w", b.Index, err)
	}

	c.mu.Lock()
	c.blocks = append(c.blocks, b.clone())
	length := len(c.blocks)
	c.mu.Unlock()

	logger.Info(ctx, "block appended",
		"block.index", b.Index,
		"block.hash", b.Hash,
		"block.transactions", len(b.Transactions),
		"chain.length", length,
	)

	return nil
}

// Len returns the number of blocks, genesis included.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Tip returns a copy of the last block.
func (c *Chain) Tip() Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1].clone()
}

// TipHash returns the hash of the last block.
func (c *Chain) TipHash() types.Digest {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1].Hash
}

// Blocks returns a copy of the whole chain in order. Changes to the result do
// not reach the chain.
func (c *Chain) Blocks() []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return cloneBlocks(c.blocks)
}

func cloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].clone()
	}
	return out
}
