// Package chain implements the chain state engine: the block index,
// the active-tip pointer, fork handling, and reorganization.
package chain

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/internal/consensus"
	"github.com/nozmo-king/eMoney/internal/log"
	"github.com/nozmo-king/eMoney/internal/storage"
	"github.com/nozmo-king/eMoney/internal/utxo"
	"github.com/nozmo-king/eMoney/pkg/block"
	"github.com/nozmo-king/eMoney/pkg/tx"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// Chain is the consensus engine. Writes are single-writer: SubmitBlock
// holds the write lock for the whole submission, including any
// reorganization. Readers take consistent snapshots under the read
// lock.
type Chain struct {
	mu sync.RWMutex

	params    *config.Params
	validator *consensus.Validator
	verifier  tx.ScriptVerifier
	utxos     utxo.Set
	blocks    *BlockStore

	index   *blockIndex
	genesis *blockNode
	tip     *blockNode
	supply  uint64
}

// New creates a chain for the given network. A fresh database is
// initialized with the genesis block; an existing one has its block
// index rebuilt and its tip restored.
func New(params *config.Params, db storage.DB, utxoSet utxo.Set, verifier tx.ScriptVerifier, clock consensus.Clock) (*Chain, error) {
	if db == nil {
		return nil, fmt.Errorf("storage db is nil")
	}
	if utxoSet == nil {
		return nil, fmt.Errorf("utxo set is nil")
	}
	if verifier == nil {
		return nil, fmt.Errorf("script verifier is nil")
	}

	c := &Chain{
		params:    params,
		validator: consensus.NewValidator(params, clock),
		verifier:  verifier,
		utxos:     utxoSet,
		blocks:    NewBlockStore(db),
		index:     newBlockIndex(),
	}

	genesisBlk := GenesisBlock(params)
	c.genesis = newBlockNode(genesisBlk, nil)
	c.index.Add(c.genesis)
	c.tip = c.genesis

	tipHash, _, supply, _, found, err := c.blocks.GetTip()
	if err != nil {
		return nil, fmt.Errorf("recover tip: %w", err)
	}
	if !found {
		if err := c.blocks.PutBlock(genesisBlk); err != nil {
			return nil, fmt.Errorf("store genesis: %w", err)
		}
		if err := c.blocks.SetTip(c.genesis.hash, 0, 0, c.genesis.workSum); err != nil {
			return nil, fmt.Errorf("set genesis tip: %w", err)
		}
		log.Chain.Info().
			Str("network", params.Name).
			Str("genesis", c.genesis.hash.String()).
			Msg("initialized fresh chain")
		return c, nil
	}

	if err := c.rebuildIndex(); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}
	tipNode := c.index.Lookup(tipHash)
	if tipNode == nil {
		return nil, fmt.Errorf("stored tip %s not in rebuilt index", tipHash)
	}
	c.tip = tipNode
	c.supply = supply

	log.Chain.Info().
		Str("network", params.Name).
		Uint32("height", tipNode.height).
		Str("tip", tipHash.String()).
		Msg("resumed chain")
	return c, nil
}

// rebuildIndex reconstructs the in-memory block index from stored
// blocks, walking parent links breadth-first from genesis. Blocks are
// re-linked by block hash; any block whose ancestry does not reach
// genesis is ignored.
func (c *Chain) rebuildIndex() error {
	children := make(map[types.Hash][]*block.Block)
	if err := c.blocks.ForEachBlock(func(blk *block.Block) error {
		if blk.Hash() == c.genesis.hash {
			return nil
		}
		prev := blk.Header.PrevBlock
		children[prev] = append(children[prev], blk)
		return nil
	}); err != nil {
		return err
	}

	queue := []*blockNode{c.genesis}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, blk := range children[parent.hash] {
			node := newBlockNode(blk, parent)
			c.index.Add(node)
			queue = append(queue, node)
		}
	}
	return nil
}

// State returns a consistent snapshot of the chain tip.
func (c *Chain) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		TipHash:   c.tip.hash,
		Height:    c.tip.height,
		Supply:    c.supply,
		TotalWork: new(big.Int).Set(c.tip.workSum),
	}
}

// Height returns the active chain height.
func (c *Chain) Height() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tip.height
}

// TipHash returns the hash of the active tip block.
func (c *Chain) TipHash() types.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tip.hash
}

// TotalSupply returns the coins created by the active chain.
func (c *Chain) TotalSupply() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.supply
}

// TotalWork returns the cumulative work of the active chain.
func (c *Chain) TotalWork() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return new(big.Int).Set(c.tip.workSum)
}

// GenesisHash returns the genesis block hash.
func (c *Chain) GenesisHash() types.Hash {
	return c.genesis.hash
}

// GetBlock returns an indexed block by hash, whether or not it is on
// the active chain.
func (c *Chain) GetBlock(hash types.Hash) (*block.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	node := c.index.Lookup(hash)
	if node == nil {
		return nil, fmt.Errorf("block %s not found", hash)
	}
	return node.block, nil
}

// BlockAtHeight returns the active-chain block at the given height by
// walking parent links down from the tip.
func (c *Chain) BlockAtHeight(height uint32) (*block.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	node := c.tip.Ancestor(height)
	if node == nil {
		return nil, fmt.Errorf("height %d above tip %d", height, c.tip.height)
	}
	return node.block, nil
}

// NextRequiredBits returns the difficulty bits a block extending the
// current tip must carry.
func (c *Chain) NextRequiredBits() (uint32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nextBitsForParent(c.tip)
}

// nextBitsForParent computes the required bits for a block whose
// parent is the given node, reading interval timestamps along that
// node's own branch.
func (c *Chain) nextBitsForParent(parent *blockNode) (uint32, error) {
	timestampAt := func(height uint32) (uint32, error) {
		anc := parent.Ancestor(height)
		if anc == nil {
			return 0, fmt.Errorf("no ancestor at height %d", height)
		}
		return anc.block.Header.Timestamp, nil
	}
	return consensus.NextRequiredBits(c.params, parent.height, parent.block.Header.Bits, parent.block.Header.Timestamp, timestampAt)
}
