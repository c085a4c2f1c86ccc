package chain

import (
	"errors"
	"fmt"

	"github.com/nozmo-king/eMoney/internal/consensus"
	"github.com/nozmo-king/eMoney/internal/log"
	"github.com/nozmo-king/eMoney/pkg/block"
)

// Submission errors.
var (
	ErrBlockKnown    = errors.New("block already known")
	ErrPrevNotFound  = errors.New("previous block not found")
	ErrInvalidBranch = errors.New("branch contains an invalid block")
)

// Status describes where an accepted block landed.
type Status int

const (
	// StatusOnMain means the block extended the active chain or won a
	// reorganization onto it.
	StatusOnMain Status = iota
	// StatusSideBranch means the block was indexed on a side branch
	// and the active tip is unchanged.
	StatusSideBranch
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusOnMain:
		return "main"
	case StatusSideBranch:
		return "side branch"
	default:
		return "unknown"
	}
}

// SubmitBlock validates blk and accepts it into the chain. The block
// either extends the active tip, becomes a side-branch node, or, when
// its branch carries more cumulative work than the tip, triggers a
// reorganization. Rejections leave the tip, supply, and UTXO set
// untouched. A block rejected at connect time or by a refused
// reorganization stays in the block index and the block store; a block
// that fails to connect is marked invalid.
func (c *Chain) SubmitBlock(blk *block.Block) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if blk == nil || blk.Header == nil {
		return 0, block.ErrNilHeader
	}

	hash := blk.Hash()
	if c.index.Lookup(hash) != nil {
		return 0, ErrBlockKnown
	}

	parent := c.index.Lookup(blk.Header.PrevBlock)
	if parent == nil {
		return 0, fmt.Errorf("%w: parent %s", ErrPrevNotFound, blk.Header.PrevBlock)
	}
	if parent.hasInvalidAncestor() {
		return 0, fmt.Errorf("%w: parent %s", ErrInvalidBranch, parent.hash)
	}

	height := parent.height + 1
	if err := c.validator.CheckBlock(blk, height); err != nil {
		return 0, err
	}
	if err := c.checkRequiredBits(blk, parent); err != nil {
		return 0, err
	}

	node := newBlockNode(blk, parent)
	c.index.Add(node)
	if err := c.blocks.PutBlock(blk); err != nil {
		return 0, err
	}

	// Fast path: the block extends the active tip.
	if parent == c.tip {
		if err := c.connectTip(node); err != nil {
			node.invalid = true
			return 0, err
		}
		log.Chain.Info().
			Uint32("height", node.height).
			Str("hash", hash.String()).
			Msg("tip advanced")
		return StatusOnMain, nil
	}

	// A heavier side branch forces a reorganization. Ties never do:
	// the first-seen chain keeps the tip.
	if node.workSum.Cmp(c.tip.workSum) > 0 {
		if err := c.reorganize(node); err != nil {
			return 0, err
		}
		log.Chain.Info().
			Uint32("height", node.height).
			Str("hash", hash.String()).
			Msg("reorganized to heavier branch")
		return StatusOnMain, nil
	}

	log.Chain.Debug().
		Uint32("height", node.height).
		Str("hash", hash.String()).
		Msg("accepted side-branch block")
	return StatusSideBranch, nil
}

// checkRequiredBits verifies that the block's difficulty bits equal
// the retarget schedule's output for its branch.
func (c *Chain) checkRequiredBits(blk *block.Block, parent *blockNode) error {
	expected, err := c.nextBitsForParent(parent)
	if err != nil {
		return err
	}
	if blk.Header.Bits != expected {
		return fmt.Errorf("%w: got %08x, want %08x", consensus.ErrBadDifficulty, blk.Header.Bits, expected)
	}
	return nil
}
