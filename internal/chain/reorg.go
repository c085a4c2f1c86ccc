package chain

import (
	"errors"
	"fmt"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/internal/consensus"
	"github.com/nozmo-king/eMoney/internal/log"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// Reorganization errors.
var (
	ErrReorgTooDeep = errors.New("reorg too deep")
	ErrReorgFailed  = errors.New("reorg failed")
)

// reorganize switches the active chain to target, which must carry
// strictly more cumulative work than the current tip. The whole switch
// runs inside one UTXO store transaction: blocks from the tip down to
// the fork point are disconnected, blocks from the fork point up to
// target are connected, and any failure rolls the store back to the
// pre-reorg state. The operation is all-or-nothing.
func (c *Chain) reorganize(target *blockNode) error {
	fork := findForkPoint(c.tip, target)

	if depth := c.tip.height - fork.height; depth > config.MaxReorgDepth {
		return fmt.Errorf("%w: %d blocks past fork at height %d", ErrReorgTooDeep, depth, fork.height)
	}

	// Detach order: tip first, down to (excluding) the fork point.
	var detach []*blockNode
	for n := c.tip; n != fork; n = n.parent {
		detach = append(detach, n)
	}
	// Attach order: ancestor first, from just above the fork point
	// through target.
	var attach []*blockNode
	for n := target; n != fork; n = n.parent {
		attach = append(attach, n)
	}
	for i, j := 0, len(attach)-1; i < j; i, j = i+1, j-1 {
		attach[i], attach[j] = attach[j], attach[i]
	}

	supply := c.supply
	c.utxos.Begin()

	var detachedUndo []types.Hash
	for _, n := range detach {
		undo, err := c.blocks.GetUndo(n.hash)
		if err != nil {
			c.utxos.Rollback()
			return fmt.Errorf("%w: %w", ErrReorgFailed, err)
		}
		if err := c.revertBlock(undo); err != nil {
			c.utxos.Rollback()
			return fmt.Errorf("%w: disconnect %s: %w", ErrReorgFailed, n.hash, err)
		}
		supply -= consensus.BlockSubsidy(n.height)
		detachedUndo = append(detachedUndo, n.hash)
	}

	attachedUndo := make(map[types.Hash]*UndoData, len(attach))
	for _, n := range attach {
		undo, err := c.applyBlock(n)
		if err != nil {
			// The branch cannot connect; remember that so future
			// submissions do not retry it, and roll everything back.
			n.invalid = true
			c.utxos.Rollback()
			return fmt.Errorf("%w: connect %s: %w", ErrReorgFailed, n.hash, err)
		}
		supply += consensus.BlockSubsidy(n.height)
		attachedUndo[n.hash] = undo
	}

	if err := c.utxos.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrReorgFailed, err)
	}

	oldTip := c.tip
	c.tip = target
	c.supply = supply

	for hash, undo := range attachedUndo {
		if err := c.blocks.PutUndo(hash, undo); err != nil {
			return err
		}
	}
	for _, hash := range detachedUndo {
		if err := c.blocks.DeleteUndo(hash); err != nil {
			return err
		}
	}
	if err := c.blocks.SetTip(target.hash, target.height, supply, target.workSum); err != nil {
		return err
	}

	log.Chain.Info().
		Uint32("fork_height", fork.height).
		Int("disconnected", len(detach)).
		Int("connected", len(attach)).
		Str("old_tip", oldTip.hash.String()).
		Str("new_tip", target.hash.String()).
		Msg("chain reorganized")
	return nil
}
