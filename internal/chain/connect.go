package chain

import (
	"errors"
	"fmt"

	"github.com/nozmo-king/eMoney/internal/consensus"
	"github.com/nozmo-king/eMoney/internal/utxo"
	"github.com/nozmo-king/eMoney/pkg/tx"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// Connection errors.
var (
	ErrCoinbaseRewardExceeded = errors.New("coinbase outputs exceed reward plus fees")
)

// UndoData records the information needed to revert a connected
// block's UTXO effects.
type UndoData struct {
	SpentEntries     []utxo.Entry     `json:"spent_entries"`
	CreatedOutpoints []types.Outpoint `json:"created_outpoints"`
}

// utxoView adapts the UTXO set to the transaction validator's
// read-only view. Reads go through any open savepoints, so a
// transaction sees the effects of earlier transactions in its block.
type utxoView struct {
	set utxo.Set
}

func (v utxoView) GetUTXO(outpoint types.Outpoint) (uint64, []byte, error) {
	e, err := v.set.Get(outpoint)
	if err != nil {
		return 0, nil, err
	}
	return e.Value, e.Script, nil
}

func (v utxoView) HasUTXO(outpoint types.Outpoint) bool {
	has, err := v.set.Has(outpoint)
	return err == nil && has
}

// applyBlock validates the UTXO-dependent rules of node's block and
// applies its effects inside a savepoint: every non-coinbase input
// must resolve and verify, value must be conserved, and the coinbase
// output sum must not exceed the subsidy plus the block's fees.
// Non-coinbase effects apply in block order and the coinbase outputs
// are created last, after the reward check, so no transaction in the
// block can spend them; on any failure the savepoint is rolled back and
// the set is untouched.
func (c *Chain) applyBlock(node *blockNode) (*UndoData, error) {
	blk := node.block
	view := utxoView{set: c.utxos}
	undo := &UndoData{}

	c.utxos.Begin()

	var totalFees uint64
	for i, transaction := range blk.Transactions[1:] {
		fee, err := transaction.ValidateWithUTXOs(view, c.verifier)
		if err != nil {
			c.utxos.Rollback()
			return nil, fmt.Errorf("tx %d: %w", i+1, err)
		}
		if totalFees > ^uint64(0)-fee {
			c.utxos.Rollback()
			return nil, fmt.Errorf("tx %d fee: %w", i+1, tx.ErrValueOverflow)
		}
		totalFees += fee

		if err := c.applyTx(transaction, node.height, false, undo); err != nil {
			c.utxos.Rollback()
			return nil, err
		}
	}

	// The coinbase may claim at most the subsidy plus the fees the
	// block's transactions left on the table.
	coinbase := blk.Transactions[0]
	coinbaseTotal, err := coinbase.TotalOutputValue()
	if err != nil {
		c.utxos.Rollback()
		return nil, err
	}
	reward := consensus.BlockSubsidy(node.height)
	if coinbaseTotal > reward+totalFees {
		c.utxos.Rollback()
		return nil, fmt.Errorf("%w: outputs=%d allowed=%d", ErrCoinbaseRewardExceeded, coinbaseTotal, reward+totalFees)
	}

	if err := c.applyTx(coinbase, node.height, true, undo); err != nil {
		c.utxos.Rollback()
		return nil, err
	}

	if err := c.utxos.Commit(); err != nil {
		return nil, fmt.Errorf("commit utxo changes: %w", err)
	}
	return undo, nil
}

// applyTx spends a transaction's inputs and creates its outputs,
// recording both sides in undo.
func (c *Chain) applyTx(transaction *tx.Transaction, height uint32, coinbase bool, undo *UndoData) error {
	txHash := transaction.Hash()

	if !coinbase {
		for _, in := range transaction.Inputs {
			spent, err := c.utxos.ApplySpend(in.PrevOut)
			if err != nil {
				return fmt.Errorf("spend %s: %w", in.PrevOut, err)
			}
			undo.SpentEntries = append(undo.SpentEntries, *spent)
		}
	}

	for i, out := range transaction.Outputs {
		op := types.Outpoint{TxID: txHash, Index: uint32(i)}
		undo.CreatedOutpoints = append(undo.CreatedOutpoints, op)
		if err := c.utxos.ApplyCreate(&utxo.Entry{
			Outpoint: op,
			Value:    out.Value,
			Script:   out.Script,
			Height:   height,
			Coinbase: coinbase,
		}); err != nil {
			return fmt.Errorf("create output %s: %w", op, err)
		}
	}
	return nil
}

// revertBlock undoes a block's UTXO effects using its undo data,
// writing through whatever savepoint the caller has open. Created
// outputs are removed in reverse order, then spent entries restored.
func (c *Chain) revertBlock(undo *UndoData) error {
	for i := len(undo.CreatedOutpoints) - 1; i >= 0; i-- {
		if _, err := c.utxos.ApplySpend(undo.CreatedOutpoints[i]); err != nil {
			return fmt.Errorf("remove created output %s: %w", undo.CreatedOutpoints[i], err)
		}
	}
	for i := range undo.SpentEntries {
		e := undo.SpentEntries[i]
		if err := c.utxos.ApplyCreate(&e); err != nil {
			return fmt.Errorf("restore utxo %s: %w", e.Outpoint, err)
		}
	}
	return nil
}

// connectTip extends the active chain with node, whose parent must be
// the current tip.
func (c *Chain) connectTip(node *blockNode) error {
	undo, err := c.applyBlock(node)
	if err != nil {
		return err
	}
	if err := c.blocks.PutUndo(node.hash, undo); err != nil {
		return err
	}

	c.tip = node
	c.supply += consensus.BlockSubsidy(node.height)
	if err := c.blocks.SetTip(node.hash, node.height, c.supply, node.workSum); err != nil {
		return err
	}
	return nil
}
