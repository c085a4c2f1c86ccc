package tx

import (
	"fmt"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// Builder constructs transactions incrementally, enforcing the script
// and transaction size bounds on every append.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a builder holding an empty transaction.
func NewBuilder() *Builder {
	return &Builder{tx: New()}
}

// AddInput appends an input spending prevOut with the given script.
// It rejects oversized scripts and any append that would push the
// transaction past the size limit.
func (b *Builder) AddInput(prevOut types.Outpoint, script []byte, sequence uint32) error {
	if len(script) > config.MaxScriptSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrScriptTooLarge, len(script), config.MaxScriptSize)
	}
	b.tx.Inputs = append(b.tx.Inputs, Input{PrevOut: prevOut, Script: script, Sequence: sequence})
	if size := b.tx.SerializedSize(); size > config.MaxTxSize {
		b.tx.Inputs = b.tx.Inputs[:len(b.tx.Inputs)-1]
		return fmt.Errorf("%w: %d bytes, max %d", ErrTxTooLarge, size, config.MaxTxSize)
	}
	return nil
}

// AddOutput appends an output with the given value and script, under
// the same size rules as AddInput.
func (b *Builder) AddOutput(value uint64, script []byte) error {
	if len(script) > config.MaxScriptSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrScriptTooLarge, len(script), config.MaxScriptSize)
	}
	b.tx.Outputs = append(b.tx.Outputs, Output{Value: value, Script: script})
	if size := b.tx.SerializedSize(); size > config.MaxTxSize {
		b.tx.Outputs = b.tx.Outputs[:len(b.tx.Outputs)-1]
		return fmt.Errorf("%w: %d bytes, max %d", ErrTxTooLarge, size, config.MaxTxSize)
	}
	return nil
}

// SetLockTime sets the transaction lock time.
func (b *Builder) SetLockTime(lockTime uint32) *Builder {
	b.tx.LockTime = lockTime
	return b
}

// Build returns the constructed transaction.
// Does NOT validate; call tx.Validate() separately.
func (b *Builder) Build() *Transaction {
	return b.tx
}

// NewCoinbase builds the minimal coinbase transaction for a block at
// the given height: one null-marker input whose script is the varint
// encoding of the height, and one pay-to-pubkey-hash output of value
// reward to the recipient commitment. Validation permits additional
// outputs; this constructor emits only the required one.
func NewCoinbase(height uint32, reward uint64, recipient types.Commitment) *Transaction {
	return &Transaction{
		Version: CurrentVersion,
		Inputs: []Input{{
			PrevOut:  types.Outpoint{Index: types.NullIndex},
			Script:   types.AppendVarint(nil, uint64(height)),
			Sequence: types.NullIndex,
		}},
		Outputs: []Output{{
			Value:  reward,
			Script: types.PayToPubKeyHash(recipient),
		}},
	}
}
