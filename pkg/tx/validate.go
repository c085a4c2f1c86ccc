package tx

import (
	"errors"
	"fmt"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// Validation errors.
var (
	ErrNoInputs            = errors.New("transaction has no inputs")
	ErrNoOutputs           = errors.New("transaction has no outputs")
	ErrTxTooLarge          = errors.New("transaction too large")
	ErrScriptTooLarge      = errors.New("script too large")
	ErrValueOverflow       = errors.New("value overflow")
	ErrOutputsExceedInputs = errors.New("outputs exceed inputs")
	ErrInputNotFound       = errors.New("input UTXO not found")
	ErrScriptRejected      = errors.New("script verification failed")
)

// UTXOView provides read-only access to the unspent output set.
type UTXOView interface {
	// GetUTXO returns the value and script of an unspent output.
	GetUTXO(outpoint types.Outpoint) (value uint64, script []byte, err error)
	// HasUTXO reports whether the outpoint is unspent.
	HasUTXO(outpoint types.Outpoint) bool
}

// ScriptVerifier decides whether an input's script satisfies the
// spending conditions of the output it references. Implementations
// must be pure and deterministic.
type ScriptVerifier interface {
	Verify(t *Transaction, inputIndex int, prevScript []byte) bool
}

// Validate checks transaction structure: non-empty input and output
// lists, the serialized size bound, and per-script size bounds.
// It does not touch the UTXO set.
func (t *Transaction) Validate() error {
	if len(t.Inputs) == 0 {
		return ErrNoInputs
	}
	if len(t.Outputs) == 0 {
		return ErrNoOutputs
	}
	if size := t.SerializedSize(); size > config.MaxTxSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrTxTooLarge, size, config.MaxTxSize)
	}
	for i, in := range t.Inputs {
		if len(in.Script) > config.MaxScriptSize {
			return fmt.Errorf("input %d: %w: %d bytes, max %d", i, ErrScriptTooLarge, len(in.Script), config.MaxScriptSize)
		}
	}
	for i, out := range t.Outputs {
		if len(out.Script) > config.MaxScriptSize {
			return fmt.Errorf("output %d: %w: %d bytes, max %d", i, ErrScriptTooLarge, len(out.Script), config.MaxScriptSize)
		}
	}
	return nil
}

// ValidateWithUTXOs performs full validation of a non-coinbase
// transaction against the UTXO set: every input must resolve to an
// unspent output, every input script must satisfy the referenced
// output's script, and the output sum must not exceed the input sum.
// Returns the fee (inputs - outputs).
//
// Coinbase transactions must not be passed here; their rules depend on
// block context (height, fees) and are enforced by the chain engine.
func (t *Transaction) ValidateWithUTXOs(view UTXOView, verifier ScriptVerifier) (uint64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	var totalIn uint64
	for i, in := range t.Inputs {
		if !view.HasUTXO(in.PrevOut) {
			return 0, fmt.Errorf("input %d (%s): %w", i, in.PrevOut, ErrInputNotFound)
		}
		value, prevScript, err := view.GetUTXO(in.PrevOut)
		if err != nil {
			return 0, fmt.Errorf("input %d: %w", i, err)
		}
		if !verifier.Verify(t, i, prevScript) {
			return 0, fmt.Errorf("input %d (%s): %w", i, in.PrevOut, ErrScriptRejected)
		}
		if totalIn > maxUint64-value {
			return 0, fmt.Errorf("input %d: %w", i, ErrValueOverflow)
		}
		totalIn += value
	}

	// Sum outputs, failing as soon as the running total passes the
	// input total. This doubles as the monetary overflow guard.
	var totalOut uint64
	for i, out := range t.Outputs {
		if totalOut > maxUint64-out.Value {
			return 0, fmt.Errorf("output %d: %w", i, ErrValueOverflow)
		}
		totalOut += out.Value
		if totalOut > totalIn {
			return 0, fmt.Errorf("%w: outputs=%d inputs=%d", ErrOutputsExceedInputs, totalOut, totalIn)
		}
	}

	return totalIn - totalOut, nil
}
