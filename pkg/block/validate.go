package block

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrNilHeader      = errors.New("block has nil header")
	ErrNoTransactions = errors.New("block has no transactions")
	ErrBlockTooLarge  = errors.New("block too large")
	ErrBadMerkleRoot  = errors.New("merkle root mismatch")
	ErrBadCoinbase    = errors.New("invalid coinbase transaction")
)

// Block version constants.
const (
	CurrentVersion = 1
)

// Validate checks block structure and internal consistency: a present
// header, a non-empty transaction list led by exactly one coinbase,
// structurally valid transactions, and a header merkle root matching
// the transaction list. Size, proof of work, and timestamp are checked
// by the consensus validator; UTXO rules are enforced by the chain
// engine.
func (b *Block) Validate() error {
	if b.Header == nil {
		return ErrNilHeader
	}
	if len(b.Transactions) == 0 {
		return ErrNoTransactions
	}

	if !b.Transactions[0].IsCoinbase() {
		return fmt.Errorf("%w: first transaction is not a coinbase", ErrBadCoinbase)
	}
	for i, t := range b.Transactions[1:] {
		if t.IsCoinbase() {
			return fmt.Errorf("tx %d: %w: extra coinbase", i+1, ErrBadCoinbase)
		}
	}

	for i, t := range b.Transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tx %d: %w", i, err)
		}
	}

	if root := b.merkleRoot(); root != b.Header.MerkleRoot {
		return fmt.Errorf("%w: header=%s computed=%s", ErrBadMerkleRoot, b.Header.MerkleRoot, root)
	}

	return nil
}

// CheckSize verifies the block's consensus size against the given
// height-dependent limit.
func (b *Block) CheckSize(limit uint32) error {
	if size := b.Size(); size > int(limit) {
		return fmt.Errorf("%w: %d bytes, max %d", ErrBlockTooLarge, size, limit)
	}
	return nil
}
