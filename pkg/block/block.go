// Package block defines the block model, merkle builder, and
// structural validation.
package block

import (
	"fmt"
	"io"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/pkg/tx"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// Block is a header plus an ordered, non-empty transaction list.
// Transactions[0] is the coinbase. The block owns its transactions.
type Block struct {
	Header       *Header           `json:"header"`
	Transactions []*tx.Transaction `json:"transactions"`
}

// New creates an empty block building on the given parent hash.
func New(prevBlock types.Hash, bits, timestamp uint32) *Block {
	return &Block{
		Header: &Header{
			Version:   CurrentVersion,
			PrevBlock: prevBlock,
			Timestamp: timestamp,
			Bits:      bits,
		},
	}
}

// Size returns the block's consensus size: the header length plus the
// sum of serialized transaction lengths.
func (b *Block) Size() int {
	size := HeaderSize
	for _, t := range b.Transactions {
		size += t.SerializedSize()
	}
	return size
}

// AppendTransaction adds a transaction to the block and refreshes the
// header's merkle root, so the header is never observable in a stale
// state. The append is rejected if it would push the block past the
// base size limit.
func (b *Block) AppendTransaction(t *tx.Transaction) error {
	if size := b.Size() + t.SerializedSize(); size > config.BaseMaxBlockSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrBlockTooLarge, size, config.BaseMaxBlockSize)
	}
	b.Transactions = append(b.Transactions, t)
	b.Header.MerkleRoot = b.merkleRoot()
	return nil
}

// merkleRoot computes the root over the current transaction list.
func (b *Block) merkleRoot() types.Hash {
	txids := make([]types.Hash, len(b.Transactions))
	for i, t := range b.Transactions {
		txids[i] = t.Hash()
	}
	return ComputeMerkleRoot(txids)
}

// Hash returns the block header hash.
func (b *Block) Hash() types.Hash {
	if b.Header == nil {
		return types.Hash{}
	}
	return b.Header.Hash()
}

// Serialize encodes the block in wire form:
// header | tx count (varint) | transactions in order.
func (b *Block) Serialize() []byte {
	buf := b.Header.Serialize()
	buf = types.AppendVarint(buf, uint64(len(b.Transactions)))
	for _, t := range b.Transactions {
		buf = append(buf, t.Serialize()...)
	}
	return buf
}

// Deserialize decodes a block from buf.
func Deserialize(buf []byte) (*Block, error) {
	header, err := DeserializeHeader(buf)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	pos := HeaderSize

	txCount, n, err := types.ReadVarint(buf[pos:])
	if err != nil {
		return nil, fmt.Errorf("tx count: %w", err)
	}
	pos += n
	if txCount == 0 {
		return nil, ErrNoTransactions
	}
	if txCount > config.BaseMaxBlockSize {
		return nil, fmt.Errorf("tx count %d: %w", txCount, types.ErrVarintTooLarge)
	}

	b := &Block{Header: header, Transactions: make([]*tx.Transaction, txCount)}
	for i := range b.Transactions {
		t, n, err := tx.Deserialize(buf[pos:])
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		b.Transactions[i] = t
		pos += n
	}
	if pos != len(buf) {
		return nil, fmt.Errorf("block: %d trailing bytes: %w", len(buf)-pos, io.ErrUnexpectedEOF)
	}
	return b, nil
}
