// Package utxo manages the unspent transaction output set.
package utxo

import (
	"errors"

	"github.com/nozmo-king/eMoney/pkg/types"
)

// ErrNotFound is returned when an outpoint has no unspent entry.
var ErrNotFound = errors.New("utxo not found")

// Entry is an unspent transaction output together with the metadata
// the chain engine needs to restore it on disconnect.
type Entry struct {
	Outpoint types.Outpoint `json:"outpoint"`
	Value    uint64         `json:"value"`
	Script   []byte         `json:"script"`
	Height   uint32         `json:"height"`
	Coinbase bool           `json:"coinbase"`
}

// Set is the read/write interface over the UTXO set. Mutations happen
// through spend/create pairs; Begin/Commit/Rollback bracket them so a
// block connection or a whole reorganization applies atomically.
// Begin nests: each call opens a savepoint that a matching Commit
// folds into its parent and a Rollback discards.
type Set interface {
	Get(outpoint types.Outpoint) (*Entry, error)
	Has(outpoint types.Outpoint) (bool, error)

	Begin()
	Commit() error
	Rollback() error

	// ApplySpend removes an entry and returns it for undo bookkeeping.
	ApplySpend(outpoint types.Outpoint) (*Entry, error)
	// ApplyCreate inserts a new entry.
	ApplyCreate(e *Entry) error
}
