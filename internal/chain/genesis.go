package chain

import (
	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/pkg/block"
	"github.com/nozmo-king/eMoney/pkg/tx"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// GenesisBlock builds the deterministic genesis block for a network:
// version 1, zero parent, the network's timestamp and bits, nonce 0,
// and a single zero-value coinbase paying to the zero commitment.
// The genesis coinbase is unspendable by convention: its outputs
// never enter the UTXO set and its value never counts toward supply.
func GenesisBlock(params *config.Params) *block.Block {
	blk := block.New(types.Hash{}, params.GenesisBits, params.GenesisTimestamp)
	// Size and script bounds cannot trip on the minimal coinbase.
	_ = blk.AppendTransaction(tx.NewCoinbase(0, 0, types.Commitment{}))
	return blk
}
