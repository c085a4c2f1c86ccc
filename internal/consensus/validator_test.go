package consensus

import (
	"context"
	"errors"
	"testing"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/pkg/block"
	"github.com/nozmo-king/eMoney/pkg/tx"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// solvedBlock builds and solves a single-coinbase block on the given
// parent for the regression network.
func solvedBlock(t *testing.T, params *config.Params, prev types.Hash, height uint32, timestamp uint32) *block.Block {
	t.Helper()
	blk := block.New(prev, params.GenesisBits, timestamp)
	if err := blk.AppendTransaction(tx.NewCoinbase(height, BlockSubsidy(height), types.Commitment{})); err != nil {
		t.Fatalf("append coinbase: %v", err)
	}
	if err := Solve(context.Background(), blk.Header); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return blk
}

func TestCheckBlockAccepts(t *testing.T) {
	params := config.RegNet()
	clock := FixedClock(params.GenesisTimestamp + 1000)
	v := NewValidator(params, clock)

	blk := solvedBlock(t, params, types.Hash{0x01}, 1, params.GenesisTimestamp+1)
	if err := v.CheckBlock(blk, 1); err != nil {
		t.Errorf("valid block rejected: %v", err)
	}
}

func TestCheckBlockBadPow(t *testing.T) {
	params := config.RegNet()
	v := NewValidator(params, FixedClock(params.GenesisTimestamp+1000))

	blk := solvedBlock(t, params, types.Hash{0x01}, 1, params.GenesisTimestamp+1)
	powLimit := CompactToTarget(params.GenesisBits)
	// Walk the nonce until the header hash misses the target.
	for MeetsTarget(blk.Header.Hash(), powLimit) {
		blk.Header.Nonce++
	}
	if err := v.CheckBlock(blk, 1); !errors.Is(err, ErrInsufficientWork) {
		t.Errorf("got %v, want ErrInsufficientWork", err)
	}
}

func TestCheckBlockFutureTimestamp(t *testing.T) {
	params := config.RegNet()
	now := params.GenesisTimestamp + 1000
	v := NewValidator(params, FixedClock(now))

	blk := solvedBlock(t, params, types.Hash{0x01}, 1, now+config.MaxTimeOffset+1)
	if err := v.CheckBlock(blk, 1); !errors.Is(err, ErrTimestampTooFuture) {
		t.Errorf("got %v, want ErrTimestampTooFuture", err)
	}

	// Exactly at the bound is still acceptable.
	blk = solvedBlock(t, params, types.Hash{0x01}, 1, now+config.MaxTimeOffset)
	if err := v.CheckBlock(blk, 1); err != nil {
		t.Errorf("boundary timestamp rejected: %v", err)
	}
}

func TestCheckBlockMerkleMismatch(t *testing.T) {
	params := config.RegNet()
	v := NewValidator(params, FixedClock(params.GenesisTimestamp+1000))

	blk := solvedBlock(t, params, types.Hash{0x01}, 1, params.GenesisTimestamp+1)
	blk.Transactions[0].Outputs[0].Value++ // header root now stale
	// Re-solve so the proof-of-work check cannot mask the merkle error.
	if err := Solve(context.Background(), blk.Header); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if err := v.CheckBlock(blk, 1); !errors.Is(err, block.ErrBadMerkleRoot) {
		t.Errorf("got %v, want ErrBadMerkleRoot", err)
	}
}
