package consensus

import (
	"math/big"
	"testing"

	"github.com/nozmo-king/eMoney/config"
)

// constTimestamps returns a timestampAt func with blocks exactly
// spacing seconds apart from a genesis instant.
func constTimestamps(genesis uint32, spacing uint32) func(uint32) (uint32, error) {
	return func(height uint32) (uint32, error) {
		return genesis + height*spacing, nil
	}
}

// retargetAt runs one adjustment with the given per-block spacing and
// returns the old and new targets.
func retargetAt(t *testing.T, params *config.Params, spacing uint32) (oldTarget, newTarget *big.Int) {
	t.Helper()
	timestamps := constTimestamps(params.GenesisTimestamp, spacing)
	tipHeight := uint32(config.DifficultyAdjustmentInterval - 1)
	tipTime, _ := timestamps(tipHeight)

	bits, err := NextRequiredBits(params, tipHeight, params.GenesisBits, tipTime, timestamps)
	if err != nil {
		t.Fatalf("NextRequiredBits: %v", err)
	}
	return CompactToTarget(params.GenesisBits), CompactToTarget(bits)
}

func TestNextRequiredBitsOffBoundary(t *testing.T) {
	params := config.MainNet()
	bits, err := NextRequiredBits(params, 100, params.GenesisBits, 0, nil)
	if err != nil {
		t.Fatalf("NextRequiredBits: %v", err)
	}
	if bits != params.GenesisBits {
		t.Errorf("off-boundary bits = %08x, want tip bits %08x", bits, params.GenesisBits)
	}
}

func TestNextRequiredBitsOnSchedule(t *testing.T) {
	params := config.MainNet()
	spacing := uint32(config.TargetTimespan / config.DifficultyAdjustmentInterval)
	oldTarget, newTarget := retargetAt(t, params, spacing)
	if newTarget.Cmp(oldTarget) != 0 {
		t.Errorf("on-schedule retarget changed the target: %x -> %x", oldTarget, newTarget)
	}
}

func TestNextRequiredBitsClampBounds(t *testing.T) {
	params := config.MainNet()

	// Blocks found 10x too fast: the timespan clamp caps the change at
	// a 4x target reduction.
	spacing := uint32(config.TargetTimespan / config.DifficultyAdjustmentInterval / 10)
	oldTarget, newTarget := retargetAt(t, params, spacing)
	if newTarget.Cmp(oldTarget) >= 0 {
		t.Error("fast blocks should shrink the target")
	}
	quarter := new(big.Int).Div(oldTarget, big.NewInt(4))
	if newTarget.Cmp(quarter) < 0 {
		t.Errorf("target shrank past the 4x clamp: %x < %x", newTarget, quarter)
	}

	// Blocks found 10x too slow would grow the target 4x, but the
	// proof-of-work limit (the genesis target) caps it.
	spacing = uint32(config.TargetTimespan / config.DifficultyAdjustmentInterval * 10)
	oldTarget, newTarget = retargetAt(t, params, spacing)
	if newTarget.Cmp(oldTarget) != 0 {
		t.Errorf("slow blocks at the limit should hold the genesis target, got %x", newTarget)
	}
}

func TestNextRequiredBitsBelowLimitGrows(t *testing.T) {
	params := config.MainNet()
	// Start from a target well below the limit so slow blocks can
	// actually raise it.
	hardBits := TargetToCompact(new(big.Int).Rsh(CompactToTarget(params.GenesisBits), 16))
	spacing := uint32(config.TargetTimespan / config.DifficultyAdjustmentInterval * 2)
	timestamps := constTimestamps(params.GenesisTimestamp, spacing)
	tipHeight := uint32(config.DifficultyAdjustmentInterval - 1)
	tipTime, _ := timestamps(tipHeight)

	bits, err := NextRequiredBits(params, tipHeight, hardBits, tipTime, timestamps)
	if err != nil {
		t.Fatalf("NextRequiredBits: %v", err)
	}
	oldTarget := CompactToTarget(hardBits)
	newTarget := CompactToTarget(bits)
	if newTarget.Cmp(oldTarget) <= 0 {
		t.Error("slow blocks should grow a below-limit target")
	}
	ceiling := new(big.Int).Mul(oldTarget, big.NewInt(4))
	if newTarget.Cmp(ceiling) > 0 {
		t.Errorf("target grew past the 4x clamp: %x > %x", newTarget, ceiling)
	}
}
