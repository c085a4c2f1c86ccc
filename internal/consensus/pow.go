// Package consensus implements proof-of-work checks, difficulty
// retargeting, the subsidy schedule, and context-free block
// validation.
package consensus

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/pkg/block"
	"github.com/nozmo-king/eMoney/pkg/crypto"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// Proof-of-work errors.
var (
	ErrInsufficientWork = errors.New("hash does not meet difficulty target")
	ErrBadDifficulty    = errors.New("difficulty bits do not match expected")
)

// oneLsh512 is 2^512, one past the largest 512-bit hash value.
var oneLsh512 = new(big.Int).Lsh(big.NewInt(1), 512)

// HashToBig interprets a digest as a big-endian unsigned integer.
func HashToBig(hash types.Hash) *big.Int {
	return new(big.Int).SetBytes(hash[:])
}

// MeetsTarget reports whether the digest, read big-endian, is less
// than or equal to the target.
func MeetsTarget(hash types.Hash, target *big.Int) bool {
	return HashToBig(hash).Cmp(target) <= 0
}

// CheckProofOfWork verifies that the block hash meets the target
// encoded in bits, and that the target itself is positive and no
// easier than the proof-of-work limit.
func CheckProofOfWork(hash types.Hash, bits uint32, powLimit *big.Int) error {
	target := CompactToTarget(bits)
	if target.Sign() <= 0 {
		return fmt.Errorf("%w: bits %08x encode a non-positive target", ErrBadDifficulty, bits)
	}
	if target.Cmp(powLimit) > 0 {
		return fmt.Errorf("%w: target %064x above limit %064x", ErrBadDifficulty, target, powLimit)
	}
	if !MeetsTarget(hash, target) {
		return fmt.Errorf("%w: hash %s target %0128x", ErrInsufficientWork, hash, target)
	}
	return nil
}

// CalcWork returns the expected number of hash attempts a block with
// the given bits represents: 2^512 / (target + 1). Invalid bits carry
// zero work.
func CalcWork(bits uint32) *big.Int {
	target := CompactToTarget(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	denom := new(big.Int).Add(target, big.NewInt(1))
	return new(big.Int).Div(oneLsh512, denom)
}

// NextRequiredBits computes the difficulty bits required of the block
// following the given tip. Outside adjustment heights the tip's bits
// carry forward. At each DifficultyAdjustmentInterval boundary the
// target is rescaled by the ratio of the observed interval duration to
// TargetTimespan, with the observed duration clamped to a factor of
// four in either direction, and the result clamped to the
// proof-of-work limit (the genesis target).
//
// timestampAt returns the header timestamp at a height on the tip's own
// branch.
func NextRequiredBits(params *config.Params, tipHeight uint32, tipBits, tipTime uint32, timestampAt func(height uint32) (uint32, error)) (uint32, error) {
	if (tipHeight+1)%config.DifficultyAdjustmentInterval != 0 {
		return tipBits, nil
	}

	firstHeight := tipHeight - (config.DifficultyAdjustmentInterval - 1)
	firstTime, err := timestampAt(firstHeight)
	if err != nil {
		return 0, fmt.Errorf("timestamp at height %d: %w", firstHeight, err)
	}

	actual := int64(tipTime) - int64(firstTime)
	if actual < config.TargetTimespan/4 {
		actual = config.TargetTimespan / 4
	}
	if actual > config.TargetTimespan*4 {
		actual = config.TargetTimespan * 4
	}

	target := CompactToTarget(tipBits)
	target.Mul(target, big.NewInt(actual))
	target.Div(target, big.NewInt(config.TargetTimespan))

	powLimit := CompactToTarget(params.GenesisBits)
	if target.Cmp(powLimit) > 0 {
		target = powLimit
	}

	return TargetToCompact(target), nil
}

// Solve grinds the header nonce until the header hash meets the target
// encoded in its bits. It mutates the header in place. Cancellation is
// checked every 64k attempts.
func Solve(ctx context.Context, h *block.Header) error {
	target := CompactToTarget(h.Bits)
	if target.Sign() <= 0 {
		return fmt.Errorf("%w: bits %08x", ErrBadDifficulty, h.Bits)
	}

	// Rehash only the nonce tail of the serialized header.
	buf := h.Serialize()
	nonceOff := len(buf) - 4
	for nonce := uint64(0); nonce <= math.MaxUint32; nonce++ {
		if nonce&0xffff == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		binary.LittleEndian.PutUint32(buf[nonceOff:], uint32(nonce))
		if MeetsTarget(crypto.Digest(buf), target) {
			h.Nonce = uint32(nonce)
			return nil
		}
	}
	return errors.New("nonce space exhausted")
}
