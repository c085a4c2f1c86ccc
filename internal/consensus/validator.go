package consensus

import (
	"errors"
	"fmt"
	"time"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/pkg/block"
)

// ErrTimestampTooFuture is returned for blocks timestamped too far
// ahead of the local clock.
var ErrTimestampTooFuture = errors.New("block timestamp too far in the future")

// Clock supplies the current time for timestamp validation. Tests use
// a fixed clock.
type Clock interface {
	Now() uint32
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current Unix time in seconds.
func (SystemClock) Now() uint32 {
	return uint32(time.Now().Unix())
}

// FixedClock always reports the same instant.
type FixedClock uint32

// Now returns the fixed instant.
func (c FixedClock) Now() uint32 {
	return uint32(c)
}

// Validator checks blocks against context-free consensus rules: size,
// proof of work, timestamp bound, structure, and merkle root. Rules
// that need chain state (UTXO resolution, coinbase value, expected
// difficulty) belong to the chain engine.
type Validator struct {
	params *config.Params
	clock  Clock
}

// NewValidator creates a block validator for the given network.
func NewValidator(params *config.Params, clock Clock) *Validator {
	return &Validator{params: params, clock: clock}
}

// CheckBlock validates blk as a candidate for the given height.
// It is a pure function of the block, the height, and the clock; chain
// state is never touched.
func (v *Validator) CheckBlock(blk *block.Block, height uint32) error {
	if blk == nil || blk.Header == nil {
		return block.ErrNilHeader
	}

	if err := blk.CheckSize(v.params.MaxBlockSize(height)); err != nil {
		return err
	}

	powLimit := CompactToTarget(v.params.GenesisBits)
	if err := CheckProofOfWork(blk.Hash(), blk.Header.Bits, powLimit); err != nil {
		return err
	}

	if maxTime := v.clock.Now() + config.MaxTimeOffset; blk.Header.Timestamp > maxTime {
		return fmt.Errorf("%w: timestamp %d exceeds max %d", ErrTimestampTooFuture, blk.Header.Timestamp, maxTime)
	}

	return blk.Validate()
}
