package chain

import (
	"math/big"

	"github.com/nozmo-king/eMoney/pkg/types"
)

// State is a consistent snapshot of the chain tip. Readers always see
// either the pre- or post-operation state of a submission, never a
// state partway through a reorganization.
type State struct {
	TipHash   types.Hash
	Height    uint32
	Supply    uint64
	TotalWork *big.Int
}
