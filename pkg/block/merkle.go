package block

import (
	"github.com/nozmo-king/eMoney/pkg/crypto"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// ComputeMerkleRoot calculates the merkle root of a transaction id
// sequence.
//
// Algorithm:
//   - 0 ids: returns the zero hash
//   - 1 id: returns that id
//   - Otherwise: pairwise digest of concatenated neighbors left to
//     right, duplicating the last element when a level has odd count,
//     until one digest remains.
func ComputeMerkleRoot(txids []types.Hash) types.Hash {
	if len(txids) == 0 {
		return types.Hash{}
	}
	if len(txids) == 1 {
		return txids[0]
	}

	// Work on a copy so we don't mutate the caller's slice.
	level := make([]types.Hash, len(txids))
	copy(level, txids)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]types.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = crypto.DigestConcat(level[i], level[i+1])
		}
		level = next
	}

	return level[0]
}
