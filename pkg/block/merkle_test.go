package block

import (
	"testing"

	"github.com/nozmo-king/eMoney/pkg/crypto"
	"github.com/nozmo-king/eMoney/pkg/types"
)

func testIDs(n int) []types.Hash {
	ids := make([]types.Hash, n)
	for i := range ids {
		ids[i] = crypto.Digest([]byte{byte(i)})
	}
	return ids
}

func TestMerkleEmpty(t *testing.T) {
	if root := ComputeMerkleRoot(nil); !root.IsZero() {
		t.Errorf("empty root = %s, want zero", root)
	}
}

func TestMerkleSingle(t *testing.T) {
	ids := testIDs(1)
	if root := ComputeMerkleRoot(ids); root != ids[0] {
		t.Error("single-id root should be the id itself")
	}
}

func TestMerklePair(t *testing.T) {
	ids := testIDs(2)
	want := crypto.DigestConcat(ids[0], ids[1])
	if root := ComputeMerkleRoot(ids); root != want {
		t.Error("two-id root should digest the concatenation")
	}
}

func TestMerkleOddDuplicatesLast(t *testing.T) {
	ids := testIDs(3)
	left := crypto.DigestConcat(ids[0], ids[1])
	right := crypto.DigestConcat(ids[2], ids[2])
	want := crypto.DigestConcat(left, right)
	if root := ComputeMerkleRoot(ids); root != want {
		t.Error("odd count should duplicate the last id")
	}
}

func TestMerkleDoesNotMutateInput(t *testing.T) {
	ids := testIDs(3)
	orig := make([]types.Hash, len(ids))
	copy(orig, ids)
	ComputeMerkleRoot(ids)
	for i := range ids {
		if ids[i] != orig[i] {
			t.Fatal("input slice mutated")
		}
	}
}

func TestMerkleOrderSensitive(t *testing.T) {
	ids := testIDs(4)
	swapped := []types.Hash{ids[1], ids[0], ids[2], ids[3]}
	if ComputeMerkleRoot(ids) == ComputeMerkleRoot(swapped) {
		t.Error("root should depend on transaction order")
	}
}
