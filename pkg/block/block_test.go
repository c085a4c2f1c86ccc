package block

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nozmo-king/eMoney/pkg/tx"
	"github.com/nozmo-king/eMoney/pkg/types"
)

func testBlock(t *testing.T, txCount int) *Block {
	t.Helper()
	var prev types.Hash
	prev[0] = 0x11
	blk := New(prev, 0x1d00ffff, 1698652800)
	if err := blk.AppendTransaction(tx.NewCoinbase(1, 1000, types.Commitment{})); err != nil {
		t.Fatalf("append coinbase: %v", err)
	}
	for i := 1; i < txCount; i++ {
		spend := tx.New()
		spend.Inputs = append(spend.Inputs, tx.Input{PrevOut: types.Outpoint{Index: uint32(i)}, Script: []byte{byte(i)}})
		spend.Outputs = append(spend.Outputs, tx.Output{Value: uint64(i), Script: []byte{0xac}})
		if err := blk.AppendTransaction(spend); err != nil {
			t.Fatalf("append tx %d: %v", i, err)
		}
	}
	return blk
}

func TestAppendRefreshesMerkleRoot(t *testing.T) {
	blk := testBlock(t, 1)
	rootOne := blk.Header.MerkleRoot
	if rootOne.IsZero() {
		t.Fatal("merkle root not set after first append")
	}

	spend := tx.New()
	spend.Inputs = append(spend.Inputs, tx.Input{PrevOut: types.Outpoint{Index: 1}})
	spend.Outputs = append(spend.Outputs, tx.Output{Value: 1, Script: []byte{0xac}})
	if err := blk.AppendTransaction(spend); err != nil {
		t.Fatalf("append: %v", err)
	}
	if blk.Header.MerkleRoot == rootOne {
		t.Error("merkle root not refreshed by append")
	}
	if err := blk.Validate(); err != nil {
		t.Errorf("block with refreshed root invalid: %v", err)
	}
}

func TestBlockSize(t *testing.T) {
	blk := testBlock(t, 3)
	want := HeaderSize
	for _, transaction := range blk.Transactions {
		want += transaction.SerializedSize()
	}
	if blk.Size() != want {
		t.Errorf("Size = %d, want %d", blk.Size(), want)
	}
}

func TestCheckSize(t *testing.T) {
	blk := testBlock(t, 1)
	if err := blk.CheckSize(uint32(blk.Size())); err != nil {
		t.Errorf("exact-size block rejected: %v", err)
	}
	if err := blk.CheckSize(uint32(blk.Size() - 1)); !errors.Is(err, ErrBlockTooLarge) {
		t.Errorf("oversized block: got %v", err)
	}
}

func TestValidateCoinbaseRules(t *testing.T) {
	blk := testBlock(t, 2)

	// Swap coinbase out of the first slot.
	blk.Transactions[0], blk.Transactions[1] = blk.Transactions[1], blk.Transactions[0]
	blk.Header.MerkleRoot = blk.merkleRoot()
	if err := blk.Validate(); !errors.Is(err, ErrBadCoinbase) {
		t.Errorf("non-coinbase first: got %v", err)
	}

	// A second coinbase later in the list.
	blk = testBlock(t, 1)
	if err := blk.AppendTransaction(tx.NewCoinbase(1, 1, types.Commitment{1})); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := blk.Validate(); !errors.Is(err, ErrBadCoinbase) {
		t.Errorf("extra coinbase: got %v", err)
	}
}

func TestValidateMerkleMismatch(t *testing.T) {
	blk := testBlock(t, 2)
	blk.Header.MerkleRoot[0] ^= 0xff
	if err := blk.Validate(); !errors.Is(err, ErrBadMerkleRoot) {
		t.Errorf("tampered root: got %v", err)
	}
}

func TestBlockSerializeRoundTrip(t *testing.T) {
	orig := testBlock(t, 3)
	data := orig.Serialize()

	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got.Hash() != orig.Hash() {
		t.Error("roundtrip changed the block hash")
	}
	if len(got.Transactions) != len(orig.Transactions) {
		t.Fatalf("tx count %d, want %d", len(got.Transactions), len(orig.Transactions))
	}
	if !bytes.Equal(got.Serialize(), data) {
		t.Error("re-serialization differs")
	}

	if _, err := Deserialize(append(data, 0x00)); err == nil {
		t.Error("trailing bytes accepted")
	}
}
