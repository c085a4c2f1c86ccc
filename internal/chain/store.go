package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/nozmo-king/eMoney/internal/storage"
	"github.com/nozmo-king/eMoney/pkg/block"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// Key prefixes for the block store. The UTXO store shares the same
// database under its own prefix.
var (
	prefixBlock = []byte("b/") // b/<hash> -> block wire bytes
	prefixUndo  = []byte("d/") // d/<hash> -> undo JSON
	keyTipMeta  = []byte("meta/tip")
)

// BlockStore persists accepted blocks, their undo data, and the tip
// metadata needed to resume a chain across restarts.
type BlockStore struct {
	db storage.DB
}

// NewBlockStore creates a block store backed by the given database.
func NewBlockStore(db storage.DB) *BlockStore {
	return &BlockStore{db: db}
}

func blockKey(hash types.Hash) []byte {
	return append(append([]byte{}, prefixBlock...), hash[:]...)
}

func undoKey(hash types.Hash) []byte {
	return append(append([]byte{}, prefixUndo...), hash[:]...)
}

// PutBlock stores a block under its hash.
func (bs *BlockStore) PutBlock(blk *block.Block) error {
	if err := bs.db.Put(blockKey(blk.Hash()), blk.Serialize()); err != nil {
		return fmt.Errorf("store block: %w", err)
	}
	return nil
}

// GetBlock loads a block by hash.
func (bs *BlockStore) GetBlock(hash types.Hash) (*block.Block, error) {
	data, err := bs.db.Get(blockKey(hash))
	if err != nil {
		return nil, fmt.Errorf("load block %s: %w", hash, err)
	}
	return block.Deserialize(data)
}

// HasBlock reports whether a block is stored.
func (bs *BlockStore) HasBlock(hash types.Hash) (bool, error) {
	return bs.db.Has(blockKey(hash))
}

// ForEachBlock iterates over every stored block.
func (bs *BlockStore) ForEachBlock(fn func(*block.Block) error) error {
	return bs.db.ForEach(prefixBlock, func(_, value []byte) error {
		blk, err := block.Deserialize(value)
		if err != nil {
			return fmt.Errorf("decode stored block: %w", err)
		}
		return fn(blk)
	})
}

// PutUndo stores a connected block's undo data.
func (bs *BlockStore) PutUndo(hash types.Hash, undo *UndoData) error {
	data, err := json.Marshal(undo)
	if err != nil {
		return fmt.Errorf("marshal undo: %w", err)
	}
	if err := bs.db.Put(undoKey(hash), data); err != nil {
		return fmt.Errorf("store undo: %w", err)
	}
	return nil
}

// GetUndo loads a block's undo data.
func (bs *BlockStore) GetUndo(hash types.Hash) (*UndoData, error) {
	data, err := bs.db.Get(undoKey(hash))
	if err != nil {
		return nil, fmt.Errorf("load undo %s: %w", hash, err)
	}
	var undo UndoData
	if err := json.Unmarshal(data, &undo); err != nil {
		return nil, fmt.Errorf("unmarshal undo: %w", err)
	}
	return &undo, nil
}

// DeleteUndo removes a block's undo data after it is disconnected.
func (bs *BlockStore) DeleteUndo(hash types.Hash) error {
	return bs.db.Delete(undoKey(hash))
}

// tipMeta is the persisted form of the chain tip state.
type tipMeta struct {
	TipHash types.Hash `json:"tip_hash"`
	Height  uint32     `json:"height"`
	Supply  uint64     `json:"supply"`
	Work    []byte     `json:"work"` // big-endian TotalWork bytes
}

// SetTip persists the chain tip state.
func (bs *BlockStore) SetTip(hash types.Hash, height uint32, supply uint64, work *big.Int) error {
	data, err := json.Marshal(tipMeta{
		TipHash: hash,
		Height:  height,
		Supply:  supply,
		Work:    work.Bytes(),
	})
	if err != nil {
		return fmt.Errorf("marshal tip: %w", err)
	}
	if err := bs.db.Put(keyTipMeta, data); err != nil {
		return fmt.Errorf("store tip: %w", err)
	}
	return nil
}

// GetTip loads the persisted tip state. found is false for a fresh
// database.
func (bs *BlockStore) GetTip() (hash types.Hash, height uint32, supply uint64, work *big.Int, found bool, err error) {
	data, err := bs.db.Get(keyTipMeta)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return types.Hash{}, 0, 0, nil, false, nil
	}
	if err != nil {
		return types.Hash{}, 0, 0, nil, false, fmt.Errorf("load tip: %w", err)
	}
	var meta tipMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return types.Hash{}, 0, 0, nil, false, fmt.Errorf("unmarshal tip: %w", err)
	}
	return meta.TipHash, meta.Height, meta.Supply, new(big.Int).SetBytes(meta.Work), true, nil
}
