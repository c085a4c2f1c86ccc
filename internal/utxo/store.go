package utxo

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nozmo-king/eMoney/internal/storage"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// prefixUTXO keys unspent entries: u/<txid><index> -> Entry JSON.
var prefixUTXO = []byte("u/")

// Store implements Set backed by a storage.DB. Open transactions are
// in-memory overlay layers; a nil overlay value is a tombstone for a
// spent entry. Reads consult the overlays newest-first, then the
// database. The bottom layer's Commit writes through to the database.
type Store struct {
	db     storage.DB
	layers []map[string]*Entry
}

// NewStore creates a UTXO store backed by the given database.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// utxoKey builds the storage key for an outpoint.
func utxoKey(op types.Outpoint) []byte {
	key := make([]byte, len(prefixUTXO)+types.HashSize+4)
	copy(key, prefixUTXO)
	copy(key[len(prefixUTXO):], op.TxID[:])
	binary.BigEndian.PutUint32(key[len(prefixUTXO)+types.HashSize:], op.Index)
	return key
}

// Get retrieves an entry by its outpoint.
func (s *Store) Get(outpoint types.Outpoint) (*Entry, error) {
	key := string(utxoKey(outpoint))
	for i := len(s.layers) - 1; i >= 0; i-- {
		if e, ok := s.layers[i][key]; ok {
			if e == nil {
				return nil, fmt.Errorf("%s: %w", outpoint, ErrNotFound)
			}
			return e, nil
		}
	}

	data, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s: %w", outpoint, ErrNotFound)
		}
		return nil, fmt.Errorf("utxo get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("utxo unmarshal: %w", err)
	}
	return &e, nil
}

// Has reports whether the outpoint has an unspent entry.
func (s *Store) Has(outpoint types.Outpoint) (bool, error) {
	key := string(utxoKey(outpoint))
	for i := len(s.layers) - 1; i >= 0; i-- {
		if e, ok := s.layers[i][key]; ok {
			return e != nil, nil
		}
	}
	return s.db.Has([]byte(key))
}

// Begin opens a new savepoint.
func (s *Store) Begin() {
	s.layers = append(s.layers, make(map[string]*Entry))
}

// Commit folds the top savepoint into its parent, or writes it through
// to the database when it is the bottom one.
func (s *Store) Commit() error {
	if len(s.layers) == 0 {
		return errors.New("commit without begin")
	}
	top := s.layers[len(s.layers)-1]
	s.layers = s.layers[:len(s.layers)-1]

	if len(s.layers) > 0 {
		parent := s.layers[len(s.layers)-1]
		for k, e := range top {
			parent[k] = e
		}
		return nil
	}

	for k, e := range top {
		if e == nil {
			if err := s.db.Delete([]byte(k)); err != nil {
				return fmt.Errorf("utxo delete: %w", err)
			}
			continue
		}
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("utxo marshal: %w", err)
		}
		if err := s.db.Put([]byte(k), data); err != nil {
			return fmt.Errorf("utxo put: %w", err)
		}
	}
	return nil
}

// Rollback discards the top savepoint.
func (s *Store) Rollback() error {
	if len(s.layers) == 0 {
		return errors.New("rollback without begin")
	}
	s.layers = s.layers[:len(s.layers)-1]
	return nil
}

// ApplySpend removes the entry for outpoint and returns it.
func (s *Store) ApplySpend(outpoint types.Outpoint) (*Entry, error) {
	e, err := s.Get(outpoint)
	if err != nil {
		return nil, err
	}
	if err := s.set(utxoKey(outpoint), nil); err != nil {
		return nil, err
	}
	return e, nil
}

// ApplyCreate inserts a new entry.
func (s *Store) ApplyCreate(e *Entry) error {
	return s.set(utxoKey(e.Outpoint), e)
}

// set records a write in the top savepoint, or writes through when no
// transaction is open.
func (s *Store) set(key []byte, e *Entry) error {
	if len(s.layers) > 0 {
		s.layers[len(s.layers)-1][string(key)] = e
		return nil
	}
	if e == nil {
		if err := s.db.Delete(key); err != nil {
			return fmt.Errorf("utxo delete: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("utxo marshal: %w", err)
	}
	if err := s.db.Put(key, data); err != nil {
		return fmt.Errorf("utxo put: %w", err)
	}
	return nil
}
