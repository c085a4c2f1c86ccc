package utxo

import (
	"errors"
	"testing"

	"github.com/nozmo-king/eMoney/internal/storage"
	"github.com/nozmo-king/eMoney/pkg/types"
)

func testEntry(b byte, value uint64) *Entry {
	var op types.Outpoint
	op.TxID[0] = b
	return &Entry{Outpoint: op, Value: value, Script: []byte{0xac}, Height: 1}
}

func TestStoreWriteThrough(t *testing.T) {
	s := NewStore(storage.NewMemory())
	e := testEntry(1, 500)

	if err := s.ApplyCreate(e); err != nil {
		t.Fatalf("ApplyCreate: %v", err)
	}
	got, err := s.Get(e.Outpoint)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Value != 500 || got.Height != 1 {
		t.Errorf("got %+v", got)
	}

	spent, err := s.ApplySpend(e.Outpoint)
	if err != nil {
		t.Fatalf("ApplySpend: %v", err)
	}
	if spent.Value != 500 {
		t.Errorf("spent entry value = %d", spent.Value)
	}
	if _, err := s.Get(e.Outpoint); !errors.Is(err, ErrNotFound) {
		t.Errorf("spent entry still readable: %v", err)
	}
}

func TestStoreSpendMissing(t *testing.T) {
	s := NewStore(storage.NewMemory())
	if _, err := s.ApplySpend(testEntry(9, 1).Outpoint); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStoreRollbackDiscards(t *testing.T) {
	s := NewStore(storage.NewMemory())
	base := testEntry(1, 100)
	if err := s.ApplyCreate(base); err != nil {
		t.Fatalf("ApplyCreate: %v", err)
	}

	s.Begin()
	if _, err := s.ApplySpend(base.Outpoint); err != nil {
		t.Fatalf("ApplySpend in txn: %v", err)
	}
	if err := s.ApplyCreate(testEntry(2, 200)); err != nil {
		t.Fatalf("ApplyCreate in txn: %v", err)
	}
	if err := s.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if has, _ := s.Has(base.Outpoint); !has {
		t.Error("rolled-back spend removed the entry")
	}
	if has, _ := s.Has(testEntry(2, 0).Outpoint); has {
		t.Error("rolled-back create persisted")
	}
}

func TestStoreCommitPersists(t *testing.T) {
	db := storage.NewMemory()
	s := NewStore(db)

	s.Begin()
	if err := s.ApplyCreate(testEntry(1, 100)); err != nil {
		t.Fatalf("ApplyCreate: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// A fresh store over the same database sees the entry.
	if has, _ := NewStore(db).Has(testEntry(1, 0).Outpoint); !has {
		t.Error("committed entry not persisted")
	}
}

func TestStoreNestedSavepoints(t *testing.T) {
	s := NewStore(storage.NewMemory())

	s.Begin() // outer
	if err := s.ApplyCreate(testEntry(1, 100)); err != nil {
		t.Fatalf("ApplyCreate: %v", err)
	}

	s.Begin() // inner
	if err := s.ApplyCreate(testEntry(2, 200)); err != nil {
		t.Fatalf("ApplyCreate: %v", err)
	}
	// Inner reads see outer writes.
	if has, _ := s.Has(testEntry(1, 0).Outpoint); !has {
		t.Error("inner savepoint cannot read outer write")
	}
	if err := s.Commit(); err != nil { // fold inner into outer
		t.Fatalf("inner Commit: %v", err)
	}

	if has, _ := s.Has(testEntry(2, 0).Outpoint); !has {
		t.Error("folded inner write lost")
	}

	if err := s.Rollback(); err != nil { // outer rollback drops both
		t.Fatalf("outer Rollback: %v", err)
	}
	if has, _ := s.Has(testEntry(1, 0).Outpoint); has {
		t.Error("outer rollback kept outer write")
	}
	if has, _ := s.Has(testEntry(2, 0).Outpoint); has {
		t.Error("outer rollback kept folded inner write")
	}
}

func TestStoreUnbalancedTransaction(t *testing.T) {
	s := NewStore(storage.NewMemory())
	if err := s.Commit(); err == nil {
		t.Error("commit without begin accepted")
	}
	if err := s.Rollback(); err == nil {
		t.Error("rollback without begin accepted")
	}
}
