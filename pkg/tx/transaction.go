// Package tx defines the transaction model, its wire codec, and
// validation against the UTXO set.
package tx

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nozmo-king/eMoney/config"
	"github.com/nozmo-king/eMoney/pkg/crypto"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// Input spends a previous output.
type Input struct {
	PrevOut  types.Outpoint `json:"prevout"`
	Script   []byte         `json:"script"`
	Sequence uint32         `json:"sequence"`
}

// Output creates a new spendable value.
type Output struct {
	Value  uint64 `json:"value"`
	Script []byte `json:"script"`
}

// Transaction is an ordered transfer of value from inputs to outputs.
type Transaction struct {
	Version  uint32   `json:"version"`
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
	LockTime uint32   `json:"locktime"`
}

// CurrentVersion is the transaction version produced by this software.
const CurrentVersion = 1

// New returns an empty transaction at the current version.
func New() *Transaction {
	return &Transaction{Version: CurrentVersion}
}

// IsCoinbase reports whether the transaction is a coinbase: exactly one
// input whose previous output is the null marker (all-zero txid, index
// 0xffffffff).
func (t *Transaction) IsCoinbase() bool {
	return len(t.Inputs) == 1 && t.Inputs[0].PrevOut.IsNull()
}

// SerializedSize returns the exact wire length in bytes.
func (t *Transaction) SerializedSize() int {
	size := 4 + types.VarintSize(uint64(len(t.Inputs)))
	for _, in := range t.Inputs {
		size += types.HashSize + 4 + types.VarintSize(uint64(len(in.Script))) + len(in.Script) + 4
	}
	size += types.VarintSize(uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		size += 8 + types.VarintSize(uint64(len(out.Script))) + len(out.Script)
	}
	return size + 4
}

// Serialize encodes the transaction in its canonical wire form:
// version | input count | inputs | output count | outputs | locktime,
// integers little-endian, counts and script lengths as varints.
func (t *Transaction) Serialize() []byte {
	buf := make([]byte, 0, t.SerializedSize())
	buf = binary.LittleEndian.AppendUint32(buf, t.Version)
	buf = types.AppendVarint(buf, uint64(len(t.Inputs)))
	for _, in := range t.Inputs {
		buf = append(buf, in.PrevOut.TxID[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.PrevOut.Index)
		buf = types.AppendVarint(buf, uint64(len(in.Script)))
		buf = append(buf, in.Script...)
		buf = binary.LittleEndian.AppendUint32(buf, in.Sequence)
	}
	buf = types.AppendVarint(buf, uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		buf = binary.LittleEndian.AppendUint64(buf, out.Value)
		buf = types.AppendVarint(buf, uint64(len(out.Script)))
		buf = append(buf, out.Script...)
	}
	buf = binary.LittleEndian.AppendUint32(buf, t.LockTime)
	return buf
}

// Deserialize decodes a transaction from the front of buf and returns
// the number of bytes consumed.
func Deserialize(buf []byte) (*Transaction, int, error) {
	t := &Transaction{}
	pos := 0

	if len(buf) < 4 {
		return nil, 0, io.ErrUnexpectedEOF
	}
	t.Version = binary.LittleEndian.Uint32(buf)
	pos += 4

	inCount, n, err := types.ReadVarint(buf[pos:])
	if err != nil {
		return nil, 0, fmt.Errorf("input count: %w", err)
	}
	pos += n
	if inCount > config.MaxTxSize {
		return nil, 0, fmt.Errorf("input count %d: %w", inCount, types.ErrVarintTooLarge)
	}
	t.Inputs = make([]Input, inCount)
	for i := range t.Inputs {
		in := &t.Inputs[i]
		if len(buf[pos:]) < types.HashSize+4 {
			return nil, 0, io.ErrUnexpectedEOF
		}
		copy(in.PrevOut.TxID[:], buf[pos:])
		pos += types.HashSize
		in.PrevOut.Index = binary.LittleEndian.Uint32(buf[pos:])
		pos += 4

		scriptLen, n, err := types.ReadVarint(buf[pos:])
		if err != nil {
			return nil, 0, fmt.Errorf("input %d script length: %w", i, err)
		}
		pos += n
		if scriptLen > config.MaxScriptSize {
			return nil, 0, fmt.Errorf("input %d: %w: %d bytes", i, ErrScriptTooLarge, scriptLen)
		}
		if uint64(len(buf[pos:])) < scriptLen+4 {
			return nil, 0, io.ErrUnexpectedEOF
		}
		in.Script = append([]byte(nil), buf[pos:pos+int(scriptLen)]...)
		pos += int(scriptLen)
		in.Sequence = binary.LittleEndian.Uint32(buf[pos:])
		pos += 4
	}

	outCount, n, err := types.ReadVarint(buf[pos:])
	if err != nil {
		return nil, 0, fmt.Errorf("output count: %w", err)
	}
	pos += n
	if outCount > config.MaxTxSize {
		return nil, 0, fmt.Errorf("output count %d: %w", outCount, types.ErrVarintTooLarge)
	}
	t.Outputs = make([]Output, outCount)
	for i := range t.Outputs {
		out := &t.Outputs[i]
		if len(buf[pos:]) < 8 {
			return nil, 0, io.ErrUnexpectedEOF
		}
		out.Value = binary.LittleEndian.Uint64(buf[pos:])
		pos += 8

		scriptLen, n, err := types.ReadVarint(buf[pos:])
		if err != nil {
			return nil, 0, fmt.Errorf("output %d script length: %w", i, err)
		}
		pos += n
		if scriptLen > config.MaxScriptSize {
			return nil, 0, fmt.Errorf("output %d: %w: %d bytes", i, ErrScriptTooLarge, scriptLen)
		}
		if uint64(len(buf[pos:])) < scriptLen {
			return nil, 0, io.ErrUnexpectedEOF
		}
		out.Script = append([]byte(nil), buf[pos:pos+int(scriptLen)]...)
		pos += int(scriptLen)
	}

	if len(buf[pos:]) < 4 {
		return nil, 0, io.ErrUnexpectedEOF
	}
	t.LockTime = binary.LittleEndian.Uint32(buf[pos:])
	pos += 4

	return t, pos, nil
}

// Hash computes the transaction id: the double digest of the canonical
// serialization.
func (t *Transaction) Hash() types.Hash {
	return crypto.DoubleDigest(t.Serialize())
}

// SigningBytes returns the serialization used for signature hashing:
// the canonical wire form with every input script emptied, so that
// signatures do not cover themselves.
func (t *Transaction) SigningBytes() []byte {
	stripped := Transaction{
		Version:  t.Version,
		Inputs:   make([]Input, len(t.Inputs)),
		Outputs:  t.Outputs,
		LockTime: t.LockTime,
	}
	for i, in := range t.Inputs {
		stripped.Inputs[i] = Input{PrevOut: in.PrevOut, Sequence: in.Sequence}
	}
	return stripped.Serialize()
}

// TotalOutputValue returns the sum of all output values.
// Returns ErrValueOverflow if the sum overflows uint64.
func (t *Transaction) TotalOutputValue() (uint64, error) {
	var total uint64
	for i, out := range t.Outputs {
		if total > maxUint64-out.Value {
			return 0, fmt.Errorf("output %d: %w", i, ErrValueOverflow)
		}
		total += out.Value
	}
	return total, nil
}

const maxUint64 = ^uint64(0)
