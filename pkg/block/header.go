package block

import (
	"encoding/binary"
	"io"

	"github.com/nozmo-king/eMoney/pkg/crypto"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// HeaderSize is the length of a serialized block header:
// version(4) | prev_block(64) | merkle_root(64) | timestamp(4) |
// bits(4) | nonce(4), integers little-endian, digests raw.
const HeaderSize = 4 + types.HashSize + types.HashSize + 4 + 4 + 4

// Header contains block metadata.
type Header struct {
	Version    uint32     `json:"version"`
	PrevBlock  types.Hash `json:"prev_block"`
	MerkleRoot types.Hash `json:"merkle_root"`
	Timestamp  uint32     `json:"timestamp"`
	Bits       uint32     `json:"bits"`
	Nonce      uint32     `json:"nonce"`
}

// Serialize encodes the header into its fixed-size wire form.
func (h *Header) Serialize() []byte {
	buf := make([]byte, 0, HeaderSize)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version)
	buf = append(buf, h.PrevBlock[:]...)
	buf = append(buf, h.MerkleRoot[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, h.Timestamp)
	buf = binary.LittleEndian.AppendUint32(buf, h.Bits)
	buf = binary.LittleEndian.AppendUint32(buf, h.Nonce)
	return buf
}

// DeserializeHeader decodes a header from the front of buf.
func DeserializeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, io.ErrUnexpectedEOF
	}
	h := &Header{}
	pos := 0
	h.Version = binary.LittleEndian.Uint32(buf[pos:])
	pos += 4
	copy(h.PrevBlock[:], buf[pos:])
	pos += types.HashSize
	copy(h.MerkleRoot[:], buf[pos:])
	pos += types.HashSize
	h.Timestamp = binary.LittleEndian.Uint32(buf[pos:])
	pos += 4
	h.Bits = binary.LittleEndian.Uint32(buf[pos:])
	pos += 4
	h.Nonce = binary.LittleEndian.Uint32(buf[pos:])
	return h, nil
}

// Hash computes the block hash: a single digest of the serialized
// header. Transaction ids use the double digest; block hashes do not.
func (h *Header) Hash() types.Hash {
	return crypto.Digest(h.Serialize())
}
