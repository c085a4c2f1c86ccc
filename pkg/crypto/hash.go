// Package crypto provides the digest primitives for eMoney.
package crypto

import (
	"crypto/sha512"

	"github.com/nozmo-king/eMoney/pkg/types"
	"github.com/zeebo/blake3"
)

// Digest computes the SHA-512 digest of the input data. All consensus
// identities (block hashes, transaction ids, merkle nodes) use it.
func Digest(data []byte) types.Hash {
	return sha512.Sum512(data)
}

// DoubleDigest computes Digest(Digest(data)).
func DoubleDigest(data []byte) types.Hash {
	first := Digest(data)
	return Digest(first[:])
}

// DigestConcat digests the concatenation of two digests.
// Used for building merkle trees.
func DigestConcat(a, b types.Hash) types.Hash {
	var buf [2 * types.HashSize]byte
	copy(buf[:types.HashSize], a[:])
	copy(buf[types.HashSize:], b[:])
	return Digest(buf[:])
}

// Hash256 computes a BLAKE3-256 hash. The script system uses it for
// pubkey commitments and signature hashes; it never feeds consensus
// identities.
func Hash256(data []byte) [32]byte {
	return blake3.Sum256(data)
}

// AddressFromPubKey derives the 20-byte script commitment for a
// compressed public key: BLAKE3(pubkey)[:20].
func AddressFromPubKey(pubKey []byte) types.Commitment {
	h := Hash256(pubKey)
	var c types.Commitment
	copy(c[:], h[:types.CommitmentSize])
	return c
}
