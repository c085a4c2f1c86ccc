package crypto

import (
	"testing"

	"github.com/nozmo-king/eMoney/pkg/types"
)

func TestDoubleDigest(t *testing.T) {
	data := []byte("emoney digest test")
	first := Digest(data)
	if got := DoubleDigest(data); got != Digest(first[:]) {
		t.Error("DoubleDigest is not Digest applied twice")
	}
}

func TestDigestConcat(t *testing.T) {
	a := Digest([]byte("left"))
	b := Digest([]byte("right"))

	var joined [2 * types.HashSize]byte
	copy(joined[:types.HashSize], a[:])
	copy(joined[types.HashSize:], b[:])

	if DigestConcat(a, b) != Digest(joined[:]) {
		t.Error("DigestConcat does not match digest of concatenation")
	}
	if DigestConcat(a, b) == DigestConcat(b, a) {
		t.Error("DigestConcat should be order-sensitive")
	}
}

func TestAddressFromPubKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	addr := AddressFromPubKey(key.PublicKey())
	if addr == (types.Commitment{}) {
		t.Error("commitment should not be zero")
	}
	if addr != AddressFromPubKey(key.PublicKey()) {
		t.Error("commitment derivation should be deterministic")
	}
}

func TestSignVerify(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	hash := Hash256([]byte("message"))
	sig, err := key.Sign(hash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !VerifySignature(hash[:], sig, key.PublicKey()) {
		t.Error("valid signature rejected")
	}

	other := Hash256([]byte("other message"))
	if VerifySignature(other[:], sig, key.PublicKey()) {
		t.Error("signature over wrong hash accepted")
	}

	wrongKey, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if VerifySignature(hash[:], sig, wrongKey.PublicKey()) {
		t.Error("signature with wrong key accepted")
	}
}
