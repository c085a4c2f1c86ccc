package types

import (
	"bytes"
	"errors"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000, ^uint64(0)}
	for _, v := range values {
		buf := AppendVarint(nil, v)
		if len(buf) != VarintSize(v) {
			t.Errorf("value %d: encoded %d bytes, VarintSize says %d", v, len(buf), VarintSize(v))
		}
		got, n, err := ReadVarint(buf)
		if err != nil {
			t.Fatalf("value %d: ReadVarint: %v", v, err)
		}
		if got != v || n != len(buf) {
			t.Errorf("value %d: decoded %d (%d bytes)", v, got, n)
		}
	}
}

func TestVarintNonMinimal(t *testing.T) {
	// 1 encoded with the 2-byte form must be rejected.
	buf := []byte{0xfd, 0x01, 0x00}
	if _, _, err := ReadVarint(buf); !errors.Is(err, ErrVarintTooLarge) {
		t.Errorf("non-minimal encoding accepted: %v", err)
	}
}

func TestVarintTruncated(t *testing.T) {
	for _, buf := range [][]byte{nil, {0xfd}, {0xfd, 0x00}, {0xfe, 1, 2, 3}, {0xff, 1, 2, 3, 4, 5, 6, 7}} {
		if _, _, err := ReadVarint(buf); err == nil {
			t.Errorf("truncated buffer %x accepted", buf)
		}
	}
}

func TestVarintBoundaryEncodings(t *testing.T) {
	if got := AppendVarint(nil, 0xfc); !bytes.Equal(got, []byte{0xfc}) {
		t.Errorf("0xfc encoded as %x", got)
	}
	if got := AppendVarint(nil, 0xfd); !bytes.Equal(got, []byte{0xfd, 0xfd, 0x00}) {
		t.Errorf("0xfd encoded as %x", got)
	}
}
