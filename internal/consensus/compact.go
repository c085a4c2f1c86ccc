package consensus

import "math/big"

// CompactToTarget converts the 32-bit compact "bits" representation to
// the 512-bit target it encodes. The top byte is a base-256 exponent
// and the low 23 bits are the mantissa: target = mantissa *
// 256^(exponent-3). Bit 0x00800000 is a sign marker; a set sign bit
// yields a negative target, which no valid hash can meet.
func CompactToTarget(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var target *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		target = big.NewInt(int64(mantissa))
	} else {
		target = big.NewInt(int64(mantissa))
		target.Lsh(target, 8*(exponent-3))
	}

	if isNegative {
		target.Neg(target)
	}
	return target
}

// TargetToCompact converts a target to its compact representation.
// The mantissa is normalized so its top byte stays below 0x80: when it
// would not, the mantissa shifts down a byte and the exponent grows.
// CompactToTarget(TargetToCompact(t)) == t for every normalized t.
func TargetToCompact(target *big.Int) uint32 {
	if target.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(target.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(target.Int64()) << (8 * (3 - exponent))
	} else {
		tn := new(big.Int).Rsh(target, 8*(exponent-3))
		mantissa = uint32(tn.Int64())
	}

	// Keep the sign bit clear in the mantissa.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent)<<24 | mantissa
	if target.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}
