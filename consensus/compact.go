package consensus

import "math/big"

// CompactToTarget expands compact difficulty bits: the top byte is an exponent e and
// the low three bytes a mantissa m, target = m * 256^(e-3). Exponents below 3 shift
// the mantissa right, truncating: the target stays an integer, so 0x020001ff decodes
// to 1 rather than 1.99. The mantissa sign bit has no special meaning here.
func CompactToTarget(bits uint32) *big.Int {
	mantissa := new(big.Int).SetUint64(uint64(bits & 0x00ffffff))
	exponent := uint(bits >> 24)
	if exponent >= 3 {
		return mantissa.Lsh(mantissa, 8*(exponent-3))
	}
	return mantissa.Rsh(mantissa, 8*(3-exponent))
}

// TargetBytes renders target as 32 big-endian bytes. It reports false when the
// target does not fit in 256 bits.
func TargetBytes(target *big.Int) ([32]byte, bool) {
	var out [32]byte
	if target == nil || target.Sign() < 0 || target.BitLen() > 256 {
		return out, false
	}
	target.FillBytes(out[:])
	return out, true
}
