package consensus

import "math/big"

// HashToBig interprets a digest in hash output order as an unsigned integer,
// i.e. big-endian over the byte-reversed digest.
func HashToBig(digest [32]byte) *big.Int {
	rev := ReverseDigest(digest)
	return new(big.Int).SetBytes(rev[:])
}

// PowCheck reports whether digest (hash output order) is strictly below target.
func PowCheck(digest [32]byte, target *big.Int) bool {
	if target == nil {
		return false
	}
	return HashToBig(digest).Cmp(target) < 0
}
