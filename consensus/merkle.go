package consensus

// TxID is the double-SHA256 of the serialised transaction in hash output order.
func TxID(txBytes []byte) [32]byte {
	return sha256d(txBytes)
}

// MerkleRootTxids folds txids pairwise with double-SHA256, duplicating the last entry
// of an odd level. A single txid is its own root.
func MerkleRootTxids(txids [][32]byte) ([32]byte, error) {
	var zero [32]byte
	if len(txids) == 0 {
		return zero, txerr(TX_ERR_PARSE, "merkle: empty tx list")
	}

	level := append([][32]byte(nil), txids...)
	var nodePreimage [32 + 32]byte
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][32]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			copy(nodePreimage[:32], level[i][:])
			copy(nodePreimage[32:], level[i+1][:])
			next = append(next, sha256d(nodePreimage[:]))
		}
		level = next
	}
	return level[0], nil
}
