package consensus

import "github.com/btcsuite/btcd/chaincfg/chainhash"

func sha256d(b []byte) [32]byte {
	return chainhash.DoubleHashH(b)
}

// ReverseDigest returns d with its byte order flipped, the conventional display order.
func ReverseDigest(d [32]byte) [32]byte {
	for i, j := 0, len(d)-1; i < j; i, j = i+1, j-1 {
		d[i], d[j] = d[j], d[i]
	}
	return d
}
