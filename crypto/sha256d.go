package crypto

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// SHA256d is double SHA-256, the chain identity hash of every supported family.
type SHA256d struct{}

func (SHA256d) Digest(header []byte) ([32]byte, error) {
	return chainhash.DoubleHashH(header), nil
}

func (SHA256d) Name() string { return "sha256d" }
