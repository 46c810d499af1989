package store

import (
	"encoding/binary"
	"fmt"
)

// Checkpoint marks every nonce before NextNonce (from the search's start nonce)
// as already hashed without a solution.
type Checkpoint struct {
	NextNonce uint32
	Attempts  uint64
}

type SolutionRecord struct {
	Algorithm      string `json:"algorithm"`
	Nonce          uint32 `json:"nonce"`
	GenesisHashHex string `json:"genesis_hash"`
	PowHashHex     string `json:"pow_hash"`
	Attempts       uint64 `json:"attempts"`
}

func encodeCheckpoint(cp Checkpoint) []byte {
	// next_nonce u32le | attempts u64le
	out := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(out[0:4], cp.NextNonce)
	binary.LittleEndian.PutUint64(out[4:12], cp.Attempts)
	return out
}

func decodeCheckpoint(b []byte) (Checkpoint, error) {
	if len(b) != 12 {
		return Checkpoint{}, fmt.Errorf("checkpoint: expected 12 bytes, got %d", len(b))
	}
	return Checkpoint{
		NextNonce: binary.LittleEndian.Uint32(b[0:4]),
		Attempts:  binary.LittleEndian.Uint64(b[4:12]),
	}, nil
}
