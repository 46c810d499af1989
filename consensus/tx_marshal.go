package consensus

import "fmt"

// MarshalCoinbaseTx serialises tx into its canonical bytes; ParseCoinbaseTx is the inverse.
//
// Version and value are little-endian while prev index, sequence and locktime are
// big-endian. Both scripts carry a one-byte length.
func MarshalCoinbaseTx(tx *CoinbaseTx) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("nil tx")
	}
	if len(tx.ScriptSig) > maxScriptBytes {
		return nil, txerr(TX_ERR_SCRIPT_TOO_LARGE, fmt.Sprintf("input script is %d bytes", len(tx.ScriptSig)))
	}
	if len(tx.ScriptPubKey) > maxScriptBytes {
		return nil, txerr(TX_ERR_SCRIPT_TOO_LARGE, fmt.Sprintf("output script is %d bytes", len(tx.ScriptPubKey)))
	}

	b := make([]byte, 0, CoinbaseTxSize(tx))

	b = AppendU32le(b, tx.Version)

	// Input
	b = append(b, 0x01)
	b = append(b, tx.PrevTxid[:]...)
	b = AppendU32be(b, tx.PrevVout)
	b = append(b, byte(len(tx.ScriptSig)))
	b = append(b, tx.ScriptSig...)
	b = AppendU32be(b, tx.Sequence)

	// Output
	b = append(b, 0x01)
	b = AppendI64le(b, tx.Value)
	b = append(b, byte(len(tx.ScriptPubKey)))
	b = append(b, tx.ScriptPubKey...)

	b = AppendU32be(b, tx.Locktime)
	return b, nil
}

// CoinbaseTxSize is the serialised length of tx.
func CoinbaseTxSize(tx *CoinbaseTx) int {
	if tx == nil {
		return 0
	}
	return COINBASE_TX_FIXED_BYTES + len(tx.ScriptSig) + len(tx.ScriptPubKey)
}
