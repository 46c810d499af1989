package consensus

const (
	TX_VERSION               uint32 = 1
	TX_COINBASE_PREVOUT_VOUT uint32 = 0xffffffff
	TX_SEQUENCE_FINAL        uint32 = 0xffffffff

	// Width of every coinbase field except the two scripts.
	COINBASE_TX_FIXED_BYTES = 4 + 1 + 32 + 4 + 1 + 4 + 1 + 8 + 1 + 4

	maxScriptBytes = 0xff
)

// CoinbaseTx is the single-input, single-output transaction of a genesis block.
type CoinbaseTx struct {
	Version      uint32
	PrevTxid     [32]byte
	PrevVout     uint32
	ScriptSig    []byte
	Sequence     uint32
	Value        int64
	ScriptPubKey []byte
	Locktime     uint32
}

// NewCoinbaseTx fills the fixed genesis fields around the two scripts.
func NewCoinbaseTx(inputScript, outputScript []byte, value int64) *CoinbaseTx {
	return &CoinbaseTx{
		Version:      TX_VERSION,
		PrevVout:     TX_COINBASE_PREVOUT_VOUT,
		ScriptSig:    append([]byte(nil), inputScript...),
		Sequence:     TX_SEQUENCE_FINAL,
		Value:        value,
		ScriptPubKey: append([]byte(nil), outputScript...),
		Locktime:     0,
	}
}

// IsCoinbase reports whether the input references no previous output.
func (tx *CoinbaseTx) IsCoinbase() bool {
	if tx == nil {
		return false
	}
	return tx.PrevTxid == ([32]byte{}) && tx.PrevVout == TX_COINBASE_PREVOUT_VOUT
}
