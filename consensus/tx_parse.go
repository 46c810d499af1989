package consensus

// ParseCoinbaseTx decodes a transaction produced by MarshalCoinbaseTx and returns it
// with the number of bytes consumed.
func ParseCoinbaseTx(b []byte) (*CoinbaseTx, int, error) {
	off := 0
	tx := &CoinbaseTx{}

	version, err := readU32le(b, &off)
	if err != nil {
		return nil, 0, err
	}
	tx.Version = version

	inCount, err := readU8(b, &off)
	if err != nil {
		return nil, 0, err
	}
	if inCount != 1 {
		return nil, 0, txerr(TX_ERR_PARSE, "input count must be 1")
	}
	prev, err := readBytes(b, &off, 32)
	if err != nil {
		return nil, 0, err
	}
	copy(tx.PrevTxid[:], prev)
	if tx.PrevVout, err = readU32be(b, &off); err != nil {
		return nil, 0, err
	}
	sigLen, err := readU8(b, &off)
	if err != nil {
		return nil, 0, err
	}
	sig, err := readBytes(b, &off, int(sigLen))
	if err != nil {
		return nil, 0, err
	}
	tx.ScriptSig = append([]byte(nil), sig...)
	if tx.Sequence, err = readU32be(b, &off); err != nil {
		return nil, 0, err
	}

	outCount, err := readU8(b, &off)
	if err != nil {
		return nil, 0, err
	}
	if outCount != 1 {
		return nil, 0, txerr(TX_ERR_PARSE, "output count must be 1")
	}
	if tx.Value, err = readI64le(b, &off); err != nil {
		return nil, 0, err
	}
	pkLen, err := readU8(b, &off)
	if err != nil {
		return nil, 0, err
	}
	pk, err := readBytes(b, &off, int(pkLen))
	if err != nil {
		return nil, 0, err
	}
	tx.ScriptPubKey = append([]byte(nil), pk...)

	if tx.Locktime, err = readU32be(b, &off); err != nil {
		return nil, 0, err
	}
	return tx, off, nil
}
