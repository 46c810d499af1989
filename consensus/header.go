package consensus

import "encoding/binary"

type BlockHeader struct {
	Version       uint32
	PrevBlockHash [32]byte
	MerkleRoot    [32]byte
	Time          uint32
	Bits          uint32
	Nonce         uint32
}

const (
	BLOCK_HEADER_BYTES  = 80
	BLOCK_VERSION       = 1
	HEADER_NONCE_OFFSET = BLOCK_HEADER_BYTES - 4
)

// NewGenesisHeader returns a version 1 header with no parent.
func NewGenesisHeader(merkleRoot [32]byte, time, bits, nonce uint32) BlockHeader {
	return BlockHeader{
		Version:    BLOCK_VERSION,
		MerkleRoot: merkleRoot,
		Time:       time,
		Bits:       bits,
		Nonce:      nonce,
	}
}

func BlockHeaderBytes(header BlockHeader) []byte {
	out := make([]byte, 0, BLOCK_HEADER_BYTES)
	out = AppendU32le(out, header.Version)
	out = append(out, header.PrevBlockHash[:]...)
	out = append(out, header.MerkleRoot[:]...)
	out = AppendU32le(out, header.Time)
	out = AppendU32le(out, header.Bits)
	out = AppendU32le(out, header.Nonce)
	return out
}

func ParseBlockHeaderBytes(b []byte) (BlockHeader, error) {
	var h BlockHeader
	if len(b) != BLOCK_HEADER_BYTES {
		return h, txerr(BLOCK_ERR_PARSE, "block header length mismatch")
	}
	off := 0

	version, err := readU32le(b, &off)
	if err != nil {
		return h, err
	}
	prev, err := readBytes(b, &off, 32)
	if err != nil {
		return h, err
	}
	merkle, err := readBytes(b, &off, 32)
	if err != nil {
		return h, err
	}
	ts, err := readU32le(b, &off)
	if err != nil {
		return h, err
	}
	bits, err := readU32le(b, &off)
	if err != nil {
		return h, err
	}
	nonce, err := readU32le(b, &off)
	if err != nil {
		return h, err
	}

	h.Version = version
	copy(h.PrevBlockHash[:], prev)
	copy(h.MerkleRoot[:], merkle)
	h.Time = ts
	h.Bits = bits
	h.Nonce = nonce
	return h, nil
}

// PutHeaderNonce rewrites only the trailing nonce field of an encoded header.
func PutHeaderNonce(header []byte, nonce uint32) {
	binary.LittleEndian.PutUint32(header[HEADER_NONCE_OFFSET:BLOCK_HEADER_BYTES], nonce)
}

// BlockHash is the chain identity hash of an encoded header, in hash output order.
func BlockHash(headerBytes []byte) ([32]byte, error) {
	if len(headerBytes) != BLOCK_HEADER_BYTES {
		var zero [32]byte
		return zero, txerr(BLOCK_ERR_PARSE, "block hash: invalid header length")
	}
	return sha256d(headerBytes), nil
}
