package consensus

import "encoding/binary"

func AppendU32le(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// AppendU32be is used for the coinbase prev index, sequence and locktime, which this
// format writes big-endian.
func AppendU32be(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

func AppendI64le(dst []byte, v int64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v)) // #nosec G115 -- two's complement bit pattern is the wire format.
	return append(dst, buf[:]...)
}
