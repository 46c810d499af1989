package crypto

// Hasher is the narrow digest interface used by the proof-of-work search.
// Implementations map an encoded block header to a 32-byte digest in hash
// output order; callers reverse it for numeric comparison and display.
type Hasher interface {
	Digest(header []byte) ([32]byte, error)
	Name() string
}
