package crypto

import (
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// Scrypt is the memory-hard proof-of-work hash used by Litecoin-style chains:
// the header is both password and salt.
type Scrypt struct {
	N int
	R int
	P int
}

// LitecoinScrypt returns the N=1024, r=1, p=1 parameter set.
func LitecoinScrypt() Scrypt {
	return Scrypt{N: 1024, R: 1, P: 1}
}

func (s Scrypt) Digest(header []byte) ([32]byte, error) {
	var out [32]byte
	key, err := scrypt.Key(header, header, s.N, s.R, s.P, len(out))
	if err != nil {
		return out, fmt.Errorf("scrypt: %w", err)
	}
	copy(out[:], key)
	return out, nil
}

func (s Scrypt) Name() string {
	return fmt.Sprintf("scrypt(N=%d,r=%d,p=%d)", s.N, s.R, s.P)
}
