package consensus

import (
	"fmt"
	"strings"

	"genesis.dev/genesis/crypto"
)

// Algorithm is the closed set of proof-of-work families accepted as configuration.
type Algorithm uint8

const (
	AlgSHA256 Algorithm = iota + 1
	AlgScrypt
	AlgX11
	AlgX13
	AlgX15
)

var algorithmNames = map[Algorithm]string{
	AlgSHA256: "SHA256",
	AlgScrypt: "scrypt",
	AlgX11:    "X11",
	AlgX13:    "X13",
	AlgX15:    "X15",
}

// Algorithms lists every accepted algorithm in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgSHA256, AlgScrypt, AlgX11, AlgX13, AlgX15}
}

// AlgorithmNames lists the accepted configuration names.
func AlgorithmNames() []string {
	algs := Algorithms()
	out := make([]string, 0, len(algs))
	for _, a := range algs {
		out = append(out, a.String())
	}
	return out
}

// ParseAlgorithm maps a configuration name to its Algorithm. Names are case-sensitive.
func ParseAlgorithm(name string) (Algorithm, error) {
	for a, n := range algorithmNames {
		if n == name {
			return a, nil
		}
	}
	return 0, txerr(CONFIG_ERR_ALGORITHM, fmt.Sprintf("algorithm must be one of [%s], got %q", strings.Join(AlgorithmNames(), "|"), name))
}

func (a Algorithm) String() string {
	if n, ok := algorithmNames[a]; ok {
		return n
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// Hasher returns the proof-of-work digest function. X11, X13 and X15 are accepted
// names without an implementation and fail here.
func (a Algorithm) Hasher() (crypto.Hasher, error) {
	switch a {
	case AlgSHA256:
		return crypto.SHA256d{}, nil
	case AlgScrypt:
		return crypto.LitecoinScrypt(), nil
	case AlgX11, AlgX13, AlgX15:
		return nil, txerr(POW_ERR_UNSUPPORTED_ALGORITHM, fmt.Sprintf("unsupported algorithm: %s", a))
	default:
		return nil, txerr(CONFIG_ERR_ALGORITHM, fmt.Sprintf("unknown algorithm: %s", a))
	}
}

// UsesIdentityHash reports whether the proof-of-work digest is the chain identity
// hash itself, so one double-SHA256 per attempt serves both roles.
func (a Algorithm) UsesIdentityHash() bool {
	return a == AlgSHA256
}

// GenesisHash picks the digest reported as the block's genesis hash. Every
// implemented family reports the double-SHA256 identity hash; the alternate
// digest only decides whether the target is met.
func (a Algorithm) GenesisHash(identity, _ [32]byte) [32]byte {
	return identity
}

// DefaultBits is the compact difficulty used when none is configured.
func (a Algorithm) DefaultBits() uint32 {
	if a == AlgSHA256 {
		return 0x1d00ffff
	}
	return 0x1e0ffff0
}
