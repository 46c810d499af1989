package consensus

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/blockchain"
)

func TestCompactToTarget_KnownValues(t *testing.T) {
	cases := []struct {
		name string
		bits uint32
		want string
	}{
		{"bitcoin_pow_limit", 0x1d00ffff, "00000000ffff0000000000000000000000000000000000000000000000000000"},
		{"litecoin_genesis", 0x1e0ffff0, "00000ffff0000000000000000000000000000000000000000000000000000000"},
		{"regtest", 0x207fffff, "7fffff0000000000000000000000000000000000000000000000000000000000"},
		{"exponent_3", 0x03123456, "0000000000000000000000000000000000000000000000000000000000123456"},
		{"exponent_2", 0x02123456, "0000000000000000000000000000000000000000000000000000000000001234"},
		{"exponent_0", 0x00123456, "0000000000000000000000000000000000000000000000000000000000000000"},
		{"zero_mantissa", 0x1d000000, "0000000000000000000000000000000000000000000000000000000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := TargetBytes(CompactToTarget(tc.bits))
			if !ok {
				t.Fatalf("target does not fit 256 bits")
			}
			if hex.EncodeToString(got[:]) != tc.want {
				t.Fatalf("target=%x want %s", got, tc.want)
			}
		})
	}
}

func TestCompactToTarget_MatchesBtcd(t *testing.T) {
	// btcd treats bit 23 of the mantissa as a sign, so only compare positive mantissas.
	for _, bits := range []uint32{0x1d00ffff, 0x1e0ffff0, 0x1f0fffff, 0x207fffff, 0x1b0404cb, 0x17034267, 0x04123456} {
		want := blockchain.CompactToBig(bits)
		if got := CompactToTarget(bits); got.Cmp(want) != 0 {
			t.Fatalf("bits=%#x got=%x want=%x", bits, got, want)
		}
	}
}

func TestCompactToTarget_MonotonicInExponent(t *testing.T) {
	for _, mantissa := range []uint32{0x00ffffff, 0x000001ff, 0x00800000} {
		prev := CompactToTarget(mantissa)
		for e := uint32(1); e <= 0xff; e++ {
			cur := CompactToTarget(e<<24 | mantissa)
			if e >= 3 || mantissa&0x00ff0000 != 0 {
				if cur.Cmp(prev) <= 0 {
					t.Fatalf("mantissa=%#x exponent=%d: target not strictly larger", mantissa, e)
				}
			} else if cur.Cmp(prev) < 0 {
				t.Fatalf("mantissa=%#x exponent=%d: target decreased", mantissa, e)
			}
			prev = cur
		}
	}
}

func TestCompactToTarget_Deterministic(t *testing.T) {
	a := CompactToTarget(0x1d00ffff)
	b := CompactToTarget(0x1d00ffff)
	if a.Cmp(b) != 0 || a == b {
		t.Fatalf("expected equal, independently allocated targets")
	}
}

func TestTargetBytes_Overflow(t *testing.T) {
	if _, ok := TargetBytes(CompactToTarget(0x22ffffff)); ok {
		t.Fatalf("expected overflow for 0x22ffffff")
	}
	if _, ok := TargetBytes(nil); ok {
		t.Fatalf("expected false for nil")
	}
	if _, ok := TargetBytes(big.NewInt(-1)); ok {
		t.Fatalf("expected false for negative")
	}
}

func TestPowCheck_StrictLess(t *testing.T) {
	header := make([]byte, BLOCK_HEADER_BYTES)
	header[0] = 1

	h, err := BlockHash(header)
	if err != nil {
		t.Fatalf("BlockHash error: %v", err)
	}
	hv := HashToBig(h)

	if PowCheck(h, hv) {
		t.Fatalf("expected pow invalid for target == hash")
	}
	if !PowCheck(h, new(big.Int).Add(hv, big.NewInt(1))) {
		t.Fatalf("expected pow valid for target = hash+1")
	}
	if PowCheck(h, nil) {
		t.Fatalf("nil target must never pass")
	}
}

func TestHashToBig_ByteOrder(t *testing.T) {
	var d [32]byte
	d[0] = 0x01 // least significant in hash output order
	if HashToBig(d).Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("HashToBig=%x", HashToBig(d))
	}
	d = [32]byte{}
	d[31] = 0x01
	want := new(big.Int).Lsh(big.NewInt(1), 248)
	if HashToBig(d).Cmp(want) != 0 {
		t.Fatalf("HashToBig=%x", HashToBig(d))
	}
}

func TestBitcoinGenesisMeetsTarget(t *testing.T) {
	h, err := BlockHash(BlockHeaderBytes(bitcoinGenesisHeader(t)))
	if err != nil {
		t.Fatalf("BlockHash: %v", err)
	}
	if !PowCheck(h, CompactToTarget(0x1d00ffff)) {
		t.Fatalf("mainnet genesis must satisfy its own bits")
	}
}

func TestCompactToTarget_SmallExponentTruncates(t *testing.T) {
	target := CompactToTarget(0x020001ff)
	if target.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("target=%s want 1", target)
	}

	var one [32]byte
	one[0] = 0x01 // hash output order: value 1
	if PowCheck(one, target) {
		t.Fatalf("digest 1 must not meet an integer target of 1")
	}
	var zero [32]byte
	if !PowCheck(zero, target) {
		t.Fatalf("digest 0 must meet target 1")
	}
}
