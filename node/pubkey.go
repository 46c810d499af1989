package node

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
)

// DecodePubkey hex-decodes the output public key. The key is otherwise opaque;
// with check set it must also parse as a secp256k1 point.
func DecodePubkey(pubkeyHex string, check bool) ([]byte, error) {
	s := strings.TrimSpace(pubkeyHex)
	if s == "" {
		return nil, errors.New("pubkey is required")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("pubkey hex: %w", err)
	}
	if check {
		if _, err := btcec.ParsePubKey(b); err != nil {
			return nil, fmt.Errorf("pubkey not on secp256k1: %w", err)
		}
	}
	return b, nil
}
