package consensus

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
)

// coinbaseScriptPrefix pushes the 4-byte value 0x1d00ffff and the single byte 0x04,
// the traditional leading pushes of a genesis coinbase script.
var coinbaseScriptPrefix = []byte{0x04, 0xff, 0xff, 0x00, 0x1d, 0x01, 0x04}

const (
	// Timestamps longer than this get an OP_PUSHDATA1 marker before their length byte.
	pushDataMarkerThreshold = 76
	maxTimestampBytes       = 0xff

	// Literal push length of an uncompressed public key.
	pubkeyPushLen = 0x41
)

// InputScript builds the coinbase input script embedding the UTF-8 timestamp.
func InputScript(timestamp string) ([]byte, error) {
	payload := []byte(timestamp)
	if len(payload) > maxTimestampBytes {
		return nil, txerr(SCRIPT_ERR_PUSH_TOO_LARGE, fmt.Sprintf("timestamp is %d bytes, max %d", len(payload), maxTimestampBytes))
	}
	out := make([]byte, 0, len(coinbaseScriptPrefix)+2+len(payload))
	out = append(out, coinbaseScriptPrefix...)
	if len(payload) > pushDataMarkerThreshold {
		out = append(out, txscript.OP_PUSHDATA1)
	}
	out = append(out, byte(len(payload)))
	out = append(out, payload...)
	return out, nil
}

// OutputScript builds the pay-to-pubkey output script. The key is opaque and its
// length is not checked against the literal push byte.
func OutputScript(pubkey []byte) []byte {
	out := make([]byte, 0, 2+len(pubkey))
	out = append(out, pubkeyPushLen)
	out = append(out, pubkey...)
	out = append(out, txscript.OP_CHECKSIG)
	return out
}

// DisasmScript renders script opcodes for logs. Malformed scripts render as far as
// they parse, followed by "[error]".
func DisasmScript(script []byte) string {
	s, err := txscript.DisasmString(script)
	if err != nil {
		return s + " [error]"
	}
	return s
}
