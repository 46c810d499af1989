package node

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePubkey(t *testing.T) {
	b, err := DecodePubkey(" "+bitcoinPubkeyHex+" ", true)
	require.NoError(t, err)
	require.Len(t, b, 65)
	require.Equal(t, byte(0x04), b[0])

	// Without the curve check any hex is accepted.
	b, err = DecodePubkey("00ff", false)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0xff}, b)

	_, err = DecodePubkey("00ff", true)
	require.Error(t, err)
	_, err = DecodePubkey("abc", false)
	require.Error(t, err)
	_, err = DecodePubkey("  ", false)
	require.Error(t, err)
}
