package node

import (
	"context"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"genesis.dev/genesis/consensus"
	"genesis.dev/genesis/node/store"
)

func TestBuildGenesisBitcoin(t *testing.T) {
	g := mustGenesis(t, bitcoinConfig())
	require.Equal(t, consensus.AlgSHA256, g.Algorithm)
	require.Equal(t, uint32(0x1d00ffff), g.Bits)
	require.Len(t, g.TxBytes, 127+len(g.InputScript))
	require.Len(t, g.HeaderBytes, consensus.BLOCK_HEADER_BYTES)
	require.Equal(t, bitcoinMerkleRoot, displayHex(g.MerkleRoot))
	require.Equal(t, consensus.TxID(g.TxBytes), g.MerkleRoot)

	hash, err := consensus.BlockHash(g.HeaderBytes)
	require.NoError(t, err)
	require.Equal(t, chaincfg.MainNetParams.GenesisHash[:], hash[:])
}

func TestBuildGenesisDefaultBits(t *testing.T) {
	cfg := litecoinConfig()
	cfg.Bits = 0
	g := mustGenesis(t, cfg)
	require.Equal(t, uint32(0x1e0ffff0), g.Bits)
	require.Equal(t, uint32(0x1e0ffff0), g.Header.Bits)
}

func TestBuildGenesisErrors(t *testing.T) {
	cfg := bitcoinConfig()
	cfg.Algorithm = "Scrypt"
	_, err := BuildGenesis(cfg)
	require.Equal(t, consensus.CONFIG_ERR_ALGORITHM, consensus.CodeOf(err))

	cfg = bitcoinConfig()
	cfg.Timestamp = strings.Repeat("z", 300)
	_, err = BuildGenesis(cfg)
	require.Equal(t, consensus.SCRIPT_ERR_PUSH_TOO_LARGE, consensus.CodeOf(err))

	cfg = bitcoinConfig()
	cfg.Pubkey = "0g"
	_, err = BuildGenesis(cfg)
	require.Error(t, err)
}

func TestGetGenesisBitcoin(t *testing.T) {
	res, err := GetGenesis(context.Background(), bitcoinConfig(), DefaultMinerConfig())
	require.NoError(t, err)
	require.Equal(t, bitcoinMerkleRoot, res.MerkleRootHex)
	require.Equal(t, "2083236893", res.Nonce)
	require.Equal(t, bitcoinGenesisHash, res.GenesisHashHex)
	require.Equal(t, bitcoinGenesisHash, res.PowHashHex)
	require.Equal(t, uint64(1), res.Attempts)
	require.Equal(t, "SHA256", res.Algorithm)
	require.Equal(t, bitcoinPubkeyHex, res.PubkeyHex)
	require.False(t, res.Cached)

	header, err := hex.DecodeString(res.HeaderHex)
	require.NoError(t, err)
	hash, err := consensus.BlockHash(header)
	require.NoError(t, err)
	require.Equal(t, bitcoinGenesisHash, displayHex(hash))
}

func TestGetGenesisLitecoin(t *testing.T) {
	res, err := GetGenesis(context.Background(), litecoinConfig(), DefaultMinerConfig())
	require.NoError(t, err)
	require.Equal(t, litecoinMerkleRoot, res.MerkleRootHex)
	require.Equal(t, "2084524493", res.Nonce)
	require.Equal(t, litecoinGenesisHash, res.GenesisHashHex)
	require.Equal(t, litecoinPowHash, res.PowHashHex)
}

func TestGetGenesisUnsupportedAlgorithm(t *testing.T) {
	cfg := bitcoinConfig()
	cfg.Algorithm = "X15"
	_, err := GetGenesis(context.Background(), cfg, DefaultMinerConfig())
	require.Equal(t, consensus.POW_ERR_UNSUPPORTED_ALGORITHM, consensus.CodeOf(err))
}

func TestGetGenesisCheckpointResume(t *testing.T) {
	cfg := bitcoinConfig()
	cfg.Nonce = bitcoinNonce - 25
	cfg.CheckpointPath = filepath.Join(t.TempDir(), "search.db")

	// Uninterrupted reference run without a store.
	plain := cfg
	plain.CheckpointPath = ""
	want, err := GetGenesis(context.Background(), plain, DefaultMinerConfig())
	require.NoError(t, err)
	require.Equal(t, uint64(26), want.Attempts)

	ctx, cancel := context.WithCancel(context.Background())
	mcfg := DefaultMinerConfig()
	mcfg.ProgressInterval = 10
	mcfg.Progress = func(Progress) { cancel() }
	_, err = GetGenesis(ctx, cfg, mcfg)
	require.True(t, errors.Is(err, context.Canceled))

	g := mustGenesis(t, cfg)
	id := SearchID(g.HeaderBytes, g.Algorithm)
	db, err := store.Open(cfg.CheckpointPath)
	require.NoError(t, err)
	cp, ok, err := db.GetCheckpoint(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, store.Checkpoint{NextNonce: bitcoinNonce - 15, Attempts: 10}, cp)
	require.NoError(t, db.Close())

	var reports []Progress
	mcfg = DefaultMinerConfig()
	mcfg.ProgressInterval = 10
	mcfg.Progress = func(p Progress) { reports = append(reports, p) }
	got, err := GetGenesis(context.Background(), cfg, mcfg)
	require.NoError(t, err)
	require.Equal(t, want, got)
	// Resumed at attempt 11: only the report at 20 fires.
	require.Len(t, reports, 1)
	require.Equal(t, uint64(20), reports[0].Attempts)

	cached, err := GetGenesis(context.Background(), cfg, DefaultMinerConfig())
	require.NoError(t, err)
	require.True(t, cached.Cached)
	cached.Cached = false
	require.Equal(t, want, cached)
}

func TestGetGenesisIgnoresBadStoredSolution(t *testing.T) {
	cfg := bitcoinConfig()
	cfg.CheckpointPath = filepath.Join(t.TempDir(), "search.db")
	g := mustGenesis(t, cfg)
	id := SearchID(g.HeaderBytes, g.Algorithm)

	db, err := store.Open(cfg.CheckpointPath)
	require.NoError(t, err)
	require.NoError(t, db.PutSolution(id, store.SolutionRecord{Algorithm: "SHA256", Nonce: 1, GenesisHashHex: "00"}))
	require.NoError(t, db.Close())

	res, err := GetGenesis(context.Background(), cfg, DefaultMinerConfig())
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Equal(t, "2083236893", res.Nonce)
	require.Equal(t, bitcoinGenesisHash, res.GenesisHashHex)
}

func TestSearchIDSeparatesAlgorithmsAndNonces(t *testing.T) {
	g := mustGenesis(t, bitcoinConfig())
	a := SearchID(g.HeaderBytes, consensus.AlgSHA256)
	require.NotEqual(t, a, SearchID(g.HeaderBytes, consensus.AlgScrypt))

	h := append([]byte(nil), g.HeaderBytes...)
	consensus.PutHeaderNonce(h, 0)
	require.NotEqual(t, a, SearchID(h, consensus.AlgSHA256))
	require.Equal(t, a, SearchID(g.HeaderBytes, consensus.AlgSHA256))
}
