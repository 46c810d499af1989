package node

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"go.uber.org/zap"

	"genesis.dev/genesis/consensus"
	"genesis.dev/genesis/node/store"
)

// Genesis is the assembled, not yet mined, genesis block.
type Genesis struct {
	Algorithm    consensus.Algorithm
	Bits         uint32
	Pubkey       []byte
	InputScript  []byte
	OutputScript []byte
	Tx           *consensus.CoinbaseTx
	TxBytes      []byte
	// MerkleRoot is in hash output order, as it appears in the header.
	MerkleRoot  [32]byte
	Header      consensus.BlockHeader
	HeaderBytes []byte
}

// BuildGenesis encodes the coinbase transaction and the header at cfg.Nonce.
func BuildGenesis(cfg Config) (*Genesis, error) {
	alg, err := consensus.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	pubkey, err := DecodePubkey(cfg.Pubkey, cfg.CheckPubkey)
	if err != nil {
		return nil, fmt.Errorf("invalid pubkey: %w", err)
	}
	in, err := consensus.InputScript(cfg.Timestamp)
	if err != nil {
		return nil, err
	}
	out := consensus.OutputScript(pubkey)

	tx := consensus.NewCoinbaseTx(in, out, cfg.Value)
	txBytes, err := consensus.MarshalCoinbaseTx(tx)
	if err != nil {
		return nil, err
	}
	root, err := consensus.MerkleRootTxids([][32]byte{consensus.TxID(txBytes)})
	if err != nil {
		return nil, err
	}

	bits := cfg.EffectiveBits(alg)
	header := consensus.NewGenesisHeader(root, cfg.Time, bits, cfg.Nonce)
	return &Genesis{
		Algorithm:    alg,
		Bits:         bits,
		Pubkey:       pubkey,
		InputScript:  in,
		OutputScript: out,
		Tx:           tx,
		TxBytes:      txBytes,
		MerkleRoot:   root,
		Header:       header,
		HeaderBytes:  consensus.BlockHeaderBytes(header),
	}, nil
}

// Result is what a finished search reports. Hashes are hex in display order.
type Result struct {
	Algorithm      string `json:"algorithm"`
	MerkleRootHex  string `json:"merkle_root"`
	Timestamp      string `json:"timestamp"`
	PubkeyHex      string `json:"pubkey"`
	Time           uint32 `json:"time"`
	Bits           uint32 `json:"bits"`
	Nonce          string `json:"nonce"`
	GenesisHashHex string `json:"genesis_hash"`
	PowHashHex     string `json:"pow_hash"`
	Attempts       uint64 `json:"attempts"`
	Cached         bool   `json:"cached,omitempty"`
	HeaderHex      string `json:"header_hex"`
	TxHex          string `json:"tx_hex"`
}

func displayHex(d [32]byte) string {
	r := consensus.ReverseDigest(d)
	return hex.EncodeToString(r[:])
}

// SearchID names a search in the checkpoint store: the initial header (start
// nonce included) and the algorithm fully determine its outcome.
func SearchID(header []byte, alg consensus.Algorithm) [32]byte {
	buf := make([]byte, 0, len(header)+8)
	buf = append(buf, header...)
	buf = append(buf, alg.String()...)
	return chainhash.DoubleHashH(buf)
}

// GetGenesis builds the genesis block for cfg and searches for a nonce meeting
// its target. With cfg.CheckpointPath set the search resumes from, and records
// to, a bbolt checkpoint store.
func GetGenesis(ctx context.Context, cfg Config, mcfg MinerConfig) (*Result, error) {
	g, err := BuildGenesis(cfg)
	if err != nil {
		return nil, err
	}
	log := mcfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("genesis assembled",
		zap.String("input_script", consensus.DisasmScript(g.InputScript)),
		zap.String("output_script", consensus.DisasmScript(g.OutputScript)),
		zap.Int("tx_bytes", len(g.TxBytes)),
		zap.String("merkle_root", displayHex(g.MerkleRoot)),
	)

	search, err := NewSearch(g.HeaderBytes, g.Algorithm, cfg.Nonce, g.Bits)
	if err != nil {
		return nil, err
	}
	res := newResult(cfg, g)

	if cfg.CheckpointPath == "" {
		sol, err := NewMiner(mcfg).Mine(ctx, search)
		if err != nil {
			return nil, err
		}
		res.fill(search, sol)
		return res, nil
	}

	db, err := store.Open(cfg.CheckpointPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	id := SearchID(g.HeaderBytes, g.Algorithm)
	log = log.With(zap.String("search_id", hex.EncodeToString(id[:8])))

	if rec, ok, err := db.GetSolution(id); err != nil {
		return nil, err
	} else if ok {
		verr := reverifySolution(search, rec)
		if verr == nil {
			log.Info("solution loaded from checkpoint store", zap.Uint32("nonce", rec.Nonce))
			res.Nonce = strconv.FormatUint(uint64(rec.Nonce), 10)
			res.GenesisHashHex = rec.GenesisHashHex
			res.PowHashHex = rec.PowHashHex
			res.Attempts = rec.Attempts
			res.Cached = true
			res.HeaderHex = hex.EncodeToString(search.Header())
			return res, nil
		}
		log.Warn("ignoring stored solution", zap.Error(verr))
	}

	nonce, prior := search.StartNonce(), uint64(0)
	if cp, ok, err := db.GetCheckpoint(id); err != nil {
		return nil, err
	} else if ok {
		nonce, prior = cp.NextNonce, cp.Attempts
		log.Info("resuming search", zap.Uint32("nonce", nonce), zap.Uint64("attempts", prior))
	}

	observer := mcfg.Progress
	mcfg.Progress = func(p Progress) {
		if err := db.PutCheckpoint(id, store.Checkpoint{NextNonce: p.Nonce + 1, Attempts: p.Attempts}); err != nil {
			log.Warn("checkpoint write failed", zap.Error(err))
		}
		if observer != nil {
			observer(p)
		}
	}
	sol, err := NewMiner(mcfg).MineFrom(ctx, search, nonce, prior)
	if err != nil {
		return nil, err
	}
	res.fill(search, sol)
	if err := db.PutSolution(id, store.SolutionRecord{
		Algorithm:      res.Algorithm,
		Nonce:          sol.Nonce,
		GenesisHashHex: res.GenesisHashHex,
		PowHashHex:     res.PowHashHex,
		Attempts:       sol.Attempts,
	}); err != nil {
		log.Warn("solution write failed", zap.Error(err))
	}
	return res, nil
}

func reverifySolution(s *Search, rec *store.SolutionRecord) error {
	a, err := s.Attempt(rec.Nonce)
	if err != nil {
		return err
	}
	if !a.Found {
		return fmt.Errorf("nonce %d does not meet target", rec.Nonce)
	}
	if displayHex(s.Algorithm().GenesisHash(a.Identity, a.Pow)) != rec.GenesisHashHex {
		return errors.New("genesis hash mismatch")
	}
	return nil
}

func newResult(cfg Config, g *Genesis) *Result {
	return &Result{
		Algorithm:     g.Algorithm.String(),
		MerkleRootHex: displayHex(g.MerkleRoot),
		Timestamp:     cfg.Timestamp,
		PubkeyHex:     hex.EncodeToString(g.Pubkey),
		Time:          cfg.Time,
		Bits:          g.Bits,
		TxHex:         hex.EncodeToString(g.TxBytes),
	}
}

func (r *Result) fill(s *Search, sol *Solution) {
	r.Nonce = strconv.FormatUint(uint64(sol.Nonce), 10)
	r.GenesisHashHex = displayHex(sol.GenesisHash)
	r.PowHashHex = displayHex(sol.Pow)
	r.Attempts = sol.Attempts
	// The search stops right after hashing the winning nonce.
	r.HeaderHex = hex.EncodeToString(s.Header())
}
