package node

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"math/big"
	"time"

	"go.uber.org/zap"

	"genesis.dev/genesis/consensus"
	"genesis.dev/genesis/crypto"
)

// Attempt is the outcome of hashing the header at one nonce. Digests are in hash
// output order.
type Attempt struct {
	Nonce    uint32
	Identity [32]byte
	Pow      [32]byte
	Found    bool
}

// Search owns one encoded header and rewrites its nonce field in place. A Search
// is not safe for concurrent use.
type Search struct {
	alg        consensus.Algorithm
	hasher     crypto.Hasher
	header     []byte
	bits       uint32
	target     *big.Int
	startNonce uint32
}

// NewSearch prepares a nonce search over a copy of header. The algorithm's digest
// is resolved here so an unsupported algorithm fails before any hashing.
func NewSearch(header []byte, alg consensus.Algorithm, startNonce, bits uint32) (*Search, error) {
	if len(header) != consensus.BLOCK_HEADER_BYTES {
		return nil, fmt.Errorf("header must be %d bytes (got %d)", consensus.BLOCK_HEADER_BYTES, len(header))
	}
	hasher, err := alg.Hasher()
	if err != nil {
		return nil, err
	}
	buf := append([]byte(nil), header...)
	consensus.PutHeaderNonce(buf, startNonce)
	return &Search{
		alg:        alg,
		hasher:     hasher,
		header:     buf,
		bits:       bits,
		target:     consensus.CompactToTarget(bits),
		startNonce: startNonce,
	}, nil
}

func (s *Search) Algorithm() consensus.Algorithm { return s.alg }

func (s *Search) StartNonce() uint32 { return s.startNonce }

func (s *Search) Bits() uint32 { return s.bits }

// Target returns a copy of the decoded target.
func (s *Search) Target() *big.Int { return new(big.Int).Set(s.target) }

// Header returns a copy of the header as last hashed.
func (s *Search) Header() []byte { return append([]byte(nil), s.header...) }

// Attempt hashes the header at nonce.
func (s *Search) Attempt(nonce uint32) (Attempt, error) {
	consensus.PutHeaderNonce(s.header, nonce)
	identity, err := consensus.BlockHash(s.header)
	if err != nil {
		return Attempt{}, err
	}
	pow := identity
	if !s.alg.UsesIdentityHash() {
		pow, err = s.hasher.Digest(s.header)
		if err != nil {
			return Attempt{}, fmt.Errorf("%s digest at nonce %d: %w", s.hasher.Name(), nonce, err)
		}
	}
	return Attempt{
		Nonce:    nonce,
		Identity: identity,
		Pow:      pow,
		Found:    consensus.PowCheck(pow, s.target),
	}, nil
}

// Attempts yields attempts in nonce order starting at the search's start nonce.
func (s *Search) Attempts(ctx context.Context) iter.Seq2[Attempt, error] {
	return s.AttemptsFrom(ctx, s.startNonce)
}

// AttemptsFrom yields an unbounded sequence of attempts starting at nonce. The
// nonce wraps past 2^32-1 to 0. The sequence ends when the consumer stops, on a
// digest error, or when ctx is done (yielding ctx.Err()).
func (s *Search) AttemptsFrom(ctx context.Context, nonce uint32) iter.Seq2[Attempt, error] {
	return func(yield func(Attempt, error) bool) {
		n := nonce
		for {
			if ctx != nil {
				select {
				case <-ctx.Done():
					yield(Attempt{}, ctx.Err())
					return
				default:
				}
			}
			a, err := s.Attempt(n)
			if err != nil {
				yield(Attempt{}, err)
				return
			}
			if !yield(a, nil) {
				return
			}
			n++
		}
	}
}

// Progress is reported every MinerConfig.ProgressInterval attempts.
type Progress struct {
	Nonce    uint32
	Attempts uint64
	HashRate float64
	// Estimate is the time to cover the full 32-bit nonce space at HashRate.
	Estimate time.Duration
}

type MinerConfig struct {
	ProgressInterval uint64
	Progress         func(Progress)
	Logger           *zap.Logger
	Metrics          *Metrics
	Now              func() time.Time
}

type Solution struct {
	Nonce       uint32
	GenesisHash [32]byte
	Identity    [32]byte
	Pow         [32]byte
	Attempts    uint64
	Elapsed     time.Duration
}

type Miner struct {
	cfg MinerConfig
}

func DefaultMinerConfig() MinerConfig {
	return MinerConfig{
		ProgressInterval: DefaultProgressInterval,
		Logger:           zap.NewNop(),
		Now:              time.Now,
	}
}

func NewMiner(cfg MinerConfig) *Miner {
	if cfg.ProgressInterval == 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Miner{cfg: cfg}
}

// Mine searches from the start nonce until the proof-of-work digest is below target.
func (m *Miner) Mine(ctx context.Context, s *Search) (*Solution, error) {
	if s == nil {
		return nil, errors.New("nil search")
	}
	return m.MineFrom(ctx, s, s.StartNonce(), 0)
}

// MineFrom resumes a search at nonce, counting priorAttempts as already done.
// Progress reports fire on multiples of the interval in the combined count.
func (m *Miner) MineFrom(ctx context.Context, s *Search, nonce uint32, priorAttempts uint64) (*Solution, error) {
	if s == nil {
		return nil, errors.New("nil search")
	}
	log := m.cfg.Logger.With(zap.String("algorithm", s.Algorithm().String()))
	log.Debug("search started", zap.Uint32("nonce", nonce), zap.String("bits", fmt.Sprintf("%#08x", s.Bits())))

	start := m.cfg.Now()
	lastReport := start
	attempts := priorAttempts
	var sinceReport uint64
	for a, err := range s.AttemptsFrom(ctx, nonce) {
		if err != nil {
			return nil, err
		}
		attempts++
		sinceReport++
		if a.Found {
			elapsed := m.cfg.Now().Sub(start)
			if m.cfg.Metrics != nil {
				m.cfg.Metrics.observeSolution(sinceReport, a.Nonce)
			}
			log.Info("solution found", zap.Uint32("nonce", a.Nonce), zap.Uint64("attempts", attempts), zap.Duration("elapsed", elapsed))
			return &Solution{
				Nonce:       a.Nonce,
				GenesisHash: s.Algorithm().GenesisHash(a.Identity, a.Pow),
				Identity:    a.Identity,
				Pow:         a.Pow,
				Attempts:    attempts,
				Elapsed:     elapsed,
			}, nil
		}
		if attempts%m.cfg.ProgressInterval == 0 {
			now := m.cfg.Now()
			p := newProgress(a.Nonce, attempts, sinceReport, now.Sub(lastReport))
			if m.cfg.Metrics != nil {
				m.cfg.Metrics.observeProgress(p, sinceReport)
			}
			lastReport = now
			sinceReport = 0
			log.Debug("progress", zap.Uint32("nonce", p.Nonce), zap.Uint64("attempts", p.Attempts), zap.Float64("hashrate", p.HashRate))
			if m.cfg.Progress != nil {
				m.cfg.Progress(p)
			}
		}
	}
	// AttemptsFrom only ends on error or an early return above.
	return nil, errors.New("search ended without a solution")
}

func newProgress(nonce uint32, attempts, hashed uint64, elapsed time.Duration) Progress {
	p := Progress{Nonce: nonce, Attempts: attempts}
	if elapsed <= 0 {
		return p
	}
	p.HashRate = float64(hashed) / elapsed.Seconds()
	seconds := float64(uint64(1)<<32) / p.HashRate
	if seconds < float64(math.MaxInt64)/float64(time.Second) {
		p.Estimate = time.Duration(seconds * float64(time.Second))
	}
	return p
}
