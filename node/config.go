package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"genesis.dev/genesis/consensus"
)

var unixNow = func() int64 { return time.Now().Unix() }

const (
	DefaultTimestamp = "The Times 01/Jan/2025 New Year's dawn brings hope for a better future"
	DefaultPubkeyHex = "04902bda9e9feaa9c7206f8eae4b3ea5f5c1d7fbf77f00971b8ddf275b74650e366a08712058fe4c76e17ea38f99bd1e4e54a451715cbb71398a584fb8c6717b16"
	DefaultValue     = 7_000_000

	DefaultProgressInterval = 1_000_000
)

// Config carries the genesis parameters plus the runtime knobs of the generator.
// Bits == 0 selects the algorithm's default difficulty.
type Config struct {
	Time      uint32 `json:"time"`
	Timestamp string `json:"timestamp"`
	Nonce     uint32 `json:"nonce"`
	Algorithm string `json:"algorithm"`
	Pubkey    string `json:"pubkey"`
	Value     int64  `json:"value"`
	Bits      uint32 `json:"bits"`

	LogLevel         string `json:"log_level"`
	LogFile          string `json:"log_file,omitempty"`
	CheckpointPath   string `json:"checkpoint_path,omitempty"`
	MetricsAddr      string `json:"metrics_addr,omitempty"`
	CheckPubkey      bool   `json:"check_pubkey"`
	ProgressInterval uint64 `json:"progress_interval"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultConfig() Config {
	return Config{
		Time:             unixNowU32(),
		Timestamp:        DefaultTimestamp,
		Nonce:            0,
		Algorithm:        consensus.AlgSHA256.String(),
		Pubkey:           DefaultPubkeyHex,
		Value:            DefaultValue,
		LogLevel:         "info",
		ProgressInterval: DefaultProgressInterval,
	}
}

// LoadConfigFile overlays a JSON parameter file on DefaultConfig.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := readFileByPath(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config json: %w", err)
	}
	return cfg, nil
}

// ValidateConfig rejects configurations before any hashing starts. An accepted
// algorithm without a digest implementation passes here and fails in NewSearch.
func ValidateConfig(cfg Config) error {
	if _, err := consensus.ParseAlgorithm(cfg.Algorithm); err != nil {
		return err
	}
	if len(cfg.Timestamp) > 0xff {
		return fmt.Errorf("timestamp must be at most 255 bytes (got %d)", len(cfg.Timestamp))
	}
	if _, err := DecodePubkey(cfg.Pubkey, cfg.CheckPubkey); err != nil {
		return fmt.Errorf("invalid pubkey: %w", err)
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.ProgressInterval == 0 {
		return errors.New("progress_interval must be > 0")
	}
	if cfg.MetricsAddr != "" {
		if err := validateAddr(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("invalid metrics_addr: %w", err)
		}
	}
	return nil
}

// EffectiveBits resolves Bits == 0 to the algorithm default.
func (cfg Config) EffectiveBits(alg consensus.Algorithm) uint32 {
	if cfg.Bits != 0 {
		return cfg.Bits
	}
	return alg.DefaultBits()
}

func validateAddr(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("empty address")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if strings.TrimSpace(port) == "" {
		return errors.New("missing port")
	}
	if strings.Contains(host, " ") {
		return errors.New("invalid host")
	}
	return nil
}

func unixNowU32() uint32 {
	now := unixNow()
	if now <= 0 {
		return 0
	}
	if now > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(now) // #nosec G115 -- bounded above.
}
