package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"genesis.dev/genesis/consensus"
	"genesis.dev/genesis/node"
)

// exitError carries the process exit code out of cobra's RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func configErr(format string, args ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

func searchErr(format string, args ...any) error {
	return &exitError{code: 1, err: fmt.Errorf(format, args...)}
}

type flagValues struct {
	cfg  node.Config
	bits string

	configPath string
	jsonOut    bool
	outputPath string
}

var (
	isTerminalFn  = isTerminal
	newRegistryFn = prometheus.NewRegistry
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int.
}

func newRootCmd(ctx context.Context, stdout, stderr io.Writer) *cobra.Command {
	fv := &flagValues{cfg: node.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Create a genesis block and search for its proof-of-work nonce",
		Long: `genesis builds the coinbase transaction and 80-byte header of a new chain's
first block, then increments the nonce until the proof-of-work hash is below the
target encoded in bits. Supported algorithms: SHA256, scrypt.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), fv)
			if err != nil {
				return err
			}
			return generate(ctx, cfg, fv, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	d := fv.cfg
	fs := cmd.Flags()
	fs.Uint32VarP(&fv.cfg.Time, "time", "t", d.Time, "the (unix) time when the genesis block is created")
	fs.StringVarP(&fv.cfg.Timestamp, "timestamp", "z", d.Timestamp, "the pszTimestamp found in the coinbase of the genesis block")
	fs.Uint32VarP(&fv.cfg.Nonce, "nonce", "n", d.Nonce, "the first value of the nonce that will be incremented when searching the genesis hash")
	fs.StringVarP(&fv.cfg.Algorithm, "algorithm", "a", d.Algorithm, "the PoW algorithm: ["+strings.Join(consensus.AlgorithmNames(), "|")+"]")
	fs.StringVarP(&fv.cfg.Pubkey, "pubkey", "p", d.Pubkey, "the pubkey found in the output script")
	fs.Int64VarP(&fv.cfg.Value, "value", "v", d.Value, "the value in coins for the output, full value (exp. in bitcoin 5000000000 - To get other coins value: Block Value * 100000000)")
	fs.StringVarP(&fv.bits, "bits", "b", "0", "the target in compact representation, associated to a difficulty of 1 (0 selects the algorithm default)")

	fs.StringVar(&fv.configPath, "config", "", "JSON parameter file; flags override its values")
	fs.StringVar(&fv.cfg.LogLevel, "log-level", d.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&fv.cfg.LogFile, "log-file", "", "also write JSON logs to this rotated file")
	fs.StringVar(&fv.cfg.CheckpointPath, "checkpoint", "", "bbolt file used to resume an interrupted search")
	fs.StringVar(&fv.cfg.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on host:port")
	fs.BoolVar(&fv.cfg.CheckPubkey, "check-pubkey", false, "require the pubkey to be a valid secp256k1 point")
	fs.Uint64Var(&fv.cfg.ProgressInterval, "progress-interval", d.ProgressInterval, "attempts between hashrate reports")
	fs.BoolVar(&fv.jsonOut, "json", false, "print the result as JSON")
	fs.StringVar(&fv.outputPath, "output", "", "write the JSON result to this file")
	return cmd
}

// resolveConfig layers defaults, the optional parameter file and explicitly set
// flags, in that order.
func resolveConfig(fs *pflag.FlagSet, fv *flagValues) (node.Config, error) {
	cfg := node.DefaultConfig()
	if fv.configPath != "" {
		fileCfg, err := node.LoadConfigFile(fv.configPath)
		if err != nil {
			return cfg, configErr("%v", err)
		}
		cfg = fileCfg
	}
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("time", func() { cfg.Time = fv.cfg.Time })
	set("timestamp", func() { cfg.Timestamp = fv.cfg.Timestamp })
	set("nonce", func() { cfg.Nonce = fv.cfg.Nonce })
	set("algorithm", func() { cfg.Algorithm = fv.cfg.Algorithm })
	set("pubkey", func() { cfg.Pubkey = fv.cfg.Pubkey })
	set("value", func() { cfg.Value = fv.cfg.Value })
	set("log-level", func() { cfg.LogLevel = fv.cfg.LogLevel })
	set("log-file", func() { cfg.LogFile = fv.cfg.LogFile })
	set("checkpoint", func() { cfg.CheckpointPath = fv.cfg.CheckpointPath })
	set("metrics-addr", func() { cfg.MetricsAddr = fv.cfg.MetricsAddr })
	set("check-pubkey", func() { cfg.CheckPubkey = fv.cfg.CheckPubkey })
	set("progress-interval", func() { cfg.ProgressInterval = fv.cfg.ProgressInterval })
	if fs.Changed("bits") {
		bits, err := strconv.ParseUint(strings.TrimSpace(fv.bits), 0, 32)
		if err != nil {
			return cfg, configErr("invalid bits %q: %v", fv.bits, err)
		}
		cfg.Bits = uint32(bits)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := node.ValidateConfig(cfg); err != nil {
		return cfg, configErr("invalid config: %v", err)
	}
	return cfg, nil
}

func generate(ctx context.Context, cfg node.Config, fv *flagValues, stdout, stderr io.Writer) error {
	logger, err := node.NewLogger(node.LogConfig{Level: cfg.LogLevel, File: cfg.LogFile, Console: stderr})
	if err != nil {
		return configErr("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	g, err := node.BuildGenesis(cfg)
	if err != nil {
		return configErr("%v", err)
	}

	mcfg := node.DefaultMinerConfig()
	mcfg.Logger = logger
	mcfg.ProgressInterval = cfg.ProgressInterval
	if !fv.jsonOut {
		printBlockInfo(stdout, cfg, g)
		mcfg.Progress = progressPrinter(stdout, isTerminalFn(stdout))
	}

	if cfg.MetricsAddr != "" {
		reg := newRegistryFn()
		metrics, err := node.NewMetrics(reg)
		if err != nil {
			return searchErr("%v", err)
		}
		mcfg.Metrics = metrics
		stopMetrics := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer stopMetrics()
	}

	res, err := node.GetGenesis(ctx, cfg, mcfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return searchErr("search interrupted")
		}
		return searchErr("search failed: %v", err)
	}

	if fv.jsonOut {
		if err := printResult(stdout, res); err != nil {
			return searchErr("result encode failed: %v", err)
		}
	} else {
		printFound(stdout, res)
	}
	if fv.outputPath != "" {
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return searchErr("result encode failed: %v", err)
		}
		if err := node.WriteFileAtomic(fv.outputPath, append(b, '\n')); err != nil {
			return searchErr("write output: %v", err)
		}
		logger.Info("result written", zap.String("path", fv.outputPath))
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printBlockInfo(w io.Writer, cfg node.Config, g *node.Genesis) {
	root := consensus.ReverseDigest(g.MerkleRoot)
	_, _ = fmt.Fprintf(w, "algorithm: %s\n", g.Algorithm)
	_, _ = fmt.Fprintf(w, "merkle hash: %x\n", root[:])
	_, _ = fmt.Fprintf(w, "pszTimestamp: %s\n", cfg.Timestamp)
	_, _ = fmt.Fprintf(w, "pubkey: %s\n", cfg.Pubkey)
	_, _ = fmt.Fprintf(w, "time: %d\n", cfg.Time)
	_, _ = fmt.Fprintf(w, "bits: %#x\n", g.Bits)
	_, _ = fmt.Fprintln(w, "Searching for genesis hash...")
}

// progressPrinter rewrites a single status line on terminals and prints one line
// per report otherwise.
func progressPrinter(w io.Writer, tty bool) func(node.Progress) {
	return func(p node.Progress) {
		line := fmt.Sprintf("%.0f H/s, estimate: %.1f h", p.HashRate, p.Estimate.Hours())
		if tty {
			_, _ = fmt.Fprintf(w, "\r%s", line)
			return
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func printFound(w io.Writer, res *node.Result) {
	_, _ = fmt.Fprintln(w, "\ngenesis hash found!")
	_, _ = fmt.Fprintf(w, "nonce: %s\n", res.Nonce)
	_, _ = fmt.Fprintf(w, "genesis hash: %s\n", res.GenesisHashHex)
}

func printResult(w io.Writer, res *node.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(ctx, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		// Flag parse errors.
		return 2
	}
	return 0
}
