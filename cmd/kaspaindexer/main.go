// Package main is the kaspaindexer binary entrypoint, grounded on
// cmd/kcn/main.go's urfave/cli app assembly and cmd/utils/cmd.go's
// signal-handling idiom (first SIGINT/SIGTERM starts a graceful
// drain, a second forces immediate exit).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/simply-kaspa/indexer-go/internal/checkpoint"
	"github.com/simply-kaspa/indexer-go/internal/config"
	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/health"
	"github.com/simply-kaspa/indexer-go/internal/log"
	"github.com/simply-kaspa/indexer-go/internal/pipeline"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
	"github.com/simply-kaspa/indexer-go/internal/store"
)

var logger = log.NewModuleLogger(log.CLI)

var (
	rpcURLFlag = cli.StringFlag{Name: "rpc-url", Usage: "Kaspa node gRPC endpoint, host:port"}
	networkFlag = cli.StringFlag{Name: "network", Usage: "Network id (kaspa, kaspa-10bps, kaspatest, kaspadev, kaspasim)", Value: "kaspa"}
	databaseURLFlag = cli.StringFlag{Name: "database-url", Usage: "MySQL DSN, e.g. user:pass@tcp(host:3306)/dbname"}
	listenFlag = cli.StringFlag{Name: "listen", Usage: "Health/metrics HTTP listen address", Value: ":8080"}
	logLevelFlag = cli.StringFlag{Name: "log-level", Usage: "crit|error|warn|info|debug|trace", Value: "info"}
	noColorFlag = cli.BoolFlag{Name: "no-color", Usage: "Disable ANSI colored log output"}
	batchScaleFlag = cli.Float64Flag{Name: "batch-scale", Usage: "Scales every batch-size constant, range [0.1, 10]", Value: 1}
	cacheTTLFlag = cli.IntFlag{Name: "cache-ttl", Usage: "Dedup cache time-to-live, in seconds", Value: 120}
	ignoreCheckpointFlag = cli.StringFlag{Name: "ignore-checkpoint", Usage: "Override resume point: a hex hash, 'p' (pruning point), or 'v' (virtual)"}
	upgradeDBFlag = cli.BoolFlag{Name: "upgrade-db", Usage: "Allow writing a newer schema_version than currently stored"}
	initializeDBFlag = cli.BoolFlag{Name: "initialize-db", Usage: "Allow starting when no block checkpoint is stored in the vars table"}
	disableFlag = cli.StringFlag{Name: "disable", Usage: "Comma-separated feature gates to disable"}
	excludeFieldsFlag = cli.StringFlag{Name: "exclude-fields", Usage: "Comma-separated nullable column names to never populate"}
)

func main() {
	app := cli.NewApp()
	app.Name = "kaspaindexer"
	app.Usage = "Indexes a Kaspa BlockDAG node's blocks and transactions into a relational store"
	app.Flags = []cli.Flag{
		rpcURLFlag, networkFlag, databaseURLFlag, listenFlag, logLevelFlag, noColorFlag,
		batchScaleFlag, cacheTTLFlag, ignoreCheckpointFlag, upgradeDBFlag, initializeDBFlag,
		disableFlag, excludeFieldsFlag,
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	log.SetLevel(cfg.LogLevel)
	log.SetColor(!cfg.NoColor)

	db, err := store.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("kaspaindexer: connect to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchemaVersion(cfg.UpgradeDB); err != nil {
		return err
	}

	cp := checkpoint.New(db, cfg.Disabled(config.FeatureVirtualChainProcessing), cfg.Disabled(config.FeatureTransactionProcessing))
	resumeHash, found, err := resolveResumeHash(cfg, cp)
	if err != nil {
		return err
	}
	if !found && !cfg.InitializeDB {
		return fmt.Errorf("kaspaindexer: no checkpoint found and --initialize-db not set")
	}

	pool := rpcclient.NewPool(10, dialerFor(cfg.RPCURL))
	defer pool.Close()

	sup, err := pipeline.New(cfg, pool, db, cp, resumeHash)
	if err != nil {
		return fmt.Errorf("kaspaindexer: build pipeline: %w", err)
	}

	healthSrv := health.New(cfg.Listen, sup)
	healthSrv.Start()
	defer healthSrv.Stop()

	sup.Start()
	waitForShutdown()
	sup.Stop()
	return nil
}

// dialerFor returns the rpcclient.Dialer used to replenish the pool.
// The wire transport to a Kaspa node (gRPC/websocket) is an external
// collaborator out of scope for this spec (spec.md §1); rpcclient.Client
// is the seam a real transport implementation plugs into.
func dialerFor(rpcURL string) rpcclient.Dialer {
	return func(ctx context.Context) (rpcclient.Client, error) {
		return nil, fmt.Errorf("kaspaindexer: no rpc transport wired for %q", rpcURL)
	}
}

// resolveResumeHash applies --ignore-checkpoint (hash/p/v) over the
// persisted checkpoint: an explicit hash first, otherwise the saved
// checkpoint. 'p' and 'v' are not resolved against the node; both
// yield the all-zero hash, as does a database with no saved checkpoint
// (reported as found=false). BlockFetcher and VirtualChainProcessor
// issue their first GetBlocks/GetVirtualChainFromBlock call with
// whatever hash is returned here, the all-zero one included.
func resolveResumeHash(cfg config.Config, cp *checkpoint.Coordinator) (dbtype.Hash, bool, error) {
	switch cfg.IgnoreCheckpoint {
	case config.IgnoreCheckpointHash:
		h, err := dbtype.HashFromHex(cfg.IgnoreCheckpointHash)
		if err != nil {
			return dbtype.Hash{}, false, err
		}
		return h, true, nil
	case config.IgnoreCheckpointPruningPoint, config.IgnoreCheckpointVirtual:
		return dbtype.ZeroHash, true, nil
	default:
		return cp.LoadResumeHash()
	}
}

func loadConfig(ctx *cli.Context) (config.Config, error) {
	lvl, err := log.ParseLvl(ctx.String(logLevelFlag.Name))
	if err != nil {
		return config.Config{}, err
	}

	network := ctx.String(networkFlag.Name)
	bps, tpsMax := config.NetworkParams(network)

	ignoreMode, ignoreHash, err := parseIgnoreCheckpoint(ctx.String(ignoreCheckpointFlag.Name))
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.Config{
		RPCURL:               ctx.String(rpcURLFlag.Name),
		Network:              network,
		DatabaseURL:          ctx.String(databaseURLFlag.Name),
		Listen:               ctx.String(listenFlag.Name),
		LogLevel:             lvl,
		NoColor:              ctx.Bool(noColorFlag.Name),
		BatchScale:           ctx.Float64(batchScaleFlag.Name),
		CacheTTL:             time.Duration(ctx.Int(cacheTTLFlag.Name)) * time.Second,
		IgnoreCheckpoint:     ignoreMode,
		IgnoreCheckpointHash: ignoreHash,
		UpgradeDB:            ctx.Bool(upgradeDBFlag.Name),
		InitializeDB:         ctx.Bool(initializeDBFlag.Name),
		DisabledFeatures:     config.ParseDisableList(ctx.String(disableFlag.Name)),
		FieldPolicy:          config.NewFieldPolicy(ctx.String(excludeFieldsFlag.Name)),
		NetBPS:               bps,
		NetTPSMax:            tpsMax,
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func parseIgnoreCheckpoint(s string) (config.IgnoreCheckpointMode, string, error) {
	switch s {
	case "":
		return config.IgnoreCheckpointNone, "", nil
	case "p":
		return config.IgnoreCheckpointPruningPoint, "", nil
	case "v":
		return config.IgnoreCheckpointVirtual, "", nil
	default:
		if _, err := dbtype.HashFromHex(s); err != nil {
			return 0, "", fmt.Errorf("kaspaindexer: invalid --ignore-checkpoint value %q: %w", s, err)
		}
		return config.IgnoreCheckpointHash, s, nil
	}
}

// waitForShutdown blocks until SIGINT/SIGTERM, matching
// cmd/utils/cmd.go's RegisterInterrupt: a second signal while a drain is
// already underway forces an immediate exit rather than waiting for the
// pipeline's graceful Stop() to return (spec.md §4.9).
func waitForShutdown() {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	<-sigc
	logger.Info("received interrupt, draining pipeline...")
	go func() {
		<-sigc
		logger.Warn("received second interrupt, forcing exit")
		os.Exit(1)
	}()
}
