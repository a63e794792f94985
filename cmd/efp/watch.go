package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/eventHandler"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence/factory"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/ethereumfollowprotocol/efp-go/pkg/watcher"
	"github.com/urfave/cli/v2"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch EFP contract events and print them as JSON lines",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "contracts",
				Usage: "Contracts to watch, defaults to every EFP contract with a configured address",
			},
			&cli.Uint64Flag{
				Name:  "start-block",
				Usage: "First block to scan when no checkpoint exists",
			},
			&cli.Uint64Flag{
				Name:  "max-block-range",
				Usage: "Maximum blocks per eth_getLogs request",
				Value: config.DefaultMaxBlockRange,
			},
			&cli.Uint64Flag{
				Name:  "confirmation-depth",
				Usage: "Blocks to wait before reading logs, defaults to a per-chain depth",
			},
			&cli.Float64Flag{
				Name:  "requests-per-second",
				Usage: "RPC request rate limit",
				Value: config.DefaultRequestsPerSecond,
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "Delay between polls, defaults to roughly one block for the chain",
			},
			&cli.StringFlag{
				Name:    "persistence",
				Usage:   "Checkpoint and event storage: memory, badger or redis",
				Value:   string(config.PersistenceType_Memory),
				EnvVars: []string{config.EnvEFPPersistenceType},
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Badger data directory",
				Value:   "./efp-watcher-data",
				EnvVars: []string{config.EnvEFPDataPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis host:port",
				EnvVars: []string{config.EnvEFPRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvEFPRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				EnvVars: []string{config.EnvEFPRedisDB},
			},
		},
		Action: watchAction,
	}
}

func watcherConfigFromFlags(c *cli.Context, chainID config.ChainId) *config.WatcherConfig {
	pollInterval := c.Duration("poll-interval")
	if pollInterval == 0 {
		pollInterval = config.GetPollIntervalForChain(chainID)
	}
	confirmationDepth := config.GetConfirmationDepthForChain(chainID)
	if c.IsSet("confirmation-depth") {
		confirmationDepth = c.Uint64("confirmation-depth")
	}

	persistenceCfg := &config.PersistenceConfig{
		Type:     config.PersistenceType(c.String("persistence")),
		DataPath: c.String("data-path"),
	}
	if addr := c.String("redis-address"); addr != "" {
		persistenceCfg.Redis = &config.RedisConfig{
			Address:   addr,
			Password:  c.String("redis-password"),
			DB:        c.Int("redis-db"),
			KeyPrefix: fmt.Sprintf("chain-%d:", chainID),
		}
	}

	return &config.WatcherConfig{
		PollInterval:      pollInterval,
		StartBlock:        c.Uint64("start-block"),
		MaxBlockRange:     c.Uint64("max-block-range"),
		ConfirmationDepth: confirmationDepth,
		RequestsPerSecond: c.Float64("requests-per-second"),
		Contracts:         c.StringSlice("contracts"),
		Persistence:       persistenceCfg,
	}
}

func watchAction(c *cli.Context) error {
	r, err := newRuntime(c)
	if err != nil {
		return err
	}

	watcherCfg := watcherConfigFromFlags(c, r.cfg.ChainID)
	if err := watcherCfg.Validate(); err != nil {
		return err
	}

	client, err := r.ethClient()
	if err != nil {
		return err
	}

	store, err := factory.NewPersistence(watcherCfg.Persistence, r.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			r.logger.Sugar().Warnw("Failed to close persistence", "error", err)
		}
	}()

	handler := eventHandler.NewEventHandler(r.logger)
	w, err := watcher.NewWatcher(watcherCfg, r.cfg.Contracts, client, store, handler, r.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	encoder := json.NewEncoder(c.App.Writer)
	go handler.ListenToChannel(ctx, func(event *types.DecodedEvent) {
		if err := encoder.Encode(event); err != nil {
			r.logger.Sugar().Warnw("Failed to print event", "error", err)
		}
	})

	return w.Run(ctx)
}
