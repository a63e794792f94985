package watcher

import (
	"context"
	"fmt"
	"math/big"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/eventHandler"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ILogFetcher is the slice of an Ethereum client the watcher needs. *ethclient.Client
// satisfies it.
type ILogFetcher interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q geth.FilterQuery) ([]ethTypes.Log, error)
}

// DefaultWatchedContracts are the contracts watched when the config names none. Defaults
// without a configured address are skipped.
var DefaultWatchedContracts = []string{
	config.ContractName_AccountMetadata,
	config.ContractName_ListRegistry,
	config.ContractName_ListMetadata,
	config.ContractName_ListRecords,
	config.ContractName_ListMinter,
}

type Watcher struct {
	config    *config.WatcherConfig
	fetcher   ILogFetcher
	store     persistence.IWatcherPersistence
	handler   eventHandler.IEventHandler
	decoders  []*Decoder
	limiter   *rate.Limiter
	sessionID string
	logger    *zap.Logger
}

func NewWatcher(
	cfg *config.WatcherConfig,
	addresses *config.EFPContractAddresses,
	fetcher ILogFetcher,
	store persistence.IWatcherPersistence,
	handler eventHandler.IEventHandler,
	logger *zap.Logger,
) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid watcher config: %w", err)
	}
	if addresses == nil {
		return nil, fmt.Errorf("contract addresses cannot be nil")
	}

	names := cfg.Contracts
	defaults := len(names) == 0
	if defaults {
		names = DefaultWatchedContracts
	}

	byName := addresses.ByName()
	decoders := make([]*Decoder, 0, len(names))
	for _, name := range names {
		address := byName[name]
		if address == (common.Address{}) {
			if defaults {
				logger.Sugar().Debugw("Skipping contract with no configured address", "contract", name)
				continue
			}
			return nil, fmt.Errorf("no address configured for watched contract %s", name)
		}
		d, err := NewDecoder(name, address)
		if err != nil {
			return nil, err
		}
		decoders = append(decoders, d)
	}
	if len(decoders) == 0 {
		return nil, fmt.Errorf("no watched contract has a configured address")
	}

	return &Watcher{
		config:    cfg,
		fetcher:   fetcher,
		store:     store,
		handler:   handler,
		decoders:  decoders,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		sessionID: uuid.New().String(),
		logger:    logger,
	}, nil
}

func (w *Watcher) SessionID() string {
	return w.sessionID
}

// Run polls immediately and then every PollInterval until ctx is cancelled. Poll errors are
// logged and retried on the next tick.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Sugar().Infow("Starting EFP event watcher",
		"sessionId", w.sessionID,
		"contracts", len(w.decoders),
		"pollInterval", w.config.PollInterval,
		"confirmationDepth", w.config.ConfirmationDepth,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Sugar().Errorw("Watcher poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			w.logger.Sugar().Infow("Watcher exiting due to context done", "sessionId", w.sessionID)
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce catches every watched contract up to the current head less the
// confirmation depth.
func (w *Watcher) PollOnce(ctx context.Context) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	head, err := w.fetcher.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get block number: %w", err)
	}
	if head < w.config.ConfirmationDepth {
		return nil
	}
	safeHead := head - w.config.ConfirmationDepth

	for _, d := range w.decoders {
		if err := w.catchUp(ctx, d, safeHead); err != nil {
			return fmt.Errorf("failed to sync %s: %w", d.Contract, err)
		}
	}
	return nil
}

func (w *Watcher) catchUp(ctx context.Context, d *Decoder, safeHead uint64) error {
	from := w.config.StartBlock
	cp, err := w.store.LoadCheckpoint(d.Contract)
	if err != nil {
		return err
	}
	if cp != nil {
		if cp.Address != d.Address {
			return fmt.Errorf("checkpoint for %s was written for %s, not %s", d.Contract, cp.Address.Hex(), d.Address.Hex())
		}
		if cp.LastProcessedBlock > safeHead {
			return w.rewind(d, cp.LastProcessedBlock, safeHead)
		}
		from = cp.LastProcessedBlock + 1
	}

	for from <= safeHead {
		to := from + w.config.MaxBlockRange - 1
		if to > safeHead {
			to = safeHead
		}

		if err := w.processRange(ctx, d, from, to); err != nil {
			return err
		}

		if err := w.store.SaveCheckpoint(persistence.NewCheckpoint(d.Contract, d.Address, to, w.sessionID)); err != nil {
			return err
		}
		from = to + 1
	}
	return nil
}

// rewind drops stored events above safeHead and moves the checkpoint back to it. The
// chain only reports a head below an already processed block after a reorg deeper than
// the confirmation depth or a devnet reset.
func (w *Watcher) rewind(d *Decoder, checkpoint, safeHead uint64) error {
	w.logger.Sugar().Warnw("Chain head is behind the checkpoint, rewinding",
		"contract", d.Contract,
		"checkpoint", checkpoint,
		"safeHead", safeHead,
	)

	events, err := w.store.ListEvents(d.Contract)
	if err != nil {
		return err
	}
	for _, event := range events {
		if event.BlockNumber <= safeHead {
			continue
		}
		if err := w.store.DeleteEvent(event.Contract, event.BlockNumber, event.LogIndex); err != nil {
			return err
		}
	}
	return w.store.SaveCheckpoint(persistence.NewCheckpoint(d.Contract, d.Address, safeHead, w.sessionID))
}

func (w *Watcher) processRange(ctx context.Context, d *Decoder, from, to uint64) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	logs, err := w.fetcher.FilterLogs(ctx, geth.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{d.Address},
	})
	if err != nil {
		return fmt.Errorf("failed to filter logs for blocks %d-%d: %w", from, to, err)
	}

	w.logger.Sugar().Debugw("Fetched logs",
		"contract", d.Contract,
		"fromBlock", from,
		"toBlock", to,
		"count", len(logs),
	)

	for _, log := range logs {
		event, err := d.Decode(log)
		if errors.Is(err, ErrUnknownEvent) {
			w.logger.Sugar().Debugw("Skipping unknown event", "contract", d.Contract, "error", err)
			continue
		}
		if err != nil {
			return err
		}

		if err := w.store.SaveEvent(event); err != nil {
			return err
		}

		if err := w.handler.HandleEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
