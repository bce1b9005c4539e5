package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nftmarket/config"
	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/native/ledger"
	"nftmarket/native/nftmarket"
	"nftmarket/observability/logging"
	"nftmarket/rpc"
	"nftmarket/state"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the marketd configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("marketd", "").Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := logging.Setup("marketd", cfg.Environment)

	db, err := state.OpenDatabase(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	marketState := state.NewMarketState(db)

	book := ledger.NewBook()
	book.SetState(marketState)

	directory := state.NewDirectory()
	for _, member := range cfg.Members {
		account, err := config.ParseAddress(member.Account)
		if err != nil {
			logger.Error("invalid member account", "member", member.ID, "err", err)
			os.Exit(1)
		}
		directory.RegisterMember(nftmarket.MemberID(member.ID), account)
	}
	for _, channel := range cfg.Channels {
		ownerAccount, err := config.ParseAddress(channel.OwnerAccount)
		if err != nil {
			logger.Error("invalid channel owner account", "channel", channel.ID, "err", err)
			os.Exit(1)
		}
		entry := state.ChannelEntry{OwnerAccount: ownerAccount}
		if channel.RewardAccount != "" {
			reward, err := config.ParseAddress(channel.RewardAccount)
			if err != nil {
				logger.Error("invalid channel reward account", "channel", channel.ID, "err", err)
				os.Exit(1)
			}
			entry.RewardAccount = &reward
		}
		directory.RegisterChannel(nftmarket.ChannelID(channel.ID), entry)
	}

	bounds, err := cfg.EngineBounds()
	if err != nil {
		logger.Error("invalid bounds configuration", "err", err)
		os.Exit(1)
	}
	treasury, err := config.ParseAddress(cfg.FeeTreasury)
	if err != nil {
		logger.Error("invalid fee treasury", "err", err)
		os.Exit(1)
	}

	engine := nftmarket.NewEngine(bounds, cfg.PlatformFeeBps)
	engine.SetState(marketState)
	engine.SetLedger(book)
	engine.SetMembership(directory)
	engine.SetChannelRegistry(directory)
	engine.SetFeeTreasury(treasury)
	engine.SetHeightFunc(heightSource(cfg))
	engine.SetEmitter(&logEmitter{log: logger})

	rpcServer := rpc.NewServer(engine, os.Getenv("MARKETD_RPC_TOKEN"), logger)
	rpcServer.SetBalanceReader(marketState)

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("marketd listening", "addr", cfg.RPCAddress)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}
}

// logEmitter mirrors marketplace events into the structured log.
type logEmitter struct {
	log *slog.Logger
}

func (l *logEmitter) Emit(evt events.Event) {
	wrapped, ok := evt.(interface{ Event() *types.Event })
	if !ok || wrapped.Event() == nil {
		l.log.Info("market event", "type", evt.EventType())
		return
	}
	attrs := make([]any, 0, 2+2*len(wrapped.Event().Attributes))
	attrs = append(attrs, "type", evt.EventType())
	for key, value := range wrapped.Event().Attributes {
		attrs = append(attrs, key, value)
	}
	l.log.Info("market event", attrs...)
}

// heightSource derives the block height from wall time against the configured
// genesis timestamp. A standalone deployment has no consensus layer; height
// only needs to be monotonic and shared by all operations.
func heightSource(cfg *config.Config) func() uint64 {
	genesis := cfg.GenesisUnix
	interval := int64(cfg.BlockIntervalSeconds)
	if interval <= 0 {
		interval = 6
	}
	return func() uint64 {
		now := time.Now().Unix()
		if now <= genesis {
			return 0
		}
		return uint64((now - genesis) / interval)
	}
}
