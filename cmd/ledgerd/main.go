package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"ledger/internal/chain"
	"ledger/internal/config"
	"ledger/internal/events"
	"ledger/internal/ledger"
	"ledger/internal/logger"
	"ledger/internal/storage"
)

func main() {
	configuration, err := config.Load()
	if err != nil {
		fmt.Printf("configuration failure: %v\n", err)
		os.Exit(1)
	}

	logger.Initialize(logger.Configuration{
		LogFile:   configuration.LogFile,
		ErrorFile: configuration.ErrorFile,
		Level:     configuration.LogLevel,
		Console:   configuration.LogConsole,
	})

	admin, err := ton.ParseAccountID(configuration.AdminAddress)
	if err != nil {
		logger.Fatal("cannot parse admin address", zap.Error(err))
	}

	feeRecipient, err := ton.ParseAccountID(configuration.FeeRecipientAddress)
	if err != nil {
		logger.Fatal("cannot parse fee recipient address", zap.Error(err))
	}

	store, err := storage.NewSqliteStorage(configuration.DatabasePath)
	if err != nil {
		logger.Fatal("cannot initialize storage", zap.Error(err))
	}

	bus := events.NewBus()
	vault := chain.NewVault()
	clock := chain.SystemClock{}

	instance, err := ledger.New(ledger.Params{
		EntranceFee:     configuration.EntranceFee,
		RoundDuration:   configuration.RoundDuration,
		RateChangeDelay: configuration.RateChangeDelay,
		Admin:           admin,
		FeeRecipient:    feeRecipient,
		BuyRateBps:      configuration.BuyRateBps,
		SellRateBps:     configuration.SellRateBps,
	}, vault, clock, chain.RandomEntropy{}, nil, bus)
	if err != nil {
		logger.Fatal("cannot initialize ledger", zap.Error(err))
	}

	storage.NewRecorder(store, instance, clock).Attach(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		settleLoop(ctx, instance, admin)
	}()

	<-waitForInterrupt()
	fmt.Println("interrupt received, stopping")
	cancel()

	// let an in-flight settlement and its journal writes finish
	<-done

	logger.Info("ledger daemon stopped")
}

// settleLoop drives round settlement once per tick. A round that is not
// over yet or has no entrants simply waits for the next tick.
func settleLoop(ctx context.Context, instance *ledger.Ledger, caller ton.AccountID) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := instance.Settle(caller)
			if err == nil {
				continue
			}
			if errors.Is(err, ledger.ErrRoundNotOver) || errors.Is(err, ledger.ErrNoEntrants) {
				continue
			}
			logger.Error("settlement failed", zap.Error(err))
		}
	}
}

func waitForInterrupt() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}
