package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"bondbook/internal/engine"
	"bondbook/internal/pricing"
	"bondbook/internal/refprice"
	"bondbook/internal/traders"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const tradeBufferSize = 1024

func main() {
	// 1. CLI Parameter Parsing
	nBonds := flag.Int("bonds", 1000, "Number of bonds in the simulated portfolio")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of pricing workers")
	interval := flag.Duration("interval", 2*time.Second, "Reference price update interval")
	refIndex := flag.Int("reference-index", 0, "Portfolio entry used as the reference price")
	nTraders := flag.Int("traders", 4, "Number of simulated traders")
	pace := flag.Duration("pace", 50*time.Millisecond, "Delay between trader actions")
	spread := flag.Float64("spread", 0.01, "Trader quote spread around the reference price")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	level := flag.String("log-level", "info", "Log level: ['debug', 'info', 'warn', 'error']")
	pretty := flag.Bool("pretty", true, "Human readable console logging")

	flag.Parse()

	// Validation
	if *nBonds <= *refIndex || *refIndex < 0 {
		fmt.Printf("Error: -reference-index must be within [0, %d).\n", *nBonds)
		flag.Usage()
		os.Exit(1)
	}
	if err := setupLogging(*level, *pretty); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	// Setup the book, fed by the bond pricer and consumed by the traders.
	trades := engine.NewChanReporter(tradeBufferSize)
	book := engine.New(
		engine.WithReferencePrices(refprice.NewFeed(*refIndex)),
		engine.WithReporter(engine.Reporters{engine.NewLogReporter(log.Logger), trades}),
	)

	rng := rand.New(rand.NewSource(*seed))
	simulator := pricing.NewSimulator(
		pricing.GeneratePortfolio(*nBonds, rng),
		book,
		pricing.WithInterval(*interval),
		pricing.WithWorkers(*workers),
		pricing.WithSeed(rng.Int63()),
	)

	t, _ := tomb.WithContext(ctx)
	t.Go(func() error {
		return simulator.Run(t)
	})
	for i := range *nTraders {
		trader := traders.New(
			fmt.Sprintf("trader-%d", i),
			book,
			traders.WithPace(*pace),
			traders.WithSpread(*spread),
			traders.WithSeed(rng.Int63()),
		)
		t.Go(func() error {
			return trader.Run(t)
		})
	}
	t.Go(func() error {
		return summarise(t, trades)
	})

	log.Info().
		Int("bonds", *nBonds).
		Int("traders", *nTraders).
		Int64("seed", *seed).
		Msg("order book running")

	// Block until a signal or a failed task.
	if err := t.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("order book stopped")
	}

	bids, asks := book.Bids(), book.Asks()
	log.Info().
		Int("bids", len(bids)).
		Int("asks", len(asks)).
		Msg("order book shut down")
}

func setupLogging(level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("unable to parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return nil
}

// summarise tallies trades until shutdown.
func summarise(t *tomb.Tomb, trades *engine.ChanReporter) error {
	var count, volume uint64
	for {
		select {
		case <-t.Dying():
			log.Info().
				Uint64("trades", count).
				Uint64("volume", volume).
				Uint64("dropped", trades.Dropped()).
				Msg("trade summary")
			return nil
		case trade := <-trades.Trades():
			count++
			volume += trade.Quantity
		}
	}
}
