package pricing

import (
	"context"
	"math/rand"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"
)

const (
	defaultInterval = 2 * time.Second
	defaultMinYield = 0.03
	defaultMaxYield = 0.07
)

// Sink receives each freshly priced snapshot. The order book satisfies it.
type Sink interface {
	UpdateReferencePrice(snapshot []decimal.Decimal) error
}

// Simulator stands in for a live market data feed: on every tick it draws new
// yields for the whole portfolio, reprices it and publishes the snapshot.
type Simulator struct {
	portfolio []Bond
	sink      Sink
	interval  time.Duration
	workers   int
	minYield  float64
	maxYield  float64
	rng       *rand.Rand
	logger    zerolog.Logger
}

type SimulatorOption func(*Simulator)

func WithInterval(interval time.Duration) SimulatorOption {
	return func(s *Simulator) {
		s.interval = interval
	}
}

func WithWorkers(workers int) SimulatorOption {
	return func(s *Simulator) {
		s.workers = workers
	}
}

// WithYieldRange bounds the yields drawn on each tick.
func WithYieldRange(lo, hi float64) SimulatorOption {
	return func(s *Simulator) {
		s.minYield, s.maxYield = lo, hi
	}
}

func WithSeed(seed int64) SimulatorOption {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

func WithSimulatorLogger(logger zerolog.Logger) SimulatorOption {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// NewSimulator copies portfolio; later changes to the caller's slice are not
// seen.
func NewSimulator(portfolio []Bond, sink Sink, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		portfolio: append([]Bond(nil), portfolio...),
		sink:      sink,
		interval:  defaultInterval,
		workers:   runtime.NumCPU(),
		minYield:  defaultMinYield,
		maxYield:  defaultMaxYield,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick runs one update: new yields, a parallel repricing and a publish.
// Tick is not safe to call concurrently with itself or Run.
func (s *Simulator) Tick(ctx context.Context) ([]decimal.Decimal, error) {
	for i := range s.portfolio {
		s.portfolio[i].YieldToMaturity = s.minYield + s.rng.Float64()*(s.maxYield-s.minYield)
	}

	prices, err := PricePortfolio(ctx, s.portfolio, s.workers)
	if err != nil {
		return nil, err
	}
	if err := s.sink.UpdateReferencePrice(prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// Run publishes a snapshot immediately and then once per interval until the
// tomb starts dying. A failed tick is logged and retried on the next one.
func (s *Simulator) Run(t *tomb.Tomb) error {
	ctx := t.Context(context.Background())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		prices, err := s.Tick(ctx)
		switch {
		case err == nil && len(prices) > 0:
			s.logger.Debug().
				Int("bonds", len(prices)).
				Str("current", prices[0].String()).
				Msg("reference prices updated")
		case err != nil && ctx.Err() == nil:
			s.logger.Error().Err(err).Msg("reference price update failed")
		}

		select {
		case <-t.Dying():
			return nil
		case <-ticker.C:
		}
	}
}
