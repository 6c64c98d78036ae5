package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tomb "gopkg.in/tomb.v2"
)

type chanSink struct {
	snapshots chan []decimal.Decimal
	err       error
}

func (s *chanSink) UpdateReferencePrice(snapshot []decimal.Decimal) error {
	if s.err != nil {
		return s.err
	}
	select {
	case s.snapshots <- snapshot:
	default:
	}
	return nil
}

func TestSimulator_TickRepricesWithinYieldRange(t *testing.T) {
	sink := &chanSink{snapshots: make(chan []decimal.Decimal, 1)}
	portfolio := []Bond{
		{1000, 0.05, 0.05, 10},
		{1000, 0.05, 0.05, 10},
	}
	sim := NewSimulator(portfolio, sink,
		WithSeed(1),
		WithWorkers(2),
		WithSimulatorLogger(zerolog.Nop()),
	)

	prices, err := sim.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, prices, 2)

	published := <-sink.snapshots
	assert.Equal(t, prices, published)

	// 10y 5% coupon priced between 7% and 3% yield.
	lo, hi := decimal.RequireFromString("859.52"), decimal.RequireFromString("1170.61")
	for _, price := range prices {
		assert.True(t, price.GreaterThanOrEqual(lo), "price %s", price)
		assert.True(t, price.LessThanOrEqual(hi), "price %s", price)
	}

	// The caller's portfolio is untouched.
	assert.Equal(t, 0.05, portfolio[0].YieldToMaturity)
}

func TestSimulator_TickSurfacesSinkErrors(t *testing.T) {
	sinkErr := errors.New("rejected")
	sim := NewSimulator([]Bond{{1000, 0.05, 0.05, 10}}, &chanSink{err: sinkErr},
		WithSimulatorLogger(zerolog.Nop()),
	)

	_, err := sim.Tick(context.Background())
	assert.ErrorIs(t, err, sinkErr)
}

func TestSimulator_RunPublishesUntilKilled(t *testing.T) {
	sink := &chanSink{snapshots: make(chan []decimal.Decimal, 1)}
	sim := NewSimulator([]Bond{{1000, 0.04, 0.05, 3}}, sink,
		WithInterval(5*time.Millisecond),
		WithSeed(42),
		WithSimulatorLogger(zerolog.Nop()),
	)

	var tb tomb.Tomb
	tb.Go(func() error {
		return sim.Run(&tb)
	})

	for range 3 {
		select {
		case snapshot := <-sink.snapshots:
			assert.Len(t, snapshot, 1)
		case <-time.After(2 * time.Second):
			t.Fatal("no snapshot published")
		}
	}

	tb.Kill(nil)
	assert.NoError(t, tb.Wait())
}
