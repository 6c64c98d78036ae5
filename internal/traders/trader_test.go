package traders

import (
	"testing"
	"time"

	"bondbook/internal/engine"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tomb "gopkg.in/tomb.v2"
)

func newTestBook(t *testing.T, reference ...decimal.Decimal) (*engine.OrderBook, *engine.ChanReporter) {
	t.Helper()
	trades := engine.NewChanReporter(10000)
	book := engine.New(engine.WithReporter(trades), engine.WithLogger(zerolog.Nop()))
	require.NoError(t, book.UpdateReferencePrice(reference))
	return book, trades
}

func TestTrader_IdleWithoutReferencePrice(t *testing.T) {
	book, _ := newTestBook(t)
	tr := New("idle", book, WithSeed(1))

	for range 20 {
		require.NoError(t, tr.Step())
	}
	assert.Equal(t, 0, book.Len())
}

func TestTrader_QuotesAroundReference(t *testing.T) {
	reference := decimal.NewFromInt(1000)
	book, trades := newTestBook(t, reference)
	tr := New("quoter", book, WithSeed(7), WithSpread(0.02))

	for range 500 {
		require.NoError(t, tr.Step())
	}

	lo, hi := decimal.NewFromInt(980), decimal.NewFromInt(1020)
	orders := append(book.Bids(), book.Asks()...)
	require.NotEmpty(t, orders)
	assert.LessOrEqual(t, len(orders), maxLiveOrders)
	for _, order := range orders {
		assert.True(t, order.Price.GreaterThanOrEqual(lo), "price %s", order.Price)
		assert.True(t, order.Price.LessThanOrEqual(hi), "price %s", order.Price)
	}
	assert.NotZero(t, len(trades.Trades()), "crossing quotes should have traded")
}

func TestTrader_RunStopsWithTomb(t *testing.T) {
	book, _ := newTestBook(t, decimal.NewFromInt(100))
	tr := New("runner", book, WithSeed(3), WithPace(time.Millisecond))

	var tb tomb.Tomb
	tb.Go(func() error {
		return tr.Run(&tb)
	})

	require.Eventually(t, func() bool { return book.Len() > 0 }, 2*time.Second, time.Millisecond)
	tb.Kill(nil)
	assert.NoError(t, tb.Wait())
}
