package engine

import (
	"sync/atomic"

	"bondbook/internal/common"

	"github.com/rs/zerolog"
)

// LogReporter writes one structured log event per trade.
type LogReporter struct {
	logger zerolog.Logger
}

func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) ReportTrade(trade common.Trade) {
	r.logger.Info().
		Str("buy", trade.BuyOrderID).
		Str("sell", trade.SellOrderID).
		Uint64("quantity", trade.Quantity).
		Str("price", trade.Price.String()).
		Msg("matched")
}

// ChanReporter hands trades to a consumer goroutine through a buffered
// channel. It never blocks the book: when the buffer is full the trade is
// dropped and counted.
type ChanReporter struct {
	trades  chan common.Trade
	dropped atomic.Uint64
}

func NewChanReporter(size int) *ChanReporter {
	return &ChanReporter{trades: make(chan common.Trade, size)}
}

func (r *ChanReporter) ReportTrade(trade common.Trade) {
	select {
	case r.trades <- trade:
	default:
		r.dropped.Add(1)
	}
}

func (r *ChanReporter) Trades() <-chan common.Trade {
	return r.trades
}

// Dropped returns how many trades were discarded on a full buffer.
func (r *ChanReporter) Dropped() uint64 {
	return r.dropped.Load()
}

// Reporters fans every trade out to each reporter in turn.
type Reporters []Reporter

func (rs Reporters) ReportTrade(trade common.Trade) {
	for _, r := range rs {
		r.ReportTrade(trade)
	}
}
