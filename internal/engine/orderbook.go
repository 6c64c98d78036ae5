package engine

import (
	"fmt"
	"sync"
	"time"

	"bondbook/internal/common"
	"bondbook/internal/refprice"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OrderBook is a single instrument limit order book. Buy and sell interest is
// matched in price-time priority, but a bid only trades if it also clears the
// current reference price.
//
// All exported methods are safe for concurrent use. Each one takes the book
// lock exactly once and holds it until it returns, including the matching pass
// triggered by AddOrder and ModifyOrder. Exported methods never call each
// other; shared work lives in the unexported helpers, which assume the lock is
// held.
type OrderBook struct {
	mu sync.Mutex

	book     *book
	prices   ReferencePrices
	reporter Reporter
	logger   zerolog.Logger
	now      func() time.Time

	// Arrival clock. Only incremented with mu held, so it reflects the order
	// in which callers acquired the lock.
	sequence uint64
}

type Option func(*OrderBook)

// WithReferencePrices replaces the default feed, which reads the first entry
// of each snapshot.
func WithReferencePrices(prices ReferencePrices) Option {
	return func(ob *OrderBook) {
		ob.prices = prices
	}
}

// WithReporter sets where trades are sent. The default logs them.
func WithReporter(reporter Reporter) Option {
	return func(ob *OrderBook) {
		ob.reporter = reporter
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(ob *OrderBook) {
		ob.logger = logger
	}
}

// WithClock overrides the wall clock used to stamp orders and trades. The
// stamps are informational; ordering only ever uses sequence numbers.
func WithClock(now func() time.Time) Option {
	return func(ob *OrderBook) {
		ob.now = now
	}
}

func New(opts ...Option) *OrderBook {
	ob := &OrderBook{
		book:   newBook(),
		prices: refprice.NewFeed(0),
		logger: log.Logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(ob)
	}
	if ob.reporter == nil {
		ob.reporter = NewLogReporter(ob.logger)
	}
	return ob
}

// AddOrder places a new limit order and then matches the book.
//
// The order is rejected without touching the book if its parameters are
// invalid (ErrInvalidOrderParameters) or its id is already active or belonged
// to a fully filled order (ErrDuplicateOrderID). Ids freed by CancelOrder may
// be reused.
//
// If the book crosses on price but no reference price is available, matching
// is skipped and an error wrapping ErrNoReferencePrice is returned. The order
// has still been accepted and rests in the book.
func (ob *OrderBook) AddOrder(price decimal.Decimal, quantity uint64, id string, side common.Side) error {
	if err := validateOrder(price, quantity, id, side); err != nil {
		return err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	if err := ob.insert(price, quantity, id, side); err != nil {
		return err
	}
	return ob.match()
}

// CancelOrder removes an active order. Cancelling an unknown, filled or
// already cancelled id is a no-op.
func (ob *OrderBook) CancelOrder(id string) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if _, ok := ob.book.remove(id); ok {
		ob.logger.Debug().Str("id", id).Msg("order cancelled")
	}
}

// ModifyOrder replaces an active order with a new one carrying the same id.
// The replacement gets a fresh sequence number, so it queues behind every
// order that was already resting at its price, even if the price did not
// change. Unknown ids are a no-op. The book is matched afterwards.
func (ob *OrderBook) ModifyOrder(newPrice decimal.Decimal, newQuantity uint64, id string, side common.Side) error {
	if err := validateOrder(newPrice, newQuantity, id, side); err != nil {
		return err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	if _, ok := ob.book.remove(id); !ok {
		return nil
	}
	// The id was just freed, so this cannot be a duplicate.
	if err := ob.insert(newPrice, newQuantity, id, side); err != nil {
		return err
	}
	ob.logger.Debug().
		Str("id", id).
		Stringer("side", side).
		Str("price", newPrice.String()).
		Uint64("quantity", newQuantity).
		Msg("order modified")
	return ob.match()
}

// UpdateReferencePrice swaps in a new reference price snapshot. It does not
// trigger matching; the next add or modify reads the new snapshot.
func (ob *OrderBook) UpdateReferencePrice(snapshot []decimal.Decimal) error {
	if err := refprice.Snapshot(snapshot).Validate(); err != nil {
		return err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.prices.Replace(snapshot)
	return nil
}

// ReferencePrice returns the reference price matching would currently use.
func (ob *OrderBook) ReferencePrice() (decimal.Decimal, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.prices.Current()
}

// Lookup returns a copy of an active order.
func (ob *OrderBook) Lookup(id string) (common.Order, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	order, ok := ob.book.lookup(id)
	if !ok {
		return common.Order{}, false
	}
	return *order, true
}

// PeekBestBuy returns a copy of the highest priority bid.
func (ob *OrderBook) PeekBestBuy() (common.Order, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	order, ok := ob.book.bestBuy()
	if !ok {
		return common.Order{}, false
	}
	return *order, true
}

// PeekBestSell returns a copy of the highest priority ask.
func (ob *OrderBook) PeekBestSell() (common.Order, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	order, ok := ob.book.bestSell()
	if !ok {
		return common.Order{}, false
	}
	return *order, true
}

// Bids returns copies of all resting bids, best first.
func (ob *OrderBook) Bids() []common.Order {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.book.bids.snapshot()
}

// Asks returns copies of all resting asks, best first.
func (ob *OrderBook) Asks() []common.Order {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.book.asks.snapshot()
}

// Len returns the number of active orders on both sides.
func (ob *OrderBook) Len() int {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.book.len()
}

func validateOrder(price decimal.Decimal, quantity uint64, id string, side common.Side) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty id", ErrInvalidOrderParameters)
	case !price.IsPositive():
		return fmt.Errorf("%w: price %s must be positive", ErrInvalidOrderParameters, price)
	case quantity == 0:
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrderParameters)
	case !side.Valid():
		return fmt.Errorf("%w: unknown %v", ErrInvalidOrderParameters, side)
	}
	return nil
}

// insert stamps a new order with the next sequence number and adds it to the
// book. Requires mu.
func (ob *OrderBook) insert(price decimal.Decimal, quantity uint64, id string, side common.Side) error {
	order := &common.Order{
		ID:            id,
		Side:          side,
		Price:         price,
		Quantity:      quantity,
		TotalQuantity: quantity,
		Sequence:      ob.sequence + 1,
		ExchTimestamp: ob.now(),
	}
	if err := ob.book.insert(order); err != nil {
		return err
	}
	// Only consume the sequence number once the order is in.
	ob.sequence++
	return nil
}

// match consumes the top of book while the best bid crosses both the best ask
// and the reference price. Trades execute at the resting ask's price. A
// partially filled order keeps its place in the queue. Requires mu.
//
// On return, one side is empty, or the best bid is below the best ask, or the
// best bid is below the reference price, or no reference price was available
// (reported as an error).
func (ob *OrderBook) match() error {
	for {
		bestBuy, buyOk := ob.book.bestBuy()
		bestSell, sellOk := ob.book.bestSell()

		// If either side is empty, or prices don't cross, we are done.
		if !buyOk || !sellOk || bestBuy.Price.LessThan(bestSell.Price) {
			return nil
		}

		// Only consult the reference price once there is something to gate.
		reference, err := ob.prices.Current()
		if err != nil {
			ob.logger.Warn().
				Err(err).
				Str("bid", bestBuy.Price.String()).
				Str("ask", bestSell.Price.String()).
				Msg("book crossed without a reference price, matching skipped")
			return fmt.Errorf("unable to match: %w", err)
		}
		if bestBuy.Price.LessThan(reference) {
			return nil
		}

		matchQty := min(bestBuy.Quantity, bestSell.Quantity)
		bestBuy.Quantity -= matchQty
		bestSell.Quantity -= matchQty

		// Quantity is not part of the queue key, so partial fills stay put.
		if bestBuy.Quantity == 0 {
			ob.book.retire(bestBuy.ID)
		}
		if bestSell.Quantity == 0 {
			ob.book.retire(bestSell.ID)
		}

		ob.reporter.ReportTrade(common.Trade{
			BuyOrderID:  bestBuy.ID,
			SellOrderID: bestSell.ID,
			Quantity:    matchQty,
			Price:       bestSell.Price,
			Timestamp:   ob.now(),
		})
	}
}
