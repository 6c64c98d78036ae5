package engine

import (
	"fmt"

	"bondbook/internal/common"
)

// book is the order index together with both side queues. An id is in the
// index if and only if its order is resting in exactly one of the queues.
//
// Ids of fully filled orders are retired: they are gone from the index but can
// never be added again. Cancelled ids are released and may be reused.
//
// book does no locking; every method must be called with OrderBook.mu held.
type book struct {
	orders  map[string]*common.Order
	retired map[string]struct{}
	bids    *sideQueue
	asks    *sideQueue
}

func newBook() *book {
	return &book{
		orders:  make(map[string]*common.Order),
		retired: make(map[string]struct{}),
		bids:    newSideQueue(common.Buy),
		asks:    newSideQueue(common.Sell),
	}
}

func (b *book) queue(side common.Side) *sideQueue {
	if side == common.Buy {
		return b.bids
	}
	return b.asks
}

// insert adds an order to the index and its side queue. Nothing is mutated if
// the id is already active or was retired by a fill.
func (b *book) insert(order *common.Order) error {
	if _, ok := b.orders[order.ID]; ok {
		return fmt.Errorf("%w: %s is active", ErrDuplicateOrderID, order.ID)
	}
	if _, ok := b.retired[order.ID]; ok {
		return fmt.Errorf("%w: %s was filled", ErrDuplicateOrderID, order.ID)
	}
	b.orders[order.ID] = order
	b.queue(order.Side).push(order)
	return nil
}

func (b *book) lookup(id string) (*common.Order, bool) {
	order, ok := b.orders[id]
	return order, ok
}

// remove drops an order from the index and its side queue. Unknown ids are
// ignored.
func (b *book) remove(id string) (*common.Order, bool) {
	order, ok := b.orders[id]
	if !ok {
		return nil, false
	}
	delete(b.orders, id)
	b.queue(order.Side).remove(order)
	return order, true
}

// retire removes a filled order and reserves its id.
func (b *book) retire(id string) {
	if _, ok := b.remove(id); ok {
		b.retired[id] = struct{}{}
	}
}

func (b *book) bestBuy() (*common.Order, bool) {
	return b.bids.best()
}

func (b *book) bestSell() (*common.Order, bool) {
	return b.asks.best()
}

func (b *book) len() int {
	return len(b.orders)
}
