package engine

import (
	"bondbook/internal/common"

	"github.com/tidwall/btree"
)

// sideQueue keeps one side of the book in price-time priority. Orders are keyed
// by (price, sequence), which is unique per order, so any order can be found
// and removed in O(log n) given the order itself.
type sideQueue struct {
	side   common.Side
	orders *btree.BTreeG[*common.Order]
}

func newSideQueue(side common.Side) *sideQueue {
	var less func(a, b *common.Order) bool
	switch side {
	case common.Buy:
		// Sorted greatest price first, then earliest arrival.
		less = func(a, b *common.Order) bool {
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c > 0
			}
			return a.Sequence < b.Sequence
		}
	case common.Sell:
		// Sorted least price first, then earliest arrival.
		less = func(a, b *common.Order) bool {
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c < 0
			}
			return a.Sequence < b.Sequence
		}
	}

	// The order book serialises all access, the tree does not need its own lock.
	return &sideQueue{
		side:   side,
		orders: btree.NewBTreeGOptions(less, btree.Options{NoLocks: true}),
	}
}

func (q *sideQueue) push(order *common.Order) {
	q.orders.Set(order)
}

// remove excises order from the queue. The order's price and sequence must not
// have changed since it was pushed.
func (q *sideQueue) remove(order *common.Order) bool {
	_, ok := q.orders.Delete(order)
	return ok
}

// best returns the top priority order without removing it.
func (q *sideQueue) best() (*common.Order, bool) {
	return q.orders.Min()
}

func (q *sideQueue) len() int {
	return q.orders.Len()
}

// snapshot copies the queue out in priority order.
func (q *sideQueue) snapshot() []common.Order {
	out := make([]common.Order, 0, q.orders.Len())
	q.orders.Scan(func(order *common.Order) bool {
		out = append(out, *order)
		return true
	})
	return out
}
