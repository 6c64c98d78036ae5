package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Valid reports whether s is one of the two book sides.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

type Order struct {
	ID            string          // Client supplied order id
	Side          Side            // Order side
	Price         decimal.Decimal // Limiting price
	Quantity      uint64          // Remaining quantity
	TotalQuantity uint64          // Total volume requested
	Sequence      uint64          // Arrival into the book, breaks price ties
	ExchTimestamp time.Time       // Time of arrival of order into the book
}

// Active reports whether the order still has quantity left to trade.
func (order Order) Active() bool {
	return order.Quantity > 0
}

func (order Order) String() string {
	return fmt.Sprintf(
		`ID:            %s
Side:          %v
Price:         %s
Quantity:      %d (Total: %d)
Sequence:      %d
ExchTimestamp: %v`,
		order.ID,
		order.Side,
		order.Price.String(),
		order.Quantity,
		order.TotalQuantity,
		order.Sequence,
		order.ExchTimestamp.Format(time.RFC3339),
	)
}
