package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a single match between the best bid and the best ask. The price is
// always the resting sell order's price.
type Trade struct {
	BuyOrderID  string
	SellOrderID string
	Quantity    uint64
	Price       decimal.Decimal
	Timestamp   time.Time
}

func (t Trade) String() string {
	return fmt.Sprintf(
		`Buy:       %s
Sell:      %s
Quantity:  %d
Price:     %s
Timestamp: %v`,
		t.BuyOrderID,
		t.SellOrderID,
		t.Quantity,
		t.Price.String(),
		t.Timestamp.Format(time.RFC3339),
	)
}
