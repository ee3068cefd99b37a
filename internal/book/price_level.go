package book

// PriceLevel aggregates all resting orders at one price on one side. The
// FIFO holds order ids only; payloads live in the book's order table.
// Invariant: TotalQuantity equals the sum of remaining quantities of the
// orders listed in the FIFO.
type PriceLevel struct {
	Price         uint64
	Orders        []uint64
	TotalQuantity uint64
}

func NewPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{Price: price}
}

func (level *PriceLevel) Add(orderID, quantity uint64) {
	level.Orders = append(level.Orders, orderID)
	level.TotalQuantity += quantity
}

// Remove drops orderID from the FIFO by identity and subtracts its
// remaining quantity from the aggregate.
func (level *PriceLevel) Remove(orderID, quantity uint64) {
	for i, id := range level.Orders {
		if id == orderID {
			level.Orders = append(level.Orders[:i], level.Orders[i+1:]...)
			break
		}
	}
	level.TotalQuantity -= quantity
}

func (level *PriceLevel) IsEmpty() bool {
	return len(level.Orders) == 0
}
