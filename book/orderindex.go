package book

import "github.com/nimblemarkets/mdbook/wire"

// OrderIndex is the venue-scoped order-ID lookup table an OrderBook
// consults on order ingress/egress so that "an order with id already
// exists" (spec 4.2) is judged per the venue's asserted order-ID scope
// (spec 4.5: Venue/OrderBook/OBSide), not merely within this one book's
// local map. A Library wires a venue's *venue.VenueShard in via
// SetOrderIndex when it attaches an OrderBook to a shard; venue.VenueShard
// satisfies this interface structurally (AddOrder/FindOrder/RemoveOrder).
type OrderIndex interface {
	AddOrder(bk wire.OrderBookKey, side Side, orderID string, order *Order)
	FindOrder(bk wire.OrderBookKey, side Side, orderID string) (*Order, bool)
	RemoveOrder(bk wire.OrderBookKey, side Side, orderID string)
}

// SetOrderIndex installs the venue-scoped order index this book's order
// ingress/egress consults. Nil (the default) falls back to this book's own
// local id->order map only, equivalent to an unscoped single-book index.
func (ob *OrderBook) SetOrderIndex(idx OrderIndex) {
	ob.orderIndex = idx
}
