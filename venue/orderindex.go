package venue

import (
	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/wire"
)

// OrderIDScope names which of the three order-ID index strategies a venue
// asserts (spec section 4.5).
type OrderIDScope uint8

const (
	// ScopeVenue indexes by orderID alone — a single index shared by every
	// shard holding this venue's books.
	ScopeVenue OrderIDScope = iota
	// ScopeOrderBook indexes by (orderBookKey, orderID) — one index per
	// shard.
	ScopeOrderBook
	// ScopeOBSide indexes by (orderBookKey, side, orderID) — one index per
	// shard.
	ScopeOBSide
)

// OrderIndex is the per-scope order lookup strategy a VenueShard uses to
// resolve a feed-supplied orderID back to the live *book.Order (spec 4.5:
// "Order-ID lookups are scoped per orderIDScope").
type OrderIndex interface {
	Add(bk wire.OrderBookKey, side book.Side, orderID string, order *book.Order)
	Find(bk wire.OrderBookKey, side book.Side, orderID string) (*book.Order, bool)
	Remove(bk wire.OrderBookKey, side book.Side, orderID string)
}

// NewOrderIndex constructs the OrderIndex implementation matching scope.
func NewOrderIndex(scope OrderIDScope) OrderIndex {
	switch scope {
	case ScopeOrderBook:
		return &orderBookIndex{m: make(map[orderBookKey]*book.Order)}
	case ScopeOBSide:
		return &obSideIndex{m: make(map[obSideKey]*book.Order)}
	default:
		return &venueIndex{m: make(map[string]*book.Order)}
	}
}

// venueIndex keys solely by orderID, ignoring which book/side it rests on.
type venueIndex struct{ m map[string]*book.Order }

func (idx *venueIndex) Add(_ wire.OrderBookKey, _ book.Side, orderID string, order *book.Order) {
	idx.m[orderID] = order
}
func (idx *venueIndex) Find(_ wire.OrderBookKey, _ book.Side, orderID string) (*book.Order, bool) {
	o, ok := idx.m[orderID]
	return o, ok
}
func (idx *venueIndex) Remove(_ wire.OrderBookKey, _ book.Side, orderID string) {
	delete(idx.m, orderID)
}

type orderBookKey struct {
	bk wire.OrderBookKey
	id string
}

// orderBookIndex keys by (orderBookKey, orderID) — distinguishes the same
// feed-assigned ID across different books, but not across sides of one book.
type orderBookIndex struct{ m map[orderBookKey]*book.Order }

func (idx *orderBookIndex) Add(bk wire.OrderBookKey, _ book.Side, orderID string, order *book.Order) {
	idx.m[orderBookKey{bk, orderID}] = order
}
func (idx *orderBookIndex) Find(bk wire.OrderBookKey, _ book.Side, orderID string) (*book.Order, bool) {
	o, ok := idx.m[orderBookKey{bk, orderID}]
	return o, ok
}
func (idx *orderBookIndex) Remove(bk wire.OrderBookKey, _ book.Side, orderID string) {
	delete(idx.m, orderBookKey{bk, orderID})
}

type obSideKey struct {
	bk   wire.OrderBookKey
	side book.Side
	id   string
}

// obSideIndex keys by (orderBookKey, side, orderID) — the finest-grained
// scope, for venues that reuse IDs across the two sides of a book.
type obSideIndex struct{ m map[obSideKey]*book.Order }

func (idx *obSideIndex) Add(bk wire.OrderBookKey, side book.Side, orderID string, order *book.Order) {
	idx.m[obSideKey{bk, side, orderID}] = order
}
func (idx *obSideIndex) Find(bk wire.OrderBookKey, side book.Side, orderID string) (*book.Order, bool) {
	o, ok := idx.m[obSideKey{bk, side, orderID}]
	return o, ok
}
func (idx *obSideIndex) Remove(bk wire.OrderBookKey, side book.Side, orderID string) {
	delete(idx.m, obSideKey{bk, side, orderID})
}
