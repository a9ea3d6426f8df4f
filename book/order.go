// Package book implements the in-memory order book: Order, PxLevel, OBSide
// and OrderBook, deriving L1/L2/L3 views of a single instrument's market
// from whichever granularity the feed provides (spec section 4.2-4.3).
//
// Grounded in the original's MxMDOrder/MxMDPxLevel/MxMDOBSide/MxMDOrderBook
// (djnz00/z-mx, mxmd/src/MxMD.hh), written in the side-map + cached-best-
// price idiom shown across the retrieval pack's order book implementations
// (e.g. internal/orderbook/orderbook.go in the tiagolvsantos and
// BullionBear example repos).
package book

import "github.com/nimblemarkets/mdbook/fixedpoint"

// Side is which side of the book an order or price level sits on.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) Other() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Flags is a feed-defined per-order/per-level bit field (venue-specific
// meaning; see spec section 9's "venue-specific flag dispatch" design note,
// implemented by the registry in book/flagdispatch.go).
type Flags uint32

// Order is a single resting order, L3 granularity.
type Order struct {
	ID    string
	Side  Side
	Rank  int
	Price fixedpoint.Value
	Qty   fixedpoint.Value
	Flags Flags

	level *PxLevel // backref; nil once detached
}

// IsGhost reports whether the order has drained to zero quantity and is
// awaiting deletion (spec section 3: "If qty==0, the order is a ghost
// awaiting deletion").
func (o *Order) IsGhost() bool { return o.Qty == 0 }

// Level returns the PxLevel this order currently belongs to, or nil if
// detached.
func (o *Order) Level() *PxLevel { return o.level }
