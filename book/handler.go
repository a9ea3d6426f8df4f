package book

import "github.com/nimblemarkets/mdbook/fixedpoint"

// TickDir is the direction of the last trade-price comparison (spec 4.1,
// invariant 4).
type TickDir uint8

const (
	TickDirNull TickDir = iota
	TickDirUp
	TickDirDown
	TickDirLevelUp
	TickDirLevelDown
)

// Handler is a struct of function-object fields, one per event, so a
// consumer can install a partial handler without base-class boilerplate
// (spec section 9, "Callbacks" design note — plain function objects, not a
// virtual interface). All fields are optional; nil fields are skipped.
type Handler struct {
	OnAddOrder    func(ob *OrderBook, o *Order)
	OnModifyOrder func(ob *OrderBook, o *Order, oldPrice, oldQty fixedpoint.Value)
	OnCancelOrder func(ob *OrderBook, o *Order)
	OnOrderUpdate func(ob *OrderBook, o *Order) // fired during NDP migration and reset
	OnPxLevel     func(ob *OrderBook, lvl *PxLevel, dQty fixedpoint.Value, dNOrders int)
	OnL1          func(ob *OrderBook)
	OnL2          func(ob *OrderBook)
	OnReset       func(ob *OrderBook)

	// OnMissedUpdates/OnMissedOBUpdates report a contiguous gap in the
	// feed's sequence numbers, counted once per gap rather than once per
	// missed record (spec section 7; original MxMDSubscriber.cc gap
	// counting). OnMissedUpdates covers any record; OnMissedOBUpdates is
	// the subset that targeted this book specifically.
	OnMissedUpdates   func(ob *OrderBook, count uint64)
	OnMissedOBUpdates func(ob *OrderBook, count uint64)
}

func (h *Handler) fireAddOrder(ob *OrderBook, o *Order) {
	if h != nil && h.OnAddOrder != nil {
		h.OnAddOrder(ob, o)
	}
}
func (h *Handler) fireModifyOrder(ob *OrderBook, o *Order, oldPrice, oldQty fixedpoint.Value) {
	if h != nil && h.OnModifyOrder != nil {
		h.OnModifyOrder(ob, o, oldPrice, oldQty)
	}
}
func (h *Handler) fireCancelOrder(ob *OrderBook, o *Order) {
	if h != nil && h.OnCancelOrder != nil {
		h.OnCancelOrder(ob, o)
	}
}
func (h *Handler) fireOrderUpdate(ob *OrderBook, o *Order) {
	if h != nil && h.OnOrderUpdate != nil {
		h.OnOrderUpdate(ob, o)
	}
}
func (h *Handler) firePxLevel(ob *OrderBook, lvl *PxLevel, dQty fixedpoint.Value, dNOrders int) {
	if h != nil && h.OnPxLevel != nil {
		h.OnPxLevel(ob, lvl, dQty, dNOrders)
	}
}
func (h *Handler) fireL1(ob *OrderBook) {
	if h != nil && h.OnL1 != nil {
		h.OnL1(ob)
	}
}
func (h *Handler) fireL2(ob *OrderBook) {
	if h != nil && h.OnL2 != nil {
		h.OnL2(ob)
	}
}
func (h *Handler) fireReset(ob *OrderBook) {
	if h != nil && h.OnReset != nil {
		h.OnReset(ob)
	}
}
func (h *Handler) fireMissedUpdates(ob *OrderBook, count uint64) {
	if h != nil && h.OnMissedUpdates != nil {
		h.OnMissedUpdates(ob, count)
	}
}
func (h *Handler) fireMissedOBUpdates(ob *OrderBook, count uint64) {
	if h != nil && h.OnMissedOBUpdates != nil {
		h.OnMissedOBUpdates(ob, count)
	}
}
