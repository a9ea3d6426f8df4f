package library

import (
	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/fixedpoint"
	"github.com/nimblemarkets/mdbook/wire"
)

// The handlers below back Library.BookHandler's book.Handler fields. Order
// doesn't carry its own ingress timestamp (spec section 3), so these use
// the book's own L1.Stamp as a best-effort substitute. The order and
// price-level callbacks fire before the book's L2 step refreshes L1, so for
// them L1.Stamp is the stamp of the book's previous L1 update, not of the
// mutation being reported.

func (l *Library) onAddOrder(ob *book.OrderBook, o *book.Order) {
	l.emit(&wire.AddOrderBody{
		Venue:        ob.Key.Venue,
		Segment:      ob.Key.Segment,
		OrderID:      wire.NewOrderID(o.ID),
		TransactTime: ob.L1.Stamp,
		Side:         uint8(o.Side),
		Rank:         uint8(o.Rank),
		Price:        int64(o.Price),
		Qty:          int64(o.Qty),
		Flags:        uint32(o.Flags),
	})
}

func (l *Library) onModifyOrder(ob *book.OrderBook, o *book.Order, oldPrice, oldQty fixedpoint.Value) {
	_ = oldPrice
	_ = oldQty
	l.emit(&wire.ModifyOrderBody{AddOrderBody: wire.AddOrderBody{
		Venue:        ob.Key.Venue,
		Segment:      ob.Key.Segment,
		OrderID:      wire.NewOrderID(o.ID),
		TransactTime: ob.L1.Stamp,
		Side:         uint8(o.Side),
		Rank:         uint8(o.Rank),
		Price:        int64(o.Price),
		Qty:          int64(o.Qty),
		Flags:        uint32(o.Flags),
	}})
}

func (l *Library) onCancelOrder(ob *book.OrderBook, o *book.Order) {
	l.emit(&wire.CancelOrderBody{
		Venue:        ob.Key.Venue,
		Segment:      ob.Key.Segment,
		OrderID:      wire.NewOrderID(o.ID),
		TransactTime: ob.L1.Stamp,
		Side:         uint8(o.Side),
	})
}

func (l *Library) onPxLevel(ob *book.OrderBook, lvl *book.PxLevel, dQty fixedpoint.Value, dNOrders int) {
	l.emit(&wire.PxLevelBody{
		Venue:        ob.Key.Venue,
		Segment:      ob.Key.Segment,
		TransactTime: ob.L1.Stamp,
		Side:         uint8(lvl.Side()),
		Delta:        1,
		Price:        int64(lvl.Price), // Null (IsMarketLevel) passes through unchanged
		Qty:          int64(dQty),
		NOrders:      uint32(dNOrders),
		Flags:        uint8(lvl.Flags),
	})
}

func (l *Library) onL1(ob *book.OrderBook) {
	l1 := ob.L1
	l.emit(&wire.L1Body{
		Venue:   ob.Key.Venue,
		Segment: ob.Key.Segment,
		Stamp:   l1.Stamp,
		Last:    int64(l1.Last),
		LastQty: int64(l1.LastQty),
		Bid:     int64(l1.Bid),
		BidQty:  int64(l1.BidQty),
		Ask:     int64(l1.Ask),
		AskQty:  int64(l1.AskQty),
		TickDir: uint8(l1.TickDir),
	})
}

func (l *Library) onL2(ob *book.OrderBook) {
	l.emit(&wire.L2Body{
		Venue:    ob.Key.Venue,
		Segment:  ob.Key.Segment,
		Stamp:    ob.L1.Stamp,
		UpdateL1: true,
	})
}

func (l *Library) onReset(ob *book.OrderBook) {
	l.emit(&wire.ResetOBBody{
		Venue:        ob.Key.Venue,
		Segment:      ob.Key.Segment,
		TransactTime: ob.L1.Stamp,
	})
}

func (l *Library) onMissedUpdates(ob *book.OrderBook, count uint64) {
	l.Logger.Warn("library: missed updates", "book", ob.Key, "count", count)
}

func (l *Library) onMissedOBUpdates(ob *book.OrderBook, count uint64) {
	l.Logger.Warn("library: missed order book updates", "book", ob.Key, "count", count)
}
