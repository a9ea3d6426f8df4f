package library

import (
	"github.com/nimblemarkets/mdbook/book"
	"github.com/nimblemarkets/mdbook/fixedpoint"
	"github.com/nimblemarkets/mdbook/venue"
	"github.com/nimblemarkets/mdbook/wire"
)

// Apply decodes a scanned frame (hdr, rawBody) and replays it against the
// library, dispatched onto the owning instrument's shard (spec section 2,
// data flow: "feed -> subscriber link -> broadcast queue -> apply(record)
// -> Library -> shard-dispatch -> book mutation"). Apply mutates books
// through their normal methods, so each mutation fires the book's
// installed Handler: for a book built with BookHandler, and a library
// constructed with a non-nil wire.Writer, the applied mutation is emitted
// on that writer like any other.
//
// Record types outside the book-mutation catalogue (Login/LoginAck/
// ResendReq/EndOfSnapshot/HeartBeat) are the subscriber link protocol
// itself, not library events, and are rejected with ErrUnsupportedApply.
func (l *Library) Apply(hdr wire.Hdr, rawBody []byte) error {
	switch hdr.Type {
	case wire.RecordType_AddOrder:
		var b wire.AddOrderBody
		if err := b.Decode(rawBody); err != nil {
			return err
		}
		return l.applyOnBook(wire.OrderBookKey{Venue: b.Venue, Segment: b.Segment}, func(ob *book.OrderBook) error {
			_, err := ob.AddOrder(b.OrderID.String(), book.Side(b.Side), int(b.Rank), fixedpoint.Value(b.Price), fixedpoint.Value(b.Qty), book.Flags(b.Flags), b.TransactTime, true)
			return err
		})

	case wire.RecordType_ModifyOrder:
		var b wire.ModifyOrderBody
		if err := b.Decode(rawBody); err != nil {
			return err
		}
		return l.applyOnBook(wire.OrderBookKey{Venue: b.Venue, Segment: b.Segment}, func(ob *book.OrderBook) error {
			_, err := ob.ModifyOrder(b.OrderID.String(), int(b.Rank), fixedpoint.Value(b.Price), fixedpoint.Value(b.Qty), book.Flags(b.Flags), b.TransactTime, true)
			return err
		})

	case wire.RecordType_CancelOrder:
		var b wire.CancelOrderBody
		if err := b.Decode(rawBody); err != nil {
			return err
		}
		return l.applyOnBook(wire.OrderBookKey{Venue: b.Venue, Segment: b.Segment}, func(ob *book.OrderBook) error {
			_, err := ob.CancelOrder(b.OrderID.String(), b.TransactTime, true)
			return err
		})

	case wire.RecordType_PxLevel:
		var b wire.PxLevelBody
		if err := b.Decode(rawBody); err != nil {
			return err
		}
		return l.applyOnBook(wire.OrderBookKey{Venue: b.Venue, Segment: b.Segment}, func(ob *book.OrderBook) error {
			ob.PxLevelUpdate(book.Side(b.Side), b.TransactTime, b.Delta != 0, fixedpoint.Value(b.Price), fixedpoint.Value(b.Qty), int(b.NOrders), book.Flags(b.Flags), true)
			return nil
		})

	case wire.RecordType_L1:
		var b wire.L1Body
		if err := b.Decode(rawBody); err != nil {
			return err
		}
		return l.applyOnBook(wire.OrderBookKey{Venue: b.Venue, Segment: b.Segment}, func(ob *book.OrderBook) error {
			incoming := book.NewL1Update(ob.L1.PxNDP, ob.L1.QtyNDP)
			incoming.Stamp = b.Stamp
			incoming.Last = fixedpoint.Value(b.Last)
			incoming.LastQty = fixedpoint.Value(b.LastQty)
			incoming.Bid = fixedpoint.Value(b.Bid)
			incoming.BidQty = fixedpoint.Value(b.BidQty)
			incoming.Ask = fixedpoint.Value(b.Ask)
			incoming.AskQty = fixedpoint.Value(b.AskQty)
			ob.UpdateL1(incoming)
			return nil
		})

	case wire.RecordType_L2:
		var b wire.L2Body
		if err := b.Decode(rawBody); err != nil {
			return err
		}
		return l.applyOnBook(wire.OrderBookKey{Venue: b.Venue, Segment: b.Segment}, func(ob *book.OrderBook) error {
			ob.L2(b.Stamp, b.UpdateL1)
			return nil
		})

	case wire.RecordType_ResetOB:
		var b wire.ResetOBBody
		if err := b.Decode(rawBody); err != nil {
			return err
		}
		return l.applyOnBook(wire.OrderBookKey{Venue: b.Venue, Segment: b.Segment}, func(ob *book.OrderBook) error {
			ob.Reset(b.TransactTime)
			return nil
		})

	case wire.RecordType_TradingSession:
		var b wire.TradingSessionBody
		if err := b.Decode(rawBody); err != nil {
			return err
		}
		v, ok := l.Venue(b.Venue)
		if !ok {
			return unknownVenueError(b.Venue)
		}
		v.TradingSession(venue.Segment{ID: b.Segment, Session: b.Session, Stamp: b.Stamp, SeqID: b.ID})
		return nil

	case wire.RecordType_RefDataLoaded:
		var b wire.RefDataLoadedBody
		if err := b.Decode(rawBody); err != nil {
			return err
		}
		l.mu.Lock()
		l.ready[b.Venue] = true
		l.mu.Unlock()
		return nil

	default:
		return unsupportedApplyTypeError(hdr.Type)
	}
}

// applyOnBook resolves key to its order book and owning instrument, then
// invokes fn on the instrument's shard so book content mutation stays
// shard-affine even when the caller is the subscriber's Rx goroutine
// rather than one of the library's own public methods (spec 4.6).
func (l *Library) applyOnBook(key wire.OrderBookKey, fn func(*book.OrderBook) error) error {
	l.mu.RLock()
	ob, ok := l.allOrderBooks[key]
	sh := l.bookShard[key]
	l.mu.RUnlock()
	if !ok || sh == nil {
		return noOrderBookError(key)
	}

	var applyErr error
	sh.Invoke(func() { applyErr = fn(ob) })
	return applyErr
}
