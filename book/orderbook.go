package book

import (
	"sort"

	"github.com/nimblemarkets/mdbook/fixedpoint"
	"github.com/nimblemarkets/mdbook/wire"
)

// OpenCloseSlots is the number of trailing open/close prints an L1Data
// carries (today's and the prior session's), per the GLOSSARY's Open/Close.
const OpenCloseSlots = 2

// Status is an order book's trading status.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusPreOpen
	StatusOpen
	StatusHalted
	StatusClosed
)

// L1Data is an order book's top-of-book summary: the fields a ticker-plant
// consumer needs without walking the L2/L3 structures (spec section 3, L1).
type L1Data struct {
	Stamp      int64
	Status     Status
	Base       fixedpoint.Value
	Open       [OpenCloseSlots]fixedpoint.Value
	Close      [OpenCloseSlots]fixedpoint.Value
	Last       fixedpoint.Value
	LastQty    fixedpoint.Value
	Bid        fixedpoint.Value
	BidQty     fixedpoint.Value
	Ask        fixedpoint.Value
	AskQty     fixedpoint.Value
	High       fixedpoint.Value
	Low        fixedpoint.Value
	AccVol     fixedpoint.Value // accumulated notional
	AccVolQty  fixedpoint.Value // accumulated traded quantity
	TickDir    TickDir
	Match      fixedpoint.Value // theoretical opening/closing match price
	MatchQty   fixedpoint.Value
	SurplusQty fixedpoint.Value // unmatched quantity at Match
	Flags      Flags
	PxNDP      fixedpoint.NDP
	QtyNDP     fixedpoint.NDP
}

// Leg is one constituent of a Combination: a venue order book, the side of
// that book the combination buys/sells through, and the weighting ratio
// (spec section 4.3, Combination).
type Leg struct {
	Book  *OrderBook
	Side  Side
	Ratio fixedpoint.Value
}

type outLink struct {
	book *OrderBook
	rank int
}

// OrderBook is the per-instrument, per-venue-segment market view: L1
// summary, L2 price levels (via bids/asks OBSide) and, when the feed
// provides it, L3 individual orders (spec section 3/4.3).
//
// Grounded in the original's MxMDOrderBook (djnz00/z-mx, mxmd/src/MxMD.hh).
type OrderBook struct {
	Key       wire.OrderBookKey
	Legs      []Leg // non-empty only for a Combination
	TickSizes *TickSizeTable
	LotSizes  LotSizes
	L1        L1Data

	bids *OBSide
	asks *OBSide

	handler      *Handler
	orders       map[string]*Order
	uniformRanks bool
	orderIndex   OrderIndex // venue-scoped id lookup; nil falls back to orders alone

	outs []*outLink // combinations this book feeds into, as an in-leg
}

// NewOrderBook constructs an empty order book at the given price/quantity
// precision.
func NewOrderBook(key wire.OrderBookKey, pxNDP, qtyNDP fixedpoint.NDP, uniformRanks bool, h *Handler) *OrderBook {
	return &OrderBook{
		Key:          key,
		TickSizes:    NewTickSizeTable(key.Venue.String()),
		bids:         newOBSide(Buy, pxNDP, qtyNDP, uniformRanks),
		asks:         newOBSide(Sell, pxNDP, qtyNDP, uniformRanks),
		handler:      h,
		orders:       make(map[string]*Order),
		uniformRanks: uniformRanks,
		L1:           NewL1Update(pxNDP, qtyNDP),
	}
}

// NewL1Update builds an L1Data with every price/quantity field set to the
// absent sentinel rather than Go's default zero value, since a Value of 0
// means a real price of 0.00, not "nothing printed yet". Callers building a
// partial L1 update for UpdateL1 should start from this rather than a bare
// struct literal, then assign only the fields the feed actually printed
// (spec section 4.1).
func NewL1Update(pxNDP, qtyNDP fixedpoint.NDP) L1Data {
	return L1Data{
		Base:       fixedpoint.Null,
		Open:       [OpenCloseSlots]fixedpoint.Value{fixedpoint.Null, fixedpoint.Null},
		Close:      [OpenCloseSlots]fixedpoint.Value{fixedpoint.Null, fixedpoint.Null},
		Last:       fixedpoint.Null,
		LastQty:    fixedpoint.Null,
		Bid:        fixedpoint.Null,
		BidQty:     fixedpoint.Null,
		Ask:        fixedpoint.Null,
		AskQty:     fixedpoint.Null,
		High:       fixedpoint.Null,
		Low:        fixedpoint.Null,
		AccVol:     fixedpoint.Null,
		AccVolQty:  fixedpoint.Null,
		Match:      fixedpoint.Null,
		MatchQty:   fixedpoint.Null,
		SurplusQty: fixedpoint.Null,
		PxNDP:      pxNDP,
		QtyNDP:     qtyNDP,
	}
}

func (ob *OrderBook) Bids() *OBSide { return ob.bids }
func (ob *OrderBook) Asks() *OBSide { return ob.asks }

// ReportMissedUpdates notifies this book's handler of a contiguous gap of
// count records on the feed (spec section 7). The book keeps no count of
// its own, and nothing in this module calls it: the subscriber's gap
// detection requests a resend and does not report the gap to any book.
func (ob *OrderBook) ReportMissedUpdates(count uint64) {
	ob.handler.fireMissedUpdates(ob, count)
}

// ReportMissedOBUpdates is ReportMissedUpdates's book-targeted counterpart:
// count is the number of missed records that specifically targeted this
// book (a subset of the feed-wide gap).
func (ob *OrderBook) ReportMissedOBUpdates(count uint64) {
	ob.handler.fireMissedOBUpdates(ob, count)
}

func (ob *OrderBook) sideOf(s Side) *OBSide {
	if s == Buy {
		return ob.bids
	}
	return ob.asks
}

// Order looks up a resting order by ID.
func (ob *OrderBook) Order(id string) (*Order, bool) {
	o, ok := ob.orders[id]
	return o, ok
}

// Map records out in ob's out-chain at inRank (or updates the rank if out
// is already there), so that every qty-affecting mutation on ob triggers a
// recompute of out. It does not modify out.Legs; a Combination's legs are
// set on its Legs field directly.
func (ob *OrderBook) Map(inRank int, out *OrderBook) {
	for _, l := range ob.outs {
		if l.book == out {
			l.rank = inRank
			return
		}
	}
	ob.outs = append(ob.outs, &outLink{book: out, rank: inRank})
	sort.Slice(ob.outs, func(i, j int) bool { return ob.outs[i].rank < ob.outs[j].rank })
}

// Unmap removes out from ob's out-chain.
func (ob *OrderBook) Unmap(out *OrderBook) {
	for i, l := range ob.outs {
		if l.book == out {
			ob.outs = append(ob.outs[:i], ob.outs[i+1:]...)
			return
		}
	}
}

func (ob *OrderBook) propagate() {
	for _, l := range ob.outs {
		l.book.recomputeCombination()
	}
}

// recomputeCombination derives this Combination's synthetic top-of-book
// from its legs' best prices, ratio-weighted. Best-effort: if any leg is
// one-sided empty the corresponding combination side goes null rather than
// erroring, since a combination quote is only ever an approximation of
// what a multi-leg order could actually achieve (spec 4.3).
func (ob *OrderBook) recomputeCombination() {
	if len(ob.Legs) == 0 {
		return
	}
	bid, bidOK := ob.combinationPrice(Buy)
	ask, askOK := ob.combinationPrice(Sell)
	if bidOK {
		ob.L1.Bid = bid
	} else {
		ob.L1.Bid = fixedpoint.Null
	}
	if askOK {
		ob.L1.Ask = ask
	} else {
		ob.L1.Ask = fixedpoint.Null
	}
	ob.handler.fireL1(ob)
}

func (ob *OrderBook) combinationPrice(side Side) (fixedpoint.Value, bool) {
	var total fixedpoint.Value
	for _, leg := range ob.Legs {
		legSide := leg.Side
		if side == Sell {
			legSide = leg.Side.Other()
		}
		best := leg.Book.sideOf(legSide).Best()
		if best == nil {
			return 0, false
		}
		weighted, _, err := fixedpoint.NV(best.Price, leg.Book.L1.PxNDP, leg.Ratio, 0)
		if err != nil {
			return 0, false
		}
		rescaled, err := weighted.Rescale(leg.Book.L1.PxNDP, ob.L1.PxNDP)
		if err != nil {
			return 0, false
		}
		total += rescaled
	}
	return total, true
}

// UpdateL1 applies a three-state-merged L1 update: fields left Null in incoming
// are unchanged, Reset fields are cleared, anything else is assigned
// (spec section 4.1). Recomputes TickDir, High/Low and AccVol/AccVolQty
// when Last/LastQty change, then fires OnL1.
func (ob *OrderBook) UpdateL1(incoming L1Data) {
	old := ob.L1
	merged := old
	merged.Stamp = incoming.Stamp
	if incoming.Status != StatusUnknown {
		merged.Status = incoming.Status
	}
	merged.Base = fixedpoint.MergeL1(old.Base, incoming.Base)
	for i := range merged.Open {
		merged.Open[i] = fixedpoint.MergeL1(old.Open[i], incoming.Open[i])
	}
	for i := range merged.Close {
		merged.Close[i] = fixedpoint.MergeL1(old.Close[i], incoming.Close[i])
	}
	merged.Bid = fixedpoint.MergeL1(old.Bid, incoming.Bid)
	merged.BidQty = fixedpoint.MergeL1(old.BidQty, incoming.BidQty)
	merged.Ask = fixedpoint.MergeL1(old.Ask, incoming.Ask)
	merged.AskQty = fixedpoint.MergeL1(old.AskQty, incoming.AskQty)
	merged.Match = fixedpoint.MergeL1(old.Match, incoming.Match)
	merged.MatchQty = fixedpoint.MergeL1(old.MatchQty, incoming.MatchQty)
	merged.SurplusQty = fixedpoint.MergeL1(old.SurplusQty, incoming.SurplusQty)
	merged.Flags = old.Flags | incoming.Flags

	newLast := fixedpoint.MergeL1(old.Last, incoming.Last)
	if newLast != old.Last && !newLast.IsSentinel() {
		switch {
		case old.Last.IsSentinel():
			merged.TickDir = TickDirNull
		case newLast > old.Last:
			merged.TickDir = TickDirUp
		case newLast < old.Last:
			merged.TickDir = TickDirDown
		default:
			if merged.TickDir == TickDirNull {
				merged.TickDir = TickDirLevelUp
			}
		}
		if old.High.IsSentinel() || newLast > old.High {
			merged.High = newLast
		}
		if old.Low.IsSentinel() || newLast < old.Low {
			merged.Low = newLast
		}
		newLastQty := fixedpoint.MergeL1(old.LastQty, incoming.LastQty)
		if !newLastQty.IsSentinel() {
			if nv, ndp, err := fixedpoint.NV(newLast, merged.PxNDP, newLastQty, merged.QtyNDP); err == nil {
				accVol := old.AccVol
				if accVol.IsSentinel() {
					accVol = 0
				}
				if rescaled, err := accVol.Rescale(old.PxNDP+old.QtyNDP, ndp); err == nil {
					merged.AccVol = rescaled + nv
				}
			}
			accQty := old.AccVolQty
			if accQty.IsSentinel() {
				accQty = 0
			}
			merged.AccVolQty = accQty + newLastQty
		}
	}
	merged.Last = newLast
	merged.LastQty = fixedpoint.MergeL1(old.LastQty, incoming.LastQty)

	ob.L1 = merged
	ob.handler.fireL1(ob)
}

// L2 recomputes L1 bid/ask from the best resting levels on each side. When
// updateL1 is false the caller only wants the L2 event fired (the feed
// supplies L1 independently); when true this derives Bid/BidQty/Ask/AskQty
// from the top of book, the common case for depth-only feeds (spec section
// 4.1/4.3).
func (ob *OrderBook) L2(t int64, updateL1 bool) {
	if updateL1 {
		incoming := NewL1Update(ob.L1.PxNDP, ob.L1.QtyNDP)
		incoming.Stamp = t
		if best := ob.bids.Best(); best != nil {
			incoming.Bid = best.Price
			incoming.BidQty = best.Qty
		} else {
			incoming.Bid, incoming.BidQty = fixedpoint.Reset, fixedpoint.Reset
		}
		if best := ob.asks.Best(); best != nil {
			incoming.Ask = best.Price
			incoming.AskQty = best.Qty
		} else {
			incoming.Ask, incoming.AskQty = fixedpoint.Reset, fixedpoint.Reset
		}
		ob.UpdateL1(incoming)
	}
	ob.handler.fireL2(ob)
}

// PxLevelUpdate applies an aggregate (L2) update to the level at price on
// side, either as an absolute snapshot (delta==false: qty/nOrders/flags are
// the new totals) or as a delta (delta==true: qty/nOrders are differences),
// per spec section 4.2. A level that drains to zero quantity is removed
// from the side's index. Returns the affected level, even when it was
// removed (its Qty is then zero).
func (ob *OrderBook) PxLevelUpdate(side Side, t int64, delta bool, price, qty fixedpoint.Value, nOrders int, flags Flags, updateL1 bool) *PxLevel {
	s := ob.sideOf(side)
	lvl := s.getOrCreate(price)
	var dQty fixedpoint.Value
	var dNOrders int
	if delta {
		dQty, dNOrders = qty, nOrders
		lvl.updateDelta(dQty, dNOrders, flags)
	} else {
		dQty, dNOrders = lvl.updateAbs(qty, nOrders, flags)
	}
	s.recomputeAggregates()
	if lvl.Qty == 0 && lvl.NOrders == 0 && len(lvl.orders) == 0 {
		s.remove(price)
		s.recomputeAggregates()
	}
	ob.handler.firePxLevel(ob, lvl, dQty, dNOrders)
	ob.L2(t, updateL1)
	ob.propagate()
	return lvl
}

// AddOrder inserts a new L3 order at price/rank on side (spec 4.2,
// OrderBook::addOrder). Returns ErrOrderExists if id is already resting —
// checked against this book's local map and, when a venue-scoped
// OrderIndex is wired via SetOrderIndex, against that scope too, so under
// ScopeVenue a collision with an order on another book of the same venue is
// caught here rather than silently admitted (spec 4.5). ScopeOrderBook and
// ScopeOBSide index by this book's key, so they only ever find orders of
// this book.
func (ob *OrderBook) AddOrder(id string, side Side, rank int, price, qty fixedpoint.Value, flags Flags, t int64, updateL1 bool) (*Order, error) {
	if _, exists := ob.orders[id]; exists {
		return nil, ErrOrderExists
	}
	if ob.orderIndex != nil {
		if _, exists := ob.orderIndex.FindOrder(ob.Key, side, id); exists {
			return nil, ErrOrderExists
		}
	}
	order := &Order{ID: id, Side: side, Rank: rank, Price: price, Qty: qty, Flags: flags}
	s := ob.sideOf(side)
	lvl := s.getOrCreate(price)
	lvl.addOrder(order, ob.uniformRanks)
	s.recomputeAggregates()
	ob.orders[id] = order
	if ob.orderIndex != nil {
		ob.orderIndex.AddOrder(ob.Key, side, id, order)
	}
	ob.handler.fireAddOrder(ob, order)
	ob.L2(t, updateL1)
	ob.propagate()
	return order, nil
}

// ModifyOrder changes a resting order's rank/price/qty/flags, moving it
// between price levels when the price changes (spec 4.2,
// OrderBook::modifyOrder).
func (ob *OrderBook) ModifyOrder(id string, newRank int, newPrice, newQty fixedpoint.Value, flags Flags, t int64, updateL1 bool) (*Order, error) {
	order, ok := ob.orders[id]
	if !ok {
		return nil, orderNotFoundError(id)
	}
	oldPrice, oldQty := order.Price, order.Qty
	oldLevel := order.level
	if oldLevel == nil {
		return nil, ErrNoPxLevel
	}
	s := ob.sideOf(order.Side)
	if newPrice != oldPrice {
		idx := oldLevel.findOrder(id)
		if idx < 0 {
			return nil, ErrNoPxLevel
		}
		oldLevel.delOrder(idx, ob.uniformRanks)
		if len(oldLevel.orders) == 0 {
			s.remove(oldLevel.Price)
		}
		order.Price, order.Qty, order.Rank, order.Flags = newPrice, newQty, newRank, flags
		newLevel := s.getOrCreate(newPrice)
		newLevel.addOrder(order, ob.uniformRanks)
	} else {
		oldLevel.Qty += newQty - oldQty
		order.Qty, order.Rank, order.Flags = newQty, newRank, flags
	}
	s.recomputeAggregates()
	ob.handler.fireModifyOrder(ob, order, oldPrice, oldQty)
	ob.L2(t, updateL1)
	ob.propagate()
	return order, nil
}

// ReduceOrder lowers a resting order's quantity by reduceQty, clamped so it
// never goes negative, and deletes the order once it drains to zero (spec
// 4.2, OrderBook::reduceOrder — see DESIGN.md open question (b): no
// redundant sign check is needed here since the clamp already guards it).
func (ob *OrderBook) ReduceOrder(id string, reduceQty fixedpoint.Value, t int64, updateL1 bool) (*Order, error) {
	order, ok := ob.orders[id]
	if !ok {
		return nil, orderNotFoundError(id)
	}
	newQty := order.Qty - reduceQty
	if newQty < 0 {
		newQty = 0
	}
	if newQty == 0 {
		return ob.CancelOrder(id, t, updateL1)
	}
	return ob.ModifyOrder(id, order.Rank, order.Price, newQty, order.Flags, t, updateL1)
}

// CancelOrder removes a resting order entirely (spec 4.2,
// OrderBook::cancelOrder).
func (ob *OrderBook) CancelOrder(id string, t int64, updateL1 bool) (*Order, error) {
	order, ok := ob.orders[id]
	if !ok {
		return nil, orderNotFoundError(id)
	}
	lvl := order.level
	if lvl == nil {
		return nil, ErrNoPxLevel
	}
	idx := lvl.findOrder(id)
	if idx < 0 {
		return nil, ErrNoPxLevel
	}
	s := ob.sideOf(order.Side)
	lvl.delOrder(idx, ob.uniformRanks)
	if len(lvl.orders) == 0 && lvl.Qty == 0 {
		s.remove(lvl.Price)
	}
	s.recomputeAggregates()
	delete(ob.orders, id)
	if ob.orderIndex != nil {
		ob.orderIndex.RemoveOrder(ob.Key, order.Side, id)
	}
	ob.handler.fireCancelOrder(ob, order)
	ob.L2(t, updateL1)
	ob.propagate()
	return order, nil
}

// Reset tears the entire book down: every resting order on both sides is
// detached via OnOrderUpdate, every L1 price/quantity field is set to the
// absent sentinel (as built by NewL1Update), and OnReset fires (spec 4.3,
// OrderBook::reset).
func (ob *OrderBook) Reset(t int64) {
	cb := func(o *Order) {
		if ob.orderIndex != nil {
			ob.orderIndex.RemoveOrder(ob.Key, o.Side, o.ID)
		}
		ob.handler.fireOrderUpdate(ob, o)
	}
	ob.bids.reset(cb)
	ob.asks.reset(cb)
	ob.orders = make(map[string]*Order)
	ob.L1 = NewL1Update(ob.L1.PxNDP, ob.L1.QtyNDP)
	ob.L1.Stamp = t
	ob.handler.fireReset(ob)
	ob.propagate()
}

// UpdateNDP migrates every resting price/quantity (levels, orders, and the
// L1 summary) to newPxNDP/newQtyNDP, invoking fn once per surviving order
// (spec 4.3, OrderBook::updateNDP — used when a venue's ref-data changes an
// instrument's tick/lot precision intraday).
func (ob *OrderBook) UpdateNDP(newPxNDP, newQtyNDP fixedpoint.NDP, fn func(*Order)) error {
	if err := ob.bids.rescale(newPxNDP, newQtyNDP, fn); err != nil {
		return err
	}
	if err := ob.asks.rescale(newPxNDP, newQtyNDP, fn); err != nil {
		return err
	}
	rescaleField := func(v fixedpoint.Value, fromNDP, toNDP fixedpoint.NDP) fixedpoint.Value {
		r, err := v.Rescale(fromNDP, toNDP)
		if err != nil {
			return v
		}
		return r
	}
	oldPxNDP, oldQtyNDP := ob.L1.PxNDP, ob.L1.QtyNDP
	ob.L1.Base = rescaleField(ob.L1.Base, oldPxNDP, newPxNDP)
	for i := range ob.L1.Open {
		ob.L1.Open[i] = rescaleField(ob.L1.Open[i], oldPxNDP, newPxNDP)
		ob.L1.Close[i] = rescaleField(ob.L1.Close[i], oldPxNDP, newPxNDP)
	}
	ob.L1.Last = rescaleField(ob.L1.Last, oldPxNDP, newPxNDP)
	ob.L1.LastQty = rescaleField(ob.L1.LastQty, oldQtyNDP, newQtyNDP)
	ob.L1.Bid = rescaleField(ob.L1.Bid, oldPxNDP, newPxNDP)
	ob.L1.BidQty = rescaleField(ob.L1.BidQty, oldQtyNDP, newQtyNDP)
	ob.L1.Ask = rescaleField(ob.L1.Ask, oldPxNDP, newPxNDP)
	ob.L1.AskQty = rescaleField(ob.L1.AskQty, oldQtyNDP, newQtyNDP)
	ob.L1.High = rescaleField(ob.L1.High, oldPxNDP, newPxNDP)
	ob.L1.Low = rescaleField(ob.L1.Low, oldPxNDP, newPxNDP)
	ob.L1.AccVol = rescaleField(ob.L1.AccVol, oldPxNDP+oldQtyNDP, newPxNDP+newQtyNDP)
	ob.L1.AccVolQty = rescaleField(ob.L1.AccVolQty, oldQtyNDP, newQtyNDP)
	ob.L1.Match = rescaleField(ob.L1.Match, oldPxNDP, newPxNDP)
	ob.L1.MatchQty = rescaleField(ob.L1.MatchQty, oldQtyNDP, newQtyNDP)
	ob.L1.SurplusQty = rescaleField(ob.L1.SurplusQty, oldQtyNDP, newQtyNDP)
	ob.L1.PxNDP = newPxNDP
	ob.L1.QtyNDP = newQtyNDP
	return nil
}

// MatchResult is the outcome of a best-effort Match against the resting
// book (spec 4.3: "matching in this engine is best-effort liquidity
// discovery for the subscriber side, not an execution venue — it walks
// resting levels and reports what a hypothetical order would have
// achieved, without mutating book state unless the caller applies fills").
type MatchResult struct {
	FilledQty  fixedpoint.Value
	Notional   fixedpoint.Value
	NVNDP     fixedpoint.NDP
	LeavesQty  fixedpoint.Value
	FullyFilled bool
}

// FillFunc is invoked once per contra order consumed by Match, spec 4.3:
// "fillFn(leavesQty, cumQty, px, qty, contra) is invoked per fill and may
// return false to halt." qty is the quantity taken from contra on this
// fill, cumQty the running total filled so far, leavesQty contra's
// remaining resting quantity after this fill (zero if contra is fully
// consumed). Match itself never mutates contra or the book: a caller that
// wants the fill to actually execute calls ReduceOrder/CancelOrder on
// contra from within fillFn.
type FillFunc func(leavesQty, cumQty, px, qty fixedpoint.Value, contra *Order) bool

// LeaveFunc is invoked once when Match completes, spec 4.3:
// "leaveFn(leavesQty, cumQty) is invoked once on completion."
type LeaveFunc func(leavesQty, cumQty fixedpoint.Value)

// MatchOption configures an optional Match callback.
type MatchOption func(*matchOpts)

type matchOpts struct {
	fillFn  FillFunc
	leaveFn LeaveFunc
}

// WithFillFunc installs a FillFunc, invoked per contra order consumed.
func WithFillFunc(fn FillFunc) MatchOption {
	return func(o *matchOpts) { o.fillFn = fn }
}

// WithLeaveFunc installs a LeaveFunc, invoked once when Match completes.
func WithLeaveFunc(fn LeaveFunc) MatchOption {
	return func(o *matchOpts) { o.leaveFn = fn }
}

// Match walks the opposite side's resting levels from the top, starting
// at side (the side of the incoming order), in best-price order, and
// within each level walks its resting orders by rank (spec 4.3: "iterates
// opposite-side levels in best-price order; for each contra order it
// either fully fills it ... or partially fills it"), consuming levels
// priced at or better than limitPrice (Null limitPrice means marketable
// against any price) up to qty.
//
// Match never mutates contra orders or level aggregates itself: it is
// best-effort liquidity discovery for the subscriber side, not an
// execution venue (spec 4.3's Non-goals note "no order matching for real
// execution"). A caller that wants the walk to actually execute supplies
// a FillFunc via WithFillFunc and calls ReduceOrder/CancelOrder on the
// contra order from inside it; Match still reports the aggregate outcome
// either way.
func (ob *OrderBook) Match(side Side, limitPrice, qty fixedpoint.Value, opts ...MatchOption) MatchResult {
	var o matchOpts
	for _, opt := range opts {
		opt(&o)
	}

	opp := ob.sideOf(side.Other())
	remaining := qty
	var notional fixedpoint.Value
	var nvNDP fixedpoint.NDP
	var cum fixedpoint.Value
levels:
	for _, lvl := range opp.Levels() {
		if remaining <= 0 {
			break
		}
		if !limitPrice.IsSentinel() && !lvl.IsMarketLevel() {
			if side == Buy && lvl.Price > limitPrice {
				break
			}
			if side == Sell && lvl.Price < limitPrice {
				break
			}
		}
		for _, contra := range lvl.Orders() {
			if remaining <= 0 {
				break levels
			}
			take := contra.Qty
			if take > remaining {
				take = remaining
			}
			if take <= 0 {
				continue
			}
			nv, ndp, err := fixedpoint.NV(lvl.Price, ob.L1.PxNDP, take, ob.L1.QtyNDP)
			if err == nil && !lvl.IsMarketLevel() {
				notional += nv
				nvNDP = ndp
			}
			remaining -= take
			cum += take
			if o.fillFn != nil {
				leaves := contra.Qty - take
				if !o.fillFn(leaves, cum, lvl.Price, take, contra) {
					break levels
				}
			}
		}
	}
	filled := qty - remaining
	if o.leaveFn != nil {
		o.leaveFn(remaining, filled)
	}
	return MatchResult{
		FilledQty:   filled,
		Notional:    notional,
		NVNDP:      nvNDP,
		LeavesQty:   remaining,
		FullyFilled: remaining == 0,
	}
}
